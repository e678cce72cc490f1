// Package cache provides content-addressed storage for evicted entry
// payloads, so lazy re-reads of large containers can avoid going back to
// the original byte source.
package cache

import "github.com/opencontainers/go-digest"

// Cache stores entry payloads keyed by the digest of their content.
//
// Because keys are content digests, cache hits are implicitly verified—no
// additional integrity check is needed. Implementations must be safe for
// concurrent use and handle their own size limits and eviction.
type Cache interface {
	// Get returns the payload for key. ok is false on a miss.
	Get(key digest.Digest) ([]byte, bool)

	// Put stores a payload. Storing is opportunistic; implementations may
	// decline oversized payloads without error.
	Put(key digest.Digest, data []byte) error

	// Delete removes the payload for key. Missing keys are a no-op.
	Delete(key digest.Digest)

	// MaxBytes returns the configured size limit (0 = unlimited).
	MaxBytes() int64

	// SizeBytes returns the current stored size in bytes.
	SizeBytes() int64

	// Prune evicts payloads until the cache is at or below targetBytes.
	// Returns the number of bytes freed.
	Prune(targetBytes int64) int64
}
