package cache

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
)

// Memory is a bounded in-memory Cache. Payloads are held zstd-compressed
// and evicted least-recently-used when the limit is exceeded. Size
// accounting is over the compressed representation.
type Memory struct {
	mu    sync.Mutex
	max   int64
	size  int64
	order *list.List // front = most recently used
	items map[digest.Digest]*list.Element

	enc *zstd.Encoder
	dec *zstd.Decoder
}

type memItem struct {
	key        digest.Digest
	compressed []byte
}

// Option configures a Memory cache.
type Option func(*config)

type config struct {
	level zstd.EncoderLevel
}

// WithLevel sets the zstd compression level (default: zstd.SpeedFastest;
// evicted payloads are hot data, so favor speed over ratio).
func WithLevel(level zstd.EncoderLevel) Option {
	return func(c *config) {
		c.level = level
	}
}

// NewMemory creates a Memory cache holding at most maxBytes of compressed
// payload data. maxBytes <= 0 means unlimited.
func NewMemory(maxBytes int64, opts ...Option) (*Memory, error) {
	cfg := config{level: zstd.SpeedFastest}
	for _, opt := range opts {
		opt(&cfg)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(cfg.level))
	if err != nil {
		return nil, fmt.Errorf("cache: create encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("cache: create decoder: %w", err)
	}

	if maxBytes < 0 {
		maxBytes = 0
	}
	return &Memory{
		max:   maxBytes,
		order: list.New(),
		items: make(map[digest.Digest]*list.Element),
		enc:   enc,
		dec:   dec,
	}, nil
}

// Get returns the payload for key, decompressed.
// A payload that fails to decompress is dropped and reported as a miss.
func (m *Memory) Get(key digest.Digest) ([]byte, bool) {
	m.mu.Lock()
	elem, ok := m.items[key]
	if !ok {
		m.mu.Unlock()
		return nil, false
	}
	m.order.MoveToFront(elem)
	compressed := elem.Value.(*memItem).compressed
	m.mu.Unlock()

	data, err := m.dec.DecodeAll(compressed, nil)
	if err != nil {
		m.Delete(key)
		return nil, false
	}
	return data, true
}

// Put stores a payload, evicting least-recently-used payloads as needed.
// A payload whose compressed form alone exceeds the limit is declined.
func (m *Memory) Put(key digest.Digest, data []byte) error {
	compressed := m.enc.EncodeAll(data, nil)
	if m.max > 0 && int64(len(compressed)) > m.max {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.order.MoveToFront(elem)
		item := elem.Value.(*memItem)
		m.size += int64(len(compressed)) - int64(len(item.compressed))
		item.compressed = compressed
	} else {
		m.items[key] = m.order.PushFront(&memItem{key: key, compressed: compressed})
		m.size += int64(len(compressed))
	}

	if m.max > 0 {
		m.evictLocked(m.max)
	}
	return nil
}

// Delete removes the payload for key.
func (m *Memory) Delete(key digest.Digest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem, ok := m.items[key]; ok {
		m.removeLocked(elem)
	}
}

// MaxBytes returns the configured size limit.
func (m *Memory) MaxBytes() int64 {
	return m.max
}

// SizeBytes returns the current compressed size.
func (m *Memory) SizeBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Prune evicts least-recently-used payloads until at or below targetBytes.
func (m *Memory) Prune(targetBytes int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.size
	m.evictLocked(targetBytes)
	return before - m.size
}

func (m *Memory) evictLocked(limit int64) {
	if limit < 0 {
		limit = 0
	}
	for m.size > limit {
		oldest := m.order.Back()
		if oldest == nil {
			return
		}
		m.removeLocked(oldest)
	}
}

func (m *Memory) removeLocked(elem *list.Element) {
	item := elem.Value.(*memItem)
	m.order.Remove(elem)
	delete(m.items, item.key)
	m.size -= int64(len(item.compressed))
}

// Interface compliance.
var _ Cache = (*Memory)(nil)
