package arctype

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every codec and the archive layer.
var (
	// ErrTruncatedRead is returned when fewer bytes remain than a read requested.
	ErrTruncatedRead = errors.New("resarc: truncated read")

	// ErrOutOfBounds is returned when a computed offset, length, or range
	// exceeds the source size. Integer overflow counts as out of bounds.
	ErrOutOfBounds = errors.New("resarc: out of bounds")

	// ErrInvalidSignature is returned when a header or magic check fails.
	ErrInvalidSignature = errors.New("resarc: invalid signature")

	// ErrStructural is returned when a format-specific invariant fails.
	ErrStructural = errors.New("resarc: structural violation")

	// ErrUnsupported is returned for operations a format does not implement.
	ErrUnsupported = errors.New("resarc: unsupported operation")

	// ErrNoMatchingFormat is returned when no registered codec matched.
	ErrNoMatchingFormat = errors.New("resarc: no matching format")

	// ErrReadOnly is returned when a mutating operation hits a read-only archive.
	ErrReadOnly = errors.New("resarc: archive is read-only")

	// ErrEntryModified is returned when an entry whose canonical bytes no
	// longer live at its source offset is asked to unload.
	ErrEntryModified = errors.New("resarc: entry modified")

	// ErrNotLoaded is returned when an operation needs an entry's payload
	// but it is not resident and no source is available to read it from.
	ErrNotLoaded = errors.New("resarc: entry payload not loaded")
)

// FormatError is a fatal decode or encode failure with enough context to
// present a diagnostic: the codec name, the byte offset where validation
// failed, and a detail string describing expected vs. actual.
type FormatError struct {
	Format string
	Offset int64
	Err    error
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v at offset %d", e.Format, e.Err, e.Offset)
	}
	return fmt.Sprintf("%s: %v at offset %d: %s", e.Format, e.Err, e.Offset, e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
