package resarc

import "github.com/resarc/resarc/internal/arctype"

// Errors re-exported from internal/arctype. All decode failures wrap one of
// these sentinels inside a *FormatError, so errors.Is works through them.
var (
	// ErrTruncatedRead is returned when fewer bytes remain than a read requested.
	ErrTruncatedRead = arctype.ErrTruncatedRead

	// ErrOutOfBounds is returned when a computed offset, length, or range
	// exceeds the source size. Integer overflow counts as out of bounds.
	ErrOutOfBounds = arctype.ErrOutOfBounds

	// ErrInvalidSignature is returned when a header or magic check fails.
	ErrInvalidSignature = arctype.ErrInvalidSignature

	// ErrStructural is returned when a format-specific invariant fails,
	// such as texture dimensions that are not multiples of 8.
	ErrStructural = arctype.ErrStructural

	// ErrUnsupported is returned for operations a format does not
	// implement, typically encode.
	ErrUnsupported = arctype.ErrUnsupported

	// ErrNoMatchingFormat is returned when no registered codec's signature
	// matched the source.
	ErrNoMatchingFormat = arctype.ErrNoMatchingFormat

	// ErrReadOnly is returned when a mutating operation hits a read-only archive.
	ErrReadOnly = arctype.ErrReadOnly

	// ErrEntryModified is returned when a modified entry is asked to unload.
	ErrEntryModified = arctype.ErrEntryModified

	// ErrNotLoaded is returned when an operation needs a payload that is
	// not resident and cannot be read from a source.
	ErrNotLoaded = arctype.ErrNotLoaded
)
