package arctype

import (
	"io"
	"log/slog"
)

// ByteSource provides random access to container bytes.
// SourceID must return a stable identifier for the underlying content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}

// Codec is one format-specific decode/encode/signature-match implementation.
type Codec interface {
	// Name identifies the format (e.g. "bsp", "lfd").
	Name() string

	// Matches is a cheap, side-effect-free probe of the source's signature
	// and fixed header fields. It never allocates an entry tree.
	Matches(src ByteSource) bool

	// Decode validates the source and parses its directory into a tree.
	// Decode is atomic: on any validation failure no partially-built tree
	// is returned. Failures are *FormatError values wrapping a sentinel.
	Decode(src ByteSource, opts *DecodeOptions) (*Tree, error)

	// Encode serializes the tree back into the on-disk layout. Formats
	// that cannot round-trip return an error wrapping ErrUnsupported.
	Encode(tree *Tree) ([]byte, error)
}

// DecodeOptions carries advisory instrumentation into a decode.
// A nil *DecodeOptions and nil fields are all valid.
type DecodeOptions struct {
	// Logger receives recoverable warnings (e.g. a directory count that
	// disagrees with the records actually walked).
	Logger *slog.Logger

	// Progress receives fraction-of-entries updates during long decodes.
	Progress ProgressFunc
}

// Log returns the logger, falling back to a discard logger if unset.
func (o *DecodeOptions) Log() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Report delivers a progress event if a progress func is set.
func (o *DecodeOptions) Report(ev ProgressEvent) {
	if o == nil || o.Progress == nil {
		return
	}
	o.Progress(ev)
}
