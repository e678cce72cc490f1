package resarc

import "github.com/resarc/resarc/internal/arctype"

// Re-export types from internal/arctype for the public API.
type (
	// Entry is one named payload unit within a container.
	Entry = arctype.Entry

	// State tracks how an entry differs from its decoded source bytes.
	State = arctype.State

	// Tree is the ordered entry hierarchy owned by an Archive.
	Tree = arctype.Tree

	// Codec is one format-specific decode/encode/signature-match
	// implementation. Custom codecs can be registered via NewRegistry.
	Codec = arctype.Codec

	// DecodeOptions carries advisory instrumentation into a decode.
	DecodeOptions = arctype.DecodeOptions

	// FormatError is a fatal decode or encode failure carrying the codec
	// name, byte offset, and expected-vs-actual detail.
	FormatError = arctype.FormatError
)

// Re-export entry state constants.
const (
	StateUnmodified = arctype.StateUnmodified
	StateModified   = arctype.StateModified
	StateNew        = arctype.StateNew
)

// NewEntry creates a loaded entry from caller-supplied bytes, suitable for
// Archive.Add. The entry is marked new and has no source offset.
var NewEntry = arctype.NewEntryData

// NewTree creates an empty entry tree.
var NewTree = arctype.NewTree

// TypeFunc classifies an entry from its name and raw bytes, returning an
// opaque type tag that the engine stores but does not interpret.
type TypeFunc func(name string, data []byte) string
