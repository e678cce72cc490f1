package arctype

// ProgressEvent represents a progress update during decode or type detection.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Name is the entry currently being processed, if applicable.
	Name string

	// EntriesDone is the number of entries completed.
	EntriesDone int

	// EntriesTotal is the total number of entries.
	// Zero indicates the total is unknown.
	EntriesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

const (
	// StageReadingDirectory indicates the container directory is being parsed.
	StageReadingDirectory ProgressStage = iota

	// StageDetectingTypes indicates entry types are being detected.
	StageDetectingTypes

	// StageEncoding indicates the tree is being serialized back to bytes.
	StageEncoding
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageReadingDirectory:
		return "reading directory"
	case StageDetectingTypes:
		return "detecting types"
	case StageEncoding:
		return "encoding"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
