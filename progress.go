package resarc

import "github.com/resarc/resarc/internal/arctype"

// Re-export progress types from internal/arctype.
type (
	// ProgressEvent represents a progress update during decode or type detection.
	ProgressEvent = arctype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = arctype.ProgressStage

	// ProgressFunc receives progress updates during operations.
	// Implementations must be safe for concurrent calls.
	ProgressFunc = arctype.ProgressFunc
)

// Re-export progress stage constants.
const (
	// StageReadingDirectory indicates the container directory is being parsed.
	StageReadingDirectory = arctype.StageReadingDirectory

	// StageDetectingTypes indicates entry types are being detected.
	StageDetectingTypes = arctype.StageDetectingTypes

	// StageEncoding indicates the tree is being serialized back to bytes.
	StageEncoding = arctype.StageEncoding
)
