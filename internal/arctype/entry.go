package arctype

// State tracks how an entry differs from the bytes it was decoded from.
type State uint8

const (
	// StateUnmodified means the entry matches the original source bytes.
	StateUnmodified State = iota

	// StateModified means the payload or name changed since decode.
	StateModified

	// StateNew means the entry was added by the caller and has no
	// authoritative source offset.
	StateNew
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnmodified:
		return "unmodified"
	case StateModified:
		return "modified"
	case StateNew:
		return "new"
	default:
		return "unknown"
	}
}

// Entry is one named payload unit within a container.
//
// Codec-created entries start unloaded and point at their sub-range of the
// original byte source; the payload is read on first access. Once an entry
// is mutated it stays loaded and its source offset is no longer
// authoritative.
type Entry struct {
	// Name is the entry name, cleaned of any fixed-field padding.
	Name string

	// Size is the declared payload length in bytes.
	Size uint32

	// SourceOffset is the byte offset of the payload (or sub-header, for
	// formats that count their header into the entry) in the original source.
	SourceOffset uint64

	// Type is the detected type tag. Empty until the detection pass runs.
	// The engine stores it but does not interpret it.
	Type string

	data   []byte
	loaded bool
	state  State
}

// NewEntry creates an unloaded entry pointing at a sub-range of the source.
func NewEntry(name string, size uint32, sourceOffset uint64) *Entry {
	return &Entry{Name: name, Size: size, SourceOffset: sourceOffset}
}

// NewEntryData creates a loaded entry from caller-supplied bytes.
// The entry is marked new and has no source offset.
func NewEntryData(name string, data []byte) *Entry {
	return &Entry{
		Name:   name,
		Size:   uint32(len(data)),
		data:   data,
		loaded: true,
		state:  StateNew,
	}
}

// Loaded reports whether the payload is resident in memory.
func (e *Entry) Loaded() bool {
	return e.loaded
}

// State returns the entry's modification state.
func (e *Entry) State() State {
	return e.state
}

// ResetState marks the entry unmodified. Called after a successful open or
// save, when the entry again matches its source bytes.
func (e *Entry) ResetState() {
	e.state = StateUnmodified
}

// Data returns the payload if it is loaded. ok is false for unloaded
// entries; use the owning archive to load them.
func (e *Entry) Data() ([]byte, bool) {
	if !e.loaded {
		return nil, false
	}
	return e.data, true
}

// SetData replaces the payload with caller-supplied bytes. The entry is
// permanently loaded afterwards and its source offset stops being
// authoritative.
func (e *Entry) SetData(data []byte) {
	e.data = data
	e.Size = uint32(len(data))
	e.loaded = true
	if e.state == StateUnmodified {
		e.state = StateModified
	}
}

// MarkModified flags the entry as modified without touching its payload.
// Used for renames, where the directory record changes but the data does not.
func (e *Entry) MarkModified() {
	if e.state == StateUnmodified {
		e.state = StateModified
	}
}

// ImportData installs a payload read back from the original source.
// Unlike SetData it does not mark the entry modified.
func (e *Entry) ImportData(data []byte) {
	e.data = data
	e.loaded = true
}

// ReleaseData drops the payload buffer so it can be re-read on demand.
// Modified and new entries refuse to unload: their canonical bytes no
// longer live at SourceOffset.
func (e *Entry) ReleaseData() error {
	if e.state != StateUnmodified {
		return ErrEntryModified
	}
	e.data = nil
	e.loaded = false
	return nil
}
