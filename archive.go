package resarc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/resarc/resarc/cache"
	"github.com/resarc/resarc/internal/arctype"
	"github.com/resarc/resarc/internal/sizing"
)

// Archive wraps one decoded entry tree together with the codec that
// produced it and the byte source it was decoded from.
//
// Entry payloads are read lazily from the source on first access and may be
// unloaded again to bound memory use. Structural or payload changes set the
// modified flag; a successful Write clears it.
//
// An Archive is safe for concurrent use. Decoding itself is sequential and
// single-threaded; independent archives share no mutable state and may be
// decoded concurrently.
type Archive struct {
	mu     sync.Mutex
	tree   *arctype.Tree
	codec  Codec
	source ByteSource

	modified bool
	muted    bool
	readOnly bool

	logger *slog.Logger
	notify EventFunc
	cache  cache.Cache

	// digests remembers payload content digests so unloaded entries can be
	// refilled from the cache without touching the source.
	digests map[*Entry]digest.Digest

	loadGroup singleflight.Group
}

// newArchive wires a decoded tree to its codec and source. The archive
// starts muted; Open unmutes it after the post-decode passes.
func newArchive(tree *arctype.Tree, codec Codec, source ByteSource, cfg *openConfig) *Archive {
	return &Archive{
		tree:     tree,
		codec:    codec,
		source:   source,
		muted:    true,
		readOnly: cfg.readOnly,
		logger:   cfg.logger,
		notify:   cfg.notify,
		cache:    cfg.cache,
		digests:  make(map[*Entry]digest.Digest),
	}
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// announce delivers an event unless notifications are muted.
// Callers must not hold a.mu.
func (a *Archive) announce(kind EventKind, entry string) {
	a.mu.Lock()
	muted, notify := a.muted, a.notify
	a.mu.Unlock()
	if muted || notify == nil {
		return
	}
	notify(Event{Kind: kind, Format: a.codec.Name(), Entry: entry})
}

// Format returns the bound codec's format name.
func (a *Archive) Format() string {
	return a.codec.Name()
}

// Modified reports whether the archive differs from its source bytes.
func (a *Archive) Modified() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.modified
}

// ReadOnly reports whether structural edits are refused.
func (a *Archive) ReadOnly() bool {
	return a.readOnly
}

// Muted reports whether change notifications are suppressed.
func (a *Archive) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// SetMuted suppresses or restores change notifications. Used to avoid
// spurious events during bulk edits.
func (a *Archive) SetMuted(muted bool) {
	a.mu.Lock()
	a.muted = muted
	a.mu.Unlock()
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.Len()
}

// At returns the entry at position i, or nil if i is out of range.
func (a *Archive) At(i int) *Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.At(i)
}

// Lookup returns the first entry with the given name in on-disk order.
func (a *Archive) Lookup(name string) (*Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.Lookup(name)
}

// Entries returns an iterator over all entries in on-disk order.
// The snapshot is taken when Entries is called.
func (a *Archive) Entries() iter.Seq[*Entry] {
	a.mu.Lock()
	snapshot := make([]*Entry, 0, a.tree.Len())
	for e := range a.tree.Entries() {
		snapshot = append(snapshot, e)
	}
	a.mu.Unlock()
	return func(yield func(*Entry) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// Read returns an entry's payload, loading it from the source (or the
// payload cache) on first access. Concurrent reads of the same unloaded
// entry are deduplicated.
func (a *Archive) Read(e *Entry) ([]byte, error) {
	a.mu.Lock()
	if data, ok := e.Data(); ok {
		a.mu.Unlock()
		return data, nil
	}
	key := fmt.Sprintf("%s:%d:%d", a.source.SourceID(), e.SourceOffset, e.Size)
	a.mu.Unlock()

	result, err, _ := a.loadGroup.Do(key, func() (any, error) {
		return a.load(e)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil //nolint:errcheck // type assertion always succeeds when err is nil
}

// Load ensures an entry's payload is resident.
func (a *Archive) Load(e *Entry) error {
	_, err := a.Read(e)
	return err
}

// load performs the actual lazy read. It re-checks residency under the
// lock, consults the cache, then reads exactly Size bytes at SourceOffset.
func (a *Archive) load(e *Entry) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if data, ok := e.Data(); ok {
		return data, nil
	}

	if a.cache != nil {
		if key, ok := a.digests[e]; ok {
			if data, ok := a.cache.Get(key); ok {
				a.log().Debug("payload cache hit", "entry", e.Name)
				e.ImportData(data)
				return data, nil
			}
		}
	}

	// The source may have changed size out from under us; revalidate the
	// recorded range before trusting it.
	if !sizing.Fits(e.SourceOffset, uint64(e.Size), a.source.Size()) {
		return nil, fmt.Errorf("resarc: load %q: range [%d, %d): %w",
			e.Name, e.SourceOffset, e.SourceOffset+uint64(e.Size), ErrOutOfBounds)
	}

	data := make([]byte, e.Size)
	if _, err := a.source.ReadAt(data, int64(e.SourceOffset)); err != nil && err != io.EOF {
		return nil, fmt.Errorf("resarc: load %q: %w", e.Name, err)
	}
	e.ImportData(data)
	if a.cache != nil {
		a.digests[e] = digest.FromBytes(data)
	}
	return data, nil
}

// Unload releases an entry's payload buffer so it can be re-read on
// demand. Modified and new entries refuse to unload with ErrEntryModified.
// With a payload cache configured, the payload is spilled there first.
func (a *Archive) Unload(e *Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, ok := e.Data()
	if !ok {
		return nil
	}
	if a.cache != nil && e.State() == StateUnmodified {
		key := digest.FromBytes(data)
		a.digests[e] = key
		if err := a.cache.Put(key, data); err != nil {
			a.log().Debug("payload cache put failed", "entry", e.Name, "error", err)
		}
	}
	return e.ReleaseData()
}

// Add inserts an entry at position at (clamped; negative appends).
func (a *Archive) Add(e *Entry, at int) error {
	a.mu.Lock()
	if a.readOnly {
		a.mu.Unlock()
		return ErrReadOnly
	}
	if at < 0 {
		at = a.tree.Len()
	}
	a.tree.Insert(at, e)
	a.modified = true
	a.mu.Unlock()

	a.announce(EventAdded, e.Name)
	return nil
}

// Remove removes the first entry with the given name and returns it.
func (a *Archive) Remove(name string) (*Entry, error) {
	a.mu.Lock()
	if a.readOnly {
		a.mu.Unlock()
		return nil, ErrReadOnly
	}
	e, ok := a.tree.Remove(name)
	if !ok {
		a.mu.Unlock()
		return nil, &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(a.digests, e)
	a.modified = true
	a.mu.Unlock()

	a.announce(EventRemoved, name)
	return e, nil
}

// RemoveAt removes and returns the entry at position i.
func (a *Archive) RemoveAt(i int) (*Entry, error) {
	a.mu.Lock()
	if a.readOnly {
		a.mu.Unlock()
		return nil, ErrReadOnly
	}
	e := a.tree.RemoveAt(i)
	if e == nil {
		a.mu.Unlock()
		return nil, &fs.PathError{Op: "remove", Path: fmt.Sprintf("#%d", i), Err: fs.ErrNotExist}
	}
	delete(a.digests, e)
	a.modified = true
	a.mu.Unlock()

	a.announce(EventRemoved, e.Name)
	return e, nil
}

// Rename changes an entry's name. The payload is untouched but the entry
// counts as modified: its directory record no longer matches the source.
func (a *Archive) Rename(e *Entry, name string) error {
	a.mu.Lock()
	if a.readOnly {
		a.mu.Unlock()
		return ErrReadOnly
	}
	e.Name = name
	e.MarkModified()
	a.modified = true
	a.mu.Unlock()

	a.announce(EventRenamed, name)
	return nil
}

// Replace swaps an entry's payload for caller-supplied bytes. The entry is
// permanently loaded afterwards and its source offset stops being
// authoritative.
func (a *Archive) Replace(e *Entry, data []byte) error {
	a.mu.Lock()
	if a.readOnly {
		a.mu.Unlock()
		return ErrReadOnly
	}
	e.SetData(data)
	delete(a.digests, e)
	a.modified = true
	a.mu.Unlock()

	a.announce(EventChanged, e.Name)
	return nil
}

// Write re-encodes the current tree into the archive's on-disk format.
// Unloaded payloads are loaded first. On success the modified flag is
// cleared. Formats without encode support fail with ErrUnsupported.
func (a *Archive) Write() ([]byte, error) {
	a.mu.Lock()
	entries := make([]*Entry, 0, a.tree.Len())
	for e := range a.tree.Entries() {
		entries = append(entries, e)
	}
	a.mu.Unlock()

	for _, e := range entries {
		if err := a.Load(e); err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	data, err := a.codec.Encode(a.tree)
	if err != nil {
		return nil, err
	}
	a.modified = false
	return data, nil
}

// SaveFile encodes the archive and writes it to path atomically (temp file
// plus rename). On success the archive re-points at the saved file, so
// the offsets rewritten during encode stay valid for lazy reads.
func (a *Archive) SaveFile(path string) error {
	data, err := a.Write()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".resarc-")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming to destination: %w", err)
	}
	success = true

	source, err := OpenSource(path)
	if err != nil {
		return fmt.Errorf("reopening saved archive: %w", err)
	}

	a.mu.Lock()
	old := a.source
	a.source = source
	a.mu.Unlock()
	if closer, ok := old.(io.Closer); ok {
		if err := closer.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			a.log().Debug("closing previous source", "error", err)
		}
	}

	a.announce(EventSaved, "")
	return nil
}

// Close releases the archive's byte source if it holds one.
// Lazy reads fail after Close.
func (a *Archive) Close() error {
	a.mu.Lock()
	source := a.source
	a.mu.Unlock()
	if closer, ok := source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
