package resarc

import (
	"log/slog"

	"github.com/resarc/resarc/cache"
)

// EventKind identifies an archive change notification.
type EventKind uint8

const (
	// EventOpened fires once after a successful decode.
	EventOpened EventKind = iota

	// EventAdded fires when an entry is added.
	EventAdded

	// EventRemoved fires when an entry is removed.
	EventRemoved

	// EventRenamed fires when an entry is renamed.
	EventRenamed

	// EventChanged fires when an entry's payload is replaced.
	EventChanged

	// EventSaved fires after a successful encode.
	EventSaved
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventRenamed:
		return "renamed"
	case EventChanged:
		return "changed"
	case EventSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Event is an archive change notification.
type Event struct {
	// Kind identifies what happened.
	Kind EventKind

	// Format is the archive's format name.
	Format string

	// Entry is the affected entry name, if applicable.
	Entry string
}

// EventFunc receives change notifications. Notifications are suppressed
// while the archive is muted.
type EventFunc func(Event)

// OpenOption configures Open.
type OpenOption func(*openConfig)

type openConfig struct {
	logger   *slog.Logger
	progress ProgressFunc
	typeFunc TypeFunc
	loadData bool
	readOnly bool
	cache    cache.Cache
	notify   EventFunc
}

// WithLogger sets the logger used for recoverable decode warnings and
// archive diagnostics. Default: discard.
func WithLogger(logger *slog.Logger) OpenOption {
	return func(c *openConfig) {
		c.logger = logger
	}
}

// WithProgress sets a func receiving fraction-of-entries progress during
// decode and type detection. Advisory only.
func WithProgress(fn ProgressFunc) OpenOption {
	return func(c *openConfig) {
		c.progress = fn
	}
}

// WithTypeFunc sets the external entry-type classifier run once over every
// entry after decode. The returned tag is stored on the entry opaquely.
func WithTypeFunc(fn TypeFunc) OpenOption {
	return func(c *openConfig) {
		c.typeFunc = fn
	}
}

// WithLoadData keeps entry payloads resident after the post-open pass
// instead of unloading them back to the source.
func WithLoadData(keep bool) OpenOption {
	return func(c *openConfig) {
		c.loadData = keep
	}
}

// WithReadOnly opens the archive read-only; structural edits fail with
// ErrReadOnly.
func WithReadOnly(readOnly bool) OpenOption {
	return func(c *openConfig) {
		c.readOnly = readOnly
	}
}

// WithCache sets a payload cache used when entries are unloaded, so lazy
// re-reads can avoid the original source.
func WithCache(c cache.Cache) OpenOption {
	return func(cfg *openConfig) {
		cfg.cache = c
	}
}

// WithNotify sets the change-notification receiver. The one-shot opened
// event and later structural-change events are delivered through it.
func WithNotify(fn EventFunc) OpenOption {
	return func(c *openConfig) {
		c.notify = fn
	}
}
