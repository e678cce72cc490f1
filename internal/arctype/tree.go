package arctype

import (
	"iter"
	"strings"
)

// Tree is an ordered sequence of entries. Insertion order is significant:
// it is the on-disk order for formats that preserve layout on save.
//
// Neither supported format nests entries on disk; hierarchical access is
// synthesized from '/'-separated names, the same way fs directories are
// synthesized from archive paths elsewhere.
type Tree struct {
	entries []*Entry
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Len returns the number of entries.
func (t *Tree) Len() int {
	return len(t.entries)
}

// At returns the entry at position i, or nil if i is out of range.
func (t *Tree) At(i int) *Entry {
	if i < 0 || i >= len(t.entries) {
		return nil
	}
	return t.entries[i]
}

// Add appends an entry.
func (t *Tree) Add(e *Entry) {
	t.entries = append(t.entries, e)
}

// Insert places an entry at position i, shifting later entries.
// Positions outside [0, Len] are clamped.
func (t *Tree) Insert(i int, e *Entry) {
	if i < 0 {
		i = 0
	}
	if i > len(t.entries) {
		i = len(t.entries)
	}
	t.entries = append(t.entries, nil)
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = e
}

// Lookup returns the first entry with the given name in insertion order.
// Duplicate names are legal; positional access is authoritative for
// on-disk order.
func (t *Tree) Lookup(name string) (*Entry, bool) {
	for _, e := range t.entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Index returns the position of the given entry, or -1 if it is not in the tree.
func (t *Tree) Index(e *Entry) int {
	for i, have := range t.entries {
		if have == e {
			return i
		}
	}
	return -1
}

// Remove removes the first entry with the given name and returns it.
func (t *Tree) Remove(name string) (*Entry, bool) {
	for i, e := range t.entries {
		if e.Name == name {
			return t.RemoveAt(i), true
		}
	}
	return nil, false
}

// RemoveAt removes and returns the entry at position i, or nil if i is out
// of range.
func (t *Tree) RemoveAt(i int) *Entry {
	if i < 0 || i >= len(t.entries) {
		return nil
	}
	e := t.entries[i]
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return e
}

// Entries returns an iterator over all entries in insertion order.
func (t *Tree) Entries() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range t.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// EntriesWithPrefix returns an iterator over entries whose name starts with
// the given prefix, in insertion order.
func (t *Tree) EntriesWithPrefix(prefix string) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range t.entries {
			if strings.HasPrefix(e.Name, prefix) && !yield(e) {
				return
			}
		}
	}
}
