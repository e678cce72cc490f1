package arctype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryLifecycle(t *testing.T) {
	e := NewEntry("WALL1", 128, 4096)
	assert.False(t, e.Loaded())
	assert.Equal(t, StateUnmodified, e.State())
	_, ok := e.Data()
	assert.False(t, ok)

	e.ImportData(make([]byte, 128))
	assert.True(t, e.Loaded())
	assert.Equal(t, StateUnmodified, e.State(), "lazy load must not mark modified")

	require.NoError(t, e.ReleaseData())
	assert.False(t, e.Loaded())
}

func TestEntryMutationSticks(t *testing.T) {
	e := NewEntry("WALL1", 128, 4096)
	e.SetData([]byte{1, 2, 3})

	assert.True(t, e.Loaded())
	assert.Equal(t, StateModified, e.State())
	assert.Equal(t, uint32(3), e.Size)

	err := e.ReleaseData()
	assert.ErrorIs(t, err, ErrEntryModified)
	assert.True(t, e.Loaded(), "modified entries must stay loaded")
}

func TestNewEntryData(t *testing.T) {
	e := NewEntryData("custom.pcx", []byte{9, 9})
	assert.Equal(t, StateNew, e.State())
	assert.True(t, e.Loaded())
	assert.Equal(t, uint32(2), e.Size)

	// New entries never unload either: there is no source to re-read from.
	assert.ErrorIs(t, e.ReleaseData(), ErrEntryModified)

	// SetData keeps the new state rather than downgrading it to modified.
	e.SetData([]byte{1})
	assert.Equal(t, StateNew, e.State())
}

func TestTreeOrderAndLookup(t *testing.T) {
	tr := NewTree()
	a := NewEntry("A", 1, 0)
	b := NewEntry("B", 2, 0)
	dup := NewEntry("A", 3, 0)
	tr.Add(a)
	tr.Add(b)
	tr.Add(dup)

	assert.Equal(t, 3, tr.Len())
	assert.Same(t, b, tr.At(1))
	assert.Nil(t, tr.At(3))

	got, ok := tr.Lookup("A")
	require.True(t, ok)
	assert.Same(t, a, got, "lookup returns the first match in insertion order")
	assert.Equal(t, 2, tr.Index(dup))

	names := []string{}
	for e := range tr.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"A", "B", "A"}, names)
}

func TestTreeEntriesWithPrefix(t *testing.T) {
	tr := NewTree()
	tr.Add(NewEntry("BRIEFING.DELT", 0, 0))
	tr.Add(NewEntry("INTRO.VOIC", 0, 0))
	tr.Add(NewEntry("BRIEFING.VOIC", 0, 0))

	names := []string{}
	for e := range tr.EntriesWithPrefix("BRIEFING.") {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"BRIEFING.DELT", "BRIEFING.VOIC"}, names)
}

func TestTreeInsertRemove(t *testing.T) {
	tr := NewTree()
	tr.Add(NewEntry("A", 0, 0))
	tr.Add(NewEntry("C", 0, 0))
	tr.Insert(1, NewEntry("B", 0, 0))
	tr.Insert(-5, NewEntry("first", 0, 0))
	tr.Insert(99, NewEntry("last", 0, 0))

	names := []string{}
	for e := range tr.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"first", "A", "B", "C", "last"}, names)

	removed, ok := tr.Remove("B")
	require.True(t, ok)
	assert.Equal(t, "B", removed.Name)
	_, ok = tr.Lookup("B")
	assert.False(t, ok)

	assert.Nil(t, tr.RemoveAt(99))
	assert.Equal(t, "first", tr.RemoveAt(0).Name)
}

func TestFormatError(t *testing.T) {
	err := &FormatError{Format: "lfd", Offset: 12, Err: ErrStructural, Detail: "directory length 17 is not a multiple of 16"}
	assert.ErrorIs(t, err, ErrStructural)
	assert.Contains(t, err.Error(), "offset 12")
	assert.Contains(t, err.Error(), "lfd")
}
