package lfd_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resarc/resarc"
	"github.com/resarc/resarc/lfd"
)

// lump describes one resource for buildLFD.
type lump struct {
	typ  string
	name string
	data []byte
}

func record(buf *bytes.Buffer, typ, name string, length uint32) {
	field := make([]byte, 4)
	copy(field, typ)
	buf.Write(field)
	field = make([]byte, 8)
	copy(field, name)
	buf.Write(field)
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], length)
	buf.Write(word[:])
}

// buildLFD assembles an LFD image: leading RMAP record, directory, then
// each payload preceded by a copy of its record.
func buildLFD(tb testing.TB, lumps []lump) []byte {
	tb.Helper()
	buf := &bytes.Buffer{}
	record(buf, "RMAP", "resource", uint32(len(lumps)*16))
	for _, l := range lumps {
		record(buf, l.typ, l.name, uint32(len(l.data)))
	}
	for _, l := range lumps {
		record(buf, l.typ, l.name, uint32(len(l.data)))
		buf.Write(l.data)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := buildLFD(t, []lump{
		{typ: "DELT", name: "BRIEFING", data: []byte("picture bytes")},
		{typ: "VOIC", name: "INTRO", data: bytes.Repeat([]byte{7}, 64)},
	})
	tree, err := lfd.New().Decode(resarc.NewMemSource(data), nil)
	require.NoError(t, err)
	require.Equal(t, 2, tree.Len())

	first := tree.At(0)
	assert.Equal(t, "BRIEFING.DELT", first.Name)
	assert.Equal(t, uint32(13), first.Size)
	// Leading record + 2-record directory + first payload record header.
	assert.Equal(t, uint64(16+32+16), first.SourceOffset)
	assert.False(t, first.Loaded())

	second := tree.At(1)
	assert.Equal(t, "INTRO.VOIC", second.Name)
	assert.Equal(t, uint64(16+32+16+13+16), second.SourceOffset)
}

func TestDecodeEmptyArchive(t *testing.T) {
	// Only the leading record: directory length 16 declares one resource,
	// but the file ends at byte 16. The walked (empty) set is
	// authoritative; the count mismatch is only a warning.
	buf := &bytes.Buffer{}
	record(buf, "RMAP", "resource", 16)
	require.Equal(t, 16, buf.Len())

	var logged bytes.Buffer
	opts := &resarc.DecodeOptions{Logger: slog.New(slog.NewTextHandler(&logged, nil))}
	tree, err := lfd.New().Decode(resarc.NewMemSource(buf.Bytes()), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Len())
	assert.Contains(t, logged.String(), "directory count")
}

func TestDecodeRejectsShortSource(t *testing.T) {
	_, err := lfd.New().Decode(resarc.NewMemSource([]byte("RMAP")), nil)
	assert.ErrorIs(t, err, resarc.ErrInvalidSignature)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := buildLFD(t, nil)
	copy(data, "PMAR")
	_, err := lfd.New().Decode(resarc.NewMemSource(data), nil)
	assert.ErrorIs(t, err, resarc.ErrInvalidSignature)
}

func TestDecodeRejectsBadDirectoryLength(t *testing.T) {
	data := buildLFD(t, []lump{{typ: "DELT", name: "A", data: []byte{1}}})
	binary.LittleEndian.PutUint32(data[12:], 17)
	_, err := lfd.New().Decode(resarc.NewMemSource(data), nil)
	assert.ErrorIs(t, err, resarc.ErrStructural)
}

func TestDecodeRejectsDirectoryPastEnd(t *testing.T) {
	data := buildLFD(t, nil)
	binary.LittleEndian.PutUint32(data[12:], 4096)
	_, err := lfd.New().Decode(resarc.NewMemSource(data), nil)
	assert.ErrorIs(t, err, resarc.ErrOutOfBounds)
}

func TestDecodeRejectsPayloadPastEnd(t *testing.T) {
	data := buildLFD(t, []lump{
		{typ: "DELT", name: "OK", data: []byte{1, 2, 3}},
		{typ: "VOIC", name: "BAD", data: []byte{4, 5, 6}},
	})
	// Inflate the last payload record's declared length past end of file.
	// The record copy sits 16+3 bytes before the end; its length field is
	// the final 4 bytes of the record.
	lengthOff := len(data) - 3 - 4
	binary.LittleEndian.PutUint32(data[lengthOff:], 4096)

	tree, err := lfd.New().Decode(resarc.NewMemSource(data), nil)
	assert.ErrorIs(t, err, resarc.ErrOutOfBounds)
	assert.Nil(t, tree, "no entries from a partially valid directory")
}

func TestDecodeRejectsTruncatedRecord(t *testing.T) {
	data := buildLFD(t, []lump{{typ: "DELT", name: "A", data: []byte{1}}})
	// Chop the file mid-record.
	data = data[:len(data)-10]
	_, err := lfd.New().Decode(resarc.NewMemSource(data), nil)
	assert.ErrorIs(t, err, resarc.ErrTruncatedRead)
}

func TestMatches(t *testing.T) {
	codec := lfd.New()
	assert.True(t, codec.Matches(resarc.NewMemSource(buildLFD(t, nil))))
	assert.False(t, codec.Matches(resarc.NewMemSource([]byte("RMA"))))
	assert.False(t, codec.Matches(resarc.NewMemSource(make([]byte, 32))))

	// A matching magic with a corrupt directory still matches: the
	// signature is the commitment, decode reports the corruption.
	corrupt := buildLFD(t, nil)
	binary.LittleEndian.PutUint32(corrupt[12:], 17)
	assert.True(t, codec.Matches(resarc.NewMemSource(corrupt)))
}

func TestEncodeRequiresLoadedPayloads(t *testing.T) {
	data := buildLFD(t, []lump{{typ: "DELT", name: "A", data: []byte{1}}})
	tree, err := lfd.New().Decode(resarc.NewMemSource(data), nil)
	require.NoError(t, err)

	_, err = lfd.New().Encode(tree)
	assert.ErrorIs(t, err, resarc.ErrNotLoaded)
}

func TestRoundTrip(t *testing.T) {
	original := buildLFD(t, []lump{
		{typ: "DELT", name: "BRIEFING", data: []byte("picture bytes")},
		{typ: "VOIC", name: "INTRO", data: bytes.Repeat([]byte{7}, 64)},
		{typ: "GMID", name: "THEME", data: []byte{}},
	})
	arc, err := resarc.Open(resarc.NewMemSource(original), resarc.WithLoadData(true))
	require.NoError(t, err)

	encoded, err := arc.Write()
	require.NoError(t, err)
	assert.Equal(t, original, encoded, "encode reproduces the on-disk layout bit-exactly")

	// decode(encode(decode(x))) matches decode(x).
	again, err := lfd.New().Decode(resarc.NewMemSource(encoded), nil)
	require.NoError(t, err)
	require.Equal(t, arc.Len(), again.Len())
	for i := 0; i < again.Len(); i++ {
		assert.Equal(t, arc.At(i).Name, again.At(i).Name)
		assert.Equal(t, arc.At(i).Size, again.At(i).Size)
	}
}

func TestEncodeRewritesOffsets(t *testing.T) {
	data := buildLFD(t, []lump{
		{typ: "DELT", name: "A", data: []byte{1, 2}},
		{typ: "VOIC", name: "B", data: []byte{3}},
	})
	arc, err := resarc.Open(resarc.NewMemSource(data), resarc.WithLoadData(true))
	require.NoError(t, err)

	// Drop the first entry; on encode the second moves forward.
	_, err = arc.Remove("A.DELT")
	require.NoError(t, err)

	encoded, err := arc.Write()
	require.NoError(t, err)

	b, ok := arc.Lookup("B.VOIC")
	require.True(t, ok)
	// Leading record + 1-record directory + payload record header.
	assert.Equal(t, uint64(16+16+16), b.SourceOffset)
	assert.Equal(t, resarc.StateUnmodified, b.State())
	assert.False(t, arc.Modified(), "successful write clears the modified flag")

	// The rewritten offset is valid against the new image.
	payload := encoded[b.SourceOffset : b.SourceOffset+uint64(b.Size)]
	assert.Equal(t, []byte{3}, payload)
}

func TestOpenAllConcurrent(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 3)
	for i := range paths {
		data := buildLFD(t, []lump{{typ: "DELT", name: "A", data: []byte{byte(i)}}})
		paths[i] = filepath.Join(dir, fmt.Sprintf("disc%d.lfd", i))
		require.NoError(t, os.WriteFile(paths[i], data, 0o644))
	}

	archives, err := resarc.DefaultRegistry().OpenAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, archives, 3)
	for i, arc := range archives {
		e := arc.At(0)
		payload, err := arc.Read(e)
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(i)}, payload)
		require.NoError(t, arc.Close())
	}
}
