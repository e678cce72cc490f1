// Package lfd implements the Star Wars: Dark Forces LFD resource map.
//
// An LFD file is a 16-byte leading record (type "RMAP", name "resource",
// length = recordCount*16), a directory of 16-byte records, and then one
// payload block per record, each preceded by a copy of its record. Records
// carry no offset field; payload positions are reconstructed by walking the
// payload region and summing prior lengths. The format round-trips: Encode
// reproduces the exact on-disk layout.
package lfd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/resarc/resarc/internal/arctype"
	"github.com/resarc/resarc/internal/binio"
)

// On-disk layout constants. All multi-byte fields are little-endian.
const (
	recordSize = 16
	typeLen    = 4
	nameLen    = 8

	leadType = "RMAP"
	leadName = "resource"
)

var magic = []byte(leadType)

// Codec implements the LFD resource map format.
type Codec struct{}

// New creates the LFD codec.
func New() *Codec {
	return &Codec{}
}

// Name identifies the format.
func (c *Codec) Name() string {
	return "lfd"
}

// Matches reports whether src carries the RMAP signature. The magic is a
// strong commitment: a source that matches here but fails directory
// validation is treated as a corrupt LFD file, not probed further.
func (c *Codec) Matches(src arctype.ByteSource) bool {
	if src.Size() < recordSize {
		return false
	}
	head := make([]byte, typeLen)
	if _, err := src.ReadAt(head, 0); err != nil {
		return false
	}
	return bytes.Equal(head, magic)
}

// Decode walks the payload region into a tree of unloaded entries.
// The walked record set is authoritative; a directory count that disagrees
// with it is logged as a warning, the sole recoverable violation.
func (c *Codec) Decode(src arctype.ByteSource, opts *arctype.DecodeOptions) (*arctype.Tree, error) {
	size := src.Size()
	if size < recordSize {
		return nil, c.fail(0, arctype.ErrInvalidSignature, "source size %d smaller than %d-byte leading record", size, recordSize)
	}
	if !c.Matches(src) {
		return nil, c.fail(0, arctype.ErrInvalidSignature, "missing %s magic", leadType)
	}

	r := binio.NewReader(src, binary.LittleEndian)
	if _, err := r.Seek(12, io.SeekStart); err != nil {
		return nil, c.wrap(12, err)
	}
	dirLen, err := r.Uint32()
	if err != nil {
		return nil, c.wrap(12, err)
	}
	if dirLen%recordSize != 0 {
		return nil, c.fail(12, arctype.ErrStructural, "directory length %d is not a multiple of %d", dirLen, recordSize)
	}
	if int64(dirLen) > size {
		return nil, c.fail(12, arctype.ErrOutOfBounds, "directory length %d exceeds size %d", dirLen, size)
	}
	declared := int(dirLen / recordSize)

	tree := arctype.NewTree()
	offset := int64(dirLen) + recordSize
	if offset <= size {
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, c.wrap(offset, err)
		}
	}
	for offset < size {
		if offset+recordSize > size {
			return nil, c.fail(offset, arctype.ErrTruncatedRead, "record header needs %d bytes, %d remain", recordSize, size-offset)
		}
		typ, name, length, err := c.readRecord(r)
		if err != nil {
			return nil, err
		}

		// Payload follows the record immediately; running past the end of
		// the file means the container is corrupt, not partially valid.
		payloadOff := offset + recordSize
		if payloadOff+int64(length) > size {
			return nil, c.fail(offset, arctype.ErrOutOfBounds, "record %q: payload %d bytes at %d exceeds size %d", name, length, payloadOff, size)
		}

		entry := arctype.NewEntry(joinName(name, typ), length, uint64(payloadOff))
		tree.Add(entry)
		opts.Report(arctype.ProgressEvent{
			Stage:        arctype.StageReadingDirectory,
			Name:         entry.Name,
			EntriesDone:  tree.Len(),
			EntriesTotal: declared,
		})

		offset = payloadOff + int64(length)
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, c.wrap(offset, err)
		}
	}

	if declared != tree.Len() {
		opts.Log().Warn("lfd: directory count disagrees with walked records",
			"declared", declared, "walked", tree.Len())
	}

	return tree, nil
}

// Encode serializes the tree back into the LFD layout. Every entry's
// payload must be loaded; the archive layer loads them before encoding.
// Each entry's source offset is rewritten to its new payload position and
// its state reset, so subsequent lazy reads stay correct.
func (c *Codec) Encode(tree *arctype.Tree) ([]byte, error) {
	total := (tree.Len() + 1) * recordSize
	for e := range tree.Entries() {
		if _, ok := e.Data(); !ok {
			return nil, fmt.Errorf("lfd: encode %q: %w", e.Name, arctype.ErrNotLoaded)
		}
		total += int(e.Size)
	}

	w := binio.NewWriter(binary.LittleEndian)
	w.Grow(total)

	// Leading record describing the directory itself.
	w.PutPadded(leadType, typeLen)
	w.PutPadded(leadName, nameLen)
	w.PutUint32(uint32(tree.Len() * recordSize))

	for e := range tree.Entries() {
		c.putRecord(w, e)
	}

	for e := range tree.Entries() {
		c.putRecord(w, e)
		data, _ := e.Data()
		e.SourceOffset = uint64(w.Len())
		w.PutBytes(data)
		e.ResetState()
	}

	return w.Bytes(), nil
}

// readRecord reads one 16-byte directory record at the cursor.
func (c *Codec) readRecord(r *binio.Reader) (typ, name string, length uint32, err error) {
	start := r.Offset()
	rawType, err := r.Read(typeLen)
	if err != nil {
		return "", "", 0, c.wrap(start, err)
	}
	rawName, err := r.Read(nameLen)
	if err != nil {
		return "", "", 0, c.wrap(start, err)
	}
	length, err = r.Uint32()
	if err != nil {
		return "", "", 0, c.wrap(start, err)
	}
	return trimField(rawType), trimField(rawName), length, nil
}

// putRecord writes one 16-byte record for an entry, splitting its name into
// the fixed name and type fields.
func (c *Codec) putRecord(w *binio.Writer, e *arctype.Entry) {
	base, ext := splitName(e.Name)
	w.PutPadded(ext, typeLen)
	w.PutPadded(base, nameLen)
	w.PutUint32(e.Size)
}

// trimField cuts a fixed-width field at the first NUL.
func trimField(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}

// joinName builds an entry name from the record's name and type fields.
func joinName(name, typ string) string {
	if typ == "" {
		return name
	}
	return name + "." + typ
}

// splitName splits an entry name into base and extension.
func splitName(name string) (base, ext string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func (c *Codec) fail(off int64, sentinel error, format string, args ...any) error {
	return &arctype.FormatError{
		Format: c.Name(),
		Offset: off,
		Err:    sentinel,
		Detail: fmt.Sprintf(format, args...),
	}
}

func (c *Codec) wrap(off int64, err error) error {
	return &arctype.FormatError{Format: c.Name(), Offset: off, Err: err}
}
