// Package binio layers sequential typed reads and typed writes over raw
// byte sources. Byte order is an explicit parameter on every reader and
// writer; each format documents its own record endianness and constructs
// its reader accordingly.
package binio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/resarc/resarc/internal/arctype"
)

// Source is the random-access surface a Reader needs.
type Source interface {
	io.ReaderAt
	Size() int64
}

// Reader reads typed values sequentially from a Source through a cursor.
//
// The cursor always stays within [0, Size]. A read that would pass the end
// of the source fails with ErrTruncatedRead without moving the cursor and
// without returning a partial value.
type Reader struct {
	src   Source
	order binary.ByteOrder
	off   int64
}

// NewReader creates a Reader over src using the given record byte order.
func NewReader(src Source, order binary.ByteOrder) *Reader {
	return &Reader{src: src, order: order}
}

// Size returns the total size of the underlying source.
func (r *Reader) Size() int64 {
	return r.src.Size()
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int64 {
	return r.off
}

// Seek moves the cursor. Whence is io.SeekStart, io.SeekCurrent, or
// io.SeekEnd. Positions outside [0, Size] fail with ErrOutOfBounds and
// leave the cursor unchanged.
func (r *Reader) Seek(off int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = off
	case io.SeekCurrent:
		abs = r.off + off
	case io.SeekEnd:
		abs = r.src.Size() + off
	default:
		return r.off, fmt.Errorf("binio: invalid seek whence %d", whence)
	}
	if abs < 0 || abs > r.src.Size() {
		return r.off, fmt.Errorf("binio: seek to %d: %w", abs, arctype.ErrOutOfBounds)
	}
	r.off = abs
	return abs, nil
}

// Read returns the next n bytes and advances the cursor. If fewer than n
// bytes remain the read fails with ErrTruncatedRead and the cursor does
// not move.
func (r *Reader) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("binio: negative read length %d", n)
	}
	if r.off+int64(n) > r.src.Size() {
		return nil, fmt.Errorf("binio: read %d bytes at offset %d: %w", n, r.off, arctype.ErrTruncatedRead)
	}
	buf := make([]byte, n)
	if _, err := r.src.ReadAt(buf, r.off); err != nil && err != io.EOF {
		return nil, fmt.Errorf("binio: read at offset %d: %w", r.off, err)
	}
	r.off += int64(n)
	return buf, nil
}

// Uint32 reads a 4-byte integer in the reader's byte order.
func (r *Reader) Uint32() (uint32, error) {
	buf, err := r.Read(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// Uint16 reads a 2-byte integer in the reader's byte order.
func (r *Reader) Uint16() (uint16, error) {
	buf, err := r.Read(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ExportRange returns a copy of the bytes in [off, off+n) without moving
// the cursor. Ranges past the end of the source fail with ErrOutOfBounds.
func (r *Reader) ExportRange(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n < off || off+n > r.src.Size() {
		return nil, fmt.Errorf("binio: export [%d, %d): %w", off, off+n, arctype.ErrOutOfBounds)
	}
	buf := make([]byte, n)
	if _, err := r.src.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, fmt.Errorf("binio: export at offset %d: %w", off, err)
	}
	return buf, nil
}
