package binio

import (
	"bytes"
	"encoding/binary"
)

// Writer builds an on-disk byte image through typed appends.
type Writer struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

// NewWriter creates a Writer using the given record byte order.
func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{order: order}
}

// Grow reserves capacity for n more bytes.
func (w *Writer) Grow(n int) {
	w.buf.Grow(n)
}

// PutUint32 appends a 4-byte integer in the writer's byte order.
func (w *Writer) PutUint32(v uint32) {
	var tmp [4]byte
	w.order.PutUint32(tmp[:], v)
	w.buf.Write(tmp[:])
}

// PutBytes appends raw bytes.
func (w *Writer) PutBytes(b []byte) {
	w.buf.Write(b)
}

// PutPadded appends s as a fixed-width field, truncated or zero-padded to
// exactly width bytes.
func (w *Writer) PutPadded(s string, width int) {
	field := make([]byte, width)
	copy(field, s)
	w.buf.Write(field)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns the accumulated image.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}
