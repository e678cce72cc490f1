package resarc

import (
	"fmt"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/resarc/resarc/internal/arctype"
)

// ByteSource provides random access to container bytes.
//
// Implementations exist for in-memory buffers (MemSource) and local files
// (FileSource). SourceID must return a stable identifier for the underlying
// content; it keys lazy-load deduplication.
type ByteSource = arctype.ByteSource

// MemSource is an in-memory ByteSource that owns its bytes.
type MemSource struct {
	data []byte

	idOnce sync.Once
	id     string
}

// NewMemSource creates a MemSource over data. The source takes ownership;
// callers must not mutate data afterwards.
func NewMemSource(data []byte) *MemSource {
	return &MemSource{data: data}
}

// ReadAt implements io.ReaderAt.
func (m *MemSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("resarc: read at negative offset %d", off)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the buffer.
func (m *MemSource) Size() int64 {
	return int64(len(m.data))
}

// SourceID returns the sha256 digest of the bytes, computed on first use.
func (m *MemSource) SourceID() string {
	m.idOnce.Do(func() {
		m.id = digest.FromBytes(m.data).String()
	})
	return m.id
}

// Interface compliance.
var _ ByteSource = (*MemSource)(nil)
