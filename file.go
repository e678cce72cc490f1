package resarc

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSource wraps *os.File to implement ByteSource.
// os.File has ReadAt but not Size, so the size is cached at construction.
// Close must be called to release the file handle; closing the owning
// Archive does this.
type FileSource struct {
	file     *os.File
	size     int64
	sourceID string
}

// OpenSource opens the file at path as a FileSource.
func OpenSource(path string) (*FileSource, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	src, err := NewFileSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

// NewFileSource creates a FileSource from an open file.
// The source takes ownership of the handle.
func NewFileSource(f *os.File) (*FileSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	return &FileSource{
		file:     f,
		size:     info.Size(),
		sourceID: fileSourceID(f.Name(), info),
	}, nil
}

// ReadAt implements io.ReaderAt.
func (fs *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return fs.file.ReadAt(p, off)
}

// Size returns the total size of the file.
func (fs *FileSource) Size() int64 {
	return fs.size
}

// SourceID returns a stable identifier for the file content.
func (fs *FileSource) SourceID() string {
	return fs.sourceID
}

// Close releases the file handle.
func (fs *FileSource) Close() error {
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}

// Name returns the path the source was opened from.
func (fs *FileSource) Name() string {
	if fs.file == nil {
		return ""
	}
	return fs.file.Name()
}

func fileSourceID(path string, info os.FileInfo) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	return fmt.Sprintf("file:%s:%d:%d", absPath, info.Size(), info.ModTime().UnixNano())
}

// Interface compliance.
var _ ByteSource = (*FileSource)(nil)
