// Package bsp decodes the texture collection from Quake 1 BSP files.
//
// Only the miptex directory is interesting: Quake 1 is the only game of the
// series to hold texture definitions inside the BSP itself, so the other 14
// header slots are validated for bounds but otherwise ignored. The format is
// read-only; reconstructing a miptex directory from an edited tree is not
// supported.
package bsp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/resarc/resarc/internal/arctype"
	"github.com/resarc/resarc/internal/binio"
	"github.com/resarc/resarc/internal/sizing"
)

// On-disk layout constants. All multi-byte fields are little-endian.
const (
	versionQTest = 0x17
	versionQuake = 0x1d // Quake, Hexen II

	headerSize    = 64 // version word + 15 slot pairs
	slotCount     = 15
	texSlot       = 2 // the miptex directory slot
	subHeaderSize = 40
	nameLen       = 16

	// sentinelOffset marks a directory slot that is intentionally unused,
	// as opposed to a valid zero offset.
	sentinelOffset = 0xffffffff
)

// Codec implements the Quake BSP miptex format.
type Codec struct{}

// New creates the BSP codec.
func New() *Codec {
	return &Codec{}
}

// Name identifies the format.
func (c *Codec) Name() string {
	return "bsp"
}

// Matches reports whether src validates as a BSP texture container.
// The full directory is checked, but no tree is allocated.
func (c *Codec) Matches(src arctype.ByteSource) bool {
	return c.parse(src, nil, nil) == nil
}

// Decode parses the miptex directory into a tree of unloaded texture
// entries. Any bounds or structural violation rejects the whole source.
func (c *Codec) Decode(src arctype.ByteSource, opts *arctype.DecodeOptions) (*arctype.Tree, error) {
	tree := arctype.NewTree()
	if err := c.parse(src, tree, opts); err != nil {
		return nil, err
	}
	return tree, nil
}

// Encode is not supported: the miptex directory construction rules are not
// recoverable from the decode path, so a silently wrong file is never
// produced.
func (c *Codec) Encode(*arctype.Tree) ([]byte, error) {
	return nil, fmt.Errorf("bsp: encode: %w", arctype.ErrUnsupported)
}

// parse validates src and, when tree is non-nil, appends one entry per
// texture. With a nil tree it is the validation-only probe used by Matches.
func (c *Codec) parse(src arctype.ByteSource, tree *arctype.Tree, opts *arctype.DecodeOptions) error {
	size := src.Size()
	if size < headerSize {
		return c.fail(0, arctype.ErrInvalidSignature, "source size %d smaller than %d-byte header", size, headerSize)
	}

	r := binio.NewReader(src, binary.LittleEndian)
	version, err := r.Uint32()
	if err != nil {
		return c.wrap(r.Offset(), err)
	}
	if version != versionQTest && version != versionQuake {
		return c.fail(0, arctype.ErrInvalidSignature, "unknown BSP version 0x%x", version)
	}

	// Every slot is validated even though only the miptex slot has content
	// we want; a bad slot means the container is not a BSP at all.
	var texBase, texLen uint32
	for slot := range slotCount {
		fieldOff := r.Offset()
		ofs, err := r.Uint32()
		if err != nil {
			return c.wrap(fieldOff, err)
		}
		sz, err := r.Uint32()
		if err != nil {
			return c.wrap(fieldOff, err)
		}
		if !sizing.Fits(uint64(ofs), uint64(sz), size) {
			return c.fail(fieldOff, arctype.ErrOutOfBounds, "slot %d: offset %d + length %d exceeds size %d", slot, ofs, sz, size)
		}
		if slot == texSlot {
			texBase, texLen = ofs, sz
		}
	}
	if texLen == 0 {
		return c.fail(4+texSlot*8, arctype.ErrStructural, "no texture content")
	}

	if _, err := r.Seek(int64(texBase), io.SeekStart); err != nil {
		return c.wrap(int64(texBase), err)
	}
	count, err := r.Uint32()
	if err != nil {
		return c.wrap(int64(texBase), err)
	}
	if count == 0 {
		return c.fail(int64(texBase), arctype.ErrStructural, "texture count 0")
	}

	// The directory is count offsets plus the count word itself.
	tableLen, ok := sizing.Mul(uint64(count)+1, 4)
	if !ok || !sizing.Fits(uint64(texBase), tableLen, size) {
		return c.fail(int64(texBase), arctype.ErrOutOfBounds, "offset table for %d textures exceeds size %d", count, size)
	}

	for i := range count {
		tableOff := r.Offset()
		off, err := r.Uint32()
		if err != nil {
			return c.wrap(tableOff, err)
		}

		// All-bits-set marks a deliberately absent slot.
		if off == sentinelOffset {
			continue
		}

		headerOff := uint64(texBase) + uint64(off)
		if !sizing.Fits(headerOff, subHeaderSize, size) {
			return c.fail(tableOff, arctype.ErrOutOfBounds, "texture %d: sub-header at %d exceeds size %d", i, headerOff, size)
		}

		cur := r.Offset()
		if _, err := r.Seek(int64(headerOff), io.SeekStart); err != nil {
			return c.wrap(tableOff, err)
		}
		name, width, height, mips, err := c.readSubHeader(r)
		if err != nil {
			return err
		}

		// Dimensions must be positive multiples of 8; this is a structural
		// format requirement, not a soft warning.
		if width == 0 || height == 0 || width%8 != 0 || height%8 != 0 {
			return c.fail(int64(headerOff), arctype.ErrStructural, "texture %q: dimensions %dx%d are not positive multiples of 8", name, width, height)
		}

		texSize, ok := sizing.Mul(uint64(width), uint64(height))
		if !ok {
			return c.fail(int64(headerOff), arctype.ErrOutOfBounds, "texture %q: %dx%d overflows", name, width, height)
		}

		// Four mip-style fractional levels, each relative to the sub-header.
		lumpSize := uint64(subHeaderSize)
		for level, block := range [4]uint64{texSize, texSize >> 2, texSize >> 4, texSize >> 6} {
			blockOff, ok := sizing.Add(headerOff, uint64(mips[level]))
			if !ok || !sizing.Fits(blockOff, block, size) {
				return c.fail(int64(headerOff), arctype.ErrOutOfBounds, "texture %q: mip level %d exceeds size %d", name, level, size)
			}
			lumpSize += block
		}
		if lumpSize > math.MaxUint32 {
			return c.fail(int64(headerOff), arctype.ErrOutOfBounds, "texture %q: lump size %d overflows", name, lumpSize)
		}

		if tree != nil {
			tree.Add(arctype.NewEntry(name, uint32(lumpSize), headerOff))
			opts.Report(arctype.ProgressEvent{
				Stage:        arctype.StageReadingDirectory,
				Name:         name,
				EntriesDone:  int(i) + 1,
				EntriesTotal: int(count),
			})
		}

		if _, err := r.Seek(cur, io.SeekStart); err != nil {
			return c.wrap(cur, err)
		}
	}

	return nil
}

// readSubHeader reads the fixed 40-byte texture sub-header at the cursor:
// name[16], width, height, and the four mip data offsets.
func (c *Codec) readSubHeader(r *binio.Reader) (name string, width, height uint32, mips [4]uint32, err error) {
	start := r.Offset()
	raw, err := r.Read(nameLen)
	if err != nil {
		return "", 0, 0, mips, c.wrap(start, err)
	}
	name = cleanName(raw)

	for _, dst := range []*uint32{&width, &height, &mips[0], &mips[1], &mips[2], &mips[3]} {
		v, err := r.Uint32()
		if err != nil {
			return "", 0, 0, mips, c.wrap(start, err)
		}
		*dst = v
	}
	return name, width, height, mips, nil
}

// cleanName truncates at the first NUL and clears any garbage bytes that
// follow the terminator.
func cleanName(raw []byte) string {
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

func (c *Codec) fail(off int64, sentinel error, format string, args ...any) error {
	return &arctype.FormatError{
		Format: c.Name(),
		Offset: off,
		Err:    sentinel,
		Detail: fmt.Sprintf(format, args...),
	}
}

// wrap converts a raw reader error into a FormatError, preserving the
// sentinel for errors.Is.
func (c *Codec) wrap(off int64, err error) error {
	return &arctype.FormatError{Format: c.Name(), Offset: off, Err: err}
}
