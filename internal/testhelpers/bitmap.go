package testhelpers

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Bitmap describes a small uncompressed BMP to write as a fixture.
type Bitmap struct {
	Width    int32
	Height   int32
	BitCount uint16
	Palette  []byte
	Pixels   []byte
}

// Bytes lays out the bitmap as a 54-byte header, optional palette and pixels.
func (b Bitmap) Bytes() []byte {
	offset := uint32(54 + len(b.Palette))
	var colors uint32
	if len(b.Palette) > 0 {
		colors = uint32(len(b.Palette) / 4)
	}

	var buf bytes.Buffer
	buf.Write([]byte("BM"))
	_ = binary.Write(&buf, binary.LittleEndian, offset+uint32(len(b.Pixels)))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	_ = binary.Write(&buf, binary.LittleEndian, offset)

	_ = binary.Write(&buf, binary.LittleEndian, uint32(40))
	_ = binary.Write(&buf, binary.LittleEndian, b.Width)
	_ = binary.Write(&buf, binary.LittleEndian, b.Height)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, b.BitCount)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(b.Pixels)))
	_ = binary.Write(&buf, binary.LittleEndian, int32(2835))
	_ = binary.Write(&buf, binary.LittleEndian, int32(2835))
	_ = binary.Write(&buf, binary.LittleEndian, colors)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0))

	buf.Write(b.Palette)
	buf.Write(b.Pixels)
	return buf.Bytes()
}

// WriteBitmap writes b to dir/name and returns the path.
func WriteBitmap(t testing.TB, dir, name string, b Bitmap) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write bitmap %s: %v", path, err)
	}
	return path
}

// Gray8 is a 2x2 8-bit image with a two-entry palette.
func Gray8() Bitmap {
	return Bitmap{
		Width:    2,
		Height:   2,
		BitCount: 8,
		Palette:  []byte{0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00},
		Pixels:   []byte{0, 1, 0, 0, 1, 0, 0, 0},
	}
}

// RGB24 is a 1x1 24-bit image.
func RGB24() Bitmap {
	return Bitmap{
		Width:    1,
		Height:   1,
		BitCount: 24,
		Pixels:   []byte{0x10, 0x20, 0x30, 0x00},
	}
}
