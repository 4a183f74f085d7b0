// Package bmp decodes the fixed-layout header, palette and pixel payload of a
// BMP file for diagnostic printing. It validates nothing: truncated input
// yields zeroed fields and short slices rather than errors.
package bmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	headerSize     = fileHeaderSize + infoHeaderSize

	paletteEntrySize   = 4
	defaultPaletteSize = 256
)

// FileHeader mirrors BITMAPFILEHEADER.
type FileHeader struct {
	Type      uint16
	Size      uint32
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32
}

// InfoHeader mirrors BITMAPINFOHEADER.
type InfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// Image is a read-only view of a bitmap file.
type Image struct {
	Header  FileHeader
	Info    InfoHeader
	Palette []byte
	Data    []byte
}

// HasPalette reports whether the image is 8-bit and a non-empty palette was read.
func (img *Image) HasPalette() bool {
	return img != nil && img.Info.BitCount == 8 && len(img.Palette) > 0
}

// Release drops the palette and pixel buffers.
func (img *Image) Release() {
	if img == nil {
		return
	}
	img.Palette = nil
	img.Data = nil
}

// PaletteLen is the number of palette bytes the header asks for.
func (info InfoHeader) PaletteLen() int64 {
	if info.BitCount != 8 {
		return 0
	}
	colors := int64(info.ColorsUsed)
	if colors == 0 {
		colors = defaultPaletteSize
	}
	return colors * paletteEntrySize
}

// Read opens path and decodes it with Decode.
func Read(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Decode reads the headers sequentially from r, then the palette for 8-bit
// images, then seeks to OffBits and reads the rest of the stream as pixels.
func Decode(r io.ReadSeeker) (*Image, error) {
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(r, raw); err != nil && !isShortRead(err) {
		return nil, fmt.Errorf("read header: %w", err)
	}

	img := &Image{}
	hr := bytes.NewReader(raw)
	if err := binary.Read(hr, binary.LittleEndian, &img.Header); err != nil {
		return nil, fmt.Errorf("parse file header: %w", err)
	}
	if err := binary.Read(hr, binary.LittleEndian, &img.Info); err != nil {
		return nil, fmt.Errorf("parse info header: %w", err)
	}

	if n := img.Info.PaletteLen(); n > 0 {
		palette, err := io.ReadAll(io.LimitReader(r, n))
		if err != nil {
			return nil, fmt.Errorf("read palette: %w", err)
		}
		img.Palette = palette
	}

	if _, err := r.Seek(int64(img.Header.OffBits), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to pixel data: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pixel data: %w", err)
	}
	img.Data = data

	return img, nil
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
