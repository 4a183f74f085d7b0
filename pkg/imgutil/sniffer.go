package imgutil

import (
	"errors"
	"io"
	"os"
)

// Kind identifies an image container by its leading bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindBMP
	KindPNG
	KindJPEG
	KindTIFF
)

func (k Kind) String() string {
	switch k {
	case KindBMP:
		return "bmp"
	case KindPNG:
		return "png"
	case KindJPEG:
		return "jpeg"
	case KindTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// sniffLen is the longest signature we match against.
const sniffLen = 8

var (
	bmpSig    = []byte{0x42, 0x4d}
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

// ErrEmpty is returned when there are no bytes to inspect.
var ErrEmpty = errors.New("empty input")

// DetectHeader matches header against known signatures. Headers shorter than
// a signature simply do not match it.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) == 0 {
		return KindUnknown, ErrEmpty
	}

	switch {
	case hasPrefix(header, pngSig):
		return KindPNG, nil
	case hasPrefix(header, jpegSig):
		return KindJPEG, nil
	case hasPrefix(header, tiffSigLE), hasPrefix(header, tiffSigBE):
		return KindTIFF, nil
	case hasPrefix(header, bmpSig):
		return KindBMP, nil
	}

	return KindUnknown, nil
}

// SniffFile reads the leading bytes of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to 8 bytes from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
