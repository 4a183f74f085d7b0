package imgutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Kind
	}{
		{"bmp", []byte("BM\x36\x04\x00\x00\x00\x00"), KindBMP},
		{"bmp two bytes", []byte("BM"), KindBMP},
		{"png", []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, KindPNG},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, KindJPEG},
		{"tiff le", []byte{0x49, 0x49, 0x2a, 0x00, 0, 0, 0, 0}, KindTIFF},
		{"tiff be", []byte{0x4d, 0x4d, 0x00, 0x2a, 0, 0, 0, 0}, KindTIFF},
		{"truncated png", []byte{0x89, 0x50}, KindUnknown},
		{"text", []byte("hello"), KindUnknown},
	}

	for _, tc := range cases {
		got, err := DetectHeader(tc.header)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDetectHeaderEmpty(t *testing.T) {
	if _, err := DetectHeader(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestSniffReaderShortInput(t *testing.T) {
	kind, err := SniffReader(bytes.NewReader([]byte("BM")))
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if kind != KindBMP {
		t.Fatalf("got %v, want bmp", kind)
	}
}

func TestSniffFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bmp")
	if err := os.WriteFile(path, []byte("BM\x00\x00\x00\x00\x00\x00\x00\x00"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	kind, err := SniffFile(path)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if kind.String() != "bmp" {
		t.Fatalf("got %v, want bmp", kind)
	}

	if _, err := SniffFile(filepath.Join(t.TempDir(), "missing.bmp")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
