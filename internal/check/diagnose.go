package check

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"negcheck/internal/bmp"
	"negcheck/internal/logger"
	"negcheck/pkg/imgutil"
)

// Diagnosis holds whatever could be decoded from the converter's input and
// output after an image mismatch. Err is set when decoding stopped early;
// the images decoded before that point are kept.
type Diagnosis struct {
	Twice    bool
	Kinds    [2]imgutil.Kind
	First    *bmp.Image
	Second   *bmp.Image
	Original *bmp.Image
	Err      error
}

// Diagnose decodes input and output. For twice runs with paletted images the
// input is read again so its palette can be printed next to the output's.
func Diagnose(ctx context.Context, input, output string, twice bool) Diagnosis {
	d := Diagnosis{Twice: twice}
	d.Kinds[0], _ = imgutil.SniffFile(input)
	d.Kinds[1], _ = imgutil.SniffFile(output)

	if d.First, d.Err = bmp.Read(input); d.Err != nil {
		return d.logged(ctx)
	}
	if d.Second, d.Err = bmp.Read(output); d.Err != nil {
		return d.logged(ctx)
	}
	if twice && d.palettes() {
		d.Original, d.Err = bmp.Read(input)
	}
	return d.logged(ctx)
}

func (d Diagnosis) logged(ctx context.Context) Diagnosis {
	if d.Err != nil {
		logger.Warn(ctx, "diagnostic decode failed", zap.Error(d.Err))
	}
	return d
}

func (d Diagnosis) palettes() bool {
	return d.First.HasPalette() && d.Second.HasPalette()
}

// Lines formats the diagnosis for the failure report.
func (d Diagnosis) Lines() []string {
	var lines []string
	if d.First != nil && d.Second != nil {
		lines = append(lines,
			describe(1, d.Kinds[0], d.First),
			describe(2, d.Kinds[1], d.Second),
		)
		if d.palettes() {
			if !d.Twice {
				lines = append(lines, fmt.Sprintf("Image 1 Palette: % x", d.First.Palette))
			} else if d.Original != nil {
				lines = append(lines,
					fmt.Sprintf("Image 1 original Palette: % x", d.Original.Palette),
					fmt.Sprintf("Image 2 Palette: % x", d.Second.Palette),
				)
			}
		}
	}
	if d.Err != nil {
		lines = append(lines, fmt.Sprintf("Error reading images: %v", d.Err))
	}
	return lines
}

// Release drops every decoded buffer.
func (d Diagnosis) Release() {
	d.First.Release()
	d.Second.Release()
	d.Original.Release()
}

func describe(n int, kind imgutil.Kind, img *bmp.Image) string {
	return fmt.Sprintf("Image %d (%s): Width=%d, Height=%d, BitCount=%d, biSizeImage=%d",
		n, kind, img.Info.Width, img.Info.Height, img.Info.BitCount, img.Info.SizeImage)
}
