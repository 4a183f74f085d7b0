package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"negcheck/internal/bmp"
	"negcheck/internal/tui"
	"negcheck/pkg/imgutil"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.bmp>...",
	Short: "Print the header, palette and payload sizes of BMP files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		unreadable := 0
		for i, path := range args {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := inspectFile(out, path); err != nil {
				fmt.Fprintf(out, "  %s %s\n", inspectBulletStyle.Render("-"), inspectErrStyle.Render(err.Error()))
				unreadable++
			}
		}
		if unreadable > 0 {
			return fmt.Errorf("%d of %d files could not be read", unreadable, len(args))
		}
		return nil
	},
}

func inspectFile(out io.Writer, path string) error {
	fmt.Fprintf(out, "%s\n", inspectFileStyle.Render(path))

	kind, err := imgutil.SniffFile(path)
	if err != nil {
		return err
	}
	if kind != imgutil.KindBMP {
		field(out, "kind", fmt.Sprintf("%s (not a bitmap)", kind))
		return nil
	}

	img, err := bmp.Read(path)
	if err != nil {
		return err
	}
	defer img.Release()

	field(out, "kind", kind.String())
	field(out, "file size", fmt.Sprintf("%d", img.Header.Size))
	field(out, "data offset", fmt.Sprintf("%d", img.Header.OffBits))
	field(out, "dimensions", fmt.Sprintf("%dx%d", img.Info.Width, img.Info.Height))
	field(out, "planes", fmt.Sprintf("%d", img.Info.Planes))
	field(out, "bit count", fmt.Sprintf("%d", img.Info.BitCount))
	field(out, "compression", fmt.Sprintf("%d", img.Info.Compression))
	field(out, "image size", fmt.Sprintf("%d", img.Info.SizeImage))
	field(out, "resolution", fmt.Sprintf("%dx%d ppm", img.Info.XPelsPerMeter, img.Info.YPelsPerMeter))
	field(out, "colors", fmt.Sprintf("%d used, %d important", img.Info.ColorsUsed, img.Info.ColorsImportant))
	if img.Info.BitCount == 8 {
		field(out, "palette", fmt.Sprintf("%d bytes", len(img.Palette)))
	}
	field(out, "pixel data", fmt.Sprintf("%d bytes", len(img.Data)))
	return nil
}

func field(out io.Writer, name, value string) {
	fmt.Fprintf(out, "  %s %s %s\n",
		inspectBulletStyle.Render("-"),
		inspectFieldStyle.Render(name+":"),
		inspectValueStyle.Render(value),
	)
}

var (
	inspectFileStyle   = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectFieldStyle  = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	inspectValueStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
	inspectBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
	inspectErrStyle    = lipgloss.NewStyle().Foreground(tui.ColorFailure)
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}
