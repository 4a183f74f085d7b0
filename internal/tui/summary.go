package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"negcheck/internal/suite"
)

var summaryHeader = [3]string{"suite", "cases", "failed"}

// RenderSummary draws a per-suite table of case and failure counts.
func RenderSummary(summary suite.Summary) string {
	rows := [][3]string{summaryHeader}
	for _, res := range summary.Suites {
		rows = append(rows, [3]string{res.Suite, fmt.Sprintf("%d", res.Cases), fmt.Sprintf("%d", res.Failed)})
	}

	var widths [3]int
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	hline := strings.Repeat("-", widths[0]+widths[1]+widths[2]+6)
	lines := []string{hline}
	for r, row := range rows {
		style := valueStyle
		switch {
		case r == 0:
			style = headerStyle
		case summary.Suites[r-1].Failed > 0:
			style = failedRowStyle
		}
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = style.Render(padRight(cell, widths[i]))
		}
		lines = append(lines, strings.Join(cells, " | "))
		if r == 0 {
			lines = append(lines, hline)
		}
	}
	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	headerStyle    = lipgloss.NewStyle().Foreground(ColorDim)
	valueStyle     = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	failedRowStyle = lipgloss.NewStyle().Foreground(ColorFailure).Bold(true)
)
