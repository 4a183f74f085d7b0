package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"negcheck/internal/suite"
)

var suiteOrder = [...]string{suite.NameOK, suite.NameNotOK, suite.NameTwice}

type suiteProgress struct {
	total  int
	done   int
	failed int
}

// Model is a progress view over the three suites.
type Model struct {
	updates  <-chan suite.ProgressUpdate
	started  time.Time
	width    int
	suites   [len(suiteOrder)]suiteProgress
	quitting bool
}

type doneMsg struct{}

type updateMsg suite.ProgressUpdate

func NewModel(updates <-chan suite.ProgressUpdate) Model {
	return Model{updates: updates, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		if i := suiteIndex(msg.Suite); i >= 0 {
			m.suites[i].total += msg.TotalDelta
			m.suites[i].done += msg.DoneDelta
			m.suites[i].failed += msg.FailedDelta
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	lines := []string{titleStyle.Render("negcheck")}
	var total, done int
	for i, name := range suiteOrder {
		p := m.suites[i]
		total += p.total
		done += p.done
		line := labelStyle.Render(fmt.Sprintf("%-7s %d/%d", name, p.done, p.total))
		if p.failed > 0 {
			line += failStyle.Render(fmt.Sprintf("  failed:%d", p.failed))
		}
		lines = append(lines, line)
	}

	ratio := 0.0
	if total > 0 {
		ratio = math.Min(1, float64(done)/float64(total))
	}
	elapsed := time.Since(m.started).Round(time.Millisecond)
	lines = append(lines,
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(renderBar(barWidth, ratio)),
	)

	return strings.Join(lines, "\n")
}

func suiteIndex(name string) int {
	for i, n := range suiteOrder {
		if n == name {
			return i
		}
	}
	return -1
}

func listenForUpdates(updates <-chan suite.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	failStyle  = lipgloss.NewStyle().Foreground(ColorFailure)
)
