package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jsonator/internal/processor"
)

// Model is the progress view shown while a run is in flight. It quits when
// the updates channel is closed.
type Model struct {
	updates   <-chan processor.ProgressUpdate
	started   time.Time
	width     int
	total     int
	processed int
	changed   int
	failed    int
	check     bool
	quitting  bool
}

type doneMsg struct{}

type updateMsg processor.ProgressUpdate

func NewModel(updates <-chan processor.ProgressUpdate, check bool) Model {
	return Model{updates: updates, started: time.Now(), check: check}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.total += msg.TotalDelta
		m.processed += msg.ProcessedDelta
		m.changed += msg.ChangedDelta
		m.failed += msg.FailedDelta
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

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.processed) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	changedLabel := "reformatted"
	if m.check {
		changedLabel = "would reformat"
	}
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("jsonator"),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", m.processed, m.total)) +
			changedStyle.Render(fmt.Sprintf("  %s:%d", changedLabel, m.changed)) +
			failedStyle.Render(fmt.Sprintf("  failed:%d", m.failed)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(renderBar(barWidth, ratio)),
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan processor.ProgressUpdate) tea.Cmd {
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
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle     = lipgloss.NewStyle().Foreground(ColorInk)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorDim)
	changedStyle = lipgloss.NewStyle().Foreground(ColorChanged)
	failedStyle  = lipgloss.NewStyle().Foreground(ColorFailed)
)
