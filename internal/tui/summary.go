package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"jsonator/internal/report"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows lays out the final counters of a run.
func SummaryRows(counts report.Counts, check bool, elapsed time.Duration) []SummaryRow {
	changed := "Reformatted"
	if check {
		changed = "Would reformat"
	}
	return []SummaryRow{
		{Label: "Files checked", Value: fmt.Sprintf("%d", counts.Total())},
		{Label: changed, Value: fmt.Sprintf("%d", counts.Changed)},
		{Label: "Unchanged", Value: fmt.Sprintf("%d", counts.Unchanged)},
		{Label: "Failed", Value: fmt.Sprintf("%d", counts.Failed)},
		{Label: "Elapsed", Value: elapsed.Round(time.Millisecond).String()},
	}
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Label))
		valueWidth = max(valueWidth, lipgloss.Width(row.Value))
	}

	hline := dimStyle.Render(strings.Repeat("-", labelWidth+valueWidth+3))
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
)
