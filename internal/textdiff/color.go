package textdiff

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Always ANSI, whatever the output is attached to.
var renderer = func() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return r
}()

var (
	headerStyle  = renderer.NewStyle().Bold(true).TabWidth(lipgloss.NoTabConversion)
	hunkStyle    = renderer.NewStyle().Foreground(lipgloss.Color("6")).TabWidth(lipgloss.NoTabConversion)
	addedStyle   = renderer.NewStyle().Foreground(lipgloss.Color("2")).TabWidth(lipgloss.NoTabConversion)
	removedStyle = renderer.NewStyle().Foreground(lipgloss.Color("1")).TabWidth(lipgloss.NoTabConversion)
)

// Colorize wraps each diff line in ANSI styling chosen by its prefix. Line
// content is left untouched, so stripping the escapes restores the input.
func Colorize(diffText string) string {
	lines := strings.Split(diffText, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = headerStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addedStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = removedStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
