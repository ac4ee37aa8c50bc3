package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorInk     = lipgloss.Color("#E5E9F0")
	ColorDim     = lipgloss.Color("#7A8291")
	ColorAccent  = lipgloss.Color("#88C0D0")
	ColorChanged = lipgloss.Color("#EBCB8B")
	ColorSame    = lipgloss.Color("#A3BE8C")
	ColorFailed  = lipgloss.Color("#BF616A")
)
