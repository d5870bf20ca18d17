package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
)

// FormatFiles renders the touched-file log as a numbered list, one file per
// line, truncating names wider than width.
func FormatFiles(files []string, width int) string {
	if len(files) == 0 {
		return "no files added yet"
	}
	digits := len(fmt.Sprint(len(files)))
	nameWidth := width - digits - 4
	if nameWidth < 20 {
		nameWidth = 20
	}
	var b strings.Builder
	for i, f := range files {
		fmt.Fprintf(&b, "%*d. %s", digits+1, i+1, truncate(f, nameWidth))
		if i < len(files)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
