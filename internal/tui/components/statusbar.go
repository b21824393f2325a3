package components

import (
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// the last message in the middle and today's date on the right.
func RenderStatusBar(width int, message string, isErr bool, today string) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	if isErr {
		msgStyle = msgStyle.Foreground(t.Red)
	}

	left := base.Render(" [?]help  [q]uit")
	if message != "" {
		left += base.Render("  ") + msgStyle.Render(message)
	}
	right := base.Render(today + " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	fill := lipgloss.NewStyle().Background(t.Surface).Width(padding).Render("")
	return left + fill + right
}
