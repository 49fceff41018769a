package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/jenkins-bot/internal/ui"
)

// RenderStatusBar draws the bottom line: status on the left, key hints on
// the right. Hints are dropped from the end until they fit.
func RenderStatusBar(status string, hints []key.Binding, width int) string {
	left := lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("  " + status)

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, h.Help().Key+": "+h.Help().Desc)
	}
	help := ""
	for n := len(parts); n > 0; n-- {
		help = lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(strings.Join(parts[:n], " | ") + " ")
		if lipgloss.Width(left)+lipgloss.Width(help) <= width {
			break
		}
		help = ""
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(help), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#111827")).
		Width(width).
		Render(left + padding + help)
}
