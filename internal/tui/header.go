package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/jenkins-bot/internal/ui"
)

func RenderHeader(target, user string, width int) string {
	left := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(fmt.Sprintf(" jenkins-bot | %s", target))

	who := ""
	if user != "" {
		who = lipgloss.NewStyle().Foreground(ui.ColorSuccess).
			Render(fmt.Sprintf("@%s ", user))
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(who)
	if gap < 0 {
		gap = 0
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(ui.ColorHighlight).
		Width(width).
		Render(left + padding + who)
}
