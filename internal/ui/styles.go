package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/jenkins-bot/internal/model"
)

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorFailure   = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorInfo      = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorBorder    = lipgloss.Color("#374151")
	ColorHighlight = lipgloss.Color("#1F2937")

	StylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StylePaneFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)

	StylePrompt = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
)

func StatusStyle(s model.JobStatus) lipgloss.Style {
	switch s {
	case model.StatusSuccess:
		return StyleSuccess
	case model.StatusFailure:
		return StyleFailure
	case model.StatusUnstable:
		return StyleWarning
	case model.StatusRunning:
		return StyleInfo
	default:
		return StyleMuted
	}
}

var statusGlyphs = map[model.JobStatus]string{
	model.StatusSuccess:    "V",
	model.StatusFailure:    "X",
	model.StatusUnstable:   "!",
	model.StatusAborted:    "-",
	model.StatusRunning:    "*",
	model.StatusNotStarted: "o",
}

func StatusIcon(s model.JobStatus) string {
	glyph, ok := statusGlyphs[s]
	if !ok {
		glyph = "?"
	}
	return StatusStyle(s).Render(glyph)
}

// ConsoleMarker renders listing statuses as colored icons for terminal output.
func ConsoleMarker(s model.JobStatus) string {
	return StatusIcon(s)
}
