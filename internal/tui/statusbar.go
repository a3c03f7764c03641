package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/altin/brunoview/internal/ui"
)

// RenderStatusBar shows the last status on the left and key hints on the
// right. Load errors are drawn in the failure color.
func RenderStatusBar(status, hints string, width int) string {
	statusStyle := ui.StyleMuted
	if strings.HasPrefix(status, "Error:") {
		statusStyle = ui.StyleFailure.Bold(true)
	}
	left := statusStyle.Render("  " + status)
	help := ui.StyleMuted.Render(hints + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(help), 0)
	if gap == 0 {
		// Hints give way to the status when both do not fit.
		help = ""
		gap = max(width-lipgloss.Width(left), 0)
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#111827")).
		Width(width).
		Render(left + padding + help)
}
