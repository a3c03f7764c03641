package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/altin/brunoview/internal/ui"
)

// RenderHeader shows the source on the left and dataset counts on the right.
func RenderHeader(source string, results, runs, skipped int, width int) string {
	left := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(fmt.Sprintf(" brunoview | %s", source))

	right := ""
	if results > 0 || runs > 0 {
		right = ui.StyleMuted.Render(fmt.Sprintf("%d results  %d runs ", results, runs))
	}
	if skipped > 0 {
		right = ui.StyleWarning.Render(fmt.Sprintf("%d skipped  ", skipped)) + right
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(ui.ColorHighlight).
		Width(width).
		Render(left + padding + right)
}
