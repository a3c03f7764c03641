package ui

import "github.com/charmbracelet/lipgloss"

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

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(ColorPrimary).
			Padding(0, 1)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold    = lipgloss.NewStyle().Bold(true)

	StyleMatch = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FCD34D")).
			Background(lipgloss.Color("#78350F"))

	StyleChipOn = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(ColorPrimary)

	StyleChipOff = lipgloss.NewStyle().Foreground(ColorMuted)
)

// OutcomeStyle colors pass, fail and error.
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "pass":
		return StyleSuccess
	case "fail":
		return StyleFailure
	case "error":
		return StyleWarning
	default:
		return StyleMuted
	}
}

func OutcomeIcon(outcome string) string {
	switch outcome {
	case "pass":
		return StyleSuccess.Render("V")
	case "fail":
		return StyleFailure.Render("X")
	case "error":
		return StyleWarning.Render("!")
	default:
		return StyleMuted.Render("?")
	}
}

// BucketStyle colors an HTTP status bucket.
func BucketStyle(bucket string) lipgloss.Style {
	switch bucket {
	case "2xx":
		return StyleSuccess
	case "3xx":
		return StyleInfo
	case "4xx":
		return StyleWarning
	case "5xx":
		return StyleFailure
	default:
		return StyleMuted
	}
}

// Chip renders a toggle label.
func Chip(label string, on bool) string {
	if on {
		return StyleChipOn.Render(" " + label + " ")
	}
	return StyleChipOff.Render(" " + label + " ")
}
