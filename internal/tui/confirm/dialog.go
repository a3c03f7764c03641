package confirm

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/altin/brunoview/internal/ui"
)

// Action names what the dialog guards.
type Action string

const ActionResetFilters Action = "reset-filters"

type ResultMsg struct {
	Confirmed bool
	Action    Action
}

type Model struct {
	Title   string
	Message string
	Action  Action

	// Details are listed under the message, one per line.
	Details []string

	active   bool
	selected bool // true = yes highlighted
}

func New(title, message string, action Action, details ...string) Model {
	return Model{
		Title:   title,
		Message: message,
		Details: details,
		Action:  action,
		active:  true,
	}
}

func (m Model) IsActive() bool { return m.active }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch km.String() {
	case "y", "Y":
		return m.finish(true)
	case "n", "N", "esc":
		return m.finish(false)
	case "enter":
		return m.finish(m.selected)
	case "tab", "left", "right", "h", "l":
		m.selected = !m.selected
	}
	return m, nil
}

func (m Model) finish(ok bool) (Model, tea.Cmd) {
	m.active = false
	action := m.Action
	return m, func() tea.Msg {
		return ResultMsg{Confirmed: ok, Action: action}
	}
}

func (m Model) View() string {
	if !m.active {
		return ""
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Width(50)

	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorWarning).Render(m.Title)

	yesStyle := lipgloss.NewStyle().Padding(0, 1)
	noStyle := lipgloss.NewStyle().Padding(0, 1)
	light := lipgloss.Color("#F9FAFB")
	if m.selected {
		yesStyle = yesStyle.Bold(true).Background(ui.ColorSuccess).Foreground(light)
		noStyle = noStyle.Foreground(ui.ColorMuted)
	} else {
		yesStyle = yesStyle.Foreground(ui.ColorMuted)
		noStyle = noStyle.Bold(true).Background(ui.ColorFailure).Foreground(light)
	}

	var b strings.Builder
	b.WriteString(title + "\n\n" + m.Message + "\n")
	for _, d := range m.Details {
		b.WriteString(ui.StyleMuted.Render("  - "+text.Truncate(42, d)) + "\n")
	}
	fmt.Fprintf(&b, "\n%s  %s\n\n", yesStyle.Render("Yes"), noStyle.Render("No"))
	b.WriteString(ui.StyleMuted.Render("y/n to confirm, esc to cancel"))

	return style.Render(b.String())
}
