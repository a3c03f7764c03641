package searchbar

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/ui"
)

// ChangedMsg is emitted on every edit so results filter as you type.
type ChangedMsg struct {
	Query string
}

// ToggleDataMsg asks the parent to add or remove the data scope.
type ToggleDataMsg struct{}

type Model struct {
	input  textinput.Model
	scopes []model.Scope
	prev   string
	active bool
	width  int
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search name, path, url, method"
	ti.Prompt = "/ "
	ti.CharLimit = 256

	return Model{
		input:  ti,
		scopes: model.DefaultScopes,
	}
}

// Activate focuses the input. esc restores the query held at this point.
func (m *Model) Activate() tea.Cmd {
	m.active = true
	m.prev = m.input.Value()
	return m.input.Focus()
}

func (m *Model) Deactivate() {
	m.active = false
	m.input.Blur()
}

func (m Model) IsActive() bool {
	return m.active
}

func (m Model) Query() string {
	return m.input.Value()
}

// SetQuery replaces the text without emitting ChangedMsg.
func (m *Model) SetQuery(q string) {
	m.input.SetValue(q)
}

func (m *Model) SetScopes(scopes []model.Scope) {
	m.scopes = scopes
	names := make([]string, len(scopes))
	for i, s := range scopes {
		names[i] = string(s)
	}
	m.input.Placeholder = "Search " + strings.Join(names, ", ")
}

func (m *Model) SetWidth(w int) {
	m.width = w
	m.input.Width = max(w-20, 10)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch km.String() {
	case "enter":
		m.Deactivate()
		return m, nil
	case "esc":
		m.Deactivate()
		if m.input.Value() != m.prev {
			m.input.SetValue(m.prev)
			return m, changed(m.prev)
		}
		return m, nil
	case "tab":
		return m, func() tea.Msg { return ToggleDataMsg{} }
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		return m, tea.Batch(cmd, changed(m.input.Value()))
	}
	return m, cmd
}

func (m Model) View() string {
	if !m.active && m.input.Value() == "" {
		return ""
	}
	line := m.input.View()
	for _, s := range m.scopes {
		if s == model.ScopeData {
			line += "  " + ui.StyleWarning.Render("[+data]")
			break
		}
	}
	if m.active {
		line += "  " + ui.StyleMuted.Render("tab: data  enter: keep  esc: undo")
	}
	return " " + line
}

func changed(q string) tea.Cmd {
	return func() tea.Msg { return ChangedMsg{Query: q} }
}
