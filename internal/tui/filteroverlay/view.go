package filteroverlay

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/summary"
	"github.com/altin/brunoview/internal/ui"
)

// ResultMsg is emitted when the user applies or cancels the overlay.
type ResultMsg struct {
	Applied bool
	Filters model.Filters
}

type field int

const (
	fieldStatus field = iota
	fieldSort
	fieldMethods
	fieldHTTP
	fieldRuns
	fieldPaths
	fieldScopes
	fieldCount
)

var labels = [fieldCount]string{
	fieldStatus:  "Status:",
	fieldSort:    "Sort:",
	fieldMethods: "Methods:",
	fieldHTTP:    "HTTP:",
	fieldRuns:    "Runs:",
	fieldPaths:   "Path:",
	fieldScopes:  "Search in:",
}

// Model edits a copy of the current filters. Nothing is applied until the
// user presses a.
type Model struct {
	active  bool
	focused field
	chip    [fieldCount]int
	filters model.Filters
	facets  summary.Facets
	width   int
	height  int
}

func New(current model.Filters, facets summary.Facets) Model {
	return Model{
		active:  true,
		filters: current,
		facets:  facets,
	}
}

func (m Model) IsActive() bool { return m.active }

func (m Model) Filters() model.Filters { return m.filters }

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

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
	case "j", "down", "tab":
		m.moveFocus(1)
	case "k", "up", "shift+tab":
		m.moveFocus(-1)
	case "l", "right":
		m.step(1)
	case "h", "left":
		m.step(-1)
	case " ", "enter":
		m.toggle()
	case "a":
		m.active = false
		return m, emitResult(true, m.filters)
	case "c":
		m.filters = model.DefaultFilters().
			WithSearch(m.filters.Search).
			WithSort(m.filters.Sort).
			WithScopes(m.filters.ActiveScopes()...)
	case "esc":
		m.active = false
		return m, emitResult(false, model.Filters{})
	}
	return m, nil
}

func (m Model) View() string {
	if !m.active {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Width(11).Foreground(ui.ColorMuted)
	focusedLabelStyle := lipgloss.NewStyle().Width(11).Bold(true).Foreground(ui.ColorPrimary)

	rows := make([]string, 0, int(fieldCount))
	for f := field(0); f < fieldCount; f++ {
		ls := labelStyle
		cursor := "  "
		if f == m.focused {
			ls = focusedLabelStyle
			cursor = lipgloss.NewStyle().Foreground(ui.ColorPrimary).Render("> ")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s", cursor, ls.Render(labels[f]), m.renderValue(f)))
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		MarginBottom(1).
		Render("Filters")

	help := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		MarginTop(1).
		Render("h/l: move  space: toggle  a: apply  c: clear  esc: cancel")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(rows, "\n"),
		help,
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2).
		Width(72).
		Render(body)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m Model) renderValue(f field) string {
	switch f {
	case fieldStatus:
		return string(m.status())
	case fieldSort:
		return string(m.filters.Sort)
	case fieldPaths:
		if len(m.filters.Paths) == 0 {
			return lipgloss.NewStyle().Foreground(ui.ColorMuted).Italic(true).Render("All paths")
		}
		return strings.Join(slices.Sorted(maps.Keys(m.filters.Paths)), ", ")
	}

	names, on := m.chips(f)
	if len(names) == 0 {
		return ui.StyleMuted.Render("none in file")
	}
	parts := make([]string, len(names))
	for i, n := range names {
		chip := ui.Chip(n, on[i])
		if f == m.focused && i == m.chip[f] {
			chip = lipgloss.NewStyle().Underline(true).Render(chip)
		}
		parts[i] = chip
	}
	return strings.Join(parts, "")
}

// chips returns the labels and on-states of a multi-select row.
func (m Model) chips(f field) ([]string, []bool) {
	var names []string
	var on []bool
	switch f {
	case fieldMethods:
		for _, v := range m.facets.Methods {
			names = append(names, v)
			on = append(on, len(m.filters.Methods) == 0 || m.filters.Methods[v])
		}
	case fieldHTTP:
		for _, b := range model.Buckets {
			names = append(names, string(b))
			on = append(on, m.filters.HTTP[b])
		}
	case fieldRuns:
		for _, r := range m.facets.Runs {
			names = append(names, fmt.Sprintf("#%d", r+1))
			on = append(on, len(m.filters.Runs) == 0 || m.filters.Runs[r])
		}
	case fieldScopes:
		active := m.filters.ActiveScopes()
		for _, s := range model.Scopes {
			names = append(names, string(s))
			on = append(on, slices.Contains(active, s))
		}
	}
	return names, on
}

func (m *Model) moveFocus(delta int) {
	m.focused = field((int(m.focused) + delta + int(fieldCount)) % int(fieldCount))
}

// step cycles single-select rows and moves the chip cursor on the others.
func (m *Model) step(delta int) {
	switch m.focused {
	case fieldStatus:
		m.filters = m.filters.WithStatus(cycle(model.Statuses, m.status(), delta))
	case fieldSort:
		m.filters = m.filters.WithSort(cycle(model.SortKeys, m.filters.Sort, delta))
	case fieldPaths:
		m.filters = m.filters.SelectPath(m.nextPath(delta))
	default:
		names, _ := m.chips(m.focused)
		if len(names) == 0 {
			return
		}
		m.chip[m.focused] = (m.chip[m.focused] + delta + len(names)) % len(names)
	}
}

func (m *Model) toggle() {
	i := m.chip[m.focused]
	switch m.focused {
	case fieldMethods:
		if i < len(m.facets.Methods) {
			m.filters = m.filters.ToggleMethod(m.facets.Methods[i], m.facets.Methods)
		}
	case fieldHTTP:
		m.filters = m.filters.ToggleBucket(model.Buckets[i])
	case fieldRuns:
		if i < len(m.facets.Runs) {
			m.filters = m.filters.ToggleRun(m.facets.Runs[i], m.facets.Runs)
		}
	case fieldScopes:
		m.filters = m.filters.ToggleScope(model.Scopes[i])
	default:
		m.step(1)
	}
}

func (m Model) status() model.Status {
	if m.filters.Status == "" {
		return model.StatusAll
	}
	return m.filters.Status
}

// nextPath walks "all" followed by each path group.
func (m Model) nextPath(delta int) string {
	options := append([]string{""}, m.facets.PathGroups...)
	current := ""
	if len(m.filters.Paths) == 1 {
		for p := range m.filters.Paths {
			current = p
		}
	}
	return cycle(options, current, delta)
}

func cycle[T comparable](options []T, current T, delta int) T {
	i := slices.Index(options, current)
	if i < 0 {
		if delta > 0 {
			return options[0]
		}
		return options[len(options)-1]
	}
	return options[(i+delta+len(options))%len(options)]
}

func emitResult(applied bool, f model.Filters) tea.Cmd {
	return func() tea.Msg {
		return ResultMsg{Applied: applied, Filters: f}
	}
}
