package rawview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/ui"
)

// MaxRawChars caps the raw entry until the user asks for the full text.
const MaxRawChars = 40000

type Model struct {
	viewport viewport.Model
	raw      any
	content  string
	title    string
	resultID string
	width    int
	height   int
	ready    bool
	full     bool
	cut      bool

	searchInput textinput.Model
	searching   bool
	searchQuery string
	matchLines  []int // 0-based line indices of matches
	matchIndex  int
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search in raw entry..."
	ti.CharLimit = 256
	return Model{searchInput: ti}
}

// SetResult shows the untouched source entry of r from the top.
func (m *Model) SetResult(r model.Result) {
	m.resultID = r.ID
	m.title = r.Name
	m.raw = r.Raw
	m.full = false
	m.searchQuery = ""
	m.matchLines = nil
	m.matchIndex = 0
	m.rebuild()
	if m.ready {
		m.viewport.SetContent(m.content)
		m.viewport.GotoTop()
	}
}

// UpdateResult swaps in a reloaded copy of the same entry and keeps the
// scroll position when possible.
func (m *Model) UpdateResult(r model.Result) {
	m.title = r.Name
	m.raw = r.Raw
	m.rebuild()
	m.findMatches()
	if !m.ready {
		return
	}
	prevOffset := m.viewport.YOffset
	m.viewport.SetContent(m.applyHighlights())
	maxOffset := max(m.viewport.TotalLineCount()-m.viewport.VisibleLineCount(), 0)
	m.viewport.SetYOffset(min(prevOffset, maxOffset))
}

func (m Model) ResultID() string {
	return m.resultID
}

func (m Model) IsSearching() bool {
	return m.searching
}

func (m Model) Matches() int {
	return len(m.matchLines)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter":
				if query := m.searchInput.Value(); query != "" {
					m.searchQuery = query
					m.findMatches()
					m.matchIndex = 0
					m.viewport.SetContent(m.applyHighlights())
					if len(m.matchLines) > 0 {
						m.viewport.SetYOffset(m.matchLines[0])
					}
				}
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			case "esc":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, ui.Keys.Search):
			m.searching = true
			m.searchInput.SetValue("")
			return m, m.searchInput.Focus()
		case key.Matches(msg, ui.Keys.NextMatch):
			m.jump(1)
			return m, nil
		case key.Matches(msg, ui.Keys.PrevMatch):
			m.jump(-1)
			return m, nil
		case key.Matches(msg, ui.Keys.Expand):
			if m.cut || m.full {
				m.full = !m.full
				m.rebuild()
				m.findMatches()
				m.viewport.SetContent(m.applyHighlights())
			}
			return m, nil
		case msg.String() == "g":
			m.viewport.GotoTop()
			return m, nil
		case msg.String() == "G":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := max(msg.Height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
			m.viewport.SetContent(m.applyHighlights())
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) rebuild() {
	limit := MaxRawChars
	if m.full {
		limit = 0
	}
	m.content, m.cut = ui.PrettyJSON(m.raw, limit)
}

func (m *Model) jump(delta int) {
	if len(m.matchLines) == 0 {
		return
	}
	m.matchIndex = (m.matchIndex + delta + len(m.matchLines)) % len(m.matchLines)
	m.viewport.SetContent(m.applyHighlights())
	m.viewport.SetYOffset(m.matchLines[m.matchIndex])
}

func (m *Model) findMatches() {
	m.matchLines = nil
	if m.searchQuery == "" || m.content == "" {
		return
	}
	query := strings.ToLower(m.searchQuery)
	for i, line := range strings.Split(m.content, "\n") {
		if strings.Contains(strings.ToLower(line), query) {
			m.matchLines = append(m.matchLines, i)
		}
	}
	if m.matchIndex >= len(m.matchLines) {
		m.matchIndex = 0
	}
}

func (m Model) applyHighlights() string {
	if m.searchQuery == "" || len(m.matchLines) == 0 {
		return m.content
	}

	matchSet := make(map[int]bool, len(m.matchLines))
	for _, idx := range m.matchLines {
		matchSet[idx] = true
	}
	currentMatchLine := m.matchLines[m.matchIndex]

	highlight := lipgloss.NewStyle().Background(ui.ColorBorder)
	current := ui.StyleMatch

	lines := strings.Split(m.content, "\n")
	for i, line := range lines {
		if i == currentMatchLine {
			lines[i] = current.Render(line)
		} else if matchSet[i] {
			lines[i] = highlight.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if m.resultID == "" {
		return "\n  Select a result to view its raw entry"
	}

	headerParts := fmt.Sprintf(" Raw JSON: %s  %3.f%%", m.title, m.viewport.ScrollPercent()*100)
	if m.searchQuery != "" && len(m.matchLines) > 0 {
		headerParts += fmt.Sprintf("  [%d/%d matches]", m.matchIndex+1, len(m.matchLines))
	} else if m.searchQuery != "" {
		headerParts += "  [no matches]"
	}
	if m.cut && !m.full {
		headerParts += "  [truncated]"
	}
	hints := ui.StyleMuted.Render("  /:search  n/N:match  e:full  g/G:top/bot  esc:back")
	header := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(headerParts) + hints

	if m.searching {
		return header + "\n  /" + m.searchInput.View() + "\n" + m.viewport.View()
	}
	return header + "\n" + m.viewport.View()
}
