package results

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/search"
	"github.com/altin/brunoview/internal/summary"
	"github.com/altin/brunoview/internal/ui"
)

// --- Custom delegate (avoids DefaultDelegate ANSI corruption) ---

type resultDelegate struct{}

func (d resultDelegate) Height() int                              { return 2 }
func (d resultDelegate) Spacing() int                             { return 0 }
func (d resultDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d resultDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(resultItem)
	if !ok {
		return
	}
	r := ri.result

	icon := ui.OutcomeIcon(string(r.Outcome))
	method := ui.StyleInfo.Render(fmt.Sprintf("%-6s", orDash(r.Method)))
	bucket := search.Bucket(r.HTTPStatus)
	status := ui.BucketStyle(string(bucket)).Render(statusLabel(r))
	dur := ui.StyleMuted.Render(summary.FormatDuration(r.RunDuration))

	width := m.Width()
	nameW := max(width-lipgloss.Width(method)-lipgloss.Width(status)-lipgloss.Width(dur)-10, 8)
	name := text.Truncate(nameW, r.Name)

	line1 := fmt.Sprintf(" %s %s %s  %s  %s", icon, method, name, status, dur)
	meta := fmt.Sprintf("%s  run #%d", r.PathGroup, r.RunIndex+1)
	if r.IterationIndex > 0 {
		meta += fmt.Sprintf(" iter %d", r.IterationIndex)
	}
	if r.TestStats.Total > 0 {
		meta += fmt.Sprintf("  tests %d/%d", r.TestStats.Pass, r.TestStats.Total)
	}
	line2 := "     " + ui.StyleMuted.Render(text.Truncate(max(width-6, 8), meta))

	if index == m.Index() {
		hl := lipgloss.NewStyle().Background(ui.ColorHighlight).Width(width)
		line1 = hl.Render(line1)
		line2 = hl.Render(line2)
	}

	fmt.Fprintf(w, "%s\n%s", line1, line2)
}

func statusLabel(r model.Result) string {
	if r.HTTPStatus == nil {
		return "---"
	}
	return fmt.Sprint(r.HTTPStatus)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// --- Item ---

type resultItem struct {
	result model.Result
}

func (r resultItem) FilterValue() string {
	return r.result.Name
}

// --- Model ---

type Model struct {
	list    list.Model
	total   int
	width   int
	height  int
	loading bool
	err     error
}

func New() Model {
	l := list.New(nil, resultDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	// Filtering is done by the search engine, not the list.
	l.SetFilteringEnabled(false)
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "next page"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "prev page"))
	l.DisableQuitKeybindings()

	return Model{list: l, loading: true}
}

// SelectedResult returns the result under the cursor.
func (m Model) SelectedResult() (model.Result, bool) {
	if item, ok := m.list.SelectedItem().(resultItem); ok {
		return item.result, true
	}
	return model.Result{}, false
}

// Len is the number of visible results.
func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Total() int {
	return m.total
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.ResultsLoadedMsg:
		if msg.Err != nil {
			m.loading = false
			// A failed reload keeps whatever is already listed.
			if len(m.list.Items()) == 0 {
				m.err = msg.Err
			}
			return m, nil
		}

	case ui.FilteredMsg:
		m.loading = false
		m.err = nil
		m.total = msg.Total
		return m, m.setItems(msg.Results)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// setItems replaces the list and keeps the cursor on the same result id
// when it is still visible.
func (m *Model) setItems(results []model.Result) tea.Cmd {
	prev, hadPrev := m.SelectedResult()

	items := make([]list.Item, len(results))
	keep := 0
	for i, r := range results {
		items[i] = resultItem{result: r}
		if hadPrev && r.ID == prev.ID {
			keep = i
		}
	}
	cmd := m.list.SetItems(items)
	m.list.Select(keep)
	return cmd
}

func (m Model) View() string {
	if m.loading {
		return "\n  Loading results..."
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v", m.err)
	}
	if len(m.list.Items()) == 0 {
		if m.total == 0 {
			return "\n  No results in this file."
		}
		return "\n  " + ui.StyleMuted.Render("No results match the current filters.") +
			"\n  " + ui.StyleMuted.Render("Press x to reset filters.")
	}
	return m.list.View()
}

// Position describes the cursor, e.g. "3/12".
func (m Model) Position() string {
	n := len(m.list.Items())
	if n == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", m.list.Index()+1, n)
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{
		ui.Keys.Enter,
		ui.Keys.Search,
		ui.Keys.Filter,
		ui.Keys.Sort,
	}
}
