package details

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/summary"
	"github.com/altin/brunoview/internal/ui"
)

// MaxJSONChars caps inline request and response bodies until expanded.
const MaxJSONChars = 20000

type Model struct {
	result   *model.Result
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	expanded bool
	cut      bool
}

func New() Model {
	return Model{}
}

// SetResult shows r and scrolls back to the top. A nil result clears the pane.
func (m *Model) SetResult(r *model.Result) {
	same := r != nil && m.result != nil && r.ID == m.result.ID
	m.result = r
	if !same {
		m.expanded = false
	}
	if m.ready {
		m.viewport.SetContent(m.render())
		if !same {
			m.viewport.GotoTop()
		}
	}
}

func (m Model) Result() *model.Result {
	return m.result
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, ui.Keys.Expand) && m.cut {
			m.expanded = !m.expanded
			if m.ready {
				m.viewport.SetContent(m.render())
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := max(msg.Height-headerLines, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.viewport.SetContent(m.render())
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

const headerLines = 3

func (m Model) View() string {
	if m.result == nil {
		return "\n  Select a result to see its details."
	}
	r := m.result

	title := ui.StyleBold.Render(r.Name)
	url := ui.StyleMuted.Render(orDash(r.URL))

	chips := []string{
		ui.StyleInfo.Render(orDefault(r.Method, "method")),
		ui.BucketStyle(bucketOf(r)).Render("HTTP " + orDash(r.HTTPStatus)),
		ui.OutcomeStyle(string(r.Outcome)).Render(strings.ToUpper(string(r.Outcome))),
		ui.StyleMuted.Render("Duration " + summary.FormatDuration(r.RunDuration)),
		ui.StyleMuted.Render(fmt.Sprintf("Run %d", r.RunIndex+1)),
		ui.StyleMuted.Render(fmt.Sprintf("Iteration %d", r.IterationIndex)),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		" "+title,
		" "+url,
		" "+strings.Join(chips, "  "),
		m.viewport.View(),
	)
}

// IsTruncated reports whether some body was cut at MaxJSONChars.
func (m Model) IsTruncated() bool {
	return m.cut && !m.expanded
}

func (m Model) ShortHelp() []key.Binding {
	bindings := []key.Binding{ui.Keys.Enter, ui.Keys.PageDown, ui.Keys.PageUp}
	if m.cut {
		bindings = append(bindings, ui.Keys.Expand)
	}
	return bindings
}

func (m *Model) render() string {
	m.cut = false
	if m.result == nil {
		return ""
	}
	r := m.result
	var b strings.Builder

	section(&b, "Overview")
	kv(&b, "Name", r.Name)
	kv(&b, "Path", orDash(r.Path))
	kv(&b, "Method", orDash(r.Method))
	kv(&b, "URL", orDash(r.URL))
	kv(&b, "HTTP Status", orDash(r.HTTPStatus))
	kv(&b, "Status", string(r.Outcome))
	kv(&b, "Duration", summary.FormatDuration(r.RunDuration))
	kv(&b, "Run Index", fmt.Sprint(r.RunIndex+1))
	kv(&b, "Iteration", fmt.Sprint(r.IterationIndex))

	section(&b, "Request")
	kv(&b, "Method", orDash(r.Request["method"]))
	kv(&b, "URL", orDash(r.Request["url"]))
	m.headers(&b, r.Request["headers"])
	if body, ok := r.Request["body"]; ok {
		m.block(&b, "Body", body)
	}

	section(&b, "Response")
	kv(&b, "Status", orDash(r.Response["status"]))
	kv(&b, "Status Text", orDash(r.Response["statusText"]))
	length := any(nil)
	if h, ok := r.Response["headers"].(map[string]any); ok {
		length = h["content-length"]
	}
	kv(&b, "Content Length", orDash(length))
	m.headers(&b, r.Response["headers"])
	if data, ok := r.Response["data"]; ok {
		m.block(&b, "Data", data)
	}
	if r.Error != nil && orDash(r.Error) != "-" {
		m.block(&b, "Error", r.Error)
	}

	section(&b, "Tests")
	stats := r.TestStats
	b.WriteString("  " + ui.StyleMuted.Render(fmt.Sprintf("%d passed, %d failed", stats.Pass, stats.Fail)) + "\n")
	for _, g := range stats.Groups {
		b.WriteString("\n  " + ui.StyleBold.Render(g.Label) + "\n")
		if len(g.Items) == 0 {
			b.WriteString("    " + ui.StyleMuted.Render("No results.") + "\n")
			continue
		}
		for _, item := range g.Items {
			desc, status := describeTest(item)
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", testIcon(status), desc, ui.StyleMuted.Render(status)))
		}
	}
	return b.String()
}

func (m *Model) headers(b *strings.Builder, v any) {
	h, ok := v.(map[string]any)
	if !ok || len(h) == 0 {
		return
	}
	b.WriteString("\n  " + ui.StyleBold.Render("Headers") + "\n")
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		kv(b, k, orDash(h[k]))
	}
}

func (m *Model) block(b *strings.Builder, label string, v any) {
	limit := MaxJSONChars
	if m.expanded {
		limit = 0
	}
	text, cut := ui.PrettyJSON(v, limit)
	if cut || m.expanded {
		m.cut = true
	}
	b.WriteString("\n  " + ui.StyleBold.Render(label) + "\n")
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("    " + line + "\n")
	}
}

func section(b *strings.Builder, title string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(" " + ui.StyleHeader.Render(title) + "\n")
}

func kv(b *strings.Builder, k, v string) {
	b.WriteString(fmt.Sprintf("  %s %s\n", ui.StyleMuted.Render(k+":"), v))
}

func describeTest(item any) (string, string) {
	obj, _ := item.(map[string]any)
	desc := "Test"
	for _, k := range []string{"description", "name"} {
		if s, ok := obj[k].(string); ok && s != "" {
			desc = s
			break
		}
	}
	status := "-"
	if s, ok := obj["status"].(string); ok && s != "" {
		status = s
	}
	return desc, status
}

func testIcon(status string) string {
	switch strings.ToLower(status) {
	case "pass":
		return ui.OutcomeIcon("pass")
	case "fail":
		return ui.OutcomeIcon("fail")
	default:
		return ui.StyleMuted.Render("-")
	}
}

func bucketOf(r *model.Result) string {
	return summary.ByBucket(*r)
}

// orDash renders absent, empty and false values as "-".
func orDash(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		if t == "" {
			return "-"
		}
		return t
	case bool:
		if !t {
			return "-"
		}
		return "true"
	case map[string]any, []any:
		s, _ := ui.PrettyJSON(t, 0)
		return s
	default:
		return fmt.Sprint(t)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
