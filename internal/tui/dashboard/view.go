package dashboard

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/text"

	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/summary"
	"github.com/altin/brunoview/internal/ui"
)

// Scope picks which results the dashboard describes.
type Scope int

const (
	ScopeFiltered Scope = iota
	ScopeAll
)

func (s Scope) String() string {
	if s == ScopeAll {
		return "All results"
	}
	return "Filtered"
}

type Metrics struct {
	summary.Summary
	PassRate float64

	MedianDuration float64 // seconds
	P95Duration    float64
	P99Duration    float64
	Timed          int

	TestsPassed int
	TestsFailed int

	Slowest  []model.Result
	ByPath   []summary.Group
	ByMethod []summary.Group
	ByBucket []summary.Group
	ByRun    []summary.Group
}

func ComputeMetrics(results []model.Result) Metrics {
	m := Metrics{Summary: summary.Summarize(results)}
	if m.Total == 0 {
		return m
	}
	m.PassRate = float64(m.Pass) / float64(m.Total) * 100

	var durations []float64
	for _, r := range results {
		if r.RunDuration != nil {
			durations = append(durations, *r.RunDuration)
		}
		m.TestsPassed += r.TestStats.Pass
		m.TestsFailed += r.TestStats.Fail
	}
	slices.Sort(durations)
	m.Timed = len(durations)
	if len(durations) > 0 {
		m.MedianDuration = percentile(durations, 50)
		m.P95Duration = percentile(durations, 95)
		m.P99Duration = percentile(durations, 99)
	}

	timed := slices.DeleteFunc(slices.Clone(results), func(r model.Result) bool {
		return r.RunDuration == nil
	})
	slices.SortStableFunc(timed, func(a, b model.Result) int {
		return cmp.Compare(b.Duration(), a.Duration())
	})
	m.Slowest = timed[:min(len(timed), 5)]

	m.ByPath = summary.Breakdown(results, summary.ByPathGroup)
	m.ByMethod = summary.Breakdown(results, summary.ByMethod)
	m.ByBucket = summary.Breakdown(results, summary.ByBucket)
	m.ByRun = summary.Breakdown(results, func(r model.Result) string {
		return fmt.Sprintf("Run %d", r.RunIndex+1)
	})
	return m
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// ScopeChangedMsg asks the parent for metrics over the other result set.
type ScopeChangedMsg struct {
	Scope Scope
}

type Model struct {
	metrics  *Metrics
	scope    Scope
	viewport viewport.Model
	width    int
	height   int
	loading  bool
	ready    bool
}

func New() Model {
	return Model{loading: true}
}

func (m *Model) SetMetrics(metrics *Metrics) {
	m.metrics = metrics
	m.loading = false
	if m.ready {
		m.viewport.SetContent(m.render())
	}
}

func (m Model) Scope() Scope { return m.scope }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		next := m.scope
		switch msg.String() {
		case "[":
			next = ScopeFiltered
		case "]":
			next = ScopeAll
		}
		if next != m.scope {
			m.scope = next
			return m, func() tea.Msg { return ScopeChangedMsg{Scope: next} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := max(msg.Height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		if m.metrics != nil {
			m.viewport.SetContent(m.render())
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) render() string {
	if m.metrics == nil || m.metrics.Total == 0 {
		return "  No results"
	}
	met := m.metrics
	bold := ui.StyleBold
	muted := ui.StyleMuted

	var b strings.Builder

	b.WriteString(bold.Render(fmt.Sprintf("  Overview (%s)", m.scope)) + "\n\n")
	b.WriteString(fmt.Sprintf("  Total:      %s\n", bold.Render(fmt.Sprint(met.Total))))
	b.WriteString(fmt.Sprintf("  Passed:     %s (%.1f%%)\n",
		ui.StyleSuccess.Render(fmt.Sprint(met.Pass)), met.PassRate))
	b.WriteString(fmt.Sprintf("  Failed:     %s\n", ui.StyleFailure.Render(fmt.Sprint(met.Fail))))
	b.WriteString(fmt.Sprintf("  Errors:     %s\n", ui.StyleWarning.Render(fmt.Sprint(met.Error))))
	b.WriteString(fmt.Sprintf("  HTTP >= 400: %s\n", ui.StyleFailure.Render(fmt.Sprint(met.HTTPBad))))
	b.WriteString(fmt.Sprintf("  Tests:      %s passed, %s failed\n\n",
		ui.StyleSuccess.Render(fmt.Sprint(met.TestsPassed)),
		ui.StyleFailure.Render(fmt.Sprint(met.TestsFailed))))

	b.WriteString(bold.Render("  Performance") + "\n\n")
	if met.Timed == 0 {
		b.WriteString(muted.Render("  No timings recorded") + "\n\n")
	} else {
		b.WriteString(fmt.Sprintf("  Duration:   avg %s / median %s / p95 %s / p99 %s  %s\n\n",
			summary.FormatDuration(met.AvgDuration),
			summary.FormatDuration(&met.MedianDuration),
			summary.FormatDuration(&met.P95Duration),
			summary.FormatDuration(&met.P99Duration),
			muted.Render(fmt.Sprintf("(%d timed)", met.Timed))))
	}

	if len(met.Slowest) > 0 {
		b.WriteString(bold.Render("  Slowest Requests") + "\n\n")
		for i, r := range met.Slowest {
			b.WriteString(fmt.Sprintf("  %d. %s %s  %s\n",
				i+1,
				ui.StyleWarning.Render(fmt.Sprintf("%9s", summary.FormatDuration(r.RunDuration))),
				ui.OutcomeIcon(string(r.Outcome)),
				text.Truncate(50, r.Name)))
		}
		b.WriteString("\n")
	}

	writeGroups(&b, "Issues by Path", met.ByPath, 10)
	writeGroups(&b, "By Method", met.ByMethod, 0)
	writeGroups(&b, "By HTTP Status", met.ByBucket, 0)
	if len(met.ByRun) > 1 {
		writeGroups(&b, "By Run", met.ByRun, 0)
	}
	return b.String()
}

// writeGroups draws one bar per group, proportional to its issue rate.
func writeGroups(b *strings.Builder, title string, groups []summary.Group, limit int) {
	if len(groups) == 0 {
		return
	}
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	b.WriteString(ui.StyleBold.Render("  "+title) + "\n\n")

	const barMaxLen = 20
	for _, g := range groups {
		rate := float64(g.Issues) / float64(g.Total) * 100
		barLen := int(rate / 100 * barMaxLen)
		if g.Issues > 0 && barLen < 1 {
			barLen = 1
		}
		bar := ui.StyleFailure.Render(strings.Repeat("█", barLen)) +
			ui.StyleMuted.Render(strings.Repeat("░", barMaxLen-barLen))
		b.WriteString(fmt.Sprintf("  %-30s %s %s\n",
			text.Truncate(30, g.Key),
			bar,
			ui.StyleMuted.Render(fmt.Sprintf("%d/%d issues", g.Issues, g.Total))))
	}
	b.WriteString("\n")
}

func (m Model) View() string {
	if m.loading {
		return "\n  Loading summary..."
	}

	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB"))
	var parts []string
	for _, s := range []Scope{ScopeFiltered, ScopeAll} {
		if s == m.scope {
			parts = append(parts, active.Render(s.String()))
		} else {
			parts = append(parts, ui.StyleMuted.Render(s.String()))
		}
	}
	tabs := "  " + strings.Join(parts, "  ") + "    " + ui.StyleMuted.Render("press [ or ] to switch")

	if m.ready {
		return tabs + "\n" + m.viewport.View()
	}
	return tabs + "\n  Initializing..."
}
