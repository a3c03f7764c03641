package dashboard

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altin/brunoview/internal/model"
)

func dur(v float64) *float64 { return &v }

func results() []model.Result {
	return []model.Result{
		{ID: "0-0", Name: "fast", PathGroup: "users", Method: "GET", HTTPStatus: 200, RunDuration: dur(0.1), Outcome: model.OutcomePass,
			TestStats: model.TestStats{Pass: 2}},
		{ID: "0-1", Name: "slow", PathGroup: "users", Method: "POST", HTTPStatus: 500, RunDuration: dur(3), Outcome: model.OutcomeFail,
			TestStats: model.TestStats{Pass: 1, Fail: 1}},
		{ID: "0-2", Name: "broken", PathGroup: "orders", Method: "GET", Outcome: model.OutcomeError},
		{ID: "1-0", RunIndex: 1, Name: "mid", PathGroup: "orders", Method: "GET", HTTPStatus: 201, RunDuration: dur(1), Outcome: model.OutcomePass},
	}
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(results())

	if m.Total != 4 || m.Pass != 2 || m.Fail != 1 || m.Error != 1 {
		t.Errorf("counts = %+v", m.Summary)
	}
	if m.PassRate != 50 {
		t.Errorf("PassRate = %v", m.PassRate)
	}
	if m.Timed != 3 || m.MedianDuration != 1 {
		t.Errorf("Timed=%d Median=%v", m.Timed, m.MedianDuration)
	}
	if m.TestsPassed != 3 || m.TestsFailed != 1 {
		t.Errorf("tests = %d/%d", m.TestsPassed, m.TestsFailed)
	}
	if len(m.Slowest) != 3 || m.Slowest[0].Name != "slow" || m.Slowest[2].Name != "fast" {
		t.Errorf("Slowest = %v", m.Slowest)
	}
	if len(m.ByRun) != 2 {
		t.Errorf("ByRun = %v", m.ByRun)
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil)
	if m.Total != 0 || m.Slowest != nil {
		t.Errorf("unexpected metrics %+v", m)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	if got := percentile(sorted, 50); got != 2.5 {
		t.Errorf("p50 = %v", got)
	}
	if got := percentile(sorted, 100); got != 4 {
		t.Errorf("p100 = %v", got)
	}
	if got := percentile(nil, 95); got != 0 || math.IsNaN(got) {
		t.Errorf("empty = %v", got)
	}
}

func TestScopeSwitch(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	met := ComputeMetrics(results())
	m.SetMetrics(&met)

	if !strings.Contains(m.View(), "Overview (Filtered)") {
		t.Errorf("expected filtered overview:\n%s", m.View())
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if cmd == nil {
		t.Fatal("expected ScopeChangedMsg")
	}
	if msg := cmd().(ScopeChangedMsg); msg.Scope != ScopeAll {
		t.Errorf("scope = %v", msg.Scope)
	}
	if m.Scope() != ScopeAll {
		t.Error("model scope not updated")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if cmd != nil {
		if _, ok := cmd().(ScopeChangedMsg); ok {
			t.Error("pressing ] twice should not re-emit")
		}
	}
}
