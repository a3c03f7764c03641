package details

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altin/brunoview/internal/model"
)

func sample() *model.Result {
	d := 0.25
	return &model.Result{
		ID:          "0-0",
		Name:        "Get user",
		Path:        "users/get",
		Method:      "GET",
		URL:         "http://api.test/users/1",
		HTTPStatus:  200,
		RunDuration: &d,
		Outcome:     model.OutcomePass,
		Request: map[string]any{
			"method":  "GET",
			"url":     "http://api.test/users/1",
			"headers": map[string]any{"accept": "application/json"},
		},
		Response: map[string]any{
			"status":  200,
			"headers": map[string]any{"content-length": "42"},
			"data":    map[string]any{"id": 1},
		},
		TestStats: model.TestStats{
			Total: 1, Pass: 1,
			Groups: []model.TestGroup{
				{Label: "Tests", Items: []any{map[string]any{"description": "status is 200", "status": "pass"}}, Pass: 1},
				{Label: "Assertions"},
			},
		},
	}
}

func TestRendersSections(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 80})
	m.SetResult(sample())

	out := m.View()
	for _, want := range []string{"Overview", "Request", "Response", "Tests", "Get user", "250 ms", "Run 1", "status is 200", "No results.", "Content Length: 42"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNoSelection(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if !strings.Contains(m.View(), "Select a result") {
		t.Errorf("expected placeholder, got %q", m.View())
	}
}

func TestLargeBodyIsTruncatedUntilExpanded(t *testing.T) {
	r := sample()
	r.Response["data"] = strings.Repeat("x", MaxJSONChars+10)

	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m.SetResult(r)
	if !m.IsTruncated() {
		t.Fatal("expected body to be truncated")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if m.IsTruncated() {
		t.Error("expected full body after pressing e")
	}

	// Selecting another result collapses again.
	other := sample()
	other.ID = "0-1"
	other.Response["data"] = strings.Repeat("y", MaxJSONChars+10)
	m.SetResult(other)
	if !m.IsTruncated() {
		t.Error("expected truncation after changing selection")
	}
}

func TestOrDash(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "-"},
		{"", "-"},
		{false, "-"},
		{"ok", "ok"},
		{404, "404"},
	}
	for _, tt := range tests {
		if got := orDash(tt.in); got != tt.want {
			t.Errorf("orDash(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
