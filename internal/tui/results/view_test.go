package results

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/ui"
)

func sample() []model.Result {
	return []model.Result{
		{ID: "0-0", Name: "List users", Method: "GET", HTTPStatus: 200, PathGroup: "users/list.bru", Outcome: model.OutcomePass},
		{ID: "0-1", Name: "Create user", Method: "POST", HTTPStatus: 500, PathGroup: "users/create.bru", Outcome: model.OutcomeFail},
		{ID: "0-2", Name: "Delete user", Method: "DELETE", PathGroup: "users/delete.bru", Outcome: model.OutcomeError},
	}
}

func TestShowsLoadingUntilFiltered(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if !strings.Contains(m.View(), "Loading") {
		t.Errorf("expected loading view, got:\n%s", m.View())
	}

	m, _ = m.Update(ui.FilteredMsg{Results: sample(), Total: 3})
	view := m.View()
	for _, want := range []string{"List users", "Create user", "Delete user", "POST"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if m.Len() != 3 || m.Total() != 3 {
		t.Errorf("Len/Total = %d/%d, want 3/3", m.Len(), m.Total())
	}
}

func TestCursorFollowsResultAcrossRefilter(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m, _ = m.Update(ui.FilteredMsg{Results: sample(), Total: 3})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	sel, ok := m.SelectedResult()
	if !ok || sel.ID != "0-2" {
		t.Fatalf("selected = %q, want 0-2", sel.ID)
	}

	// Narrow to issues; the selected result is still visible at index 1.
	issues := []model.Result{sample()[1], sample()[2]}
	m, _ = m.Update(ui.FilteredMsg{Results: issues, Total: 3})
	sel, _ = m.SelectedResult()
	if sel.ID != "0-2" {
		t.Errorf("selected after refilter = %q, want 0-2", sel.ID)
	}
	if m.Position() != "2/2" {
		t.Errorf("Position = %q, want 2/2", m.Position())
	}

	// Selected result filtered out: cursor resets to the top.
	m, _ = m.Update(ui.FilteredMsg{Results: sample()[:1], Total: 3})
	sel, _ = m.SelectedResult()
	if sel.ID != "0-0" {
		t.Errorf("selected = %q, want 0-0", sel.ID)
	}
}

func TestEmptyFilterHint(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m, _ = m.Update(ui.FilteredMsg{Results: nil, Total: 3})
	if !strings.Contains(m.View(), "No results match") {
		t.Errorf("expected no-match hint, got:\n%s", m.View())
	}
	if _, ok := m.SelectedResult(); ok {
		t.Error("SelectedResult should be empty")
	}
}

func TestLoadErrorShownOnlyWhenEmpty(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m, _ = m.Update(ui.ResultsLoadedMsg{Err: errors.New("could not load file")})
	if !strings.Contains(m.View(), "could not load file") {
		t.Errorf("expected error view, got:\n%s", m.View())
	}

	m, _ = m.Update(ui.FilteredMsg{Results: sample(), Total: 3})
	m, _ = m.Update(ui.ResultsLoadedMsg{Err: errors.New("boom")})
	if strings.Contains(m.View(), "boom") {
		t.Error("reload error should not replace the listed results")
	}
}
