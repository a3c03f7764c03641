package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altin/brunoview/internal/api"
	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/tui/confirm"
	"github.com/altin/brunoview/internal/tui/searchbar"
	"github.com/altin/brunoview/internal/ui"
)

const fixture = `[
  {"path": "users/get.bru", "request": {"method": "GET", "url": "http://x/users"}, "response": {"status": 200}},
  {"path": "users/create.bru", "request": {"method": "POST", "url": "http://x/users"}, "response": {"status": 500}},
  {"path": "orders/list.bru", "request": {"method": "GET", "url": "http://x/orders"}, "error": "connection refused"}
]`

type fakeBrowser struct {
	opened []string
	err    error
}

func (f *fakeBrowser) Browse(url string) error {
	f.opened = append(f.opened, url)
	return f.err
}

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func send(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := app.Update(msg)
	return *m.(*App), cmd
}

// loadedApp returns a sized app with the fixture already loaded.
func loadedApp(t *testing.T, opts Options) (App, string) {
	t.Helper()
	path := writeFixture(t, fixture)
	opts.Source = api.FileSource{Path: path}
	app := NewApp(opts)
	app, _ = send(t, app, tea.WindowSizeMsg{Width: 140, Height: 40})
	app, _ = send(t, app, app.load()())
	if !app.hasData {
		t.Fatalf("fixture did not load: %s", app.status)
	}
	return app, path
}

func TestLoadPopulatesViews(t *testing.T) {
	app, _ := loadedApp(t, Options{})

	if got := app.resultsView.Len(); got != 3 {
		t.Fatalf("list has %d results, want 3", got)
	}
	if app.detailsView.Result() == nil {
		t.Error("details pane should show the selected result")
	}
	if !strings.HasPrefix(app.status, "Loaded 3 results") {
		t.Errorf("status = %q", app.status)
	}
	if !strings.Contains(app.View(), "results.json") {
		t.Error("header should name the loaded file")
	}
}

func TestIssuesKeyToggles(t *testing.T) {
	app, _ := loadedApp(t, Options{})

	app, _ = send(t, app, runeKey('i'))
	if app.filters.Status != model.StatusIssues {
		t.Fatalf("status filter = %q", app.filters.Status)
	}
	if len(app.visible) != 2 {
		t.Errorf("issues shows %d results, want 2", len(app.visible))
	}
	for _, r := range app.visible {
		if r.Outcome == model.OutcomePass {
			t.Errorf("passing result %s listed under issues", r.ID)
		}
	}

	app, _ = send(t, app, runeKey('i'))
	if app.filters.Status != model.StatusAll || len(app.visible) != 3 {
		t.Errorf("second i should show all, got %q with %d", app.filters.Status, len(app.visible))
	}
}

func TestSearchNarrowsResults(t *testing.T) {
	app, _ := loadedApp(t, Options{})

	app, _ = send(t, app, searchbar.ChangedMsg{Query: "orders"})
	if len(app.visible) != 1 || app.visible[0].Path != "orders/list.bru" {
		t.Fatalf("visible = %+v", app.visible)
	}
	if app.resultsView.Len() != 1 {
		t.Errorf("list not refreshed, len %d", app.resultsView.Len())
	}

	app, _ = send(t, app, searchbar.ChangedMsg{Query: ""})
	if len(app.visible) != 3 {
		t.Errorf("clearing the search should restore all, got %d", len(app.visible))
	}
}

func TestResetAsksForConfirmation(t *testing.T) {
	app, _ := loadedApp(t, Options{})

	app, _ = send(t, app, runeKey('x'))
	if app.confirmDialog.IsActive() {
		t.Fatal("reset with default filters should not prompt")
	}

	app, _ = send(t, app, runeKey('i'))
	app, _ = send(t, app, runeKey('x'))
	if !app.confirmDialog.IsActive() {
		t.Fatal("expected confirmation dialog")
	}

	app, cmd := send(t, app, runeKey('y'))
	if cmd == nil {
		t.Fatal("confirm should emit a result")
	}
	msg, ok := cmd().(confirm.ResultMsg)
	if !ok || !msg.Confirmed {
		t.Fatalf("unexpected result %+v", msg)
	}
	app, _ = send(t, app, msg)
	if !app.filters.IsDefault() || len(app.visible) != 3 {
		t.Errorf("filters not reset: %+v", app.filters)
	}
	if app.status != "Filters reset" {
		t.Errorf("status = %q", app.status)
	}
}

func TestFailedReloadKeepsData(t *testing.T) {
	app, path := loadedApp(t, Options{})

	if err := os.WriteFile(path, []byte(`{"not": "results"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	app, _ = send(t, app, app.load()())

	if !strings.HasPrefix(app.status, "Error: ") {
		t.Errorf("status = %q", app.status)
	}
	if app.resultsView.Len() != 3 || len(app.loaded.Dataset.Results) != 3 {
		t.Error("previous results should survive a rejected reload")
	}
}

func TestMissingFileReportsCouldNotLoad(t *testing.T) {
	app := NewApp(Options{Source: api.FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}})
	msg := app.load()().(ui.ResultsLoadedMsg)
	if !errors.Is(msg.Err, api.ErrCouldNotLoad) {
		t.Fatalf("err = %v", msg.Err)
	}
	app, _ = send(t, app, msg)
	if app.hasData {
		t.Error("no data expected")
	}
}

func TestFileChangedReloads(t *testing.T) {
	changes := make(chan struct{}, 1)
	app, _ := loadedApp(t, Options{Changes: changes})

	app, cmd := send(t, app, ui.FileChangedMsg{})
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	if app.status != "File changed, reloading..." {
		t.Errorf("status = %q", app.status)
	}

	changes <- struct{}{}
	if _, ok := app.waitForChange()().(ui.FileChangedMsg); !ok {
		t.Error("watcher signal should become FileChangedMsg")
	}
}

func TestOpenUsesBrowser(t *testing.T) {
	b := &fakeBrowser{}
	app, _ := loadedApp(t, Options{Browser: b})

	selected, _ := app.resultsView.SelectedResult()
	app, cmd := send(t, app, runeKey('o'))
	if cmd == nil {
		t.Fatal("expected browse command")
	}
	app, _ = send(t, app, cmd())
	if len(b.opened) != 1 || b.opened[0] != selected.URL {
		t.Errorf("opened %v, want %s", b.opened, selected.URL)
	}
	if app.status != "Opened "+selected.URL {
		t.Errorf("status = %q", app.status)
	}
}

func TestOpenWithoutBrowserShowsURL(t *testing.T) {
	app, _ := loadedApp(t, Options{})
	selected, _ := app.resultsView.SelectedResult()

	app, _ = send(t, app, runeKey('o'))
	if app.status != selected.URL {
		t.Errorf("status = %q, want %q", app.status, selected.URL)
	}
}

func TestEnterOpensRawView(t *testing.T) {
	app, _ := loadedApp(t, Options{})
	selected, _ := app.resultsView.SelectedResult()

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if !app.rawFullScreen {
		t.Fatal("enter should open the raw view")
	}
	if app.rawView.ResultID() != selected.ID {
		t.Errorf("raw view shows %q, want %q", app.rawView.ResultID(), selected.ID)
	}
	if !strings.Contains(app.View(), "Raw JSON") {
		t.Error("raw view not rendered")
	}

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEscape})
	if app.rawFullScreen {
		t.Error("esc should close the raw view")
	}
}

func TestSortKeyCycles(t *testing.T) {
	app, _ := loadedApp(t, Options{})

	app, _ = send(t, app, runeKey('s'))
	if app.filters.Sort != model.SortKeys[1] {
		t.Errorf("sort = %q", app.filters.Sort)
	}
	if app.status != "Sorted by "+string(model.SortKeys[1]) {
		t.Errorf("status = %q", app.status)
	}
}

func TestSummaryTab(t *testing.T) {
	app, _ := loadedApp(t, Options{})

	app, _ = send(t, app, runeKey('2'))
	if app.currentView != ViewSummary {
		t.Fatal("2 should switch to the summary tab")
	}
	if !strings.Contains(app.View(), "Overview (Filtered)") {
		t.Error("summary should render metrics")
	}
}
