package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/altin/brunoview/internal/api"
	"github.com/altin/brunoview/internal/logging"
	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/search"
	"github.com/altin/brunoview/internal/summary"
	"github.com/altin/brunoview/internal/tui/confirm"
	"github.com/altin/brunoview/internal/tui/dashboard"
	"github.com/altin/brunoview/internal/tui/details"
	"github.com/altin/brunoview/internal/tui/filteroverlay"
	"github.com/altin/brunoview/internal/tui/rawview"
	"github.com/altin/brunoview/internal/tui/results"
	"github.com/altin/brunoview/internal/tui/searchbar"
	"github.com/altin/brunoview/internal/ui"
)

type View int

const (
	ViewResults View = iota
	ViewSummary
)

type Pane int

const (
	PaneList Pane = iota
	PaneDetails
)

// Browser opens URLs. The go-gh browser satisfies it.
type Browser interface {
	Browse(url string) error
}

type Options struct {
	Source  api.Source
	Engine  *search.Engine
	Filters model.Filters
	// Changes, when set, triggers a reload on every receive.
	Changes <-chan struct{}
	Browser Browser
	Log     *zap.Logger
}

type App struct {
	source  api.Source
	engine  *search.Engine
	changes <-chan struct{}
	browser Browser
	log     *zap.Logger

	// Data
	loaded  api.Loaded
	hasData bool
	filters model.Filters
	visible []model.Result
	facets  summary.Facets

	// Views
	resultsView   results.Model
	detailsView   details.Model
	rawView       rawview.Model
	searchBar     searchbar.Model
	dashboardView dashboard.Model
	confirmDialog confirm.Model
	filterOverlay filteroverlay.Model

	// State
	currentView   View
	focusedPane   Pane
	rawFullScreen bool
	showHelp      bool
	width         int
	height        int
	status        string
}

func NewApp(opts Options) App {
	engine := opts.Engine
	if engine == nil {
		engine = search.New(nil)
	}
	filters := opts.Filters
	if filters.HTTP == nil {
		filters = model.DefaultFilters()
	}
	sb := searchbar.New()
	sb.SetQuery(filters.Search)
	sb.SetScopes(filters.ActiveScopes())

	return App{
		source:        opts.Source,
		engine:        engine,
		changes:       opts.Changes,
		browser:       opts.Browser,
		log:           logging.OrNop(opts.Log),
		filters:       filters,
		resultsView:   results.New(),
		detailsView:   details.New(),
		rawView:       rawview.New(),
		searchBar:     sb,
		dashboardView: dashboard.New(),
		currentView:   ViewResults,
		focusedPane:   PaneList,
		status:        "Loading results...",
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.load(), a.waitForChange())
}

// --- Commands ---

func (a App) load() tea.Cmd {
	src := a.source
	return func() tea.Msg {
		if src == nil {
			return ui.ResultsLoadedMsg{Err: fmt.Errorf("%w: no results file configured", api.ErrCouldNotLoad)}
		}
		loaded, err := api.Load(context.Background(), src)
		return ui.ResultsLoadedMsg{Loaded: loaded, Err: err}
	}
}

func (a App) waitForChange() tea.Cmd {
	ch := a.changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ui.FileChangedMsg{}
	}
}

func (a App) browse(url string) tea.Cmd {
	b := a.browser
	return func() tea.Msg {
		if err := b.Browse(url); err != nil {
			return ui.StatusMsg{Text: "Could not open browser: " + err.Error()}
		}
		return ui.StatusMsg{Text: "Opened " + url}
	}
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Results of modal views arrive after they deactivate themselves.
	switch msg := msg.(type) {
	case confirm.ResultMsg:
		if msg.Confirmed && msg.Action == confirm.ActionResetFilters {
			a.setFilters(model.DefaultFilters())
			a.status = "Filters reset"
		}
		return &a, a.refilter()

	case filteroverlay.ResultMsg:
		if msg.Applied {
			a.setFilters(msg.Filters)
			cmd := a.refilter()
			a.status = a.filterStatus()
			return &a, cmd
		}
		return &a, nil

	case searchbar.ChangedMsg:
		a.filters = a.filters.WithSearch(msg.Query)
		return &a, a.refilter()

	case searchbar.ToggleDataMsg:
		a.filters = a.filters.ToggleScope(model.ScopeData)
		a.searchBar.SetScopes(a.filters.ActiveScopes())
		return &a, a.refilter()
	}

	if a.confirmDialog.IsActive() {
		var cmd tea.Cmd
		a.confirmDialog, cmd = a.confirmDialog.Update(msg)
		return &a, cmd
	}
	if a.filterOverlay.IsActive() {
		var cmd tea.Cmd
		a.filterOverlay, cmd = a.filterOverlay.Update(msg)
		return &a, cmd
	}
	if a.searchBar.IsActive() {
		if _, isKey := msg.(tea.KeyMsg); isKey {
			var cmd tea.Cmd
			a.searchBar, cmd = a.searchBar.Update(msg)
			return &a, cmd
		}
	}
	// Raw view search input swallows keys.
	if _, isKey := msg.(tea.KeyMsg); isKey && a.rawFullScreen && a.rawView.IsSearching() {
		var cmd tea.Cmd
		a.rawView, cmd = a.rawView.Update(msg)
		return &a, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSize()

	case ui.ResultsLoadedMsg:
		cmds = append(cmds, a.handleLoaded(msg))

	case ui.FileChangedMsg:
		a.status = "File changed, reloading..."
		cmds = append(cmds, a.load(), a.waitForChange())

	case ui.StatusMsg:
		a.status = msg.Text

	case dashboard.ScopeChangedMsg:
		a.updateMetrics()

	case tea.KeyMsg:
		if a.showHelp {
			a.showHelp = false
			return &a, nil
		}
		if cmd, handled := a.handleKey(msg); handled {
			return &a, cmd
		}
		cmds = append(cmds, a.forwardKey(msg))

	default:
		cmds = append(cmds, a.forwardKey(msg))
	}

	return &a, tea.Batch(cmds...)
}

func (a *App) handleLoaded(msg ui.ResultsLoadedMsg) tea.Cmd {
	var cmd tea.Cmd
	a.resultsView, cmd = a.resultsView.Update(msg)

	if msg.Err != nil {
		fields := []zap.Field{zap.String("source", a.sourceName()), zap.Error(msg.Err)}
		if errors.Is(msg.Err, api.ErrCouldNotLoad) {
			a.log.Error("load failed", fields...)
		} else {
			a.log.Warn("rejected results document", fields...)
		}
		a.status = "Error: " + msg.Err.Error()
		return cmd
	}

	a.loaded = msg.Loaded
	a.hasData = true
	a.engine.Reset(len(a.loaded.Dataset.Results))
	a.facets = summary.BuildFacets(a.loaded.Dataset.Results)

	ds := a.loaded.Dataset
	a.log.Info("results loaded",
		zap.String("source", a.sourceName()),
		zap.String("shape", a.loaded.Shape.String()),
		zap.Int("results", len(ds.Results)),
		zap.Int("runs", ds.RunCount()),
		zap.Int("skipped", ds.Skipped))
	a.status = fmt.Sprintf("Loaded %d results", len(ds.Results))
	if ds.Skipped > 0 {
		a.status += fmt.Sprintf(" (%d malformed entries skipped)", ds.Skipped)
	}

	return tea.Batch(cmd, a.refilter())
}

// refilter recomputes the visible results and pushes them to the views.
func (a *App) refilter() tea.Cmd {
	if !a.hasData {
		return nil
	}
	all := a.loaded.Dataset.Results
	a.visible = a.engine.Filter(all, a.filters)

	var cmd tea.Cmd
	a.resultsView, cmd = a.resultsView.Update(ui.FilteredMsg{Results: a.visible, Total: len(all)})
	a.syncSelection()
	a.updateMetrics()
	return cmd
}

func (a *App) syncSelection() {
	r, ok := a.resultsView.SelectedResult()
	if !ok {
		a.detailsView.SetResult(nil)
		return
	}
	a.detailsView.SetResult(&r)
	if a.rawFullScreen && a.rawView.ResultID() == r.ID {
		a.rawView.UpdateResult(r)
	}
}

func (a *App) updateMetrics() {
	if !a.hasData {
		return
	}
	set := a.visible
	if a.dashboardView.Scope() == dashboard.ScopeAll {
		set = a.loaded.Dataset.Results
	}
	met := dashboard.ComputeMetrics(set)
	a.dashboardView.SetMetrics(&met)
}

func (a *App) setFilters(f model.Filters) {
	a.filters = f
	a.searchBar.SetQuery(f.Search)
	a.searchBar.SetScopes(f.ActiveScopes())
}

// handleKey runs app-level bindings. It reports false for keys that belong
// to the focused pane.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, ui.Keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, ui.Keys.Help):
		a.showHelp = true
		return nil, true

	case key.Matches(msg, ui.Keys.Back):
		if a.rawFullScreen {
			a.rawFullScreen = false
			return nil, true
		}
		if a.focusedPane == PaneDetails {
			a.focusedPane = PaneList
			return nil, true
		}
		return nil, true

	case key.Matches(msg, ui.Keys.Results):
		a.currentView = ViewResults
		a.rawFullScreen = false
		return nil, true

	case key.Matches(msg, ui.Keys.Summary):
		a.currentView = ViewSummary
		a.rawFullScreen = false
		a.updateMetrics()
		return nil, true

	case key.Matches(msg, ui.Keys.Reload):
		a.status = "Reloading..."
		return a.load(), true

	case key.Matches(msg, ui.Keys.Filter):
		a.filterOverlay = filteroverlay.New(a.filters, a.facets)
		a.filterOverlay.SetSize(a.width, a.height)
		return nil, true

	case key.Matches(msg, ui.Keys.Reset):
		if a.filters.IsDefault() && a.filters.Sort == model.SortStatus {
			a.status = "Filters are already at their defaults"
			return nil, true
		}
		details := a.filters.SummaryParts()
		if a.filters.Sort != model.SortStatus {
			details = append(details, "sort:"+string(a.filters.Sort))
		}
		a.confirmDialog = confirm.New("Reset filters", "Clear these and show every result?",
			confirm.ActionResetFilters, details...)
		return nil, true

	case key.Matches(msg, ui.Keys.Issues):
		if a.filters.Status == model.StatusIssues {
			a.filters = a.filters.WithStatus(model.StatusAll)
		} else {
			a.filters = a.filters.WithStatus(model.StatusIssues)
		}
		cmd := a.refilter()
		a.status = a.filterStatus()
		return cmd, true

	case key.Matches(msg, ui.Keys.Sort):
		a.filters = a.filters.WithSort(nextSort(a.filters.Sort))
		a.status = "Sorted by " + string(a.filters.Sort)
		return a.refilter(), true
	}

	if a.currentView != ViewResults {
		return nil, false
	}

	switch {
	case key.Matches(msg, ui.Keys.Tab), key.Matches(msg, ui.Keys.ShiftTab):
		if !a.rawFullScreen {
			if a.focusedPane == PaneList {
				a.focusedPane = PaneDetails
			} else {
				a.focusedPane = PaneList
			}
		}
		return nil, true

	case key.Matches(msg, ui.Keys.Search):
		if a.rawFullScreen {
			return nil, false
		}
		return a.searchBar.Activate(), true

	case key.Matches(msg, ui.Keys.Enter):
		if r, ok := a.resultsView.SelectedResult(); ok && !a.rawFullScreen {
			a.rawView.SetResult(r)
			a.rawFullScreen = true
			return nil, true
		}
		return nil, false

	case key.Matches(msg, ui.Keys.Open):
		r, ok := a.resultsView.SelectedResult()
		if !ok || r.URL == "" {
			a.status = "Selected result has no URL"
			return nil, true
		}
		if a.browser == nil {
			a.status = r.URL
			return nil, true
		}
		return a.browse(r.URL), true
	}
	return nil, false
}

// forwardKey hands a message to whichever pane owns input right now.
func (a *App) forwardKey(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.currentView == ViewSummary:
		a.dashboardView, cmd = a.dashboardView.Update(msg)
	case a.rawFullScreen:
		a.rawView, cmd = a.rawView.Update(msg)
	case a.focusedPane == PaneDetails:
		a.detailsView, cmd = a.detailsView.Update(msg)
	default:
		before, _ := a.resultsView.SelectedResult()
		a.resultsView, cmd = a.resultsView.Update(msg)
		if after, ok := a.resultsView.SelectedResult(); ok && after.ID != before.ID {
			a.syncSelection()
		}
	}
	return cmd
}

func nextSort(k model.SortKey) model.SortKey {
	for i, s := range model.SortKeys {
		if s == k {
			return model.SortKeys[(i+1)%len(model.SortKeys)]
		}
	}
	return model.SortKeys[0]
}

func (a App) filterStatus() string {
	if s := a.filters.Summary(); s != "" {
		return fmt.Sprintf("%d/%d shown  |  %s", len(a.visible), len(a.loaded.Dataset.Results), s)
	}
	return fmt.Sprintf("%d results", len(a.loaded.Dataset.Results))
}

func (a App) sourceName() string {
	if a.source == nil {
		return "-"
	}
	return a.source.Describe()
}

func (a *App) propagateSize() {
	// header(1) + tabs(1) + status(1) + pane borders(2)
	contentH := max(a.height-5, 1)

	leftW := a.width * 45 / 100
	midW := max(a.width-leftW-4, 1)

	// One line above the list is kept for the search bar.
	listH := max(contentH-1, 1)
	a.searchBar.SetWidth(leftW)

	a.resultsView, _ = a.resultsView.Update(tea.WindowSizeMsg{Width: leftW, Height: listH})
	a.detailsView, _ = a.detailsView.Update(tea.WindowSizeMsg{Width: midW, Height: contentH})
	a.rawView, _ = a.rawView.Update(tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
	a.dashboardView, _ = a.dashboardView.Update(tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
	a.filterOverlay.SetSize(a.width, a.height)
}

// --- View ---

func (a App) View() string {
	ds := a.loaded.Dataset
	header := RenderHeader(a.headerSource(), len(ds.Results), ds.RunCount(), ds.Skipped, a.width)
	tabs := a.renderTabs()

	var content string
	contentH := max(a.height-5, 1)
	switch a.currentView {
	case ViewResults:
		content = a.renderResultsLayout(contentH)
	case ViewSummary:
		style := ui.StylePaneFocused.Width(a.width - 2).Height(contentH)
		content = style.Render(a.dashboardView.View())
	}

	if a.showHelp {
		content = a.renderHelp(contentH)
	} else if a.confirmDialog.IsActive() {
		content = lipgloss.Place(a.width, contentH+2, lipgloss.Center, lipgloss.Center, a.confirmDialog.View())
	} else if a.filterOverlay.IsActive() {
		content = a.filterOverlay.View()
	}

	statusBar := RenderStatusBar(a.status, a.contextHints(), a.width)

	// Never overflow the terminal: header, tabs and status bar take 3 lines.
	if maxContentLines := a.height - 3; maxContentLines > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > maxContentLines {
			content = strings.Join(lines[:maxContentLines], "\n")
		}
	}

	return header + "\n" + tabs + "\n" + content + "\n" + statusBar
}

func (a App) headerSource() string {
	if a.hasData && a.loaded.Document.Name != "" {
		return fmt.Sprintf("%s (%s)", a.loaded.Document.Name, summary.FormatBytes(a.loaded.Document.Size))
	}
	return a.sourceName()
}

func (a App) renderTabs() string {
	tabStyle := lipgloss.NewStyle().Padding(0, 2)
	activeTab := tabStyle.Bold(true).Foreground(ui.ColorPrimary)
	inactiveTab := tabStyle.Foreground(ui.ColorMuted)

	resultsLabel := "[1] Results"
	if a.hasData {
		resultsLabel = fmt.Sprintf("[1] Results %s", a.resultsView.Position())
	}
	if s := a.filters.Summary(); s != "" {
		resultsLabel += fmt.Sprintf(" (%s)", s)
	}
	summaryLabel := "[2] Summary"

	resultsTab := inactiveTab.Render(resultsLabel)
	summaryTab := inactiveTab.Render(summaryLabel)
	switch a.currentView {
	case ViewResults:
		resultsTab = activeTab.Render(resultsLabel)
	case ViewSummary:
		summaryTab = activeTab.Render(summaryLabel)
	}

	sortLabel := ui.StyleMuted.Render("sort: " + string(a.filters.Sort))
	return lipgloss.JoinHorizontal(lipgloss.Top, resultsTab, summaryTab, sortLabel)
}

func (a App) renderResultsLayout(contentH int) string {
	if a.rawFullScreen {
		style := ui.StylePaneFocused.Width(a.width - 2).Height(contentH)
		return style.Render(a.rawView.View())
	}

	leftW := a.width * 45 / 100
	midW := max(a.width-leftW-4, 1)

	leftStyle := ui.StylePane.Width(leftW).Height(contentH)
	midStyle := ui.StylePane.Width(midW).Height(contentH)
	if a.focusedPane == PaneList {
		leftStyle = ui.StylePaneFocused.Width(leftW).Height(contentH)
	} else {
		midStyle = ui.StylePaneFocused.Width(midW).Height(contentH)
	}

	bar := a.searchBar.View()
	if bar == "" {
		bar = ui.StyleMuted.Render(" / to search")
	}
	listView := bar + "\n" + a.resultsView.View()

	left := leftStyle.Render(listView)
	mid := midStyle.Render(a.detailsView.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, mid)
}

func (a App) contextHints() string {
	switch {
	case a.searchBar.IsActive():
		return "type to search  tab:data scope  enter:keep  esc:undo"
	case a.filterOverlay.IsActive():
		return "j/k:field  h/l:move  space:toggle  a:apply  esc:cancel"
	case a.currentView == ViewSummary:
		return "[:filtered  ]:all  j/k:scroll  1:results  ?:help"
	case a.rawFullScreen:
		if a.rawView.IsSearching() {
			return "enter:confirm  esc:cancel"
		}
		return "/:search  n/N:match  e:full  g/G:top/bot  esc:back"
	}

	legend := fmt.Sprintf("%s=pass %s=fail %s=error",
		ui.OutcomeIcon("pass"), ui.OutcomeIcon("fail"), ui.OutcomeIcon("error"))
	if a.focusedPane == PaneDetails {
		return legend + "  |  j/k:scroll  e:full body  enter:raw  tab:pane  ?:help"
	}
	return legend + "  |  /:search  f:filter  i:issues  s:sort  x:reset  o:open  r:reload  ?:help"
}

func (a App) renderHelp(contentH int) string {
	bold := ui.StyleBold
	keyStyle := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Width(14)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))

	row := func(k, d string) string {
		return "  " + keyStyle.Render(k) + desc.Render(d) + "\n"
	}

	var b strings.Builder
	b.WriteString("\n" + bold.Render("  Navigation") + "\n\n")
	b.WriteString(row("1 / 2", "Switch tab: Results, Summary"))
	b.WriteString(row("tab", "Switch pane"))
	b.WriteString(row("j / k", "Move down / up"))
	b.WriteString(row("enter", "Raw JSON of the selected result"))
	b.WriteString(row("esc", "Back"))
	b.WriteString(row("q", "Quit"))

	b.WriteString("\n" + bold.Render("  Filtering") + "\n\n")
	b.WriteString(row("/", "Search (tab adds the data scope)"))
	b.WriteString(row("f", "Filter chips: status, method, HTTP, run, path, scope"))
	b.WriteString(row("i", "Toggle issues only"))
	b.WriteString(row("s", "Cycle sort: "+joinSortKeys()))
	b.WriteString(row("x", "Reset all filters"))

	b.WriteString("\n" + bold.Render("  Results") + "\n\n")
	b.WriteString(row("o", "Open request URL in browser"))
	b.WriteString(row("r", "Reload the results file"))
	b.WriteString(row("e", "Show full body / raw entry"))

	b.WriteString("\n" + bold.Render("  Raw JSON") + "\n\n")
	b.WriteString(row("/", "Search in entry"))
	b.WriteString(row("n / N", "Next / previous match"))
	b.WriteString(row("g / G", "Go to top / bottom"))

	b.WriteString("\n" + bold.Render("  Summary") + "\n\n")
	b.WriteString(row("[ / ]", "Filtered results / all results"))

	b.WriteString("\n" + ui.StyleMuted.Render("  Press any key to close") + "\n")

	style := ui.StylePaneFocused.Width(a.width - 2).Height(contentH)
	return style.Render(b.String())
}

func joinSortKeys() string {
	keys := make([]string, len(model.SortKeys))
	for i, k := range model.SortKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}
