package search

import (
	"strings"

	"github.com/altin/brunoview/internal/cache"
	"github.com/altin/brunoview/internal/model"
)

// Engine filters and orders normalized results. It owns the data blob cache
// so results themselves stay immutable.
type Engine struct {
	data *cache.SearchData
}

// New returns an engine backed by sd. A nil cache gets a default-sized one.
func New(sd *cache.SearchData) *Engine {
	if sd == nil {
		sd, _ = cache.NewSearchData(cache.DefaultSize)
	}
	return &Engine{data: sd}
}

// Reset drops cached data blobs and sizes the cache for a dataset of n
// results. Call it whenever the dataset is replaced.
func (e *Engine) Reset(n int) {
	e.data.Reset(n)
}

func (e *Engine) CacheStats() cache.Stats {
	return e.data.Stats()
}

// Filter returns the results matching every filter, ordered by f.Sort. The
// input slice is not modified.
func (e *Engine) Filter(results []model.Result, f model.Filters) []model.Result {
	out := make([]model.Result, 0, len(results))
	for _, r := range results {
		if e.Matches(r, f) {
			out = append(out, r)
		}
	}
	Sort(out, f.Sort)
	return out
}

// Matches applies all filters in f to a single result.
func (e *Engine) Matches(r model.Result, f model.Filters) bool {
	if !f.Status.Matches(r.Outcome) {
		return false
	}
	if len(f.Methods) > 0 && !f.Methods[r.Method] {
		return false
	}
	if !f.HTTP[Bucket(r.HTTPStatus)] {
		return false
	}
	if len(f.Runs) > 0 && !f.Runs[r.RunIndex] {
		return false
	}
	if len(f.Paths) > 0 && !f.Paths[r.PathGroup] {
		return false
	}
	if f.Search == "" {
		return true
	}
	return strings.Contains(e.SearchText(r, f.ActiveScopes()), strings.ToLower(f.Search))
}

// SearchText joins the index fields of the given scopes, each prefixed by a
// space. The data field is built on first use and cached.
func (e *Engine) SearchText(r model.Result, scopes []model.Scope) string {
	if len(scopes) == 0 {
		scopes = model.DefaultScopes
	}
	active := make(map[model.Scope]bool, len(scopes))
	for _, s := range scopes {
		active[s] = true
	}

	var b strings.Builder
	for _, s := range model.Scopes {
		if !active[s] {
			continue
		}
		b.WriteByte(' ')
		switch s {
		case model.ScopeName:
			b.WriteString(r.SearchIndex.Name)
		case model.ScopePath:
			b.WriteString(r.SearchIndex.Path)
		case model.ScopeURL:
			b.WriteString(r.SearchIndex.URL)
		case model.ScopeMethod:
			b.WriteString(r.SearchIndex.Method)
		case model.ScopeData:
			b.WriteString(e.Data(r))
		}
	}
	return b.String()
}

// Data returns the lowercased request/response/tests blob for r.
func (e *Engine) Data(r model.Result) string {
	return e.data.GetOrBuild(r.ID, func() string { return BuildData(r) })
}
