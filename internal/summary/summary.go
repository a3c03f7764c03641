package summary

import (
	"cmp"
	"maps"
	"slices"

	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/search"
)

type Summary struct {
	Total       int      `json:"total"`
	Pass        int      `json:"pass"`
	Fail        int      `json:"fail"`
	Error       int      `json:"error"`
	HTTPBad     int      `json:"httpBad"`
	AvgDuration *float64 `json:"avgDuration,omitempty"`
}

func (s Summary) Issues() int {
	return s.Fail + s.Error
}

// Summarize counts outcomes and 4xx/5xx responses and averages the
// durations that are present.
func Summarize(results []model.Result) Summary {
	s := Summary{Total: len(results)}
	var sum float64
	var n int
	for _, r := range results {
		switch r.Outcome {
		case model.OutcomePass:
			s.Pass++
		case model.OutcomeFail:
			s.Fail++
		case model.OutcomeError:
			s.Error++
		}
		if search.StatusCode(r.HTTPStatus) >= 400 {
			s.HTTPBad++
		}
		if r.RunDuration != nil {
			sum += *r.RunDuration
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		s.AvgDuration = &avg
	}
	return s
}

// Facets are the distinct filter chip values present in a dataset.
type Facets struct {
	Methods    []string `json:"methods"`
	Runs       []int    `json:"runs"`
	PathGroups []string `json:"pathGroups"`
}

func BuildFacets(results []model.Result) Facets {
	methods := map[string]bool{}
	runs := map[int]bool{}
	paths := map[string]bool{}
	for _, r := range results {
		if r.Method != "" {
			methods[r.Method] = true
		}
		runs[r.RunIndex] = true
		paths[r.PathGroup] = true
	}
	return Facets{
		Methods:    slices.Sorted(maps.Keys(methods)),
		Runs:       slices.Sorted(maps.Keys(runs)),
		PathGroups: slices.Sorted(maps.Keys(paths)),
	}
}

// Group is one row of a breakdown table.
type Group struct {
	Key    string `json:"key"`
	Total  int    `json:"total"`
	Issues int    `json:"issues"`
}

// Breakdown groups results by key, worst groups first.
func Breakdown(results []model.Result, key func(model.Result) string) []Group {
	idx := map[string]int{}
	var groups []Group
	for _, r := range results {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Total++
		if r.Outcome.IsIssue() {
			groups[i].Issues++
		}
	}
	slices.SortFunc(groups, func(a, b Group) int {
		return cmp.Or(
			cmp.Compare(b.Issues, a.Issues),
			cmp.Compare(b.Total, a.Total),
			cmp.Compare(a.Key, b.Key),
		)
	})
	return groups
}

func ByPathGroup(r model.Result) string { return r.PathGroup }

func ByBucket(r model.Result) string { return string(search.Bucket(r.HTTPStatus)) }

func ByMethod(r model.Result) string {
	if r.Method == "" {
		return "-"
	}
	return r.Method
}
