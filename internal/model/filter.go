package model

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

type Status string

const (
	StatusAll    Status = "all"
	StatusIssues Status = "issues"
	StatusPass   Status = Status(OutcomePass)
	StatusFail   Status = Status(OutcomeFail)
	StatusError  Status = Status(OutcomeError)
)

// Statuses lists the status chips in display order.
var Statuses = []Status{StatusIssues, StatusAll, StatusPass, StatusFail, StatusError}

func (s Status) Matches(o Outcome) bool {
	switch s {
	case StatusAll, "":
		return true
	case StatusIssues:
		return o.IsIssue()
	default:
		return Outcome(s) == o
	}
}

type Bucket string

const (
	Bucket2xx   Bucket = "2xx"
	Bucket3xx   Bucket = "3xx"
	Bucket4xx   Bucket = "4xx"
	Bucket5xx   Bucket = "5xx"
	BucketOther Bucket = "other"
)

var Buckets = []Bucket{Bucket2xx, Bucket3xx, Bucket4xx, Bucket5xx, BucketOther}

type Scope string

const (
	ScopeName   Scope = "name"
	ScopePath   Scope = "path"
	ScopeURL    Scope = "url"
	ScopeMethod Scope = "method"
	ScopeData   Scope = "data"
)

// Scopes lists every search scope in the order their fields are joined.
var Scopes = []Scope{ScopeName, ScopePath, ScopeURL, ScopeMethod, ScopeData}

// DefaultScopes never includes data.
var DefaultScopes = []Scope{ScopeName, ScopePath, ScopeURL, ScopeMethod}

type SortKey string

const (
	SortStatus   SortKey = "status"
	SortName     SortKey = "name"
	SortStream   SortKey = "stream"
	SortDuration SortKey = "duration"
	SortHTTP     SortKey = "http"
	SortPath     SortKey = "path"
)

var SortKeys = []SortKey{SortStatus, SortStream, SortName, SortPath, SortDuration, SortHTTP}

func ValidSortKey(s string) bool {
	return slices.Contains(SortKeys, SortKey(s))
}

func ValidBucket(s string) bool {
	return slices.Contains(Buckets, Bucket(s))
}

func ValidScope(s string) bool {
	return slices.Contains(Scopes, Scope(s))
}

func ValidStatus(s string) bool {
	return slices.Contains(Statuses, Status(s))
}

// Filters is an immutable filter value. Every With/Toggle method returns a
// new value and leaves the receiver's sets untouched.
type Filters struct {
	Search  string
	Status  Status
	Methods map[string]bool
	HTTP    map[Bucket]bool
	Runs    map[int]bool
	Paths   map[string]bool
	Scopes  map[Scope]bool
	Sort    SortKey
}

func DefaultFilters() Filters {
	return Filters{
		Status:  StatusAll,
		Methods: map[string]bool{},
		HTTP:    setOf(Buckets),
		Runs:    map[int]bool{},
		Paths:   map[string]bool{},
		Scopes:  setOf(DefaultScopes),
		Sort:    SortStatus,
	}
}

func (f Filters) clone() Filters {
	f.Methods = maps.Clone(f.Methods)
	f.HTTP = maps.Clone(f.HTTP)
	f.Runs = maps.Clone(f.Runs)
	f.Paths = maps.Clone(f.Paths)
	f.Scopes = maps.Clone(f.Scopes)
	return f
}

// WithSearch stores the query lowercased and trimmed.
func (f Filters) WithSearch(q string) Filters {
	f = f.clone()
	f.Search = strings.ToLower(strings.TrimSpace(q))
	return f
}

func (f Filters) WithStatus(s Status) Filters {
	f = f.clone()
	f.Status = s
	return f
}

func (f Filters) WithSort(k SortKey) Filters {
	f = f.clone()
	f.Sort = k
	return f
}

func (f Filters) WithMethods(methods ...string) Filters {
	f = f.clone()
	f.Methods = setOf(methods)
	return f
}

func (f Filters) WithBuckets(buckets ...Bucket) Filters {
	f = f.clone()
	f.HTTP = setOf(buckets)
	return f
}

func (f Filters) WithRuns(runs ...int) Filters {
	f = f.clone()
	f.Runs = setOf(runs)
	return f
}

func (f Filters) WithPaths(paths ...string) Filters {
	f = f.clone()
	f.Paths = setOf(paths)
	return f
}

func (f Filters) WithScopes(scopes ...Scope) Filters {
	f = f.clone()
	f.Scopes = setOf(scopes)
	return f
}

// ToggleMethod flips one method. An empty set means every method is
// selected, so it is expanded to all before toggling.
func (f Filters) ToggleMethod(method string, all []string) Filters {
	f = f.clone()
	f.Methods = toggle(f.Methods, method, all, 0)
	return f
}

func (f Filters) ToggleBucket(b Bucket) Filters {
	f = f.clone()
	f.HTTP = toggle(f.HTTP, b, nil, 0)
	return f
}

// ToggleRun flips one run. The last selected run cannot be removed.
func (f Filters) ToggleRun(run int, all []int) Filters {
	f = f.clone()
	f.Runs = toggle(f.Runs, run, all, 1)
	return f
}

// SelectPath narrows to a single path group, or to all when group is empty.
func (f Filters) SelectPath(group string) Filters {
	f = f.clone()
	f.Paths = map[string]bool{}
	if group != "" {
		f.Paths[group] = true
	}
	return f
}

// ToggleScope flips one search scope. The scope set never becomes empty.
func (f Filters) ToggleScope(s Scope) Filters {
	f = f.clone()
	if len(f.Scopes) == 0 {
		f.Scopes = setOf(DefaultScopes)
	}
	f.Scopes = toggle(f.Scopes, s, nil, 1)
	return f
}

// ActiveScopes returns the scopes participating in search, in join order.
func (f Filters) ActiveScopes() []Scope {
	var out []Scope
	for _, s := range Scopes {
		if f.Scopes[s] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return DefaultScopes
	}
	return out
}

// IsDefault reports whether f selects the same results as DefaultFilters.
func (f Filters) IsDefault() bool {
	d := DefaultFilters()
	return f.Search == "" &&
		(f.Status == d.Status || f.Status == "") &&
		len(f.Methods) == 0 && len(f.Runs) == 0 && len(f.Paths) == 0 &&
		maps.Equal(f.HTTP, d.HTTP)
}

// Summary describes the active non-default filters.
func (f Filters) Summary() string {
	return strings.Join(f.SummaryParts(), " ")
}

// SummaryParts lists the active non-default filters, one per entry.
func (f Filters) SummaryParts() []string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, "search:"+f.Search)
	}
	if f.Status != "" && f.Status != StatusAll {
		parts = append(parts, "status:"+string(f.Status))
	}
	if len(f.Methods) > 0 {
		parts = append(parts, "method:"+strings.Join(sortedKeys(f.Methods), ","))
	}
	if len(f.HTTP) != len(Buckets) {
		var bs []string
		for _, b := range Buckets {
			if f.HTTP[b] {
				bs = append(bs, string(b))
			}
		}
		if len(bs) == 0 {
			bs = []string{"none"}
		}
		parts = append(parts, "http:"+strings.Join(bs, ","))
	}
	if len(f.Runs) > 0 {
		runs := slices.Sorted(maps.Keys(f.Runs))
		var rs []string
		for _, r := range runs {
			rs = append(rs, "#"+strconv.Itoa(r+1))
		}
		parts = append(parts, "run:"+strings.Join(rs, ","))
	}
	if len(f.Paths) > 0 {
		parts = append(parts, "path:"+strings.Join(sortedKeys(f.Paths), ","))
	}
	return parts
}

func setOf[T comparable](items []T) map[T]bool {
	m := make(map[T]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

func toggle[T comparable](set map[T]bool, v T, all []T, min int) map[T]bool {
	if set == nil {
		set = map[T]bool{}
	}
	if len(set) == 0 && len(all) > 0 {
		set = setOf(all)
	}
	if set[v] {
		if len(set) <= min {
			return set
		}
		delete(set, v)
		return set
	}
	set[v] = true
	return set
}

func sortedKeys(m map[string]bool) []string {
	return slices.Sorted(maps.Keys(m))
}
