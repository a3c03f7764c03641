package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/altin/brunoview/internal/model"
)

// Query is the textual form of a filter set, as received from flags or a
// URL query string. Empty fields keep their defaults.
type Query struct {
	Search  string
	Status  string
	Methods []string
	HTTP    []string
	Runs    []string
	Paths   []string
	Scopes  []string
	Sort    string
}

// ParseQuery reads a Query from URL values. List parameters may repeat or
// hold comma-separated values.
func ParseQuery(v url.Values) Query {
	return Query{
		Search:  v.Get("search"),
		Status:  v.Get("status"),
		Methods: splitList(v["method"]),
		HTTP:    splitList(v["http"]),
		Runs:    splitList(v["run"]),
		Paths:   splitList(v["path"]),
		Scopes:  splitList(v["scope"]),
		Sort:    v.Get("sort"),
	}
}

// Values encodes q for a URL query string.
func (q Query) Values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	setList := func(k string, items []string) {
		if len(items) > 0 {
			v.Set(k, strings.Join(items, ","))
		}
	}
	set("search", q.Search)
	set("status", q.Status)
	setList("method", q.Methods)
	setList("http", q.HTTP)
	setList("run", q.Runs)
	setList("path", q.Paths)
	setList("scope", q.Scopes)
	set("sort", q.Sort)
	return v
}

// Filters validates q and converts it into a filter value layered over
// DefaultFilters.
func (q Query) Filters() (model.Filters, error) {
	f := model.DefaultFilters().WithSearch(q.Search)

	if q.Status != "" {
		if !model.ValidStatus(q.Status) {
			return f, fmt.Errorf("invalid status %q", q.Status)
		}
		f = f.WithStatus(model.Status(q.Status))
	}
	if q.Sort != "" {
		if !model.ValidSortKey(q.Sort) {
			return f, fmt.Errorf("invalid sort %q", q.Sort)
		}
		f = f.WithSort(model.SortKey(q.Sort))
	}
	if len(q.Methods) > 0 {
		methods := make([]string, len(q.Methods))
		for i, m := range q.Methods {
			methods[i] = strings.ToUpper(m)
		}
		f = f.WithMethods(methods...)
	}
	if len(q.HTTP) > 0 {
		buckets := make([]model.Bucket, 0, len(q.HTTP))
		for _, b := range q.HTTP {
			if !model.ValidBucket(b) {
				return f, fmt.Errorf("invalid http bucket %q", b)
			}
			buckets = append(buckets, model.Bucket(b))
		}
		f = f.WithBuckets(buckets...)
	}
	if len(q.Runs) > 0 {
		runs := make([]int, 0, len(q.Runs))
		for _, r := range q.Runs {
			n, err := strconv.Atoi(r)
			if err != nil || n < 0 {
				return f, fmt.Errorf("invalid run %q", r)
			}
			runs = append(runs, n)
		}
		f = f.WithRuns(runs...)
	}
	if len(q.Paths) > 0 {
		f = f.WithPaths(q.Paths...)
	}
	if len(q.Scopes) > 0 {
		scopes := make([]model.Scope, 0, len(q.Scopes))
		for _, s := range q.Scopes {
			if !model.ValidScope(s) {
				return f, fmt.Errorf("invalid search scope %q", s)
			}
			scopes = append(scopes, model.Scope(s))
		}
		f = f.WithScopes(scopes...)
	}
	return f, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
