package search

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/altin/brunoview/internal/model"
)

// Sort orders results in place. The sort is stable, so equal keys keep
// their normalized order.
func Sort(results []model.Result, key model.SortKey) {
	// Collators keep internal buffers and are not safe to share.
	coll := collate.New(language.Und)

	var less func(a, b model.Result) int
	switch key {
	case model.SortName:
		less = func(a, b model.Result) int { return coll.CompareString(a.Name, b.Name) }
	case model.SortPath:
		less = func(a, b model.Result) int { return coll.CompareString(a.Path, b.Path) }
	case model.SortStream:
		less = func(a, b model.Result) int {
			return cmp.Or(
				cmp.Compare(b.RunIndex, a.RunIndex),
				cmp.Compare(b.IterationIndex, a.IterationIndex),
				cmp.Compare(b.ResultIndex, a.ResultIndex),
			)
		}
	case model.SortDuration:
		less = func(a, b model.Result) int { return cmp.Compare(a.Duration(), b.Duration()) }
	case model.SortHTTP:
		less = func(a, b model.Result) int {
			return cmp.Compare(StatusCode(a.HTTPStatus), StatusCode(b.HTTPStatus))
		}
	default:
		less = func(a, b model.Result) int {
			return cmp.Or(
				cmp.Compare(a.Outcome.Severity(), b.Outcome.Severity()),
				coll.CompareString(a.Name, b.Name),
			)
		}
	}
	slices.SortStableFunc(results, less)
}
