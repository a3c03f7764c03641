package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/altin/brunoview/internal/model"
)

const Uncategorized = "Uncategorized"

var bruSuffix = regexp.MustCompile(`(?i)\.bru$`)

// Normalize converts a decoded results document into the canonical dataset.
// It never fails: malformed runs become empty runs and malformed result
// entries are dropped and counted in Dataset.Skipped.
func Normalize(raw any) model.Dataset {
	runs := runsOf(raw)
	ds := model.Dataset{Runs: runs, Results: []model.Result{}}

	for runIndex, run := range runs {
		runObject := objectOrEmpty(run)
		entries, _ := runObject["results"].([]any)

		n := 0
		for _, entry := range entries {
			obj, ok := asObject(entry)
			if !ok {
				ds.Skipped++
				continue
			}
			ds.Results = append(ds.Results, buildResult(obj, runObject, runIndex, n))
			n++
		}
	}
	return ds
}

func runsOf(raw any) []any {
	switch Classify(raw) {
	case RunsArray, PassthroughArray:
		return raw.([]any)
	case FlatResultsArray:
		return []any{map[string]any{"results": raw}}
	case SingleResult:
		return []any{map[string]any{"results": []any{raw}}}
	default:
		return []any{raw}
	}
}

func buildResult(raw, run map[string]any, runIndex, index int) model.Result {
	request := objectOrEmpty(raw["request"])
	response := objectOrEmpty(raw["response"])
	test := objectOrEmpty(raw["test"])
	testFilename, _ := test["filename"].(string)

	stats := CollectTestStats(raw)
	httpStatus := response["status"]

	fileLabel := testFilename[strings.LastIndex(testFilename, "/")+1:]
	fileLabel = bruSuffix.ReplaceAllString(fileLabel, "")
	name := firstText(raw["name"], fileLabel, raw["path"], request["url"])
	if name == "" {
		name = fmt.Sprintf("Result %d", index+1)
	}

	resultPath := firstText(raw["path"], testFilename)
	method := text(request["method"])
	url := text(request["url"])

	return model.Result{
		ID:             fmt.Sprintf("%d-%d", runIndex, index),
		RunIndex:       runIndex,
		ResultIndex:    index,
		IterationIndex: iterationIndex(raw["iterationIndex"], run["iterationIndex"]),
		Name:           name,
		Path:           resultPath,
		PathGroup:      PathGroup(resultPath),
		Method:         method,
		URL:            url,
		Request:        request,
		Response:       response,
		HTTPStatus:     httpStatus,
		StatusText:     text(response["statusText"]),
		RunDuration:    duration(raw["runDuration"]),
		Error:          raw["error"],
		TestStats:      stats,
		Outcome:        DecideOutcome(raw, stats, httpStatus),
		Raw:            raw,
		SearchIndex:    BuildSearchIndex(name, resultPath, url, method),
	}
}

// PathGroup keeps the first two non-empty segments of p.
func PathGroup(p string) string {
	parts := strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	switch len(parts) {
	case 0:
		return Uncategorized
	case 1:
		return parts[0]
	default:
		return parts[0] + "/" + parts[1]
	}
}

// BuildSearchIndex lowercases the identity fields. Data is left empty.
func BuildSearchIndex(name, path, url, method string) model.SearchIndex {
	return model.SearchIndex{
		Name:   strings.ToLower(name),
		Path:   strings.ToLower(path),
		URL:    strings.ToLower(url),
		Method: strings.ToLower(method),
	}
}

// iterationIndex takes the first non-null candidate with an integer reading.
func iterationIndex(candidates ...any) int {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if f, ok := ToNumber(c); ok && !math.IsInf(f, 0) {
			return int(f)
		}
	}
	return 0
}

func duration(v any) *float64 {
	switch v.(type) {
	case json.Number, float64, int, int64:
	default:
		return nil
	}
	f, ok := ToNumber(v)
	if !ok || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
