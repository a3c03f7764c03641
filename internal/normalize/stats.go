package normalize

import "github.com/altin/brunoview/internal/model"

type testGroupField struct {
	label string
	key   string
}

var testGroupFields = []testGroupField{
	{"Tests", "testResults"},
	{"Pre-request", "preRequestTestResults"},
	{"Post-response", "postResponseTestResults"},
	{"Assertions", "assertionResults"},
}

// CollectTestStats counts pass and fail items across the four assertion
// groups of a raw result. Items with any other status are not counted.
func CollectTestStats(result map[string]any) model.TestStats {
	stats := model.TestStats{Groups: make([]model.TestGroup, 0, len(testGroupFields))}
	for _, f := range testGroupFields {
		items, _ := result[f.key].([]any)
		if items == nil {
			items = []any{}
		}
		group := model.TestGroup{Label: f.label, Items: items}
		for _, it := range items {
			obj, ok := asObject(it)
			if !ok {
				continue
			}
			switch obj["status"] {
			case "pass":
				group.Pass++
			case "fail":
				group.Fail++
			}
		}
		stats.Pass += group.Pass
		stats.Fail += group.Fail
		stats.Groups = append(stats.Groups, group)
	}
	stats.Total = stats.Pass + stats.Fail
	return stats
}
