package model

type Outcome string

const (
	OutcomePass  Outcome = "pass"
	OutcomeFail  Outcome = "fail"
	OutcomeError Outcome = "error"
)

// Severity orders outcomes worst first.
func (o Outcome) Severity() int {
	switch o {
	case OutcomeError:
		return 0
	case OutcomeFail:
		return 1
	default:
		return 2
	}
}

func (o Outcome) IsIssue() bool {
	return o == OutcomeFail || o == OutcomeError
}

type TestGroup struct {
	Label string `json:"label"`
	Items []any  `json:"items"`
	Pass  int    `json:"pass"`
	Fail  int    `json:"fail"`
}

type TestStats struct {
	Total  int         `json:"total"`
	Pass   int         `json:"pass"`
	Fail   int         `json:"fail"`
	Groups []TestGroup `json:"groups"`
}

// SearchIndex holds the lowercased identity fields of a result. Data is
// never populated on the entity; blobs live in the search engine's cache.
type SearchIndex struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	URL    string `json:"url"`
	Method string `json:"method"`
	Data   string `json:"data"`
}

type Result struct {
	ID             string         `json:"id"`
	RunIndex       int            `json:"runIndex"`
	ResultIndex    int            `json:"resultIndex"`
	IterationIndex int            `json:"iterationIndex"`
	Name           string         `json:"name"`
	Path           string         `json:"path"`
	PathGroup      string         `json:"pathGroup"`
	Method         string         `json:"method"`
	URL            string         `json:"url"`
	Request        map[string]any `json:"request"`
	Response       map[string]any `json:"response"`
	HTTPStatus     any            `json:"httpStatus,omitempty"`
	StatusText     string         `json:"statusText"`
	RunDuration    *float64       `json:"runDuration,omitempty"`
	Error          any            `json:"error,omitempty"`
	TestStats      TestStats      `json:"testStats"`
	Outcome        Outcome        `json:"outcome"`
	Raw            map[string]any `json:"raw"`
	SearchIndex    SearchIndex    `json:"searchIndex"`
}

// Duration returns the run duration in seconds, 0 when absent.
func (r Result) Duration() float64 {
	if r.RunDuration == nil {
		return 0
	}
	return *r.RunDuration
}

// Dataset is the canonical output of one load. Skipped counts malformed
// result entries that were dropped.
type Dataset struct {
	Runs    []any    `json:"runs"`
	Results []Result `json:"results"`
	Skipped int      `json:"skipped"`
}

func (d Dataset) RunCount() int {
	return len(d.Runs)
}

// ByID returns the result with the given id.
func (d Dataset) ByID(id string) (Result, bool) {
	for _, r := range d.Results {
		if r.ID == id {
			return r, true
		}
	}
	return Result{}, false
}
