package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"number", `42`, ErrNotObjectOrArray},
		{"null", `null`, ErrNotObjectOrArray},
		{"string", `"x"`, ErrNotObjectOrArray},
		{"empty array", `[]`, ErrNoRuns},
		{"runs", `[{"results": []}, {"results": [{"name": "a"}]}]`, nil},
		{"results", `[{"name": "a"}, {"request": {}}]`, nil},
		{"mixed run and garbage", `[{"results": []}, 5]`, ErrMissingResults},
		{"mixed result and garbage", `[{"name": "a"}, {"foo": 1}]`, ErrMissingResults},
		{"single run", `{"results": []}`, nil},
		{"single result", `{"error": null}`, nil},
		{"results not array", `{"results": {}}`, ErrMissingResults},
		{"empty object", `{}`, ErrMissingResults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(decode(t, tt.input))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "invalid results JSON")
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  Shape
	}{
		{`[{"results": []}, 5]`, RunsArray},
		{`[{"name": "a"}, {"path": "b"}]`, FlatResultsArray},
		{`[1, 2]`, PassthroughArray},
		{`[]`, FlatResultsArray},
		{`{"results": [], "name": "x"}`, SingleRun},
		{`{"name": "x"}`, SingleResult},
		{`{"foo": 1}`, Unrecognized},
		{`"str"`, Unrecognized},
	}
	for _, tt := range tests {
		if got := Classify(decode(t, tt.input)); got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
