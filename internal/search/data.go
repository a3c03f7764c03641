package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/altin/brunoview/internal/model"
)

// MaxDataLen caps the data blob, in characters.
const MaxDataLen = 60000

// dataPayload keeps the field order of the blob. A nil pointer leaves the key
// out; a pointer to nil writes it as null, as for a present "error": null.
type dataPayload struct {
	Request    *any `json:"request,omitempty"`
	Response   *any `json:"response,omitempty"`
	Tests      *any `json:"tests,omitempty"`
	Assertions *any `json:"assertions,omitempty"`
	Error      *any `json:"error,omitempty"`
}

// String is the fallback text when the payload cannot be encoded.
func (p dataPayload) String() string {
	var parts []string
	for _, f := range []struct {
		key string
		v   *any
	}{{"request", p.Request}, {"response", p.Response}, {"tests", p.Tests}, {"assertions", p.Assertions}, {"error", p.Error}} {
		if f.v != nil {
			parts = append(parts, fmt.Sprintf("%s:%v", f.key, *f.v))
		}
	}
	return strings.Join(parts, " ")
}

func present(v any) *any { return &v }

// BuildData serializes the searchable payload of r, truncated and lowercased.
func BuildData(r model.Result) string {
	var p dataPayload
	if r.Request != nil {
		p.Request = present(r.Request)
	}
	if r.Response != nil {
		p.Response = present(r.Response)
	}
	if r.Raw != nil {
		if v, ok := r.Raw["testResults"]; ok {
			p.Tests = present(v)
		}
		if v, ok := r.Raw["assertionResults"]; ok {
			p.Assertions = present(v)
		}
	}
	if _, ok := r.Raw["error"]; ok || r.Error != nil {
		p.Error = present(r.Error)
	}
	return strings.ToLower(Truncate(Stringify(p), MaxDataLen))
}

// Stringify renders v as compact JSON without HTML escaping. Values that
// cannot be encoded fall back to their default text form.
func Stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Truncate keeps at most limit characters of s.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
