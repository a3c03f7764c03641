package normalize

import (
	"errors"
	"fmt"
)

var (
	ErrNotObjectOrArray = errors.New("expected object or array")
	ErrNoRuns           = errors.New("no runs found")
	ErrMissingResults   = errors.New("missing results array")
)

// Shape is the detected layout of a raw results document.
type Shape int

const (
	Unrecognized Shape = iota
	RunsArray
	FlatResultsArray
	PassthroughArray
	SingleRun
	SingleResult
)

func (s Shape) String() string {
	switch s {
	case RunsArray:
		return "runs array"
	case FlatResultsArray:
		return "flat results array"
	case PassthroughArray:
		return "array"
	case SingleRun:
		return "single run"
	case SingleResult:
		return "single result"
	default:
		return "unrecognized"
	}
}

var resultKeys = []string{
	"request", "response", "testResults", "assertionResults",
	"runDuration", "path", "name", "error",
}

// IsRunWithResults reports whether v is an object whose results field is an array.
func IsRunWithResults(v any) bool {
	obj, ok := asObject(v)
	if !ok {
		return false
	}
	_, isArray := obj["results"].([]any)
	return isArray
}

// IsResultLike reports whether v is an object carrying any result field.
func IsResultLike(v any) bool {
	obj, ok := asObject(v)
	if !ok {
		return false
	}
	for _, k := range resultKeys {
		if _, present := obj[k]; present {
			return true
		}
	}
	return false
}

// Classify picks the normalization case for raw. Precedence matters: an
// array holding a single run is a runs array even if other elements are not.
func Classify(raw any) Shape {
	switch v := raw.(type) {
	case []any:
		for _, el := range v {
			if IsRunWithResults(el) {
				return RunsArray
			}
		}
		if everyElement(v, IsResultLike) {
			return FlatResultsArray
		}
		return PassthroughArray
	default:
		if IsRunWithResults(raw) {
			return SingleRun
		}
		if IsResultLike(raw) {
			return SingleResult
		}
		return Unrecognized
	}
}

// Validate rejects documents that cannot be read as runs or results.
func Validate(raw any) error {
	switch v := raw.(type) {
	case []any:
		if len(v) == 0 {
			return invalid(ErrNoRuns)
		}
		if everyElement(v, IsRunWithResults) || everyElement(v, IsResultLike) {
			return nil
		}
		return invalid(ErrMissingResults)
	case map[string]any:
		if v == nil {
			return invalid(ErrNotObjectOrArray)
		}
		if IsRunWithResults(v) || IsResultLike(v) {
			return nil
		}
		return invalid(ErrMissingResults)
	default:
		return invalid(ErrNotObjectOrArray)
	}
}

func invalid(err error) error {
	return fmt.Errorf("invalid results JSON: %w", err)
}

func everyElement(items []any, pred func(any) bool) bool {
	for _, it := range items {
		if !pred(it) {
			return false
		}
	}
	return true
}
