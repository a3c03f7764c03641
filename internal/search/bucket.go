package search

import (
	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/normalize"
)

// Bucket groups an HTTP status into a filter chip. Anything without a
// positive numeric reading, or outside 200-599, is other.
func Bucket(status any) model.Bucket {
	code, ok := normalize.ToNumber(status)
	if !ok || code == 0 {
		return model.BucketOther
	}
	switch {
	case code >= 200 && code < 300:
		return model.Bucket2xx
	case code >= 300 && code < 400:
		return model.Bucket3xx
	case code >= 400 && code < 500:
		return model.Bucket4xx
	case code >= 500 && code < 600:
		return model.Bucket5xx
	default:
		return model.BucketOther
	}
}

// StatusCode returns the numeric HTTP status, 0 when absent or non-numeric.
func StatusCode(status any) float64 {
	code, ok := normalize.ToNumber(status)
	if !ok {
		return 0
	}
	return code
}
