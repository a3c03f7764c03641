package ui

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cli/go-gh/v2/pkg/jsonpretty"
)

const TruncatedMarker = "\n... truncated ..."

// PrettyJSON renders v with two-space indentation. Strings are shown as-is.
// When limit > 0 and the text is longer than limit characters, the text is
// cut and the truncation marker appended; the second return reports that.
func PrettyJSON(v any, limit int) (string, bool) {
	text := prettyJSON(v)
	if limit <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]) + TruncatedMarker, true
}

func prettyJSON(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var raw bytes.Buffer
	enc := json.NewEncoder(&raw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	var out bytes.Buffer
	if err := jsonpretty.Format(&out, &raw, "  ", false); err != nil {
		return string(bytes.TrimSpace(raw.Bytes()))
	}
	return string(bytes.TrimRight(out.Bytes(), "\n"))
}
