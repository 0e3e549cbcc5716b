package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/user/seo-audit-service/internal/entity"
)

// ExtractSuggestions recovers a suggestion record from free model text.
// It tries the whole text, then the outermost {...} span, then that span with
// single quotes swapped for double quotes. Missing keys default to empty values
// and a non-list "suggestions" becomes a one-element list.
func ExtractSuggestions(text string) (entity.Suggestions, error) {
	obj, ok := extractObject(text)
	if !ok {
		return entity.Suggestions{}, ErrUnparsableOutput
	}

	return entity.Suggestions{
		ImprovedTitle:           stringField(obj["improved_title"]),
		ImprovedMetaDescription: stringField(obj["improved_meta_description"]),
		ImprovedH1:              stringField(obj["improved_h1"]),
		SEOSummary:              stringField(obj["seo_summary"]),
		Suggestions:             listField(obj["suggestions"]),
	}, nil
}

func extractObject(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)
	if obj, ok := decodeObject(text); ok {
		return obj, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, false
	}
	candidate := text[start : end+1]
	if obj, ok := decodeObject(candidate); ok {
		return obj, true
	}
	return decodeObject(strings.ReplaceAll(candidate, "'", `"`))
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func listField(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, stringField(item))
		}
		return out
	default:
		return []string{stringField(t)}
	}
}
