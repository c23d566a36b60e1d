package cards

import (
	"strings"

	"golang.org/x/text/width"
)

// ValueSeparator is the internal separator for multi-value fields.
const ValueSeparator = "/"

// placeholder used by the catalog for "no value".
const placeholder = "-"

// NormalizeDelimiters folds full-width forms to their ASCII counterparts so that
// "赤／青" and "赤/青" both use ValueSeparator.
func NormalizeDelimiters(raw string) string {
	return width.Fold.String(raw)
}

// SplitValues parses a delimiter-joined multi-value field (colors, attributes,
// features). Empty tokens and the "-" placeholder are dropped, so the result
// is empty when the field carries no value.
func SplitValues(raw string) []string {
	normalized := NormalizeDelimiters(raw)
	if strings.TrimSpace(normalized) == "" {
		return nil
	}

	parts := strings.Split(normalized, ValueSeparator)
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == placeholder {
			continue
		}
		values = append(values, part)
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

// Intersects reports whether any value in have is present in want.
func Intersects(have []string, want []string) bool {
	if len(have) == 0 || len(want) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(want))
	for _, w := range want {
		set[w] = struct{}{}
	}
	for _, h := range have {
		if _, ok := set[h]; ok {
			return true
		}
	}
	return false
}

// ExtractSeriesID returns the contents of the first 【…】 segment of an
// acquisition string, or "" when there is none.
func ExtractSeriesID(acquisition string) string {
	start := strings.Index(acquisition, "【")
	if start < 0 {
		return ""
	}
	rest := acquisition[start+len("【"):]
	end := strings.Index(rest, "】")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
