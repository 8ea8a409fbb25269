package normalize

import (
	"regexp"
	"strings"
)

// listSeparator splits free text lists on newlines, semicolons, bullets and dashes
var listSeparator = regexp.MustCompile(`[\n;•\-]+`)

// List coerces v into a list of trimmed, non-empty strings.
// A list keeps its string entries, a single string is split on listSeparator,
// anything else yields an empty list. The result is never nil.
func List(v any) []string {
	switch val := v.(type) {
	case []string:
		return compact(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return compact(listSeparator.Split(val, -1))
	default:
		return []string{}
	}
}

// Cap keeps the first n entries of list, preserving order
func Cap(list []string, n int) []string {
	if list == nil {
		return []string{}
	}
	if n < 0 {
		n = 0
	}
	if len(list) <= n {
		return list
	}
	return list[:n]
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
