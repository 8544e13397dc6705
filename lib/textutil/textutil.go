package textutil

import (
	"strings"
)

// ContainsAny reports whether text contains at least one of the given
// keywords, ignoring case.
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// SplitList splits delimiter-separated text into trimmed entries,
// dropping empty ones. Commas, semicolons and newlines all count as
// delimiters since source markup is inconsistent about which it uses.
func SplitList(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
