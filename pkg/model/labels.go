package model

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabeler converts a field name into a display label: separators
// become spaces and every word is title cased ("unit_price" -> "Unit Price").
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	segments := make([]string, 0, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, titleCase(word))
	}
	return strings.Join(segments, " ")
}

// snakeCase maps Go identifiers onto storage style names. Acronym runs stay
// together: "HTTPPort" -> "http_port", "ID" -> "id".
func snakeCase(name string) string {
	var out strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && isUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && isLower(runes[i+1])
			if isLower(prev) || isDigit(prev) || (isUpper(prev) && nextLower) {
				out.WriteRune('_')
			}
		}
		out.WriteString(strings.ToLower(string(r)))
	}
	return out.String()
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func titleCase(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
