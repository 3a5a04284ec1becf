package rules

import (
	"html"
	"strings"
	"unicode/utf8"
)

// EscapeHTML makes user text safe to embed in markup.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Truncate shortens text to limit runes, appending "..." when cut.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		limit = 50
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(text string) string {
	if text == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(text)
	return strings.ToUpper(string(r)) + strings.ToLower(text[size:])
}
