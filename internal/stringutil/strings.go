// Package stringutil provides common string manipulation utilities.
package stringutil

import "strings"

// IsNumeric checks if a string contains only digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SplitNames splits a free-form people list on commas, ampersands and the
// word "and". Used for coordinator fields that arrive as a single cell like
// "A. Sharma & B. Gupta" or "X, Y and Z".
//
// Example:
//
//	SplitNames("A. Sharma & B. Gupta") returns ["A. Sharma", "B. Gupta"]
//	SplitNames("X, Y and Z") returns ["X", "Y", "Z"]
func SplitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	// Normalize all separators to commas, then split once.
	replaced := strings.ReplaceAll(s, "&", ",")
	replaced = strings.ReplaceAll(replaced, " and ", ",")
	replaced = strings.ReplaceAll(replaced, " AND ", ",")
	replaced = strings.ReplaceAll(replaced, " And ", ",")

	parts := strings.Split(replaced, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

// Initials returns the concatenated first letters of each word in s,
// lowercased. Words shorter than one rune are skipped.
//
// Example:
//
//	Initials("Safety Management System") returns "sms"
func Initials(s string) string {
	var b strings.Builder
	for _, word := range strings.Fields(s) {
		for _, r := range word {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToLower(b.String())
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// truncation happened. Returns s unchanged when it already fits.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
