package pkg

import "strings"

// NormalizeKey trims surrounding whitespace and upper-cases a license key so
// lookups are insensitive to how a user typed it.
func NormalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// IsBlank reports whether s is empty after trimming whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
