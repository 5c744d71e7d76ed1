// Package normalize holds small input canonicalization helpers.
package normalize

import "strings"

// Email returns a normalized form of an email address suitable for
// storage and comparisons: surrounding whitespace trimmed and the
// address lower-cased.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Query trims a free-text search query. An all-whitespace query
// normalizes to the empty string, which callers reject.
func Query(q string) string {
	return strings.TrimSpace(q)
}
