package grading

import "strings"

// Normalize trims surrounding whitespace and casefolds, so "  Paris " and
// "paris" compare equal. Interior whitespace is preserved: answers are
// matched exactly beyond trim+lowercase.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
