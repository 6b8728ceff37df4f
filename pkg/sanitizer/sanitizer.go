package sanitizer

import (
	"regexp"
	"strings"
)

const (
	// ForbiddenPhrase must never reach the user.
	ForbiddenPhrase = "في شركتنا"
	// ApprovedPhrase replaces every occurrence of ForbiddenPhrase.
	ApprovedPhrase = "في الشركة القابضة"
)

var (
	// Any whitespace run (including NBSP and other Unicode spaces) between the two words.
	forbiddenRX = regexp.MustCompile(`(?i)في[\s\p{Zs}]+شركتنا`)
	spacesRX    = regexp.MustCompile(` {2,}`)
)

// ReplaceForbidden substitutes the forbidden phrase and leaves everything else untouched.
// Streamed fragments go through this one: trimming them would glue words together.
func ReplaceForbidden(text string) string {
	return forbiddenRX.ReplaceAllString(text, ApprovedPhrase)
}

// Sanitize replaces the forbidden phrase, collapses repeated spaces and trims the result.
func Sanitize(text string) string {
	text = ReplaceForbidden(text)
	text = spacesRX.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
