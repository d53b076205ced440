// Package sanitize provides text sanitization for user-provided fields.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes all HTML tags from a string, making it safe for text-only
// display. Tenant dashboards render chat user names and tenant names as plain
// text; the frontend should still escape output.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags.
	return strings.TrimSpace(htmlTagRegex.ReplaceAllString(result, ""))
}

// Text sanitizes a string for storage by stripping HTML and trimming
// surrounding whitespace. Use for names and other free-text fields that
// arrive from chat channels or the admin API.
func Text(s string) string {
	return StripHTML(s)
}
