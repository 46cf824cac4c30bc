// Package security strips markup from user supplied text before it is stored.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer removes HTML from free-text fields.
type TextSanitizer interface {
	Sanitize(s string) string
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer returns a sanitizer that allows no elements at all.
// The policy is safe for concurrent use.
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxPasses bounds how many layers of entity encoding are peeled off.
const maxPasses = 8

// Sanitize drops every tag (and the content of script/style) and returns
// plain text. The policy escapes entities, so they are unescaped again to
// keep "Q&A" as typed. Unescaping can turn "&lt;b&gt;" into a tag, so
// sanitize and unescape repeat until the text no longer changes. Input that
// is still changing after maxPasses is returned in its escaped form.
func (s *textSanitizer) Sanitize(in string) string {
	if in == "" {
		return ""
	}

	out := in
	for range maxPasses {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(s.policy.Sanitize(out))
}
