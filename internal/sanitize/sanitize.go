// Package sanitize strips markup from user supplied text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Text removes every HTML element from s and trims surrounding space.
// Entities escaped by the policy are decoded again so the stored value is
// plain text; output encoding is the renderer's concern.
type Text struct {
	policy *bluemonday.Policy
}

// New returns a sanitizer using the strict policy.
func New() *Text {
	return &Text{policy: bluemonday.StrictPolicy()}
}

// Clean returns the plain text content of s.
func (t *Text) Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(t.policy.Sanitize(s)))
}
