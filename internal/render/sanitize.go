package render

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("span", "div", "kbd", "code")
	p.AllowAttrs("class").Globally()
	return p
}

// Sanitize strips anything outside the user-generated-content policy.
func Sanitize(fragment string) string {
	return policy.Sanitize(fragment)
}

// Hint renders a validator message: ANSI colors become classed spans and
// the result is sanitized.
func Hint(message string) string {
	return Sanitize(ANSIToHTML(message))
}
