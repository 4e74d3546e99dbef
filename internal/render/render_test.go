package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapHTML(t *testing.T) {
	assert.Equal(t, "", WrapHTML("", "p-5"))
	assert.Equal(t, `<div class="p-5">hi</div>`, WrapHTML("hi", "p-5"))
	assert.Equal(t, `<div class="">hi</div>`, WrapHTML("hi", ""))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "Pick one", StripANSI("\x1b[1;32mPick\x1b[0m one"))
	assert.Equal(t, "plain", StripANSI("plain"))
}

func TestANSIToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text is escaped", "a < b", "a &lt; b"},
		{"color span", "\x1b[31mbad\x1b[0m", `<span class="ansi-red">bad</span>`},
		{"combined codes", "\x1b[1;34mx\x1b[0m", `<span class="ansi-bold ansi-blue">x</span>`},
		{"unterminated span is closed", "\x1b[92mok", `<span class="ansi-bright-green">ok</span>`},
		{"non-SGR sequence dropped", "a\x1b[2Kb", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ANSIToHTML(tt.in))
		})
	}
}

func TestHintSanitizes(t *testing.T) {
	out := Hint("\x1b[33mcareful\x1b[0m<script>alert(1)</script>")

	assert.Contains(t, out, `<span class="ansi-yellow">careful</span>`)
	assert.NotContains(t, out, "<script>")
}

func TestSanitizeDropsHandlers(t *testing.T) {
	out := Sanitize(`<div class="x" onclick="steal()">ok</div>`)

	assert.Contains(t, out, `class="x"`)
	assert.NotContains(t, out, "onclick")
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Title\n\nSome `code` here.")
	require.NoError(t, err)

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "<code>code</code>")
}

func TestMarkdownKeepsInlineHTML(t *testing.T) {
	out, err := Markdown("# Create <code>x</code>\n\nPress <kbd>enter</kbd><script>alert(1)</script>")
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>Create <code>x</code></h1>")
	assert.Contains(t, out, "<kbd>enter</kbd>")
	assert.NotContains(t, out, "<script>")
}
