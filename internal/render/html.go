package render

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;?]*[ -/]*[@-~]")

// WrapHTML wraps a non-empty fragment in a div carrying the container
// classes. Empty input stays empty so the host can clear the area.
func WrapHTML(fragment, classes string) string {
	if fragment == "" {
		return ""
	}
	return `<div class="` + html.EscapeString(classes) + `">` + fragment + `</div>`
}

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

var ansiColors = [8]string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}

// ANSIToHTML escapes s and converts SGR escape sequences into spans with
// ansi-* classes. Other escape sequences are dropped.
func ANSIToHTML(s string) string {
	var (
		sb      strings.Builder
		open    int
		last    int
		matches = ansiPattern.FindAllStringIndex(s, -1)
	)

	for _, m := range matches {
		sb.WriteString(html.EscapeString(s[last:m[0]]))
		last = m[1]

		seq := s[m[0]:m[1]]
		if !strings.HasSuffix(seq, "m") {
			continue
		}
		classes, reset := sgrClasses(seq[2 : len(seq)-1])
		if reset {
			for ; open > 0; open-- {
				sb.WriteString("</span>")
			}
		}
		if len(classes) > 0 {
			sb.WriteString(`<span class="` + strings.Join(classes, " ") + `">`)
			open++
		}
	}
	sb.WriteString(html.EscapeString(s[last:]))
	for ; open > 0; open-- {
		sb.WriteString("</span>")
	}
	return sb.String()
}

func sgrClasses(params string) (classes []string, reset bool) {
	if params == "" {
		return nil, true
	}
	for _, p := range strings.Split(params, ";") {
		code, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		switch {
		case code == 0:
			reset = true
		case code == 1:
			classes = append(classes, "ansi-bold")
		case code == 3:
			classes = append(classes, "ansi-italic")
		case code == 4:
			classes = append(classes, "ansi-underline")
		case code >= 30 && code <= 37:
			classes = append(classes, "ansi-"+ansiColors[code-30])
		case code >= 90 && code <= 97:
			classes = append(classes, "ansi-bright-"+ansiColors[code-90])
		case code >= 40 && code <= 47:
			classes = append(classes, "ansi-bg-"+ansiColors[code-40])
		}
	}
	return classes, reset
}
