package storygen

import (
	"strings"
	"unicode/utf8"
)

const (
	titleMarker   = "TITLE:"
	maxTitleRunes = 50
)

// ExtractTitle splits generated text into a title and a body. A first line
// of the form "TITLE: <text>" (any case) supplies the title and the rest,
// minus leading blank lines, is the body. Otherwise the first line,
// truncated to 50 characters, is the title and the whole text is the body.
func ExtractTitle(raw string) (title, body string) {
	title, body, _ = extract(raw)
	return title, body
}

// extract also reports whether the title came from a TITLE line.
func extract(raw string) (title, body string, marked bool) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	first, rest, _ := strings.Cut(raw, "\n")
	first = strings.TrimSpace(first)

	if len(first) >= len(titleMarker) && strings.EqualFold(first[:len(titleMarker)], titleMarker) {
		title = strings.TrimSpace(first[len(titleMarker):])
		lines := strings.Split(rest, "\n")
		for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
			lines = lines[1:]
		}
		body = strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
		return title, body, true
	}

	if utf8.RuneCountInString(first) > maxTitleRunes {
		first = string([]rune(first)[:maxTitleRunes]) + "..."
	}
	return first, raw, false
}
