package storygen

import "strings"

// WordsPerMinute is the assumed reading speed.
const WordsPerMinute = 200

// CountWords counts tokens separated by spaces, tabs, and line breaks.
func CountWords(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}))
}

// ReadingMinutes is ceil(words / WordsPerMinute).
func ReadingMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
