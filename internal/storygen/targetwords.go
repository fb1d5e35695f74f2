package storygen

import "strings"

// ValidateTargetWords counts how many entries of words occur in body as a
// case-insensitive substring. Each list entry counts once, so duplicates
// in the list are counted separately. The percentage is 0 for an empty
// list.
func ValidateTargetWords(body string, words []string) (count int, percentage float64) {
	if len(words) == 0 {
		return 0, 0
	}
	lower := strings.ToLower(body)
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			count++
		}
	}
	return count, 100 * float64(count) / float64(len(words))
}
