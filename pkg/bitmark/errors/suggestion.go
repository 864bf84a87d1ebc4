package errors

import (
	"fmt"
	"strings"
)

// maxSuggestDistance is the largest edit distance still offered as a
// suggestion.
const maxSuggestDistance = 3

// SuggestTag returns a "Did you mean" hint naming the configured key closest
// to unknown, or "" when nothing is close enough. Keys are compared with their
// '@' or '&' prefix so a property is never suggested for a resource.
func SuggestTag(unknown string, valid []string) string {
	best, dist := closest(unknown, valid)
	if best == "" || dist > maxSuggestDistance || dist >= len([]rune(unknown)) {
		return ""
	}
	return fmt.Sprintf("Did you mean '%s'?", best)
}

// SuggestBitType returns a hint for an unknown bit type.
func SuggestBitType(unknown string, valid []string) string {
	best, dist := closest(strings.ToLower(unknown), valid)
	if best == "" || dist > maxSuggestDistance {
		return ""
	}
	return fmt.Sprintf("Did you mean '%s'?", best)
}

func closest(unknown string, valid []string) (string, int) {
	minDistance := -1
	var bestMatch string

	for _, v := range valid {
		if len(v) > 0 && len(unknown) > 0 && isSigil(v[0]) != isSigil(unknown[0]) {
			continue
		}
		if len(v) > 0 && len(unknown) > 0 && isSigil(v[0]) && v[0] != unknown[0] {
			continue
		}
		dist := levenshteinDistance(unknown, v)
		if minDistance < 0 || dist < minDistance {
			minDistance = dist
			bestMatch = v
		}
	}
	return bestMatch, minDistance
}

func isSigil(b byte) bool {
	return b == '@' || b == '&'
}

// levenshteinDistance computes the edit distance between two strings,
// counting runes rather than bytes.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // Deletion
				curr[j-1]+1,    // Insertion
				prev[j-1]+cost, // Substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
