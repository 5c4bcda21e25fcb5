// Package fuzzy scores how alike two OCR'd names are.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns the edit-distance similarity of a and b in 0..1, ignoring
// case and surrounding space. Two empty strings are identical.
func Ratio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Best returns the index of the candidate most similar to name and its
// ratio. Candidates for which skip returns true are ignored. Ties keep the
// earlier candidate. The index is -1 when nothing is left to compare.
func Best(name string, candidates []string, skip func(i int) bool) (int, float64) {
	best, score := -1, -1.0
	for i, c := range candidates {
		if skip != nil && skip(i) {
			continue
		}
		if r := Ratio(name, c); r > score {
			best, score = i, r
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, score
}
