package algo

import "github.com/pmezard/go-difflib/difflib"

// SimilarityThreshold is the minimum similarity for two normalized titles to share a group.
const SimilarityThreshold = 0.6

// Similarity returns the gestalt pattern matching ratio of two strings in [0,1],
// computed over runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runeTokens(a), runeTokens(b)).Ratio()
}

// Similar reports whether two normalized titles meet the grouping threshold.
func Similar(a, b string) bool {
	return Similarity(a, b) >= SimilarityThreshold
}

// runeTokens splits s into one token per rune so the matcher compares characters, not bytes.
func runeTokens(s string) []string {
	tokens := make([]string, 0, len(s))
	for _, r := range s {
		tokens = append(tokens, string(r))
	}
	return tokens
}
