package validator

import "github.com/agext/levenshtein"

// minSuggestSimilarity is the similarity below which no "did you mean" hint
// is offered.
const minSuggestSimilarity = 0.5

// closest returns the candidate most similar to s, if any is similar enough.
func closest(s string, candidates []string) (string, bool) {
	best, bestScore := "", 0.0
	for _, c := range candidates {
		score := levenshtein.Similarity(s, c, nil)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore >= minSuggestSimilarity
}
