package filters

import "strings"

// TextSimilarity returns the Jaccard index over the two strings' word sets:
// each string is lower-cased and split on whitespace, duplicate words
// collapse, and the score is |intersection| / |union|. Both-empty input
// scores 0.0 rather than 1.0 so blank descriptions never look identical.
func TextSimilarity(a, b string) float64 {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)

	union := len(wordsB)
	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}
