package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Tokenization tolerates apostrophes and hyphens inside words.
var wordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9'-]+`)

// TopKeywords ranks lowercase words (length >= 3, stopwords removed) by
// descending frequency, breaking ties by ascending lexical order, and
// keeps the top rules.KeywordLimit.
func TopKeywords(text string, rules *Rules) []string {
	counts := make(map[string]int)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 3 || rules.isStopword(w) {
			continue
		}
		counts[w]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > rules.KeywordLimit {
		words = words[:rules.KeywordLimit]
	}
	return words
}
