package extract

import (
	"regexp"
	"unicode"
)

var quantityPattern = regexp.MustCompile(`(?i)\b\d+\s*(?:x|qty|quantity)\b`)

// GuessVendor returns the first of the first 5 non-empty lines that does
// not contain a structural keyword and has at least 3 alphabetic
// characters, else "".
func GuessVendor(lines []string, rules *Rules) string {
	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		if containsAnyTerm(line, rules.VendorSkipTerms) {
			continue
		}
		if alphaCount(line) < 3 {
			continue
		}
		return line
	}
	return ""
}

// GuessTotal scans lines in order for total-family keywords and returns
// the last currency match on the first keyworded line that has one. When
// no keyworded line matches, it falls back to the last amount found
// anywhere in the document.
func GuessTotal(lines []string, amounts []string, rules *Rules) string {
	for _, line := range lines {
		if !containsAnyTerm(line, rules.TotalGuessTerms) {
			continue
		}
		if matches := amountsFromLine(line, true); len(matches) > 0 {
			return matches[len(matches)-1]
		}
	}
	if len(amounts) > 0 {
		return amounts[len(amounts)-1]
	}
	return ""
}

// GuessItems returns up to 3 lines that are not skip-keyword lines and
// carry either a currency match or a quantity pattern, preserving scan
// order and stopping early once 3 are found.
func GuessItems(lines []string, rules *Rules) []string {
	var items []string
	for _, line := range lines {
		if containsAnyTerm(line, rules.ItemSkipTerms) {
			continue
		}
		if lineHasCurrencyMatch(line) || quantityPattern.MatchString(line) {
			items = append(items, line)
		}
		if len(items) >= 3 {
			break
		}
	}
	return items
}

func alphaCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
