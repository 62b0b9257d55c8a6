package extract

import (
	"regexp"
	"strings"
)

// Date patterns in fixed priority order: ISO (dash/dot/slash), numeric
// D/M/Y, "Month D, Y", "D Month Y", dotted D.M.Y.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}[-/.]\d{2}[-/.]\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\s+\d{1,2},?\s+\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\s+\d{2,4}\b`),
	regexp.MustCompile(`\b\d{1,2}[.]\d{1,2}[.]\d{2,4}\b`),
}

// ExtractDates applies the date patterns per line in priority order.
// Deduplication is first-seen-wins on a case- and whitespace-insensitive
// key; the first representation discovered survives.
func ExtractDates(lines []string) []string {
	set := newOrderedSet()
	for _, line := range lines {
		for _, p := range datePatterns {
			for _, m := range p.FindAllString(line, -1) {
				v := strings.TrimSpace(m)
				set.add(dateKey(v), v)
			}
		}
	}
	return set.values()
}

func dateKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
