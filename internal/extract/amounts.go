package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Locale is the document-level numeric-formatting decision: whether a
// lone comma is a decimal or a thousands separator.
type Locale string

const (
	LocaleAuto Locale = ""   // detect from the text
	LocaleUS   Locale = "us" // comma groups thousands
	LocaleEU   Locale = "eu" // comma is the decimal separator
)

var (
	currencySymbolPattern = regexp.MustCompile(`(?:£|\$|€)\s*\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})`)
	currencyCodePattern   = regexp.MustCompile(`(?i)\b(?:USD|AUD|CAD|GBP|EUR)\s*\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})\b`)
	plainAmountPattern    = regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})\b`)
	currencyCodeOnly      = regexp.MustCompile(`(?i)\b(USD|AUD|CAD|GBP|EUR)\b`)

	// European-style number shapes: grouped 1.234,56 or bare 12,34.
	europeanGrouped = regexp.MustCompile(`\b\d{1,3}(?:\.\d{3})+,\d{2}\b`)
	europeanDecimal = regexp.MustCompile(`\b\d+,\d{2}\b`)
)

// DetectLocale scans the whole document once, before any amount is
// normalized. The result is held fixed for every amount in the document.
func DetectLocale(lines []string) Locale {
	for _, line := range lines {
		if europeanGrouped.MatchString(line) || europeanDecimal.MatchString(line) {
			return LocaleEU
		}
	}
	return LocaleUS
}

// NormalizeAmount resolves comma/dot ambiguity and canonicalizes the
// currency marker: "USD 1,234.50" -> "USD 1234.50", "$ 59,99" (EU) ->
// "$59.99". When both separators appear the rightmost one is the decimal
// separator regardless of locale; a lone comma is decided by loc.
func NormalizeAmount(value string, loc Locale) string {
	raw := strings.TrimSpace(value)

	prefix := ""
	if code := currencyCodeOnly.FindString(raw); code != "" {
		prefix = strings.ToUpper(code) + " "
		raw = strings.TrimSpace(currencyCodeOnly.ReplaceAllString(raw, ""))
	}
	if strings.HasPrefix(raw, "$") || strings.HasPrefix(raw, "£") || strings.HasPrefix(raw, "€") {
		_, size := utf8.DecodeRuneInString(raw)
		prefix = raw[:size]
		raw = strings.TrimSpace(raw[size:])
	}
	raw = strings.ReplaceAll(raw, " ", "")

	hasComma := strings.Contains(raw, ",")
	hasDot := strings.Contains(raw, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(raw, ",") > strings.LastIndex(raw, ".") {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case hasComma:
		idx := strings.LastIndex(raw, ",")
		if loc == LocaleEU && len(raw)-idx-1 == 2 {
			raw = strings.ReplaceAll(raw[:idx], ",", "") + "." + raw[idx+1:]
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case hasDot:
		idx := strings.LastIndex(raw, ".")
		if len(raw)-idx-1 != 2 {
			raw = strings.ReplaceAll(raw, ".", "")
		}
	}

	return prefix + raw
}

// amountsFromLine returns raw (un-normalized) currency matches on a line:
// symbol matches, then code matches, then plain grouped-decimal numbers
// when allowPlain is set. The plain pass runs on the line with currency
// matches blanked out, so "$5.00" does not also count as a bare "5.00".
func amountsFromLine(line string, allowPlain bool) []string {
	values := currencySymbolPattern.FindAllString(line, -1)
	values = append(values, currencyCodePattern.FindAllString(line, -1)...)
	if allowPlain {
		rest := currencySymbolPattern.ReplaceAllString(line, " ")
		rest = currencyCodePattern.ReplaceAllString(rest, " ")
		values = append(values, plainAmountPattern.FindAllString(rest, -1)...)
	}
	return values
}

func lineHasCurrencyMatch(line string) bool {
	return currencySymbolPattern.MatchString(line) || currencyCodePattern.MatchString(line)
}

// ExtractAmounts runs the tiered scan: total-keyword lines first (plain
// numbers allowed), then subtotal/tax/balance lines, then a symbol/code
// sweep over everything. Bare numbers outside keyworded lines are a last
// resort, used only when the earlier passes produced nothing and only on
// lines without a symbol/code match. Deduplication is by normalized
// value, first-seen order.
func ExtractAmounts(lines []string, loc Locale, rules *Rules) []string {
	set := newOrderedSet()
	add := func(values []string) {
		for _, v := range values {
			n := NormalizeAmount(v, loc)
			set.add(n, n)
		}
	}

	for _, line := range lines {
		if containsAnyTerm(line, rules.TotalTerms) {
			add(amountsFromLine(line, true))
		}
	}
	for _, line := range lines {
		if containsAnyTerm(line, rules.SubtotalTerms) {
			add(amountsFromLine(line, true))
		}
	}
	for _, line := range lines {
		add(amountsFromLine(line, false))
	}
	if set.len() == 0 {
		for _, line := range lines {
			if !lineHasCurrencyMatch(line) {
				add(plainAmountPattern.FindAllString(line, -1))
			}
		}
	}

	return set.values()
}

func containsAnyTerm(line string, terms []string) bool {
	lower := strings.ToLower(line)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
