package ocr

import (
	"regexp"
	"strings"

	"github.com/veradocs/vera/constants"
)

var (
	reCurrencyAmount = regexp.MustCompile(`^(£|\$|€)\s*\d{1,3}(?:,\d{3})*(?:\.\d{2})?$`)
	reDate           = regexp.MustCompile(`^(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2})$`)
	reTotalKeyword   = regexp.MustCompile(`(?i)\b(total|amount\s+due|balance\s+due|grand\s+total)\b`)
	reInvoiceNumber  = regexp.MustCompile(`(?i)\b(invoice|inv|receipt)\s*#?\s*\d+\b`)
	reMalformedPrice = regexp.MustCompile(`\d+\.\d$`)
)

// Forced-review flag names, in detection order.
const (
	FlagCurrencyAmount = "currency_amount"
	FlagDate           = "date"
	FlagTotalKeyword   = "total_keyword"
	FlagInvoiceNumber  = "invoice_number"
	FlagMalformedPrice = "malformed_price"
)

// ClassifyConfidence maps an OCR confidence score to a trust tier.
// Thresholds are closed and fixed: trusted >= 0.92, medium >= 0.80.
func ClassifyConfidence(score float64) constants.ConfidenceLabel {
	if score >= 0.92 {
		return constants.LabelTrusted
	}
	if score >= 0.80 {
		return constants.LabelMedium
	}
	return constants.LabelLow
}

// DetectForcedFlags scans trimmed text against the independent pattern
// detectors. Each detector contributes at most one flag and the result
// order is stable. Pure function; a non-empty result forces review.
func DetectForcedFlags(text string) []string {
	trimmed := strings.TrimSpace(text)
	var flags []string

	if reCurrencyAmount.MatchString(trimmed) {
		flags = append(flags, FlagCurrencyAmount)
	}
	if reDate.MatchString(trimmed) {
		flags = append(flags, FlagDate)
	}
	if reTotalKeyword.MatchString(trimmed) {
		flags = append(flags, FlagTotalKeyword)
	}
	if reInvoiceNumber.MatchString(trimmed) {
		flags = append(flags, FlagInvoiceNumber)
	}
	if reMalformedPrice.MatchString(trimmed) {
		flags = append(flags, FlagMalformedPrice)
	}

	return flags
}

// ForcedReview reports whether a token must be human-reviewed. This is
// the sole gate controlling reviewer workload.
func ForcedReview(label constants.ConfidenceLabel, flags []string) bool {
	return label != constants.LabelTrusted || len(flags) > 0
}
