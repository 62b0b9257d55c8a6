package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veradocs/vera/constants"
)

func TestClassifyConfidence(t *testing.T) {
	tests := []struct {
		score float64
		want  constants.ConfidenceLabel
	}{
		{1.0, constants.LabelTrusted},
		{0.92, constants.LabelTrusted},
		{0.9199, constants.LabelTrusted},
		{0.919, constants.LabelMedium},
		{0.80, constants.LabelMedium},
		{0.7999, constants.LabelLow},
		{0.0, constants.LabelLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyConfidence(tt.score), "score %v", tt.score)
	}
}

func TestDetectForcedFlags(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"$12.00", []string{FlagCurrencyAmount}},
		{"£1,234.56", []string{FlagCurrencyAmount}},
		{"  €5  ", []string{FlagCurrencyAmount}},
		{"2026-02-01", []string{FlagDate}},
		{"12/31/2024", []string{FlagDate}},
		{"1-2-26", []string{FlagDate}},
		{"Total", []string{FlagTotalKeyword}},
		{"Grand Total", []string{FlagTotalKeyword}},
		{"amount due", []string{FlagTotalKeyword}},
		{"Invoice #123", []string{FlagInvoiceNumber}},
		{"receipt 42", []string{FlagInvoiceNumber}},
		{"12.3", []string{FlagMalformedPrice}},
		{"Total: $5.0", []string{FlagTotalKeyword, FlagMalformedPrice}},
		{"hello", nil},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectForcedFlags(tt.text), "text %q", tt.text)
	}
}

func TestForcedReview(t *testing.T) {
	assert.False(t, ForcedReview(constants.LabelTrusted, nil))
	assert.True(t, ForcedReview(constants.LabelTrusted, []string{FlagDate}))
	assert.True(t, ForcedReview(constants.LabelMedium, nil))
	assert.True(t, ForcedReview(constants.LabelLow, nil))
}
