package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLocale(t *testing.T) {
	assert.Equal(t, LocaleEU, DetectLocale([]string{"Total 59,99"}))
	assert.Equal(t, LocaleEU, DetectLocale([]string{"Gesamt 1.234,56"}))
	assert.Equal(t, LocaleUS, DetectLocale([]string{"Total $12.00"}))
	assert.Equal(t, LocaleUS, DetectLocale([]string{"Total 1,234.50"}))
	assert.Equal(t, LocaleUS, DetectLocale(nil))
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		loc  Locale
		want string
	}{
		{"USD 1,234.50", LocaleUS, "USD 1234.50"},
		{"usd 1,234.50", LocaleUS, "USD 1234.50"},
		{"59,99", LocaleEU, "59.99"},
		{"59,99", LocaleUS, "5999"},
		{"1.234,56", LocaleUS, "1234.56"}, // rightmost separator wins regardless of locale
		{"1,234.56", LocaleEU, "1234.56"},
		{"$ 12.00", LocaleUS, "$12.00"},
		{"€5,00", LocaleEU, "€5.00"},
		{"1,234", LocaleUS, "1234"},
		{"12.345", LocaleUS, "12345"}, // dot with 3 trailing digits is a group separator
		{"12.34", LocaleEU, "12.34"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAmount(tt.in, tt.loc), "%q (%s)", tt.in, tt.loc)
	}
}

func TestExtractAmountsTiers(t *testing.T) {
	rules := DefaultRules()

	// Keyworded lines surface their plain numbers first; the general
	// sweep then picks up symbol amounts elsewhere.
	lines := []string{"Item A $5.00", "Total 59,99"}
	loc := DetectLocale(lines)
	assert.Equal(t, LocaleEU, loc)
	assert.Equal(t, []string{"59.99", "$5.00"}, ExtractAmounts(lines, loc, rules))
}

func TestExtractAmountsDedupe(t *testing.T) {
	rules := DefaultRules()
	lines := []string{"Subtotal $5.00", "Total $5.00"}
	assert.Equal(t, []string{"$5.00"}, ExtractAmounts(lines, LocaleUS, rules))
}

func TestExtractAmountsPlainLastResort(t *testing.T) {
	rules := DefaultRules()

	// No currency marker and no keyword anywhere: bare numbers count.
	assert.Equal(t, []string{"12.50"}, ExtractAmounts([]string{"Price 12.50"}, LocaleUS, rules))

	// A symbol match elsewhere suppresses the last-resort pass.
	got := ExtractAmounts([]string{"Charge $3.00", "Ref 12.50"}, LocaleUS, rules)
	assert.Equal(t, []string{"$3.00"}, got)
}

func TestExtractAmountsCurrencyCode(t *testing.T) {
	rules := DefaultRules()
	got := ExtractAmounts([]string{"Total USD 1,234.50"}, LocaleUS, rules)
	assert.Equal(t, []string{"USD 1234.50"}, got)
}
