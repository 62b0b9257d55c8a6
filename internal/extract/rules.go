package extract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DocTypeSignal is one row of the document-type classification table.
// Table order matters: earlier rows win ties and the first row is the
// default when nothing scores.
type DocTypeSignal struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Rules is the extraction-rules configuration. It is loaded once at
// startup, then shared read-only across concurrent operations; never
// re-read per call.
type Rules struct {
	TotalTerms      []string        `yaml:"total_terms"`
	SubtotalTerms   []string        `yaml:"subtotal_terms"`
	TotalGuessTerms []string        `yaml:"total_guess_terms"`
	VendorSkipTerms []string        `yaml:"vendor_skip_terms"`
	ItemSkipTerms   []string        `yaml:"item_skip_terms"`
	DocTypeSignals  []DocTypeSignal `yaml:"doc_type_signals"`
	Stopwords       []string        `yaml:"stopwords"`
	KeywordLimit    int             `yaml:"keyword_limit"`
	MaxListed       int             `yaml:"max_listed"`
	SummaryMaxChars int             `yaml:"summary_max_chars"`
	LineThreshold   float64         `yaml:"line_threshold"`

	stopwords map[string]struct{}
}

// DefaultRules returns the built-in rule tables.
func DefaultRules() *Rules {
	r := &Rules{
		TotalTerms:      []string{"total", "amount due", "balance due", "grand total", "total due"},
		SubtotalTerms:   []string{"subtotal", "sub total", "tax", "vat", "amount", "balance", "due"},
		TotalGuessTerms: []string{"total", "amount due", "balance due", "amount", "grand total", "total due"},
		VendorSkipTerms: []string{"invoice", "receipt", "statement", "report", "form", "application"},
		ItemSkipTerms:   []string{"total", "subtotal", "tax", "amount due", "balance", "invoice", "receipt"},
		DocTypeSignals: []DocTypeSignal{
			{Label: "Invoice/Receipt", Keywords: []string{"invoice", "receipt", "subtotal", "total", "amount due", "balance due", "vat", "tax", "paid"}},
			{Label: "Statement", Keywords: []string{"statement", "account", "transactions", "balance", "opening balance", "closing balance"}},
			{Label: "Purchase order", Keywords: []string{"purchase order", "po number", "ship to", "bill to"}},
			{Label: "Shipping/Delivery", Keywords: []string{"tracking", "shipment", "delivered", "carrier", "shipping label"}},
			{Label: "Legal/Contract", Keywords: []string{"agreement", "contract", "terms", "party", "liability"}},
			{Label: "Form/Application", Keywords: []string{"application", "form", "please fill", "checkbox", "signature"}},
			{Label: "Report", Keywords: []string{"report", "summary", "analysis", "findings"}},
			{Label: "Letter/Correspondence", Keywords: []string{"dear", "sincerely", "regards"}},
			{Label: "ID/Certificate", Keywords: []string{"certificate", "issued", "id number", "passport", "license"}},
		},
		Stopwords: []string{
			"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
			"has", "in", "is", "it", "of", "on", "or", "that", "the", "to",
			"was", "were", "will", "with",
		},
		KeywordLimit:    5,
		MaxListed:       5,
		SummaryMaxChars: 1200,
		LineThreshold:   12.0,
	}
	r.finalize()
	return r
}

// LoadRules reads a YAML override. Fields absent from the file keep their
// defaults. An empty path yields DefaultRules.
func LoadRules(path string) (*Rules, error) {
	r := DefaultRules()
	if path == "" {
		return r, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	if err := yaml.Unmarshal(raw, r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if r.KeywordLimit <= 0 {
		r.KeywordLimit = 5
	}
	if r.MaxListed <= 0 {
		r.MaxListed = 5
	}
	if r.SummaryMaxChars <= 0 {
		r.SummaryMaxChars = 1200
	}
	if r.LineThreshold <= 0 {
		r.LineThreshold = 12.0
	}
	r.finalize()
	return r, nil
}

func (r *Rules) finalize() {
	r.stopwords = make(map[string]struct{}, len(r.Stopwords))
	for _, w := range r.Stopwords {
		r.stopwords[w] = struct{}{}
	}
}

func (r *Rules) isStopword(w string) bool {
	_, ok := r.stopwords[w]
	return ok
}
