package extract

import (
	"regexp"
	"strings"
)

var (
	invoicePattern = regexp.MustCompile(`(?i)\b(?:invoice|receipt|order|po|purchase order|reference|ref|ticket)\s*(?:no\.?|number|#|id)?\s*[:#]?\s*([A-Za-z0-9-]{3,})`)
	taxIDPattern   = regexp.MustCompile(`(?i)\b(?:vat|tax)\s*(?:id|number|no\.?)\s*[:#]?\s*([A-Za-z0-9-]{5,})`)
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern   = regexp.MustCompile(`\b(?:\+?\d{1,3}[\s.-]?)?(?:\(?\d{2,4}\)?[\s.-]?)?\d{3,4}[\s.-]?\d{4}\b`)

	// Digit runs on lines that talk about tax/VAT/ids are identifiers,
	// not phone numbers.
	taxContextPattern = regexp.MustCompile(`(?i)\b(?:vat|tax|id)\b`)
)

// Identifiers holds contact and reference values pulled from validated
// text. Each list is deduplicated by exact trimmed string, case-sensitive,
// first-seen order.
type Identifiers struct {
	InvoiceNumbers []string
	TaxIDs         []string
	Emails         []string
	Phones         []string
}

func ExtractIdentifiers(lines []string) Identifiers {
	invoices := newOrderedSet()
	taxIDs := newOrderedSet()
	emails := newOrderedSet()
	phones := newOrderedSet()

	for _, line := range lines {
		for _, m := range invoicePattern.FindAllStringSubmatch(line, -1) {
			if v := strings.TrimSpace(m[1]); v != "" {
				invoices.add(v, v)
			}
		}
		for _, m := range taxIDPattern.FindAllStringSubmatch(line, -1) {
			if v := strings.TrimSpace(m[1]); v != "" {
				taxIDs.add(v, v)
			}
		}
		for _, m := range emailPattern.FindAllString(line, -1) {
			emails.add(m, m)
		}
		if taxContextPattern.MatchString(line) {
			continue
		}
		for _, m := range phonePattern.FindAllString(line, -1) {
			if v := strings.TrimSpace(m); v != "" {
				phones.add(v, v)
			}
		}
	}

	return Identifiers{
		InvoiceNumbers: invoices.values(),
		TaxIDs:         taxIDs.values(),
		Emails:         emails.values(),
		Phones:         phones.values(),
	}
}
