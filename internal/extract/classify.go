package extract

import "strings"

// Classification is the document-type guess plus its confidence bucket.
type Classification struct {
	Label      string
	Confidence string
	Hits       int
}

// ClassifyDocument scores each signal-table row by counting distinct
// keyword hits against the lowercased text. Only a strictly higher score
// replaces the current best, so earlier rows win ties and the first row
// is also the zero-signal default. Confidence: >=3 hits high, exactly 2
// medium, 0 or 1 low.
func ClassifyDocument(text string, signals []DocTypeSignal) Classification {
	if len(signals) == 0 {
		return Classification{Label: "Unknown", Confidence: "low"}
	}

	blob := strings.ToLower(text)
	best := signals[0].Label
	bestHits := 0
	for _, sig := range signals {
		hits := 0
		for _, kw := range sig.Keywords {
			if strings.Contains(blob, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = sig.Label
		}
	}

	confidence := "low"
	switch {
	case bestHits >= 3:
		confidence = "high"
	case bestHits == 2:
		confidence = "medium"
	}

	return Classification{Label: best, Confidence: confidence, Hits: bestHits}
}
