package constants

// ConfidenceLabel is the trust tier assigned to an OCR token.
type ConfidenceLabel string

const (
	LabelTrusted ConfidenceLabel = "trusted"
	LabelMedium  ConfidenceLabel = "medium"
	LabelLow     ConfidenceLabel = "low"
)

func (l ConfidenceLabel) String() string { return string(l) }
