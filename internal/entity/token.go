package entity

import "github.com/veradocs/vera/constants"

// BBox is a token bounding box in pixel space. It serializes as a
// 4-element JSON array [x, y, width, height]; other components rely on
// that exact shape.
type BBox [4]float64

func (b BBox) X() float64      { return b[0] }
func (b BBox) Y() float64      { return b[1] }
func (b BBox) Width() float64  { return b[2] }
func (b BBox) Height() float64 { return b[3] }

// RawToken is the shape the OCR provider hands back: positioned text with
// a confidence score. It is consumed by the line grouper and never
// persisted as-is.
type RawToken struct {
	Text       string
	Confidence float64
	BBox       BBox

	// Assigned by the line grouper.
	LineIndex  int
	TokenIndex int
	LineID     string
}

// Token is a persisted OCR token. Tokens are created in bulk when OCR
// completes; only Text and Reviewed change afterwards, through the
// review flow. Re-running OCR deletes and regenerates them.
type Token struct {
	ID              string                    `json:"id"`
	DocumentID      string                    `json:"document_id"`
	LineIndex       int                       `json:"line_index"`
	TokenIndex      int                       `json:"token_index"`
	LineID          string                    `json:"line_id"`
	Text            string                    `json:"text"`
	Confidence      float64                   `json:"confidence"`
	ConfidenceLabel constants.ConfidenceLabel `json:"confidence_label"`
	ForcedReview    bool                      `json:"forced_review"`
	Reviewed        bool                      `json:"reviewed"`
	BBox            BBox                      `json:"bbox"`
	Flags           []string                  `json:"flags"`
}
