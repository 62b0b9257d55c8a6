package ocr

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/veradocs/vera/internal/entity"
)

// TokenID derives the deterministic token id from line/token position and
// a short hash of the bbox, so re-running OCR on identical geometry is
// idempotent.
func TokenID(lineIndex, tokenIndex int, bbox entity.BBox) string {
	return fmt.Sprintf("l%d-t%d-%s", lineIndex, tokenIndex, bboxHash(bbox))
}

func bboxHash(bbox entity.BBox) string {
	raw := formatCoord(bbox[0]) + "-" + formatCoord(bbox[1]) + "-" +
		formatCoord(bbox[2]) + "-" + formatCoord(bbox[3])
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])[:10]
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// BuildTokens converts line-grouped raw tokens into persistable tokens:
// confidence tier, forced-review flags, and the derived id. Input must
// already carry line/token indices from GroupLines.
func BuildTokens(documentID string, grouped []entity.RawToken) []entity.Token {
	tokens := make([]entity.Token, 0, len(grouped))
	for _, raw := range grouped {
		label := ClassifyConfidence(raw.Confidence)
		flags := DetectForcedFlags(raw.Text)
		tokens = append(tokens, entity.Token{
			ID:              TokenID(raw.LineIndex, raw.TokenIndex, raw.BBox),
			DocumentID:      documentID,
			LineIndex:       raw.LineIndex,
			TokenIndex:      raw.TokenIndex,
			LineID:          raw.LineID,
			Text:            raw.Text,
			Confidence:      raw.Confidence,
			ConfidenceLabel: label,
			ForcedReview:    ForcedReview(label, flags),
			BBox:            raw.BBox,
			Flags:           flags,
		})
	}
	return tokens
}
