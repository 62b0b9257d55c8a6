package ocr

import (
	"fmt"
	"sort"

	"github.com/veradocs/vera/internal/entity"
)

// DefaultLineThreshold is the vertical distance (in the OCR coordinate
// space) within which a token joins the current line.
const DefaultLineThreshold = 12.0

// GroupLines clusters raw OCR tokens into reading-order lines and assigns
// line_index, token_index, and line_id.
//
// Tokens are sorted by (top_y, left_x) and swept in that order. A token
// joins the current line when its top_y is within threshold of the line's
// running mean; the mean is updated as (old+new)/2, a streaming
// approximation rather than a true centroid. Threshold comparisons are
// sensitive to this, so the incremental form is load-bearing. A closed
// line is re-sorted left-to-right before index assignment, which means a
// token on a drifting line can end up visually out of order; accepted.
func GroupLines(raw []entity.RawToken, threshold float64) []entity.RawToken {
	if len(raw) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultLineThreshold
	}

	sorted := make([]entity.RawToken, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y() != sorted[j].BBox.Y() {
			return sorted[i].BBox.Y() < sorted[j].BBox.Y()
		}
		return sorted[i].BBox.X() < sorted[j].BBox.X()
	})

	var lines [][]entity.RawToken
	var current []entity.RawToken
	currentY := 0.0
	haveY := false

	closeLine := func() {
		sort.SliceStable(current, func(i, j int) bool {
			return current[i].BBox.X() < current[j].BBox.X()
		})
		lines = append(lines, current)
	}

	for _, tok := range sorted {
		y := tok.BBox.Y()
		switch {
		case !haveY:
			current = append(current, tok)
			currentY = y
			haveY = true
		case abs(y-currentY) <= threshold:
			current = append(current, tok)
			currentY = (currentY + y) / 2
		default:
			closeLine()
			current = []entity.RawToken{tok}
			currentY = y
		}
	}
	if len(current) > 0 {
		closeLine()
	}

	out := make([]entity.RawToken, 0, len(sorted))
	for lineIndex, line := range lines {
		for tokenIndex, tok := range line {
			tok.LineIndex = lineIndex
			tok.TokenIndex = tokenIndex
			tok.LineID = fmt.Sprintf("line-%d", lineIndex)
			out = append(out, tok)
		}
	}
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
