package ocr

import (
	"context"

	"github.com/veradocs/vera/internal/entity"
)

// Provider is the OCR collaborator contract: positioned text plus a
// confidence score per recognized word. Implementations may fail with an
// upstream_unavailable error, which the pipeline surfaces verbatim.
type Provider interface {
	Recognize(ctx context.Context, imagePath string) ([]entity.RawToken, error)
}
