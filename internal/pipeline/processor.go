package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veradocs/vera/constants"
	"github.com/veradocs/vera/internal/entity"
	"github.com/veradocs/vera/internal/metrics"
	"github.com/veradocs/vera/internal/ocr"
	"github.com/veradocs/vera/internal/repository"
)

// Processor runs OCR for one document: recognize, group into lines,
// classify confidence, and commit tokens atomically with the status
// advance. A failure at any stage marks the document failed rather than
// leaving it stuck in processing.
type Processor struct {
	store         *repository.Store
	provider      ocr.Provider
	lineThreshold float64
	logger        *slog.Logger
}

func NewProcessor(store *repository.Store, provider ocr.Provider, lineThreshold float64, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if lineThreshold <= 0 {
		lineThreshold = ocr.DefaultLineThreshold
	}
	return &Processor{store: store, provider: provider, lineThreshold: lineThreshold, logger: logger}
}

// ProcessDocument moves a document through processing to ocr_done. Token
// writes replace any earlier set, so redelivered tasks converge on the
// same end state.
func (p *Processor) ProcessDocument(ctx context.Context, documentID string) error {
	start := time.Now()
	p.logger.Info("pipeline.ocr.start", "document_id", documentID)

	doc, err := p.store.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if err := p.setStatus(documentID, constants.StatusProcessing); err != nil {
		return err
	}

	raw, err := p.provider.Recognize(ctx, doc.ImagePath)
	if err != nil {
		p.fail(documentID, err)
		metrics.OCRDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		return err
	}

	grouped := ocr.GroupLines(raw, p.lineThreshold)
	tokens := ocr.BuildTokens(documentID, grouped)

	now := time.Now().UTC()
	err = p.store.Update(func(tx *repository.Tx) error {
		cur, err := tx.GetDocument(documentID)
		if err != nil {
			return err
		}
		if err := tx.ReplaceTokens(documentID, tokens); err != nil {
			return err
		}
		cur.Status = constants.StatusOCRDone
		cur.UpdatedAt = now
		if err := tx.PutDocument(cur); err != nil {
			return err
		}
		return tx.AppendAudit(&entity.AuditLog{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			EventType:  entity.AuditOCRCompleted,
			Detail:     map[string]any{"token_count": len(tokens)},
			CreatedAt:  now,
		})
	})
	if err != nil {
		p.fail(documentID, err)
		metrics.OCRDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		return err
	}

	metrics.OCRDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	p.logger.Info("pipeline.ocr.ok",
		"document_id", documentID,
		"token_count", len(tokens),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (p *Processor) setStatus(documentID string, status constants.DocumentStatus) error {
	return p.store.Update(func(tx *repository.Tx) error {
		cur, err := tx.GetDocument(documentID)
		if err != nil {
			return err
		}
		cur.Status = status
		cur.UpdatedAt = time.Now().UTC()
		return tx.PutDocument(cur)
	})
}

// fail is best-effort: the original error is what the caller sees, and a
// document we cannot even mark failed is logged and left alone.
func (p *Processor) fail(documentID string, cause error) {
	now := time.Now().UTC()
	err := p.store.Update(func(tx *repository.Tx) error {
		cur, err := tx.GetDocument(documentID)
		if err != nil {
			return err
		}
		cur.Status = constants.StatusFailed
		cur.UpdatedAt = now
		if err := tx.PutDocument(cur); err != nil {
			return err
		}
		return tx.AppendAudit(&entity.AuditLog{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			EventType:  entity.AuditOCRFailed,
			Detail:     map[string]any{"error": cause.Error()},
			CreatedAt:  now,
		})
	})
	if err != nil {
		p.logger.Error("pipeline.ocr.mark_failed_error", "document_id", documentID, "error", err)
	}
	p.logger.Error("pipeline.ocr.failed", "document_id", documentID, "error", cause)
}
