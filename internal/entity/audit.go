package entity

import "time"

// Audit event types written by the pipeline, state machine, engine, and
// export service.
const (
	AuditOCRCompleted       = "ocr_completed"
	AuditOCRFailed          = "ocr_failed"
	AuditCorrectionsApplied = "corrections_applied"
	AuditReviewSaved        = "review_saved"
	AuditReviewCompleted    = "review_completed"
	AuditFieldsUpdated      = "fields_updated"
	AuditSummaryGenerated   = "summary_generated"
	AuditExported           = "exported"
)

// AuditLog is an append-only record of a significant state transition.
type AuditLog struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	EventType  string         `json:"event_type"`
	Actor      string         `json:"actor,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
