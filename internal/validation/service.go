package validation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veradocs/vera/constants"
	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/entity"
	"github.com/veradocs/vera/internal/repository"
)

// Correction is a reviewer-supplied value for one token. CorrectedText
// may equal the token's current text; the confirmation is still
// recorded.
type Correction struct {
	TokenID       string `json:"token_id"`
	CorrectedText string `json:"corrected_text"`
}

// Request is one review submission, partial or final.
type Request struct {
	DocumentID       string
	Corrections      []Correction
	ReviewedTokenIDs []string
	ReviewComplete   bool
	StructuredFields map[string]string
}

// Result reports the state after a review submission.
type Result struct {
	ValidatedText string
	Status        constants.DocumentStatus
	ValidatedAt   *time.Time
}

// Service applies reviewer corrections to a document. Submissions for
// the same document are serialized by a per-document mutex on top of
// the store transaction, so concurrent saves cannot interleave their
// read-check-write cycles.
type Service struct {
	store  *repository.Store
	logger *slog.Logger

	locks sync.Map // document id -> *sync.Mutex
}

func NewService(store *repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

func (s *Service) lockFor(documentID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(documentID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ApplyCorrections records the submitted corrections, advances the
// reviewed set, rebuilds the document text from the corrected tokens,
// and moves the document to validated when the review is complete or
// review_in_progress otherwise. When ReviewComplete is set and any
// forced-review token is still unreviewed, the whole submission is
// rejected with review_incomplete and nothing is written.
func (s *Service) ApplyCorrections(ctx context.Context, req Request) (*Result, error) {
	mu := s.lockFor(req.DocumentID)
	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var result Result

	err := s.store.Update(func(tx *repository.Tx) error {
		doc, err := tx.GetDocument(req.DocumentID)
		if err != nil {
			return err
		}

		tokens, err := tx.TokensInOrder(req.DocumentID)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.Token, len(tokens))
		for i := range tokens {
			byID[tokens[i].ID] = &tokens[i]
		}

		corrected := make(map[string]string, len(req.Corrections))
		for _, c := range req.Corrections {
			if _, ok := byID[c.TokenID]; !ok {
				return common.NotFound(common.ReasonTokenNotFound,
					fmt.Sprintf("token %s does not exist on document %s", c.TokenID, req.DocumentID))
			}
			corrected[c.TokenID] = c.CorrectedText
		}

		// The reviewed set only grows: prior saves, the ids marked
		// reviewed in this request, and every corrected token.
		reviewed := make(map[string]struct{})
		for i := range tokens {
			if tokens[i].Reviewed {
				reviewed[tokens[i].ID] = struct{}{}
			}
		}
		for _, id := range req.ReviewedTokenIDs {
			if _, ok := byID[id]; !ok {
				return common.NotFound(common.ReasonTokenNotFound,
					fmt.Sprintf("token %s does not exist on document %s", id, req.DocumentID))
			}
			reviewed[id] = struct{}{}
		}
		for id := range corrected {
			reviewed[id] = struct{}{}
		}

		if req.ReviewComplete {
			var missing []string
			for i := range tokens {
				if tokens[i].ForcedReview {
					if _, ok := reviewed[tokens[i].ID]; !ok {
						missing = append(missing, tokens[i].ID)
					}
				}
			}
			if len(missing) > 0 {
				sort.Strings(missing)
				return common.Precondition(common.ReasonReviewIncomplete,
					fmt.Sprintf("%d forced-review tokens unreviewed: %s",
						len(missing), strings.Join(missing, ", ")))
			}
		}

		for i := range tokens {
			tok := &tokens[i]
			text, isCorrected := corrected[tok.ID]
			_, isReviewed := reviewed[tok.ID]
			if !isCorrected && tok.Reviewed == isReviewed {
				continue
			}
			if isCorrected {
				if err := tx.AppendCorrection(&entity.Correction{
					ID:            uuid.New().String(),
					DocumentID:    req.DocumentID,
					TokenID:       tok.ID,
					OriginalText:  tok.Text,
					CorrectedText: text,
					ConfirmedAt:   now,
				}); err != nil {
					return err
				}
				tok.Text = text
			}
			tok.Reviewed = isReviewed
			if err := tx.PutToken(tok); err != nil {
				return err
			}
		}

		// The assembled text is always returned as a preview, but only a
		// completed review persists it: validated_text exists on a
		// document iff its status is validated or later.
		text := assembleText(tokens)
		if req.ReviewComplete {
			doc.Status = constants.StatusValidated
			doc.ValidatedText = text
			doc.ValidatedAt = &now
		} else {
			doc.Status = constants.StatusReviewInProgress
		}
		if req.StructuredFields != nil {
			doc.StructuredFields = req.StructuredFields
		}
		doc.UpdatedAt = now
		if err := tx.PutDocument(doc); err != nil {
			return err
		}

		if len(req.Corrections) > 0 {
			if err := tx.AppendAudit(&entity.AuditLog{
				ID:         uuid.New().String(),
				DocumentID: req.DocumentID,
				EventType:  entity.AuditCorrectionsApplied,
				Detail:     map[string]any{"correction_count": len(req.Corrections)},
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}
		reviewEvent := entity.AuditReviewSaved
		if req.ReviewComplete {
			reviewEvent = entity.AuditReviewCompleted
		}
		if err := tx.AppendAudit(&entity.AuditLog{
			ID:         uuid.New().String(),
			DocumentID: req.DocumentID,
			EventType:  reviewEvent,
			Detail:     map[string]any{"reviewed_count": len(reviewed)},
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		if req.StructuredFields != nil {
			if err := tx.AppendAudit(&entity.AuditLog{
				ID:         uuid.New().String(),
				DocumentID: req.DocumentID,
				EventType:  entity.AuditFieldsUpdated,
				Detail:     map[string]any{"field_count": len(req.StructuredFields)},
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}

		result = Result{ValidatedText: text, Status: doc.Status, ValidatedAt: doc.ValidatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("validation.saved",
		"document_id", req.DocumentID,
		"corrections", len(req.Corrections),
		"review_complete", req.ReviewComplete,
		"status", result.Status,
	)
	return &result, nil
}

// assembleText joins token text with spaces within a line and newlines
// between lines, lines ascending. Tokens arrive already ordered by
// (line_index, token_index).
func assembleText(tokens []entity.Token) string {
	var b strings.Builder
	lastLine := -1
	for i := range tokens {
		if tokens[i].Text == "" {
			continue
		}
		if b.Len() > 0 {
			if tokens[i].LineIndex != lastLine {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(tokens[i].Text)
		lastLine = tokens[i].LineIndex
	}
	return b.String()
}
