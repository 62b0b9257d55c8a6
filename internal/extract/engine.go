package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veradocs/vera/constants"
	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/entity"
	"github.com/veradocs/vera/internal/metrics"
	"github.com/veradocs/vera/internal/repository"
)

// Summarizer is the optional LLM collaborator. Both methods are
// best-effort: any failure falls back to the deterministic builders and
// never surfaces to the caller.
type Summarizer interface {
	SummarizePoints(ctx context.Context, model, text string) ([]string, error)
	Narrative(ctx context.Context, model, text string) (string, error)
}

// SummaryOptions carries the per-request overrides.
type SummaryOptions struct {
	Model   string // non-empty enables the LLM path
	Locale  Locale // LocaleAuto -> detect from the text
	DocType string // external document-type override
}

// Summary is the engine output.
type Summary struct {
	BulletSummary    []string
	StructuredFields map[string]string
	Status           constants.DocumentStatus
}

// Engine derives structured fields from validated text. The rules
// configuration is loaded once and shared read-only; the deterministic
// path is idempotent for the same validated text.
type Engine struct {
	rules      *Rules
	store      *repository.Store
	summarizer Summarizer
	logger     *slog.Logger
}

func NewEngine(rules *Rules, store *repository.Store, summarizer Summarizer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules, store: store, summarizer: summarizer, logger: logger}
}

// BuildSummary extracts structured fields for a validated document,
// persists them, advances the status to summarized, and appends an audit
// entry. Fails with document_not_found or document_not_validated.
func (e *Engine) BuildSummary(ctx context.Context, documentID string, opts SummaryOptions) (*Summary, error) {
	start := time.Now()
	e.logger.Info("summary.start", "document_id", documentID, "model", opts.Model)

	doc, err := e.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !constants.CanSummarize(doc.Status) {
		return nil, common.Precondition(common.ReasonDocumentNotValidated,
			fmt.Sprintf("document %s has status %s", documentID, doc.Status))
	}

	bullets, fields := e.derive(ctx, doc.ValidatedText, opts)

	now := time.Now().UTC()
	err = e.store.Update(func(tx *repository.Tx) error {
		cur, err := tx.GetDocument(documentID)
		if err != nil {
			return err
		}
		if !constants.CanSummarize(cur.Status) {
			return common.Precondition(common.ReasonDocumentNotValidated,
				fmt.Sprintf("document %s has status %s", documentID, cur.Status))
		}
		cur.Status = constants.StatusSummarized
		cur.StructuredFields = fields
		cur.UpdatedAt = now
		if err := tx.PutDocument(cur); err != nil {
			return err
		}
		return tx.AppendAudit(&entity.AuditLog{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			EventType:  entity.AuditSummaryGenerated,
			Detail:     map[string]any{"field_count": len(fields)},
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.SummaryDuration.WithLabelValues("document").Observe(time.Since(start).Seconds())
	e.logger.Info("summary.ok",
		"document_id", documentID,
		"field_count", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Summary{
		BulletSummary:    bullets,
		StructuredFields: fields,
		Status:           constants.StatusSummarized,
	}, nil
}

// Extract runs the extraction sub-algorithms over text without touching
// persistence. Used by the offline scanner.
func (e *Engine) Extract(ctx context.Context, text string, opts SummaryOptions) *Summary {
	bullets, fields := e.derive(ctx, text, opts)
	return &Summary{BulletSummary: bullets, StructuredFields: fields}
}

// derive runs the extraction sub-algorithms over validated text.
func (e *Engine) derive(ctx context.Context, validatedText string, opts SummaryOptions) ([]string, map[string]string) {
	lines := nonEmptyLines(validatedText)

	lineCount := len(lines)
	wordCount := 0
	for _, line := range lines {
		wordCount += len(strings.Fields(line))
	}

	// Locale is decided once per document, before any amount is
	// normalized, then held fixed.
	locale := opts.Locale
	if locale == LocaleAuto {
		locale = DetectLocale(lines)
	}

	dates := ExtractDates(lines)
	amounts := ExtractAmounts(lines, locale, e.rules)
	ids := ExtractIdentifiers(lines)
	keywords := TopKeywords(validatedText, e.rules)

	cls := ClassifyDocument(strings.Join(lines, "\n"), e.rules.DocTypeSignals)
	if opts.DocType != "" {
		cls.Label = opts.DocType
	}

	vendor := GuessVendor(lines, e.rules)
	total := GuessTotal(lines, amounts, e.rules)
	items := GuessItems(lines, e.rules)

	var points []string
	if vendor != "" {
		points = append(points, "Vendor: "+vendor)
	}
	if len(dates) > 0 {
		points = append(points, "Date: "+dates[0])
	}
	if total != "" {
		points = append(points, "Total: "+total)
	}
	if len(items) > 0 {
		points = append(points, "Items: "+strings.Join(items, "; "))
	}

	narrative := BuildNarrative(validatedText, e.rules.SummaryMaxChars)

	if opts.Model != "" && e.summarizer != nil {
		if llmPoints, err := e.summarizer.SummarizePoints(ctx, opts.Model, validatedText); err != nil {
			e.logger.Warn("summary.llm.points_failed", "model", opts.Model, "error", err)
		} else if len(llmPoints) > 0 {
			points = llmPoints
		}
		if llmNarrative, err := e.summarizer.Narrative(ctx, opts.Model, validatedText); err != nil {
			e.logger.Warn("summary.llm.narrative_failed", "model", opts.Model, "error", err)
		} else if llmNarrative != "" {
			narrative = llmNarrative
		}
	}

	if len(points) == 0 && len(lines) > 0 {
		n := 3
		if len(lines) < n {
			n = len(lines)
		}
		points = append(points, lines[:n]...)
	}

	pointsText := "No text detected"
	if len(points) > 0 {
		pointsText = strings.Join(points, " | ")
	}

	fields := map[string]string{
		"line_count":               fmt.Sprintf("%d", lineCount),
		"word_count":               fmt.Sprintf("%d", wordCount),
		"summary_points":           pointsText,
		"narrative":                narrative,
		"dates":                    joinDetected(dates, e.rules.MaxListed),
		"amounts":                  joinDetected(amounts, e.rules.MaxListed),
		"invoice_numbers":          joinDetected(ids.InvoiceNumbers, e.rules.MaxListed),
		"emails":                   joinDetected(ids.Emails, e.rules.MaxListed),
		"phones":                   joinDetected(ids.Phones, e.rules.MaxListed),
		"tax_ids":                  joinDetected(ids.TaxIDs, e.rules.MaxListed),
		"document_type":            cls.Label,
		"document_type_confidence": cls.Confidence,
		"keywords":                 joinDetected(keywords, e.rules.KeywordLimit),
	}

	bullets := []string{
		fmt.Sprintf("Overview: %d lines · %d words", lineCount, wordCount),
		fmt.Sprintf("Document type: %s (%s)", cls.Label, cls.Confidence),
		"Summary points: " + pointsText,
		"Keywords: " + fields["keywords"],
		"Dates detected: " + fields["dates"],
		"Amounts detected: " + fields["amounts"],
		"All low-confidence items reviewed by user",
	}

	return bullets, fields
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func joinDetected(values []string, limit int) string {
	if len(values) == 0 {
		return "Not detected"
	}
	if len(values) > limit {
		values = values[:limit]
	}
	return strings.Join(values, ", ")
}
