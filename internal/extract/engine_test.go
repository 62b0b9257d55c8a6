package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veradocs/vera/constants"
	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/entity"
	"github.com/veradocs/vera/internal/repository"
)

func setupStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := repository.Open(repository.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedDocument(t *testing.T, store *repository.Store, status constants.DocumentStatus, text string) string {
	t.Helper()
	now := time.Now().UTC()
	doc := &entity.Document{
		ID:            "doc-1",
		Status:        status,
		ValidatedText: text,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, store.CreateDocument(context.Background(), doc))
	return doc.ID
}

func TestBuildSummaryReceiptScenario(t *testing.T) {
	store := setupStore(t)
	id := seedDocument(t, store, constants.StatusValidated, "Acme Corp\n2026-02-01\nTotal $12.00")

	engine := NewEngine(DefaultRules(), store, nil, nil)
	summary, err := engine.BuildSummary(context.Background(), id, SummaryOptions{})
	require.NoError(t, err)

	fields := summary.StructuredFields
	assert.Equal(t, "3", fields["line_count"])
	assert.Equal(t, "5", fields["word_count"])
	assert.Equal(t, "2026-02-01", fields["dates"])
	assert.Equal(t, "$12.00", fields["amounts"])
	assert.Equal(t, "Invoice/Receipt", fields["document_type"])
	assert.Equal(t, "low", fields["document_type_confidence"])
	assert.Equal(t, "Not detected", fields["invoice_numbers"])
	assert.Equal(t, "Not detected", fields["emails"])
	assert.Contains(t, fields["summary_points"], "Vendor: Acme Corp")
	assert.Contains(t, fields["summary_points"], "Total: $12.00")

	assert.Len(t, summary.BulletSummary, 7)
	assert.Equal(t, constants.StatusSummarized, summary.Status)

	// status advanced and fields persisted
	doc, err := store.GetDocument(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusSummarized, doc.Status)
	assert.Equal(t, fields, doc.StructuredFields)

	// audit entry written
	trail, err := store.AuditTrail(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, entity.AuditSummaryGenerated, trail[0].EventType)
}

func TestBuildSummaryEuropeanAmounts(t *testing.T) {
	store := setupStore(t)
	id := seedDocument(t, store, constants.StatusValidated, "Kaffeehaus Wien\nTotal 59,99")

	engine := NewEngine(DefaultRules(), store, nil, nil)
	summary, err := engine.BuildSummary(context.Background(), id, SummaryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "59.99", summary.StructuredFields["amounts"])
}

func TestBuildSummaryNotFound(t *testing.T) {
	store := setupStore(t)
	engine := NewEngine(DefaultRules(), store, nil, nil)

	_, err := engine.BuildSummary(context.Background(), "missing", SummaryOptions{})
	assert.True(t, common.IsNotFound(err))
}

func TestBuildSummaryRequiresValidated(t *testing.T) {
	store := setupStore(t)
	id := seedDocument(t, store, constants.StatusOCRDone, "")

	engine := NewEngine(DefaultRules(), store, nil, nil)
	_, err := engine.BuildSummary(context.Background(), id, SummaryOptions{})
	assert.True(t, common.IsPrecondition(err))
	assert.Equal(t, common.ReasonDocumentNotValidated, common.ReasonOf(err))
}

func TestBuildSummaryIdempotent(t *testing.T) {
	store := setupStore(t)
	id := seedDocument(t, store, constants.StatusValidated, "Acme Corp\nTotal $12.00")

	engine := NewEngine(DefaultRules(), store, nil, nil)
	first, err := engine.BuildSummary(context.Background(), id, SummaryOptions{})
	require.NoError(t, err)
	second, err := engine.BuildSummary(context.Background(), id, SummaryOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.StructuredFields, second.StructuredFields)
}

type failingSummarizer struct{}

func (failingSummarizer) SummarizePoints(context.Context, string, string) ([]string, error) {
	return nil, errors.New("model offline")
}
func (failingSummarizer) Narrative(context.Context, string, string) (string, error) {
	return "", errors.New("model offline")
}

func TestBuildSummaryLLMFailureFallsBack(t *testing.T) {
	store := setupStore(t)
	text := "Acme Corp\n2026-02-01\nTotal $12.00"
	id := seedDocument(t, store, constants.StatusValidated, text)

	baseline := NewEngine(DefaultRules(), store, nil, nil).
		Extract(context.Background(), text, SummaryOptions{})

	engine := NewEngine(DefaultRules(), store, failingSummarizer{}, nil)
	summary, err := engine.BuildSummary(context.Background(), id, SummaryOptions{Model: "llama3.1"})
	require.NoError(t, err)
	assert.Equal(t, baseline.StructuredFields, summary.StructuredFields)
}

type canned struct {
	points    []string
	narrative string
}

func (c canned) SummarizePoints(context.Context, string, string) ([]string, error) {
	return c.points, nil
}
func (c canned) Narrative(context.Context, string, string) (string, error) {
	return c.narrative, nil
}

func TestBuildSummaryLLMReplacesDeterministicText(t *testing.T) {
	store := setupStore(t)
	id := seedDocument(t, store, constants.StatusValidated, "Acme Corp\nTotal $12.00")

	engine := NewEngine(DefaultRules(), store, canned{
		points:    []string{"Acme receipt for twelve dollars"},
		narrative: "A receipt from Acme Corp.",
	}, nil)
	summary, err := engine.BuildSummary(context.Background(), id, SummaryOptions{Model: "llama3.1"})
	require.NoError(t, err)

	assert.Equal(t, "Acme receipt for twelve dollars", summary.StructuredFields["summary_points"])
	assert.Equal(t, "A receipt from Acme Corp.", summary.StructuredFields["narrative"])
}

func TestExtractWithoutStore(t *testing.T) {
	engine := NewEngine(DefaultRules(), nil, nil, nil)
	summary := engine.Extract(context.Background(), "Total $5.00", SummaryOptions{})
	assert.Equal(t, "$5.00", summary.StructuredFields["amounts"])
	assert.Equal(t, "1", summary.StructuredFields["line_count"])
}
