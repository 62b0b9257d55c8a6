package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veradocs/vera/constants"
	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDocumentRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := &entity.Document{
		ID:        "d1",
		ImagePath: "/data/d1.png",
		Status:    constants.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.ImagePath, got.ImagePath)
	assert.Equal(t, constants.StatusUploaded, got.Status)
}

func TestGetDocumentNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetDocument(context.Background(), "nope")
	assert.True(t, common.IsNotFound(err))
	assert.Equal(t, common.ReasonDocumentNotFound, common.ReasonOf(err))
}

func token(id string, line, idx int, text string, forced bool) entity.Token {
	return entity.Token{
		ID:           id,
		DocumentID:   "d1",
		LineIndex:    line,
		TokenIndex:   idx,
		LineID:       "line-0",
		Text:         text,
		Confidence:   0.95,
		ForcedReview: forced,
	}
}

func TestTokensInOrder(t *testing.T) {
	store := openTestStore(t)

	// written out of order on purpose
	tokens := []entity.Token{
		token("c", 1, 0, "third", false),
		token("b", 0, 1, "second", false),
		token("a", 0, 0, "first", false),
	}
	require.NoError(t, store.Update(func(tx *Tx) error {
		return tx.ReplaceTokens("d1", tokens)
	}))

	got, err := store.TokensInOrder(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, "third", got[2].Text)
}

func TestReplaceTokensSupersedes(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Update(func(tx *Tx) error {
		return tx.ReplaceTokens("d1", []entity.Token{
			token("a", 0, 0, "old", false),
			token("b", 1, 0, "stale", false),
		})
	}))
	require.NoError(t, store.Update(func(tx *Tx) error {
		return tx.ReplaceTokens("d1", []entity.Token{
			token("c", 0, 0, "new", false),
		})
	}))

	got, err := store.TokensInOrder(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Text)
}

func TestForcedReviewTokenIDs(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Update(func(tx *Tx) error {
		return tx.ReplaceTokens("d1", []entity.Token{
			token("a", 0, 0, "fine", false),
			token("b", 0, 1, "fuzzy", true),
		})
	}))

	var ids map[string]struct{}
	require.NoError(t, store.View(func(tx *Tx) error {
		var err error
		ids, err = tx.ForcedReviewTokenIDs("d1")
		return err
	}))
	assert.Equal(t, map[string]struct{}{"b": {}}, ids)
}

func TestAuditTrailOrder(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().UTC()

	require.NoError(t, store.Update(func(tx *Tx) error {
		for i, ev := range []string{"ocr_completed", "review_completed", "exported"} {
			if err := tx.AppendAudit(&entity.AuditLog{
				ID:         string(rune('a' + i)),
				DocumentID: "d1",
				EventType:  ev,
				CreatedAt:  base.Add(time.Duration(i) * time.Second),
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	trail, err := store.AuditTrail(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, "ocr_completed", trail[0].EventType)
	assert.Equal(t, "exported", trail[2].EventType)
}

func TestCorrectionsAppendOnly(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Update(func(tx *Tx) error {
		return tx.AppendCorrection(&entity.Correction{
			ID: "c1", DocumentID: "d1", TokenID: "a",
			OriginalText: "Tota1", CorrectedText: "Total",
			ConfirmedAt: time.Now().UTC(),
		})
	}))
	require.NoError(t, store.Update(func(tx *Tx) error {
		return tx.AppendCorrection(&entity.Correction{
			ID: "c2", DocumentID: "d1", TokenID: "a",
			OriginalText: "Total", CorrectedText: "Total",
			ConfirmedAt: time.Now().UTC(),
		})
	}))

	var got []entity.Correction
	require.NoError(t, store.View(func(tx *Tx) error {
		var err error
		got, err = tx.CorrectionsFor("d1")
		return err
	}))
	assert.Len(t, got, 2)
}
