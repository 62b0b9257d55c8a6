package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/entity"
)

// Tx is a typed facade over a Badger transaction. Methods are usable in
// both View and Update transactions unless they write.
type Tx struct {
	txn *badger.Txn
}

// GetDocument loads a document or fails with a not_found domain error.
func (t *Tx) GetDocument(id string) (*entity.Document, error) {
	item, err := t.txn.Get(documentKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, common.NotFound(common.ReasonDocumentNotFound, fmt.Sprintf("document %s does not exist", id))
	}
	if err != nil {
		return nil, err
	}
	var doc entity.Document
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	}); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (t *Tx) PutDocument(doc *entity.Document) error {
	val, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return t.txn.Set(documentKey(doc.ID), val)
}

// ReplaceTokens deletes every existing token for the document and writes
// the new set. Re-OCR therefore supersedes rather than appends, which
// keeps at-least-once task delivery safe.
func (t *Tx) ReplaceTokens(documentID string, tokens []entity.Token) error {
	if err := t.deletePrefix(tokenPrefix(documentID)); err != nil {
		return err
	}
	for i := range tokens {
		tok := tokens[i]
		val, err := json.Marshal(tok)
		if err != nil {
			return err
		}
		if err := t.txn.Set(tokenKey(documentID, tok.LineIndex, tok.TokenIndex), val); err != nil {
			return err
		}
	}
	return nil
}

// PutToken overwrites a single token row in place.
func (t *Tx) PutToken(tok *entity.Token) error {
	val, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return t.txn.Set(tokenKey(tok.DocumentID, tok.LineIndex, tok.TokenIndex), val)
}

// TokensInOrder scans the token prefix; the zero-padded key layout makes
// the scan order equal reading order.
func (t *Tx) TokensInOrder(documentID string) ([]entity.Token, error) {
	var tokens []entity.Token
	err := t.iteratePrefix(tokenPrefix(documentID), func(val []byte) error {
		var tok entity.Token
		if err := json.Unmarshal(val, &tok); err != nil {
			return err
		}
		tokens = append(tokens, tok)
		return nil
	})
	return tokens, err
}

// ForcedReviewTokenIDs returns the ids of every token that requires human
// review before the document can be finalized.
func (t *Tx) ForcedReviewTokenIDs(documentID string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	err := t.iteratePrefix(tokenPrefix(documentID), func(val []byte) error {
		var tok entity.Token
		if err := json.Unmarshal(val, &tok); err != nil {
			return err
		}
		if tok.ForcedReview {
			ids[tok.ID] = struct{}{}
		}
		return nil
	})
	return ids, err
}

// AppendCorrection writes an append-only correction record.
func (t *Tx) AppendCorrection(c *entity.Correction) error {
	val, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return t.txn.Set(correctionKey(c.DocumentID, c.ID), val)
}

func (t *Tx) CorrectionsFor(documentID string) ([]entity.Correction, error) {
	var out []entity.Correction
	err := t.iteratePrefix(correctionPrefix(documentID), func(val []byte) error {
		var c entity.Correction
		if err := json.Unmarshal(val, &c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// AppendAudit writes an append-only audit entry keyed by creation time.
func (t *Tx) AppendAudit(a *entity.AuditLog) error {
	val, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return t.txn.Set(auditKey(a.DocumentID, a.CreatedAt.UnixNano(), a.ID), val)
}

func (t *Tx) AuditFor(documentID string) ([]entity.AuditLog, error) {
	var out []entity.AuditLog
	err := t.iteratePrefix(auditPrefix(documentID), func(val []byte) error {
		var a entity.AuditLog
		if err := json.Unmarshal(val, &a); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

func (t *Tx) iteratePrefix(prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tx) deletePrefix(prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := t.txn.NewIterator(opts)

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := t.txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
