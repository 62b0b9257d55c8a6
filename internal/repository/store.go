package repository

import (
	"context"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/veradocs/vera/internal/entity"
)

// Options configures the underlying Badger database.
type Options struct {
	Dir      string
	InMemory bool // tests
}

// Store is the persistence provider: durable key-value rows with ordered
// range queries and transactional multi-entity writes. Every logical
// operation (OCR commit, validation commit, summarization commit) runs
// inside a single Badger transaction.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

func Open(opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(opts.Dir)
	}
	bopts = bopts.
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true)

	db, err := badger.Open(bopts)
	if err != nil {
		logger.Error("store.open_failed", "dir", opts.Dir, "error", err)
		return nil, err
	}
	logger.Info("store.opened", "dir", opts.Dir, "in_memory", opts.InMemory)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	s.logger.Info("store.closing")
	return s.db.Close()
}

// View runs fn in a read-only transaction.
func (s *Store) View(fn func(tx *Tx) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	})
}

// Update runs fn in a read-write transaction. All writes commit together
// or not at all.
func (s *Store) Update(fn func(tx *Tx) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	})
}

// GetDocument is a read-only convenience wrapper.
func (s *Store) GetDocument(_ context.Context, id string) (*entity.Document, error) {
	var doc *entity.Document
	err := s.View(func(tx *Tx) error {
		d, err := tx.GetDocument(id)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	return doc, err
}

// CreateDocument persists a new document row.
func (s *Store) CreateDocument(_ context.Context, doc *entity.Document) error {
	return s.Update(func(tx *Tx) error {
		return tx.PutDocument(doc)
	})
}

// TokensInOrder returns a document's tokens ordered by (line_index,
// token_index).
func (s *Store) TokensInOrder(_ context.Context, documentID string) ([]entity.Token, error) {
	var tokens []entity.Token
	err := s.View(func(tx *Tx) error {
		ts, err := tx.TokensInOrder(documentID)
		if err != nil {
			return err
		}
		tokens = ts
		return nil
	})
	return tokens, err
}

// AuditTrail returns a document's audit entries in creation order.
func (s *Store) AuditTrail(_ context.Context, documentID string) ([]entity.AuditLog, error) {
	var entries []entity.AuditLog
	err := s.View(func(tx *Tx) error {
		es, err := tx.AuditFor(documentID)
		if err != nil {
			return err
		}
		entries = es
		return nil
	})
	return entries, err
}
