// Package blob stores document contents in a Badger key-value database,
// keyed by document ID. Metadata lives in the relational store; this package
// only ever sees raw bytes.
package blob

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no content has been uploaded for a document.
var ErrNotFound = errors.New("blob: not found")

// ErrTooLarge is returned when a write exceeds the configured size cap.
var ErrTooLarge = errors.New("blob: content too large")

// Store holds uploaded document contents.
type Store struct {
	db       *badger.DB
	logger   *slog.Logger
	maxBytes int64
}

// Open creates the blob store at the given directory. maxBytes caps the
// size of a single stored blob; zero means no cap.
func Open(path string, maxBytes int64, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // Uploaded exams must survive a crash
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("blob store opened", "path", path, "max_bytes", maxBytes)
	}

	return &Store{db: db, logger: logger, maxBytes: maxBytes}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// MaxBytes returns the configured per-blob size cap (0 = unlimited).
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

func key(documentID int64) []byte {
	return []byte("doc:" + strconv.FormatInt(documentID, 10))
}

// Write stores content for a document, replacing any previous content.
// Returns ErrTooLarge when the payload exceeds the cap.
func (s *Store) Write(documentID int64, content []byte) error {
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return ErrTooLarge
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(documentID), content)
	})
	if err != nil {
		return fmt.Errorf("write blob %d: %w", documentID, err)
	}
	return nil
}

// Read returns the stored content for a document, or ErrNotFound if nothing
// has been uploaded yet.
func (s *Store) Read(documentID int64) ([]byte, error) {
	var content []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(documentID))
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %d: %w", documentID, err)
	}
	return content, nil
}

// Exists reports whether any content is stored for the document.
func (s *Store) Exists(documentID int64) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(documentID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat blob %d: %w", documentID, err)
	}
	return true, nil
}

// Delete removes stored content. Deleting a document that never had content
// uploaded is not an error.
func (s *Store) Delete(documentID int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(documentID))
	})
	if err != nil {
		return fmt.Errorf("delete blob %d: %w", documentID, err)
	}
	return nil
}
