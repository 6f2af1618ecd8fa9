package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	"github.com/klausurarchiv/archiv-server/internal/store"
)

// CreateAuthor inserts an author and returns its ID.
func (s *Store) CreateAuthor(ctx context.Context, a *domain.Author) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO authors (name) VALUES (?)`, a.Name)
	if err != nil {
		return 0, fmt.Errorf("insert author: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("author insert id: %w", err)
	}
	a.ID = id
	return id, nil
}

// GetAuthor retrieves an author by ID.
// Returns store.ErrNotFound if the row does not exist.
func (s *Store) GetAuthor(ctx context.Context, id int64) (*domain.Author, error) {
	var a domain.Author
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM authors WHERE id = ?`, id).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAuthors returns all authors ordered by ID.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM authors ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := []*domain.Author{}
	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		authors = append(authors, &a)
	}
	return authors, rows.Err()
}

// UpdateAuthor replaces an author's name.
// Returns store.ErrNotFound if the row does not exist.
func (s *Store) UpdateAuthor(ctx context.Context, a *domain.Author) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE authors SET name = ? WHERE id = ?`, a.Name, a.ID)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteAuthor removes an author; join rows referencing it cascade.
func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	return requireRowAffected(res)
}
