package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	"github.com/klausurarchiv/archiv-server/internal/store"
)

// CreateFolder inserts a folder and returns its ID.
func (s *Store) CreateFolder(ctx context.Context, f *domain.Folder) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO folders (name) VALUES (?)`, f.Name)
	if err != nil {
		return 0, fmt.Errorf("insert folder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("folder insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

// GetFolder retrieves a folder by ID.
// Returns store.ErrNotFound if the row does not exist.
func (s *Store) GetFolder(ctx context.Context, id int64) (*domain.Folder, error) {
	var f domain.Folder
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM folders WHERE id = ?`, id).Scan(&f.ID, &f.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFolders returns all folders ordered by ID.
func (s *Store) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM folders ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []*domain.Folder{}
	for rows.Next() {
		var f domain.Folder
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		folders = append(folders, &f)
	}
	return folders, rows.Err()
}

// UpdateFolder replaces a folder's name.
// Returns store.ErrNotFound if the row does not exist.
func (s *Store) UpdateFolder(ctx context.Context, f *domain.Folder) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE folders SET name = ? WHERE id = ?`, f.Name, f.ID)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteFolder removes a folder; join rows referencing it cascade.
func (s *Store) DeleteFolder(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return requireRowAffected(res)
}
