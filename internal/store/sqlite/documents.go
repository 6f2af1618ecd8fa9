package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	"github.com/klausurarchiv/archiv-server/internal/store"
)

// documentColumns is the ordered list of columns selected in document
// queries. Must match the scan order in scanDocument.
const documentColumns = `id, filename, downloadable, content_type`

// visibleDocumentWhere restricts a documents query to rows an anonymous
// caller may see: downloadable, and either unreferenced by any item or
// referenced by at least one visible item. A document attached only to
// hidden items stays hidden.
const visibleDocumentWhere = `
	d.downloadable = 1
	AND (
		NOT EXISTS (SELECT 1 FROM item_documents jd WHERE jd.document_id = d.id)
		OR EXISTS (
			SELECT 1 FROM item_documents jd
			JOIN items i ON i.id = jd.item_id
			WHERE jd.document_id = d.id AND i.visible = 1
		)
	)`

// scanDocument scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Document.
func scanDocument(scanner interface{ Scan(dest ...any) error }) (*domain.Document, error) {
	var d domain.Document
	var downloadable int64

	err := scanner.Scan(&d.ID, &d.Filename, &downloadable, &d.ContentType)
	if err != nil {
		return nil, err
	}
	d.Downloadable = downloadable != 0

	return &d, nil
}

// CreateDocument inserts a new document metadata row and returns its ID.
func (s *Store) CreateDocument(ctx context.Context, d *domain.Document) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (filename, downloadable, content_type)
		VALUES (?, ?, ?)`,
		d.Filename,
		boolToInt(d.Downloadable),
		d.ContentType,
	)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("document insert id: %w", err)
	}
	d.ID = id
	return id, nil
}

// GetDocument retrieves a document by ID regardless of visibility.
// Returns store.ErrNotFound if the row does not exist.
func (s *Store) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetVisibleDocument retrieves a document only if it passes the anonymous
// visibility predicate. Hidden documents come back as store.ErrNotFound.
func (s *Store) GetVisibleDocument(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents d WHERE d.id = ? AND `+visibleDocumentWhere, id)

	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDocuments returns all documents ordered by ID.
func (s *Store) ListDocuments(ctx context.Context) ([]*domain.Document, error) {
	return s.listDocuments(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY id ASC`)
}

// ListVisibleDocuments returns documents an anonymous caller may see.
func (s *Store) ListVisibleDocuments(ctx context.Context) ([]*domain.Document, error) {
	return s.listDocuments(ctx,
		`SELECT `+documentColumns+` FROM documents d WHERE `+visibleDocumentWhere+` ORDER BY d.id ASC`)
}

func (s *Store) listDocuments(ctx context.Context, query string) ([]*domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// UpdateDocument replaces the scalar columns of an existing document.
// Returns store.ErrNotFound if the row does not exist.
func (s *Store) UpdateDocument(ctx context.Context, d *domain.Document) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET filename = ?, downloadable = ?, content_type = ?
		WHERE id = ?`,
		d.Filename,
		boolToInt(d.Downloadable),
		d.ContentType,
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteDocument removes a document row. Join rows referencing it cascade.
func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRowAffected(res)
}

// requireRowAffected translates a zero-row write into store.ErrNotFound.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
