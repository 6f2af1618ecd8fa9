package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	"github.com/klausurarchiv/archiv-server/internal/store"
)

const itemColumns = `id, name, date, visible`

// relationTable maps a relation name onto its join table layout and the
// table the foreign IDs point at.
type relationTable struct {
	join   string
	column string
	target string
}

var relationTables = map[domain.Relation]relationTable{
	domain.RelationDocuments: {join: "item_documents", column: "document_id", target: "documents"},
	domain.RelationAuthors:   {join: "item_authors", column: "author_id", target: "authors"},
	domain.RelationCourses:   {join: "item_courses", column: "course_id", target: "courses"},
	domain.RelationFolders:   {join: "item_folders", column: "folder_id", target: "folders"},
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*domain.Item, error) {
	var it domain.Item
	var date sql.NullString
	var visible int64

	if err := scanner.Scan(&it.ID, &it.Name, &date, &visible); err != nil {
		return nil, err
	}
	it.Date = fromNullString(date)
	it.Visible = visible != 0

	it.Documents = []int64{}
	it.Authors = []int64{}
	it.Courses = []int64{}
	it.Folders = []int64{}

	return &it, nil
}

// CreateItem inserts the scalar row and all four relation sets in a single
// transaction, so a failing relation insert leaves nothing behind.
func (s *Store) CreateItem(ctx context.Context, it *domain.Item) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO items (name, date, visible) VALUES (?, ?, ?)`,
		it.Name,
		nullString(it.Date),
		boolToInt(it.Visible),
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("item insert id: %w", err)
	}

	for _, rel := range domain.Relations {
		if err := replaceRelations(ctx, tx, id, rel, it.RelationIDs(rel)); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	it.ID = id
	return id, nil
}

// GetItem retrieves an item with all four relation sets, regardless of
// visibility. Returns store.ErrNotFound if the row does not exist.
func (s *Store) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return s.getItem(ctx, id, false)
}

// GetVisibleItem is GetItem restricted to visible rows. Hidden items come
// back as store.ErrNotFound so their existence doesn't leak.
func (s *Store) GetVisibleItem(ctx context.Context, id int64) (*domain.Item, error) {
	return s.getItem(ctx, id, true)
}

func (s *Store) getItem(ctx context.Context, id int64, onlyVisible bool) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	if onlyVisible {
		query += ` AND visible = 1`
	}

	it, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	for _, rel := range domain.Relations {
		ids, err := s.itemRelationIDs(ctx, id, rel)
		if err != nil {
			return nil, err
		}
		setRelationIDs(it, rel, ids)
	}

	return it, nil
}

// ListItems returns all items with relations populated, ordered by ID.
func (s *Store) ListItems(ctx context.Context) ([]*domain.Item, error) {
	return s.listItems(ctx, false)
}

// ListVisibleItems returns only items with visible=true.
func (s *Store) ListVisibleItems(ctx context.Context) ([]*domain.Item, error) {
	return s.listItems(ctx, true)
}

func (s *Store) listItems(ctx context.Context, onlyVisible bool) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	if onlyVisible {
		query += ` WHERE visible = 1`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.Item{}
	byID := map[int64]*domain.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
		byID[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One pass per join table instead of four queries per item.
	for _, rel := range domain.Relations {
		rt := relationTables[rel]
		relRows, err := s.db.QueryContext(ctx,
			`SELECT item_id, `+rt.column+` FROM `+rt.join+` ORDER BY item_id, `+rt.column)
		if err != nil {
			return nil, err
		}

		for relRows.Next() {
			var itemID, targetID int64
			if err := relRows.Scan(&itemID, &targetID); err != nil {
				relRows.Close()
				return nil, err
			}
			if it, ok := byID[itemID]; ok {
				setRelationIDs(it, rel, append(it.RelationIDs(rel), targetID))
			}
		}
		if err := relRows.Err(); err != nil {
			relRows.Close()
			return nil, err
		}
		relRows.Close()
	}

	return items, nil
}

// UpdateItem replaces the scalar columns only; relation sets are untouched.
// Returns store.ErrNotFound if the row does not exist.
func (s *Store) UpdateItem(ctx context.Context, it *domain.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET name = ?, date = ?, visible = ? WHERE id = ?`,
		it.Name,
		nullString(it.Date),
		boolToInt(it.Visible),
		it.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteItem removes the item row; all four join tables cascade.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireRowAffected(res)
}

// SetItemRelations atomically replaces the membership set of one relation.
func (s *Store) SetItemRelations(ctx context.Context, itemID int64, rel domain.Relation, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceRelations(ctx, tx, itemID, rel, ids); err != nil {
		return err
	}

	return tx.Commit()
}

// CountExisting reports how many of the given IDs exist in the table the
// relation points at. Duplicate IDs are counted once.
func (s *Store) CountExisting(ctx context.Context, rel domain.Relation, ids []int64) (int, error) {
	rt, ok := relationTables[rel]
	if !ok {
		return 0, fmt.Errorf("unknown relation %q", rel)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT id) FROM `+rt.target+` WHERE id IN (`+placeholders(len(ids))+`)`,
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", rt.target, err)
	}
	return count, nil
}

// replaceRelations swaps a relation's membership set inside an open
// transaction (delete-then-insert).
func replaceRelations(ctx context.Context, tx *sql.Tx, itemID int64, rel domain.Relation, ids []int64) error {
	rt, ok := relationTables[rel]
	if !ok {
		return fmt.Errorf("unknown relation %q", rel)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+rt.join+` WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("delete %s: %w", rt.join, err)
	}

	for _, targetID := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+rt.join+` (item_id, `+rt.column+`) VALUES (?, ?)`,
			itemID, targetID); err != nil {
			if isConstraintErr(err) {
				// Referential integrity is checked before any write; a
				// constraint failure here is a bug, not user input.
				return fmt.Errorf("insert %s: %w", rt.join, store.ErrConstraint)
			}
			return fmt.Errorf("insert %s: %w", rt.join, err)
		}
	}
	return nil
}

func (s *Store) itemRelationIDs(ctx context.Context, itemID int64, rel domain.Relation) ([]int64, error) {
	rt := relationTables[rel]
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rt.column+` FROM `+rt.join+` WHERE item_id = ? ORDER BY `+rt.column, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func setRelationIDs(it *domain.Item, rel domain.Relation, ids []int64) {
	switch rel {
	case domain.RelationDocuments:
		it.Documents = ids
	case domain.RelationAuthors:
		it.Authors = ids
	case domain.RelationCourses:
		it.Courses = ids
	case domain.RelationFolders:
		it.Folders = ids
	}
}
