package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	"github.com/klausurarchiv/archiv-server/internal/store"
)

const courseColumns = `id, long_name, short_name`

func scanCourse(scanner interface{ Scan(dest ...any) error }) (*domain.Course, error) {
	var c domain.Course
	if err := scanner.Scan(&c.ID, &c.LongName, &c.ShortName); err != nil {
		return nil, err
	}
	c.Aliases = []string{}
	return &c, nil
}

// CreateCourse inserts a course and its alias set, returning the new ID.
func (s *Store) CreateCourse(ctx context.Context, c *domain.Course) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO courses (long_name, short_name) VALUES (?, ?)`,
		c.LongName, c.ShortName,
	)
	if err != nil {
		return 0, fmt.Errorf("insert course: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("course insert id: %w", err)
	}

	if err := replaceCourseAliases(ctx, tx, id, c.Aliases); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	c.ID = id
	return id, nil
}

// GetCourse retrieves a course with its aliases.
// Returns store.ErrNotFound if the row does not exist.
func (s *Store) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)

	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	c.Aliases, err = s.courseAliases(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCourses returns all courses with their aliases, ordered by ID.
func (s *Store) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []*domain.Course{}
	byID := map[int64]*domain.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One pass over the alias table instead of a query per course.
	aliasRows, err := s.db.QueryContext(ctx,
		`SELECT course_id, alias FROM course_aliases ORDER BY course_id, alias`)
	if err != nil {
		return nil, err
	}
	defer aliasRows.Close()

	for aliasRows.Next() {
		var courseID int64
		var alias string
		if err := aliasRows.Scan(&courseID, &alias); err != nil {
			return nil, err
		}
		if c, ok := byID[courseID]; ok {
			c.Aliases = append(c.Aliases, alias)
		}
	}
	if err := aliasRows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

// UpdateCourse replaces the scalar columns and, when c.Aliases is non-nil,
// the full alias set. Returns store.ErrNotFound if the row does not exist.
func (s *Store) UpdateCourse(ctx context.Context, c *domain.Course) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE courses SET long_name = ?, short_name = ? WHERE id = ?`,
		c.LongName, c.ShortName, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if err := requireRowAffected(res); err != nil {
		return err
	}

	if c.Aliases != nil {
		if err := replaceCourseAliases(ctx, tx, c.ID, c.Aliases); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteCourse removes a course; aliases and join rows cascade.
func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return requireRowAffected(res)
}

func (s *Store) courseAliases(ctx context.Context, courseID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT alias FROM course_aliases WHERE course_id = ? ORDER BY alias`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aliases := []string{}
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, err
		}
		aliases = append(aliases, alias)
	}
	return aliases, rows.Err()
}

// replaceCourseAliases swaps the alias set inside an open transaction.
func replaceCourseAliases(ctx context.Context, tx *sql.Tx, courseID int64, aliases []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM course_aliases WHERE course_id = ?`, courseID); err != nil {
		return fmt.Errorf("delete course_aliases: %w", err)
	}
	for _, alias := range aliases {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO course_aliases (course_id, alias) VALUES (?, ?)`,
			courseID, alias); err != nil {
			return fmt.Errorf("insert course_alias: %w", err)
		}
	}
	return nil
}
