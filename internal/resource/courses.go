package resource

import (
	"context"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
)

// CoursePayload is the inbound shape for course create/update. A nil Aliases
// leaves the alias set alone; an empty list clears it.
type CoursePayload struct {
	LongName  *string   `json:"long_name"`
	ShortName *string   `json:"short_name"`
	Aliases   *[]string `json:"aliases"`
}

func createCourse(ctx context.Context, e *Engine, raw []byte) (int64, error) {
	p, err := decode[CoursePayload](raw)
	if err != nil {
		return 0, err
	}
	if p.LongName == nil {
		return 0, apperrors.Validation("long_name is missing")
	}
	if p.ShortName == nil {
		return 0, apperrors.Validation("short_name is missing")
	}

	c := &domain.Course{
		LongName:  *p.LongName,
		ShortName: *p.ShortName,
		Aliases:   []string{},
	}
	if p.Aliases != nil {
		c.Aliases = *p.Aliases
	}
	return e.store.CreateCourse(ctx, c)
}

func updateCourse(ctx context.Context, e *Engine, id int64, raw []byte) error {
	p, err := decode[CoursePayload](raw)
	if err != nil {
		return err
	}

	c, err := e.store.GetCourse(ctx, id)
	if err != nil {
		return mapStoreErr(err, "course")
	}

	if p.LongName != nil {
		c.LongName = *p.LongName
	}
	if p.ShortName != nil {
		c.ShortName = *p.ShortName
	}
	if p.Aliases != nil {
		c.Aliases = *p.Aliases
	} else {
		// Signal the store to leave the alias set untouched.
		c.Aliases = nil
	}

	return mapStoreErr(e.store.UpdateCourse(ctx, c), "course")
}

func deleteCourse(ctx context.Context, e *Engine, id int64) error {
	return mapStoreErr(e.store.DeleteCourse(ctx, id), "course")
}

func getCourse(ctx context.Context, e *Engine, id int64, _ bool) (any, error) {
	c, err := e.store.GetCourse(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "course")
	}
	return c, nil
}

func listCourses(ctx context.Context, e *Engine, _ bool) (map[int64]any, error) {
	courses, err := e.store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]any, len(courses))
	for _, c := range courses {
		out[c.ID] = c
	}
	return out, nil
}
