package resource

import (
	"context"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
)

// AuthorPayload is the inbound shape for author create/update.
type AuthorPayload struct {
	Name *string `json:"name"`
}

func createAuthor(ctx context.Context, e *Engine, raw []byte) (int64, error) {
	p, err := decode[AuthorPayload](raw)
	if err != nil {
		return 0, err
	}
	if p.Name == nil {
		return 0, apperrors.Validation("name is missing")
	}
	return e.store.CreateAuthor(ctx, &domain.Author{Name: *p.Name})
}

func updateAuthor(ctx context.Context, e *Engine, id int64, raw []byte) error {
	p, err := decode[AuthorPayload](raw)
	if err != nil {
		return err
	}

	a, err := e.store.GetAuthor(ctx, id)
	if err != nil {
		return mapStoreErr(err, "author")
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	return mapStoreErr(e.store.UpdateAuthor(ctx, a), "author")
}

func deleteAuthor(ctx context.Context, e *Engine, id int64) error {
	return mapStoreErr(e.store.DeleteAuthor(ctx, id), "author")
}

func getAuthor(ctx context.Context, e *Engine, id int64, _ bool) (any, error) {
	a, err := e.store.GetAuthor(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "author")
	}
	return a, nil
}

func listAuthors(ctx context.Context, e *Engine, _ bool) (map[int64]any, error) {
	authors, err := e.store.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]any, len(authors))
	for _, a := range authors {
		out[a.ID] = a
	}
	return out, nil
}
