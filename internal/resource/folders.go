package resource

import (
	"context"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
)

// FolderPayload is the inbound shape for folder create/update.
type FolderPayload struct {
	Name *string `json:"name"`
}

func createFolder(ctx context.Context, e *Engine, raw []byte) (int64, error) {
	p, err := decode[FolderPayload](raw)
	if err != nil {
		return 0, err
	}
	if p.Name == nil {
		return 0, apperrors.Validation("name is missing")
	}
	return e.store.CreateFolder(ctx, &domain.Folder{Name: *p.Name})
}

func updateFolder(ctx context.Context, e *Engine, id int64, raw []byte) error {
	p, err := decode[FolderPayload](raw)
	if err != nil {
		return err
	}

	f, err := e.store.GetFolder(ctx, id)
	if err != nil {
		return mapStoreErr(err, "folder")
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	return mapStoreErr(e.store.UpdateFolder(ctx, f), "folder")
}

func deleteFolder(ctx context.Context, e *Engine, id int64) error {
	return mapStoreErr(e.store.DeleteFolder(ctx, id), "folder")
}

func getFolder(ctx context.Context, e *Engine, id int64, _ bool) (any, error) {
	f, err := e.store.GetFolder(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "folder")
	}
	return f, nil
}

func listFolders(ctx context.Context, e *Engine, _ bool) (map[int64]any, error) {
	folders, err := e.store.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]any, len(folders))
	for _, f := range folders {
		out[f.ID] = f
	}
	return out, nil
}
