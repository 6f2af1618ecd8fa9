package resource

import (
	"context"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
	"github.com/klausurarchiv/archiv-server/internal/validation"
)

// DocumentPayload is the inbound shape for document create/update. Pointer
// fields distinguish "absent" from zero values in partial updates.
type DocumentPayload struct {
	Filename     *string `json:"filename" validate:"omitempty,securefilename"`
	Downloadable *bool   `json:"downloadable"`
	ContentType  *string `json:"content_type" validate:"omitempty,contenttype"`
}

func createDocument(ctx context.Context, e *Engine, raw []byte) (int64, error) {
	p, err := decode[DocumentPayload](raw)
	if err != nil {
		return 0, err
	}
	if p.Filename == nil {
		return 0, apperrors.Validation("filename is missing")
	}
	if p.Downloadable == nil {
		return 0, apperrors.Validation("downloadable is missing")
	}
	if p.ContentType == nil {
		return 0, apperrors.Validation("content_type is missing")
	}
	if err := validation.Validate.Struct(p); err != nil {
		return 0, validation.FormatError(err)
	}

	d := &domain.Document{
		Filename:     *p.Filename,
		Downloadable: *p.Downloadable,
		ContentType:  *p.ContentType,
	}
	return e.store.CreateDocument(ctx, d)
}

func updateDocument(ctx context.Context, e *Engine, id int64, raw []byte) error {
	p, err := decode[DocumentPayload](raw)
	if err != nil {
		return err
	}
	if err := validation.Validate.Struct(p); err != nil {
		return validation.FormatError(err)
	}

	d, err := e.store.GetDocument(ctx, id)
	if err != nil {
		return mapStoreErr(err, "document")
	}

	if p.Filename != nil {
		d.Filename = *p.Filename
	}
	if p.Downloadable != nil {
		d.Downloadable = *p.Downloadable
	}
	if p.ContentType != nil {
		d.ContentType = *p.ContentType
	}

	return mapStoreErr(e.store.UpdateDocument(ctx, d), "document")
}

func deleteDocument(ctx context.Context, e *Engine, id int64) error {
	if err := e.store.DeleteDocument(ctx, id); err != nil {
		return mapStoreErr(err, "document")
	}
	// Blob removal is best-effort; a stale blob for a deleted row is
	// unreachable and harmless.
	if err := e.blobs.Delete(id); err != nil {
		e.logger.Warn("blob delete failed", "document_id", id, "error", err)
	}
	return nil
}

func getDocument(ctx context.Context, e *Engine, id int64, visibleOnly bool) (any, error) {
	var (
		d   *domain.Document
		err error
	)
	if visibleOnly {
		d, err = e.store.GetVisibleDocument(ctx, id)
	} else {
		d, err = e.store.GetDocument(ctx, id)
	}
	if err != nil {
		return nil, mapStoreErr(err, "document")
	}
	return d, nil
}

func listDocuments(ctx context.Context, e *Engine, visibleOnly bool) (map[int64]any, error) {
	var (
		docs []*domain.Document
		err  error
	)
	if visibleOnly {
		docs, err = e.store.ListVisibleDocuments(ctx)
	} else {
		docs, err = e.store.ListDocuments(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make(map[int64]any, len(docs))
	for _, d := range docs {
		out[d.ID] = d
	}
	return out, nil
}
