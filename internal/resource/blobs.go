package resource

import (
	"context"

	"github.com/klausurarchiv/archiv-server/internal/blob"
	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
)

// Upload stores the binary content of a document. The declared content type
// must agree with the type the document row was created with; the size cap
// is enforced by the blob store.
func (e *Engine) Upload(ctx context.Context, documentID int64, contentType string, content []byte, caller domain.Caller) error {
	if !caller.CanWrite() {
		return apperrors.Forbidden("write access requires authentication")
	}

	d, err := e.store.GetDocument(ctx, documentID)
	if err != nil {
		return mapStoreErr(err, "document")
	}
	if contentType != d.ContentType {
		return apperrors.Validationf("content type %q does not match document content type %q", contentType, d.ContentType)
	}

	if err := e.blobs.Write(documentID, content); err != nil {
		if apperrors.Is(err, blob.ErrTooLarge) {
			return apperrors.PayloadTooLarge("uploaded content exceeds the size limit")
		}
		return err
	}

	e.logger.Info("document content uploaded", "document_id", documentID, "bytes", len(content))
	return nil
}

// Download returns a document's metadata and stored bytes. Anonymous callers
// only reach blobs whose document passes the visibility predicate; a missing
// blob reads as NotFound either way.
func (e *Engine) Download(ctx context.Context, documentID int64, caller domain.Caller) (*domain.Document, []byte, error) {
	var (
		d   *domain.Document
		err error
	)
	if caller.CanWrite() {
		d, err = e.store.GetDocument(ctx, documentID)
	} else {
		d, err = e.store.GetVisibleDocument(ctx, documentID)
	}
	if err != nil {
		return nil, nil, mapStoreErr(err, "document")
	}

	content, err := e.blobs.Read(documentID)
	if err != nil {
		if apperrors.Is(err, blob.ErrNotFound) {
			return nil, nil, apperrors.NotFound("document has no uploaded content")
		}
		return nil, nil, err
	}

	return d, content, nil
}
