package resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
)

func TestUploadDownloadRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	docID := mustCreate(t, e, KindDocuments, `{"filename": "exam.pdf", "content_type": "application/pdf", "downloadable": true}`)

	content := []byte("%PDF-1.4 exam")
	require.NoError(t, e.Upload(ctx, docID, "application/pdf", content, admin))

	d, got, err := e.Download(ctx, docID, admin)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "exam.pdf", d.Filename)
	assert.Equal(t, "application/pdf", d.ContentType)
}

func TestUpload_ContentTypeMismatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	docID := mustCreate(t, e, KindDocuments, `{"filename": "exam.pdf", "content_type": "application/pdf", "downloadable": true}`)

	err := e.Upload(ctx, docID, "text/plain", []byte("nope"), admin)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpload_RequiresAuthentication(t *testing.T) {
	e := newTestEngine(t)

	docID := mustCreate(t, e, KindDocuments, `{"filename": "exam.pdf", "content_type": "application/pdf", "downloadable": true}`)

	err := e.Upload(context.Background(), docID, "application/pdf", []byte("x"), anonymous)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpload_UnknownDocument(t *testing.T) {
	e := newTestEngine(t)

	err := e.Upload(context.Background(), 999, "application/pdf", []byte("x"), admin)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDownload_NoContentUploaded(t *testing.T) {
	e := newTestEngine(t)

	docID := mustCreate(t, e, KindDocuments, `{"filename": "exam.pdf", "content_type": "application/pdf", "downloadable": true}`)

	_, _, err := e.Download(context.Background(), docID, admin)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDownload_AnonymousVisibilityGate(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Not downloadable: anonymous may not fetch the bytes.
	lockedID := mustCreate(t, e, KindDocuments, `{"filename": "locked.pdf", "content_type": "application/pdf", "downloadable": false}`)
	require.NoError(t, e.Upload(ctx, lockedID, "application/pdf", []byte("locked"), admin))

	_, _, err := e.Download(ctx, lockedID, anonymous)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The authenticated caller still can.
	_, content, err := e.Download(ctx, lockedID, admin)
	require.NoError(t, err)
	assert.Equal(t, []byte("locked"), content)

	// Unreferenced and downloadable: anonymous may fetch.
	openID := mustCreate(t, e, KindDocuments, `{"filename": "open.pdf", "content_type": "application/pdf", "downloadable": true}`)
	require.NoError(t, e.Upload(ctx, openID, "application/pdf", []byte("open"), admin))

	_, content, err = e.Download(ctx, openID, anonymous)
	require.NoError(t, err)
	assert.Equal(t, []byte("open"), content)
}

func TestDeleteDocument_RemovesBlob(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	docID := mustCreate(t, e, KindDocuments, `{"filename": "exam.pdf", "content_type": "application/pdf", "downloadable": true}`)
	require.NoError(t, e.Upload(ctx, docID, "application/pdf", []byte("bytes"), admin))

	require.NoError(t, e.Delete(ctx, KindDocuments, docID, admin))

	exists, err := e.blobs.Exists(docID)
	require.NoError(t, err)
	assert.False(t, exists)
}
