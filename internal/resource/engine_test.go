package resource

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klausurarchiv/archiv-server/internal/blob"
	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
	"github.com/klausurarchiv/archiv-server/internal/store/sqlite"
)

var (
	admin     = domain.Caller{Username: "archivist", SessionID: "sess-test", Authenticated: true}
	anonymous = domain.Anonymous
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	blobs, err := blob.Open(filepath.Join(dir, "blobs"), 1<<20, logger)
	require.NoError(t, err)
	t.Cleanup(func() { blobs.Close() })

	return NewEngine(st, blobs, logger)
}

func mustCreate(t *testing.T, e *Engine, kind Kind, payload string) int64 {
	t.Helper()
	id, err := e.Create(context.Background(), kind, []byte(payload), admin)
	require.NoError(t, err)
	return id
}

func TestCreateGetRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	cases := []struct {
		kind    Kind
		payload string
		check   func(t *testing.T, got any)
	}{
		{KindDocuments, `{"filename": "exam.pdf", "content_type": "application/pdf", "downloadable": true}`,
			func(t *testing.T, got any) {
				d := got.(*domain.Document)
				assert.Equal(t, "exam.pdf", d.Filename)
				assert.Equal(t, "application/pdf", d.ContentType)
				assert.True(t, d.Downloadable)
			}},
		{KindCourses, `{"long_name": "Rocket Science", "short_name": "RS"}`,
			func(t *testing.T, got any) {
				c := got.(*domain.Course)
				assert.Equal(t, "Rocket Science", c.LongName)
				assert.Equal(t, "RS", c.ShortName)
				assert.Empty(t, c.Aliases)
			}},
		{KindFolders, `{"name": "Shelf 3"}`,
			func(t *testing.T, got any) {
				assert.Equal(t, "Shelf 3", got.(*domain.Folder).Name)
			}},
		{KindAuthors, `{"name": "Prof. Oberth"}`,
			func(t *testing.T, got any) {
				assert.Equal(t, "Prof. Oberth", got.(*domain.Author).Name)
			}},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			id := mustCreate(t, e, tc.kind, tc.payload)
			got, err := e.Get(ctx, tc.kind, id, admin)
			require.NoError(t, err)
			tc.check(t, got)
		})
	}
}

func TestCreate_RequiresAuthentication(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Create(context.Background(), KindFolders, []byte(`{"name": "x"}`), anonymous)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCreate_MissingField(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Create(ctx, KindDocuments, []byte(`{"filename": "a.pdf", "content_type": "application/pdf"}`), admin)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = e.Create(ctx, KindCourses, []byte(`{"long_name": "only long"}`), admin)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreate_WrongFieldType(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Create(context.Background(), KindFolders, []byte(`{"name": 42}`), admin)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreate_UnknownFieldsIgnored(t *testing.T) {
	e := newTestEngine(t)

	id, err := e.Create(context.Background(), KindFolders, []byte(`{"name": "ok", "bogus": true}`), admin)
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestCreateDocument_BadContentType(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Create(context.Background(), KindDocuments,
		[]byte(`{"filename": "a.exe", "content_type": "application/x-executable", "downloadable": true}`), admin)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateDocument_InsecureFilename(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Create(context.Background(), KindDocuments,
		[]byte(`{"filename": "../../etc/passwd", "content_type": "application/pdf", "downloadable": true}`), admin)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateItem_UnknownRelationID(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Create(ctx, KindItems, []byte(`{"name": "broken", "authors": [999]}`), admin)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "authors contains unknown ids")

	// No item row was created.
	items, err := e.List(ctx, KindItems, admin)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateItem_BadDate(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Create(context.Background(), KindItems, []byte(`{"name": "x", "date": "not-a-date"}`), admin)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdate_PartialMerge(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, KindCourses, `{"long_name": "Rocket Science", "short_name": "RS", "aliases": ["RakWis"]}`)

	require.NoError(t, e.Update(ctx, KindCourses, id, []byte(`{"short_name": "RS1"}`), admin))

	got, err := e.Get(ctx, KindCourses, id, admin)
	require.NoError(t, err)
	c := got.(*domain.Course)
	assert.Equal(t, "Rocket Science", c.LongName)
	assert.Equal(t, "RS1", c.ShortName)
	assert.Equal(t, []string{"RakWis"}, c.Aliases)
}

func TestUpdate_NotFound(t *testing.T) {
	e := newTestEngine(t)

	err := e.Update(context.Background(), KindAuthors, 4242, []byte(`{"name": "ghost"}`), admin)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateItem_OmittedRelationsKept(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	courseID := mustCreate(t, e, KindCourses, `{"long_name": "Rocket Science", "short_name": "RS"}`)
	authorID := mustCreate(t, e, KindAuthors, `{"name": "Prof. Oberth"}`)
	itemID, err := e.Create(ctx, KindItems,
		[]byte(`{"name": "Exam WS21", "date": "2021-12-03", "courses": [`+itoa(courseID)+`], "authors": [`+itoa(authorID)+`]}`), admin)
	require.NoError(t, err)

	// Scalar-only update leaves both relation sets alone.
	require.NoError(t, e.Update(ctx, KindItems, itemID, []byte(`{"visible": true}`), admin))

	got, err := e.Get(ctx, KindItems, itemID, admin)
	require.NoError(t, err)
	it := got.(*domain.Item)
	assert.True(t, it.Visible)
	assert.Equal(t, []int64{courseID}, it.Courses)
	assert.Equal(t, []int64{authorID}, it.Authors)

	// A mentioned relation fully replaces its membership set.
	require.NoError(t, e.Update(ctx, KindItems, itemID, []byte(`{"authors": []}`), admin))
	got, err = e.Get(ctx, KindItems, itemID, admin)
	require.NoError(t, err)
	it = got.(*domain.Item)
	assert.Empty(t, it.Authors)
	assert.Equal(t, []int64{courseID}, it.Courses)
}

func TestUpdateItem_UnknownRelationIDLeavesStateUntouched(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	authorID := mustCreate(t, e, KindAuthors, `{"name": "Prof. Oberth"}`)
	itemID, err := e.Create(ctx, KindItems,
		[]byte(`{"name": "Exam", "authors": [`+itoa(authorID)+`]}`), admin)
	require.NoError(t, err)

	err = e.Update(ctx, KindItems, itemID, []byte(`{"name": "Renamed", "authors": [999]}`), admin)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	got, err := e.Get(ctx, KindItems, itemID, admin)
	require.NoError(t, err)
	it := got.(*domain.Item)
	assert.Equal(t, "Exam", it.Name)
	assert.Equal(t, []int64{authorID}, it.Authors)
}

func TestUpdateItem_ClearDate(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	itemID := mustCreate(t, e, KindItems, `{"name": "dated", "date": "2021-12-03"}`)

	require.NoError(t, e.Update(ctx, KindItems, itemID, []byte(`{"date": ""}`), admin))

	got, err := e.Get(ctx, KindItems, itemID, admin)
	require.NoError(t, err)
	assert.Nil(t, got.(*domain.Item).Date)
}

func TestDelete(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, KindFolders, `{"name": "temp"}`)
	require.NoError(t, e.Delete(ctx, KindFolders, id, admin))

	_, err := e.Get(ctx, KindFolders, id, admin)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = e.Delete(ctx, KindFolders, id, admin)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete_RequiresAuthentication(t *testing.T) {
	e := newTestEngine(t)

	id := mustCreate(t, e, KindFolders, `{"name": "keep"}`)
	err := e.Delete(context.Background(), KindFolders, id, anonymous)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeleteItem_ReferencedEntitiesSurvive(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	authorID := mustCreate(t, e, KindAuthors, `{"name": "Prof. Oberth"}`)
	itemID, err := e.Create(ctx, KindItems,
		[]byte(`{"name": "Exam", "authors": [`+itoa(authorID)+`]}`), admin)
	require.NoError(t, err)

	require.NoError(t, e.Delete(ctx, KindItems, itemID, admin))

	_, err = e.Get(ctx, KindAuthors, authorID, admin)
	assert.NoError(t, err)
}

// Scenario: a hidden item is invisible to anonymous callers until published.
func TestVisibilityScenario(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	courseID := mustCreate(t, e, KindCourses, `{"long_name": "Rocket Science", "short_name": "RS"}`)
	itemID, err := e.Create(ctx, KindItems,
		[]byte(`{"name": "Exam WS21", "date": "2021-12-03", "documents": [], "authors": [], "courses": [`+itoa(courseID)+`], "folders": [], "visible": false}`), admin)
	require.NoError(t, err)

	listed, err := e.List(ctx, KindItems, anonymous)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = e.Get(ctx, KindItems, itemID, anonymous)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, e.Update(ctx, KindItems, itemID, []byte(`{"visible": true}`), admin))

	got, err := e.Get(ctx, KindItems, itemID, anonymous)
	require.NoError(t, err)
	it := got.(*domain.Item)
	assert.Equal(t, "Exam WS21", it.Name)
	assert.Equal(t, []int64{courseID}, it.Courses)

	listed, err = e.List(ctx, KindItems, anonymous)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestAnonymousDocumentVisibility(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	docID := mustCreate(t, e, KindDocuments, `{"filename": "secret.pdf", "content_type": "application/pdf", "downloadable": true}`)
	_, err := e.Create(ctx, KindItems,
		[]byte(`{"name": "hidden exam", "documents": [`+itoa(docID)+`], "visible": false}`), admin)
	require.NoError(t, err)

	// Reachable only through a hidden item: invisible to anonymous.
	_, err = e.Get(ctx, KindDocuments, docID, anonymous)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	listed, err := e.List(ctx, KindDocuments, anonymous)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Authenticated callers bypass visibility.
	_, err = e.Get(ctx, KindDocuments, docID, admin)
	assert.NoError(t, err)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
