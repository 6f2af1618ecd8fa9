// Package resource implements the generic CRUD engine shared by the five
// archive resource kinds. Every operation takes the caller identity
// explicitly; the engine applies write-privilege and visibility rules before
// touching storage.
package resource

import (
	"context"
	"log/slog"

	"encoding/json/v2"

	"github.com/klausurarchiv/archiv-server/internal/blob"
	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
	"github.com/klausurarchiv/archiv-server/internal/store"
)

// Kind names one of the five resource collections.
type Kind string

const (
	KindDocuments Kind = "documents"
	KindCourses   Kind = "courses"
	KindFolders   Kind = "folders"
	KindAuthors   Kind = "authors"
	KindItems     Kind = "items"
)

// Kinds lists all resource kinds in route order.
var Kinds = []Kind{KindDocuments, KindCourses, KindFolders, KindAuthors, KindItems}

// ParseKind maps a route segment onto a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindDocuments, KindCourses, KindFolders, KindAuthors, KindItems:
		return Kind(s), true
	}
	return "", false
}

// operations is the per-kind implementation set the engine dispatches to.
// The visible flag on reads selects the anonymous view.
type operations struct {
	list   func(ctx context.Context, e *Engine, visibleOnly bool) (map[int64]any, error)
	get    func(ctx context.Context, e *Engine, id int64, visibleOnly bool) (any, error)
	create func(ctx context.Context, e *Engine, raw []byte) (int64, error)
	update func(ctx context.Context, e *Engine, id int64, raw []byte) error
	delete func(ctx context.Context, e *Engine, id int64) error
}

var kinds = map[Kind]operations{
	KindDocuments: {listDocuments, getDocument, createDocument, updateDocument, deleteDocument},
	KindCourses:   {listCourses, getCourse, createCourse, updateCourse, deleteCourse},
	KindFolders:   {listFolders, getFolder, createFolder, updateFolder, deleteFolder},
	KindAuthors:   {listAuthors, getAuthor, createAuthor, updateAuthor, deleteAuthor},
	KindItems:     {listItems, getItem, createItem, updateItem, deleteItem},
}

// Engine exposes uniform list/get/create/update/delete semantics per
// resource kind, plus blob upload/download for documents.
type Engine struct {
	store  store.Store
	blobs  *blob.Store
	logger *slog.Logger
}

// NewEngine creates a resource engine.
func NewEngine(st store.Store, blobs *blob.Store, logger *slog.Logger) *Engine {
	return &Engine{store: st, blobs: blobs, logger: logger}
}

// List returns an id→representation mapping of every entity of the kind the
// caller may see. Anonymous callers get the filtered view.
func (e *Engine) List(ctx context.Context, kind Kind, caller domain.Caller) (map[int64]any, error) {
	ops, err := e.ops(kind)
	if err != nil {
		return nil, err
	}
	return ops.list(ctx, e, !caller.CanWrite())
}

// Get returns the representation of one entity, or NotFound. Hidden entities
// read as NotFound for anonymous callers so their existence doesn't leak.
func (e *Engine) Get(ctx context.Context, kind Kind, id int64, caller domain.Caller) (any, error) {
	ops, err := e.ops(kind)
	if err != nil {
		return nil, err
	}
	return ops.get(ctx, e, id, !caller.CanWrite())
}

// Create validates the payload and inserts a new entity, returning its id.
func (e *Engine) Create(ctx context.Context, kind Kind, raw []byte, caller domain.Caller) (int64, error) {
	if !caller.CanWrite() {
		return 0, apperrors.Forbidden("write access requires authentication")
	}
	ops, err := e.ops(kind)
	if err != nil {
		return 0, err
	}
	id, err := ops.create(ctx, e, raw)
	if err != nil {
		return 0, err
	}
	e.logger.Info("resource created", "kind", kind, "id", id)
	return id, nil
}

// Update applies a partial payload onto an existing entity. Fields absent
// from the payload keep their prior value; for items, relation sets not
// mentioned are left unchanged.
func (e *Engine) Update(ctx context.Context, kind Kind, id int64, raw []byte, caller domain.Caller) error {
	if !caller.CanWrite() {
		return apperrors.Forbidden("write access requires authentication")
	}
	ops, err := e.ops(kind)
	if err != nil {
		return err
	}
	if err := ops.update(ctx, e, id, raw); err != nil {
		return err
	}
	e.logger.Info("resource updated", "kind", kind, "id", id)
	return nil
}

// Delete removes an entity. Join rows referencing it cascade; a document's
// blob is removed as well.
func (e *Engine) Delete(ctx context.Context, kind Kind, id int64, caller domain.Caller) error {
	if !caller.CanWrite() {
		return apperrors.Forbidden("write access requires authentication")
	}
	ops, err := e.ops(kind)
	if err != nil {
		return err
	}
	if err := ops.delete(ctx, e, id); err != nil {
		return err
	}
	e.logger.Info("resource deleted", "kind", kind, "id", id)
	return nil
}

func (e *Engine) ops(kind Kind) (operations, error) {
	ops, ok := kinds[kind]
	if !ok {
		return operations{}, apperrors.NotFoundf("unknown resource kind %q", kind)
	}
	return ops, nil
}

// decode parses a JSON payload into a typed partial-update struct. Unknown
// fields are ignored; type mismatches are client errors.
func decode[T any](raw []byte) (*T, error) {
	if len(raw) == 0 {
		return nil, apperrors.Validation("request body may not be empty")
	}
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperrors.Validationf("malformed payload: %v", err)
	}
	return &p, nil
}

// mapStoreErr translates storage sentinels into domain errors.
func mapStoreErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if apperrors.Is(err, store.ErrNotFound) {
		return apperrors.NotFoundf("%s not found", what)
	}
	if apperrors.Is(err, store.ErrConstraint) {
		return apperrors.Internal("storage constraint violation").WithCause(err)
	}
	return err
}
