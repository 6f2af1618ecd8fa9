// Package store defines the persistence interface for the archive and its
// sentinel errors. The sqlite subpackage provides the durable implementation;
// consumers depend on the interface so tests can swap in lightweight fakes.
package store

import (
	"context"
	"errors"

	"github.com/klausurarchiv/archiv-server/internal/domain"
)

// Sentinel errors returned by store implementations.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConstraint is returned when a write violates referential integrity.
	// Validation checks referenced IDs before any write, so hitting this is a
	// bug upstream, not a user error.
	ErrConstraint = errors.New("constraint violation")
)

// Store is the persistence boundary of the archive. All operations are
// request-scoped: each call either commits its effects or leaves the store
// untouched.
type Store interface {
	DocumentStore
	CourseStore
	FolderStore
	AuthorStore
	ItemStore
	SessionStore

	Close() error
}

// DocumentStore persists document metadata rows. Blob bytes live elsewhere.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d *domain.Document) (int64, error)
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)
	// GetVisibleDocument retrieves a document only if it is anonymously
	// visible: downloadable and not attached exclusively to hidden items.
	// Returns ErrNotFound otherwise, so hidden documents don't leak.
	GetVisibleDocument(ctx context.Context, id int64) (*domain.Document, error)
	ListDocuments(ctx context.Context) ([]*domain.Document, error)
	ListVisibleDocuments(ctx context.Context) ([]*domain.Document, error)
	UpdateDocument(ctx context.Context, d *domain.Document) error
	DeleteDocument(ctx context.Context, id int64) error
}

// CourseStore persists courses and their alias sets.
type CourseStore interface {
	CreateCourse(ctx context.Context, c *domain.Course) (int64, error)
	GetCourse(ctx context.Context, id int64) (*domain.Course, error)
	ListCourses(ctx context.Context) ([]*domain.Course, error)
	// UpdateCourse replaces the scalar columns and, when c.Aliases is
	// non-nil, the full alias set.
	UpdateCourse(ctx context.Context, c *domain.Course) error
	DeleteCourse(ctx context.Context, id int64) error
}

// FolderStore persists physical folder records.
type FolderStore interface {
	CreateFolder(ctx context.Context, f *domain.Folder) (int64, error)
	GetFolder(ctx context.Context, id int64) (*domain.Folder, error)
	ListFolders(ctx context.Context) ([]*domain.Folder, error)
	UpdateFolder(ctx context.Context, f *domain.Folder) error
	DeleteFolder(ctx context.Context, id int64) error
}

// AuthorStore persists author records.
type AuthorStore interface {
	CreateAuthor(ctx context.Context, a *domain.Author) (int64, error)
	GetAuthor(ctx context.Context, id int64) (*domain.Author, error)
	ListAuthors(ctx context.Context) ([]*domain.Author, error)
	UpdateAuthor(ctx context.Context, a *domain.Author) error
	DeleteAuthor(ctx context.Context, id int64) error
}

// ItemStore persists items and their four relation sets.
type ItemStore interface {
	// CreateItem inserts the scalar row and all four relation sets in one
	// transaction. The item's relation slices must already be validated.
	CreateItem(ctx context.Context, it *domain.Item) (int64, error)
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	// GetVisibleItem returns ErrNotFound for items with visible=false.
	GetVisibleItem(ctx context.Context, id int64) (*domain.Item, error)
	ListItems(ctx context.Context) ([]*domain.Item, error)
	ListVisibleItems(ctx context.Context) ([]*domain.Item, error)
	// UpdateItem replaces the scalar columns only; relations are untouched.
	UpdateItem(ctx context.Context, it *domain.Item) error
	// DeleteItem removes the row; join rows cascade.
	DeleteItem(ctx context.Context, id int64) error
	// SetItemRelations atomically replaces the membership set of one
	// relation (delete-then-insert under a single transaction).
	SetItemRelations(ctx context.Context, itemID int64, rel domain.Relation, ids []int64) error
	// CountExisting reports how many of the given IDs exist in the table the
	// relation points at. Used by validation before any write.
	CountExisting(ctx context.Context, rel domain.Relation, ids []int64) (int, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now int64) (int64, error)
}
