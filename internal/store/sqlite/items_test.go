package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	"github.com/klausurarchiv/archiv-server/internal/store"
)

// seedEntities creates one document, author, course and folder and returns
// their IDs in that order.
func seedEntities(t *testing.T, s *Store) (docID, authorID, courseID, folderID int64) {
	t.Helper()
	ctx := context.Background()

	var err error
	docID, err = s.CreateDocument(ctx, makeTestDocument("seed.pdf", true))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	authorID, err = s.CreateAuthor(ctx, &domain.Author{Name: "Prof. Example"})
	if err != nil {
		t.Fatalf("CreateAuthor: %v", err)
	}
	courseID, err = s.CreateCourse(ctx, &domain.Course{LongName: "Numerics", ShortName: "NM"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	folderID, err = s.CreateFolder(ctx, &domain.Folder{Name: "Winter 2024"})
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	return docID, authorID, courseID, folderID
}

func TestCreateAndGetItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	docID, authorID, courseID, folderID := seedEntities(t, s)

	date := "2024-02-15"
	it := &domain.Item{
		Name:      "Numerics exam WS24",
		Date:      &date,
		Visible:   true,
		Documents: []int64{docID},
		Authors:   []int64{authorID},
		Courses:   []int64{courseID},
		Folders:   []int64{folderID},
	}
	id, err := s.CreateItem(ctx, it)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	got, err := s.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != it.Name {
		t.Errorf("Name: got %q", got.Name)
	}
	if got.Date == nil || *got.Date != date {
		t.Errorf("Date: got %v, want %q", got.Date, date)
	}
	if !got.Visible {
		t.Error("Visible: got false")
	}
	if !reflect.DeepEqual(got.Documents, []int64{docID}) {
		t.Errorf("Documents: got %v", got.Documents)
	}
	if !reflect.DeepEqual(got.Authors, []int64{authorID}) {
		t.Errorf("Authors: got %v", got.Authors)
	}
	if !reflect.DeepEqual(got.Courses, []int64{courseID}) {
		t.Errorf("Courses: got %v", got.Courses)
	}
	if !reflect.DeepEqual(got.Folders, []int64{folderID}) {
		t.Errorf("Folders: got %v", got.Folders)
	}
}

func TestCreateItem_NilDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateItem(ctx, &domain.Item{Name: "undated"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	got, err := s.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Date != nil {
		t.Errorf("Date: got %q, want nil", *got.Date)
	}
	// Relation slices are empty, never nil.
	if got.Documents == nil || got.Authors == nil || got.Courses == nil || got.Folders == nil {
		t.Error("relation slices must be empty, not nil")
	}
}

func TestCreateItem_BadRelationRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	it := &domain.Item{
		Name:      "broken",
		Documents: []int64{12345}, // no such document
	}
	if _, err := s.CreateItem(ctx, it); !errors.Is(err, store.ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}

	// The scalar row must not have survived the failed transaction.
	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected 0 items after rollback, got %d", len(items))
	}
}

func TestGetVisibleItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hiddenID, err := s.CreateItem(ctx, &domain.Item{Name: "hidden", Visible: false})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	visibleID, err := s.CreateItem(ctx, &domain.Item{Name: "visible", Visible: true})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if _, err := s.GetVisibleItem(ctx, visibleID); err != nil {
		t.Errorf("GetVisibleItem(visible): %v", err)
	}
	// Hidden items read as not-found, not forbidden.
	if _, err := s.GetVisibleItem(ctx, hiddenID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetVisibleItem(hidden): expected ErrNotFound, got %v", err)
	}
	// The unrestricted getter still sees it.
	if _, err := s.GetItem(ctx, hiddenID); err != nil {
		t.Errorf("GetItem(hidden): %v", err)
	}
}

func TestListItems_RelationsLoaded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	docID, authorID, _, _ := seedEntities(t, s)

	first := &domain.Item{Name: "first", Visible: true, Documents: []int64{docID}}
	if _, err := s.CreateItem(ctx, first); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	second := &domain.Item{Name: "second", Authors: []int64{authorID}}
	if _, err := s.CreateItem(ctx, second); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if !reflect.DeepEqual(items[0].Documents, []int64{docID}) {
		t.Errorf("first.Documents: got %v", items[0].Documents)
	}
	if len(items[0].Authors) != 0 {
		t.Errorf("first.Authors: got %v, want empty", items[0].Authors)
	}
	if !reflect.DeepEqual(items[1].Authors, []int64{authorID}) {
		t.Errorf("second.Authors: got %v", items[1].Authors)
	}

	visible, err := s.ListVisibleItems(ctx)
	if err != nil {
		t.Fatalf("ListVisibleItems: %v", err)
	}
	if len(visible) != 1 || visible[0].Name != "first" {
		t.Errorf("ListVisibleItems: got %d items", len(visible))
	}
}

func TestUpdateItem_ScalarsOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	docID, _, _, _ := seedEntities(t, s)

	it := &domain.Item{Name: "before", Documents: []int64{docID}}
	id, err := s.CreateItem(ctx, it)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	date := "2025-01-01"
	it.Name = "after"
	it.Date = &date
	it.Visible = true
	it.Documents = nil // must not clear the relation
	if err := s.UpdateItem(ctx, it); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, err := s.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "after" || got.Date == nil || *got.Date != date || !got.Visible {
		t.Errorf("scalars not updated: %+v", got)
	}
	if !reflect.DeepEqual(got.Documents, []int64{docID}) {
		t.Errorf("Documents touched by scalar update: %v", got.Documents)
	}
}

func TestSetItemRelations_Replace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	docID, _, _, _ := seedEntities(t, s)
	docID2, err := s.CreateDocument(ctx, makeTestDocument("second.pdf", true))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	id, err := s.CreateItem(ctx, &domain.Item{Name: "relset", Documents: []int64{docID}})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if err := s.SetItemRelations(ctx, id, domain.RelationDocuments, []int64{docID2}); err != nil {
		t.Fatalf("SetItemRelations: %v", err)
	}
	got, err := s.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if !reflect.DeepEqual(got.Documents, []int64{docID2}) {
		t.Errorf("Documents: got %v, want [%d]", got.Documents, docID2)
	}

	// Clearing with an empty set works too.
	if err := s.SetItemRelations(ctx, id, domain.RelationDocuments, []int64{}); err != nil {
		t.Fatalf("SetItemRelations(empty): %v", err)
	}
	got, err = s.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if len(got.Documents) != 0 {
		t.Errorf("Documents: got %v, want empty", got.Documents)
	}
}

func TestDeleteItem_CascadesJoins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	docID, authorID, courseID, folderID := seedEntities(t, s)

	id, err := s.CreateItem(ctx, &domain.Item{
		Name:      "doomed",
		Documents: []int64{docID},
		Authors:   []int64{authorID},
		Courses:   []int64{courseID},
		Folders:   []int64{folderID},
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if err := s.DeleteItem(ctx, id); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	for _, join := range []string{"item_documents", "item_authors", "item_courses", "item_folders"} {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM "+join+" WHERE item_id = ?", id).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", join, err)
		}
		if count != 0 {
			t.Errorf("%s: expected cascade, found %d rows", join, count)
		}
	}

	// Referenced entities survive the item deletion.
	if _, err := s.GetDocument(ctx, docID); err != nil {
		t.Errorf("document gone after item delete: %v", err)
	}
	if _, err := s.GetAuthor(ctx, authorID); err != nil {
		t.Errorf("author gone after item delete: %v", err)
	}
}

func TestDeleteReferencedEntity_DetachesFromItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	docID, _, _, _ := seedEntities(t, s)

	id, err := s.CreateItem(ctx, &domain.Item{Name: "holder", Documents: []int64{docID}})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if err := s.DeleteDocument(ctx, docID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	got, err := s.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if len(got.Documents) != 0 {
		t.Errorf("expected document detached from item, got %v", got.Documents)
	}
}

func TestCountExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	docID, _, _, _ := seedEntities(t, s)
	docID2, err := s.CreateDocument(ctx, makeTestDocument("two.pdf", false))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	n, err := s.CountExisting(ctx, domain.RelationDocuments, []int64{docID, docID2})
	if err != nil {
		t.Fatalf("CountExisting: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d, want 2", n)
	}

	n, err = s.CountExisting(ctx, domain.RelationDocuments, []int64{docID, 9999})
	if err != nil {
		t.Fatalf("CountExisting: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d, want 1", n)
	}

	// Duplicates count once.
	n, err = s.CountExisting(ctx, domain.RelationDocuments, []int64{docID, docID})
	if err != nil {
		t.Fatalf("CountExisting: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d, want 1", n)
	}

	n, err = s.CountExisting(ctx, domain.RelationAuthors, []int64{})
	if err != nil {
		t.Fatalf("CountExisting(empty): %v", err)
	}
	if n != 0 {
		t.Errorf("got %d, want 0", n)
	}
}
