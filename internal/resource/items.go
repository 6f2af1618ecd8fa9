package resource

import (
	"context"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
	"github.com/klausurarchiv/archiv-server/internal/validation"
)

// ItemPayload is the inbound shape for item create/update. Relation fields
// left out of a partial update keep their prior membership; a present field
// fully replaces the set. An empty date string clears the stored date.
type ItemPayload struct {
	Name    *string `json:"name"`
	Date    *string `json:"date" validate:"omitempty,isodate"`
	Visible *bool   `json:"visible"`

	Documents *[]int64 `json:"documents"`
	Authors   *[]int64 `json:"authors"`
	Courses   *[]int64 `json:"courses"`
	Folders   *[]int64 `json:"folders"`
}

// relationIDs returns the payload's ID set for the named relation, or nil if
// the field was absent.
func (p *ItemPayload) relationIDs(rel domain.Relation) *[]int64 {
	switch rel {
	case domain.RelationDocuments:
		return p.Documents
	case domain.RelationAuthors:
		return p.Authors
	case domain.RelationCourses:
		return p.Courses
	case domain.RelationFolders:
		return p.Folders
	}
	return nil
}

func createItem(ctx context.Context, e *Engine, raw []byte) (int64, error) {
	p, err := decode[ItemPayload](raw)
	if err != nil {
		return 0, err
	}
	if p.Name == nil {
		return 0, apperrors.Validation("name is missing")
	}
	if err := validation.Validate.Struct(p); err != nil {
		return 0, validation.FormatError(err)
	}

	it := &domain.Item{
		Name:      *p.Name,
		Documents: []int64{},
		Authors:   []int64{},
		Courses:   []int64{},
		Folders:   []int64{},
	}
	if p.Date != nil && *p.Date != "" {
		it.Date = p.Date
	}
	if p.Visible != nil {
		it.Visible = *p.Visible
	}

	// Check every referenced ID before any write so a bad reference leaves
	// no partial item behind.
	for _, rel := range domain.Relations {
		ids := p.relationIDs(rel)
		if ids == nil {
			continue
		}
		deduped, err := e.checkRelationIDs(ctx, rel, *ids)
		if err != nil {
			return 0, err
		}
		switch rel {
		case domain.RelationDocuments:
			it.Documents = deduped
		case domain.RelationAuthors:
			it.Authors = deduped
		case domain.RelationCourses:
			it.Courses = deduped
		case domain.RelationFolders:
			it.Folders = deduped
		}
	}

	return e.store.CreateItem(ctx, it)
}

func updateItem(ctx context.Context, e *Engine, id int64, raw []byte) error {
	p, err := decode[ItemPayload](raw)
	if err != nil {
		return err
	}
	if err := validation.Validate.Struct(p); err != nil {
		return validation.FormatError(err)
	}

	it, err := e.store.GetItem(ctx, id)
	if err != nil {
		return mapStoreErr(err, "item")
	}

	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Date != nil {
		if *p.Date == "" {
			it.Date = nil
		} else {
			it.Date = p.Date
		}
	}
	if p.Visible != nil {
		it.Visible = *p.Visible
	}

	// Validate all mentioned relation sets before the first write.
	type replacement struct {
		rel domain.Relation
		ids []int64
	}
	var replacements []replacement
	for _, rel := range domain.Relations {
		ids := p.relationIDs(rel)
		if ids == nil {
			continue
		}
		deduped, err := e.checkRelationIDs(ctx, rel, *ids)
		if err != nil {
			return err
		}
		replacements = append(replacements, replacement{rel: rel, ids: deduped})
	}

	if err := e.store.UpdateItem(ctx, it); err != nil {
		return mapStoreErr(err, "item")
	}
	for _, r := range replacements {
		if err := e.store.SetItemRelations(ctx, id, r.rel, r.ids); err != nil {
			return mapStoreErr(err, "item")
		}
	}
	return nil
}

// checkRelationIDs deduplicates ids (preserving order) and verifies every one
// exists in the relation's target table.
func (e *Engine) checkRelationIDs(ctx context.Context, rel domain.Relation, ids []int64) ([]int64, error) {
	deduped := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}

	count, err := e.store.CountExisting(ctx, rel, deduped)
	if err != nil {
		return nil, err
	}
	if count != len(deduped) {
		return nil, apperrors.Validationf("%s contains unknown ids", rel)
	}
	return deduped, nil
}

func deleteItem(ctx context.Context, e *Engine, id int64) error {
	return mapStoreErr(e.store.DeleteItem(ctx, id), "item")
}

func getItem(ctx context.Context, e *Engine, id int64, visibleOnly bool) (any, error) {
	var (
		it  *domain.Item
		err error
	)
	if visibleOnly {
		it, err = e.store.GetVisibleItem(ctx, id)
	} else {
		it, err = e.store.GetItem(ctx, id)
	}
	if err != nil {
		return nil, mapStoreErr(err, "item")
	}
	return it, nil
}

func listItems(ctx context.Context, e *Engine, visibleOnly bool) (map[int64]any, error) {
	var (
		items []*domain.Item
		err   error
	)
	if visibleOnly {
		items, err = e.store.ListVisibleItems(ctx)
	} else {
		items, err = e.store.ListItems(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make(map[int64]any, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}
