package domain

import (
	"time"
)

// DateFormat is the wire format for item dates: an ISO 8601 calendar date
// without a time component.
const DateFormat = "2006-01-02"

// ValidDate reports whether s parses as an ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateFormat, s)
	return err == nil
}

// Relation names one of the four item membership sets.
type Relation string

// The four many-to-many relations an item carries.
const (
	RelationDocuments Relation = "documents"
	RelationAuthors   Relation = "authors"
	RelationCourses   Relation = "courses"
	RelationFolders   Relation = "folders"
)

// Relations lists all item relations in a stable order.
var Relations = []Relation{RelationDocuments, RelationAuthors, RelationCourses, RelationFolders}

// Item is a single archived exam or lecture record. The relation slices hold
// foreign IDs into the respective tables; they are never nil in a fully
// loaded item so they serialize as [] rather than null.
type Item struct {
	ID      int64   `json:"-"`
	Name    string  `json:"name"`
	Date    *string `json:"date"`
	Visible bool    `json:"visible"`

	Documents []int64 `json:"documents"`
	Authors   []int64 `json:"authors"`
	Courses   []int64 `json:"courses"`
	Folders   []int64 `json:"folders"`
}

// RelationIDs returns the ID set for the named relation.
func (i *Item) RelationIDs(rel Relation) []int64 {
	switch rel {
	case RelationDocuments:
		return i.Documents
	case RelationAuthors:
		return i.Authors
	case RelationCourses:
		return i.Courses
	case RelationFolders:
		return i.Folders
	}
	return nil
}
