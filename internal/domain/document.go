package domain

// AllowedContentTypes is the fixed set of media types a document may carry.
// Uploads and metadata writes outside this list are rejected.
var AllowedContentTypes = []string{
	"application/msword",
	"application/pdf",
	"application/x-latex",
	"image/png",
	"image/jpeg",
	"image/gif",
	"text/plain",
}

// ContentTypeAllowed reports whether ct is in the allowlist.
func ContentTypeAllowed(ct string) bool {
	for _, allowed := range AllowedContentTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

// Document is the metadata row for an archived file. The bytes themselves
// live in the blob store, keyed by the document ID.
type Document struct {
	ID           int64  `json:"-"`
	Filename     string `json:"filename"`
	Downloadable bool   `json:"downloadable"`
	ContentType  string `json:"content_type"`
}
