package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/klausurarchiv/archiv-server/internal/http/response"
)

// handleUpload stores the raw request body as the content of a document.
// The document id comes from the ?id= query parameter and the declared
// content type from the Content-Type header, which must match the document's
// registered content type.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseQueryID(w, r, s)
	if !ok {
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		response.BadRequest(w, "Content-Type header is required", s.logger)
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	if err := s.engine.Upload(ctx, id, contentType, body, getCaller(ctx)); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleDownload streams a document's content as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseQueryID(w, r, s)
	if !ok {
		return
	}

	doc, content, err := s.engine.Download(ctx, id, getCaller(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		s.logger.Error("failed to write download body", "error", err, "document_id", id)
	}
}

// parseQueryID extracts the ?id= query parameter. Writes a 400 and returns
// false when it is missing or not a valid integer.
func parseQueryID(w http.ResponseWriter, r *http.Request, s *Server) (int64, bool) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		response.BadRequest(w, "id query parameter is required", s.logger)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.BadRequest(w, "id must be an integer", s.logger)
		return 0, false
	}
	return id, true
}
