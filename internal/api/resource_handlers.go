package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/klausurarchiv/archiv-server/internal/http/response"
	"github.com/klausurarchiv/archiv-server/internal/resource"
)

// handleList returns every entity of the kind visible to the caller as an
// id → representation mapping.
func (s *Server) handleList(kind resource.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entities, err := s.engine.List(ctx, kind, getCaller(ctx))
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		// JSON object keys are strings, so the id map is re-keyed.
		out := make(map[string]any, len(entities))
		for id, entity := range entities {
			out[strconv.FormatInt(id, 10)] = entity
		}

		response.Success(w, out, s.logger)
	}
}

// handleGet returns a single entity by id.
func (s *Server) handleGet(kind resource.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := parseID(w, r, s)
		if !ok {
			return
		}

		entity, err := s.engine.Get(ctx, kind, id, getCaller(ctx))
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		response.Success(w, entity, s.logger)
	}
}

// handleCreate creates an entity from the request body and returns its id.
func (s *Server) handleCreate(kind resource.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, ok := s.readBody(w, r)
		if !ok {
			return
		}

		id, err := s.engine.Create(ctx, kind, body, getCaller(ctx))
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		response.Created(w, map[string]int64{"id": id}, s.logger)
	}
}

// handleUpdate applies a partial update to an entity.
func (s *Server) handleUpdate(kind resource.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := parseID(w, r, s)
		if !ok {
			return
		}

		body, ok := s.readBody(w, r)
		if !ok {
			return
		}

		if err := s.engine.Update(ctx, kind, id, body, getCaller(ctx)); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		response.NoContent(w)
	}
}

// handleDelete removes an entity.
func (s *Server) handleDelete(kind resource.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := parseID(w, r, s)
		if !ok {
			return
		}

		if err := s.engine.Delete(ctx, kind, id, getCaller(ctx)); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		response.NoContent(w)
	}
}

// parseID extracts the {id} route parameter. Writes a 400 and returns false
// when it is not a valid integer.
func parseID(w http.ResponseWriter, r *http.Request, s *Server) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.BadRequest(w, "id must be an integer", s.logger)
		return 0, false
	}
	return id, true
}

// readBody reads the request body with the configured size cap. Writes an
// error response and returns false on failure.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	reader := r.Body
	if s.maxBody > 0 {
		reader = http.MaxBytesReader(w, r.Body, s.maxBody)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, http.StatusRequestEntityTooLarge, "request body exceeds the size limit", s.logger)
			return nil, false
		}
		response.BadRequest(w, "could not read request body", s.logger)
		return nil, false
	}
	return body, true
}
