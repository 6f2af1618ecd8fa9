package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/klausurarchiv/archiv-server/internal/auth"
	"github.com/klausurarchiv/archiv-server/internal/http/response"
)

// handleLogin authenticates the admin account and returns a session token.
// Attempts are rate limited per remote address.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if addr, ok := clientAddr(r); ok && !s.loginLimiter.Allow(addr.String()) {
		s.logger.Warn("login rate limit exceeded", "addr", addr.String())
		response.TooManyRequests(w, "too many login attempts, try again later", s.logger)
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var req auth.LoginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		response.BadRequest(w, "malformed login payload", s.logger)
		return
	}

	result, err := s.authService.Login(ctx, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleLogout revokes the caller's session. Unauthenticated calls succeed
// without effect so clients can always clear their state.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller := getCaller(ctx)
	if caller.SessionID != "" {
		if err := s.authService.Logout(ctx, caller.SessionID); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
	}

	response.NoContent(w)
}
