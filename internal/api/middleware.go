package api

import (
	"context"
	"net/http"
	"net/netip"
	"strings"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	"github.com/klausurarchiv/archiv-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyCaller contextKey = "caller"

// withCaller resolves the Bearer token (if any) into a caller identity and
// attaches it to the request context. Requests without an Authorization
// header proceed as anonymous; requests with an invalid or revoked token are
// rejected rather than silently downgraded.
func (s *Server) withCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := domain.Anonymous

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "invalid authorization header format", s.logger)
				return
			}

			authenticated, err := s.authService.Authenticate(r.Context(), parts[1])
			if err != nil {
				response.HandleError(w, err, s.logger)
				return
			}
			caller = authenticated
		}

		ctx := context.WithValue(r.Context(), contextKeyCaller, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAccess enforces the network access rules for one rule key. Denied
// addresses get a Forbidden response without reaching the handler.
func (s *Server) requireAccess(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := clientAddr(r)
			if !ok {
				s.logger.Warn("could not parse client address", "remote_addr", r.RemoteAddr)
				response.Forbidden(w, "access denied", s.logger)
				return
			}

			if !s.rules.Allowed(key, addr) {
				s.logger.Info("access denied by network rules", "key", key, "addr", addr.String())
				response.Forbidden(w, "access denied", s.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getCaller extracts the caller identity from request context.
// Returns the anonymous caller if none was attached.
func getCaller(ctx context.Context) domain.Caller {
	if caller, ok := ctx.Value(contextKeyCaller).(domain.Caller); ok {
		return caller
	}
	return domain.Anonymous
}

// clientAddr parses the request's remote address. RealIP middleware has
// already folded X-Forwarded-For / X-Real-IP into RemoteAddr.
func clientAddr(r *http.Request) (netip.Addr, bool) {
	host := r.RemoteAddr
	if ap, err := netip.ParseAddrPort(host); err == nil {
		return ap.Addr(), true
	}
	// RealIP rewrites RemoteAddr without a port.
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr, true
}
