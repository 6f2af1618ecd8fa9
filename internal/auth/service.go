package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
	"github.com/klausurarchiv/archiv-server/internal/id"
	"github.com/klausurarchiv/archiv-server/internal/store"
	"github.com/klausurarchiv/archiv-server/internal/validation"
)

// Credentials is the single statically configured account that may write to
// the archive. PasswordHash is an Argon2id encoded hash, never a plaintext.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Service handles login, logout and token verification for the one
// configured administrator account.
type Service struct {
	sessions store.SessionStore
	tokens   *TokenService
	creds    Credentials
	logger   *slog.Logger
}

// NewService creates an authentication service.
func NewService(sessions store.SessionStore, tokens *TokenService, creds Credentials, logger *slog.Logger) *Service {
	return &Service{
		sessions: sessions,
		tokens:   tokens,
		creds:    creds,
		logger:   logger,
	}
}

// LoginRequest contains the submitted credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks the submitted credentials against the configured account and,
// on success, persists a session and issues a token bound to it.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := validation.Validate.Struct(req); err != nil {
		return nil, validation.FormatError(err)
	}

	// Constant-time username check; the password check below runs either
	// way so a wrong username costs the same as a wrong password.
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.creds.Username)) == 1

	passwordOK, err := VerifyPassword(s.creds.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !usernameOK || !passwordOK {
		return nil, apperrors.InvalidCredentials("invalid username or password")
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.tokens.Lifetime())
	sess := &domain.Session{
		ID:        sessionID,
		Username:  s.creds.Username,
		CreatedAt: now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokens.GenerateToken(sessionID, s.creds.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("login succeeded", "username", s.creds.Username, "session_id", sessionID)

	return &LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate verifies a session token and returns the caller it
// represents. The session row must still exist: a logged-out token fails
// here even though its signature and expiry are fine.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (domain.Caller, error) {
	claims, err := s.tokens.VerifyToken(tokenString)
	if err != nil {
		return domain.Anonymous, apperrors.Unauthorized("invalid or expired token")
	}

	sess, err := s.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return domain.Anonymous, apperrors.Unauthorized("session revoked")
		}
		return domain.Anonymous, fmt.Errorf("lookup session: %w", err)
	}
	if sess.ExpiresAt <= time.Now().Unix() {
		return domain.Anonymous, apperrors.ErrTokenExpired
	}

	return domain.Caller{
		Username:      sess.Username,
		SessionID:     sess.ID,
		Authenticated: true,
	}, nil
}

// Logout revokes a session. Logging out a session that is already gone is
// not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.DeleteSession(ctx, sessionID)
	if err != nil && !apperrors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanupExpired removes expired session rows. Called periodically from the
// server's housekeeping loop.
func (s *Service) CleanupExpired(ctx context.Context) error {
	removed, err := s.sessions.DeleteExpiredSessions(ctx, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("cleanup sessions: %w", err)
	}
	if removed > 0 {
		s.logger.Debug("expired sessions removed", "count", removed)
	}
	return nil
}
