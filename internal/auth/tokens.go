package auth

import (
	"encoding/hex"
	"fmt"
	"time"

	"encoding/json/v2"

	"aidanwoods.dev/go-paseto"
)

const (
	tokenIssuer   = "archiv-server"
	tokenAudience = "archiv-client"

	keyBytesSize = 32 // 256 bits
	keyHexSize   = 64 // 32 bytes as hex string
)

// SessionClaims are the claims carried in a session token. The token is a
// PASETO v4.local, so claims are encrypted and unreadable without the key.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
}

// TokenService issues and verifies PASETO session tokens.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	lifetime     time.Duration
}

// NewTokenService creates a token service from a hex-encoded 256-bit key.
func NewTokenService(keyHex string, lifetime time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for PASETO key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{symmetricKey: key, lifetime: lifetime}, nil
}

// GenerateToken creates a v4.local session token bound to a session ID. The
// session row in the store is what makes the token revocable: verification
// alone does not consult the store.
func (s *TokenService) GenerateToken(sessionID, username string) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(username)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.lifetime))
	token.SetJti(sessionID)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("session_id", sessionID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("username", username)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken decrypts and validates a session token, returning its claims.
func (s *TokenService) VerifyToken(tokenString string) (*SessionClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &claims, nil
}

// Lifetime returns the configured session token lifetime.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}
