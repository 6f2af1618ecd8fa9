package providers

import (
	"github.com/samber/do/v2"

	"github.com/klausurarchiv/archiv-server/internal/auth"
	"github.com/klausurarchiv/archiv-server/internal/config"
	"github.com/klausurarchiv/archiv-server/internal/logger"
	"github.com/klausurarchiv/archiv-server/internal/ratelimit"
)

// AuthKey is the hex-encoded symmetric token key.
type AuthKey string

// ProvideAuthKey loads or generates the token signing key. An explicitly
// configured key wins over the one persisted under the data path.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.TokenKey != "" {
		return AuthKey(cfg.Auth.TokenKey), nil
	}

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return "", err
	}
	cfg.Auth.TokenKey = key

	log.Info("Authentication key loaded", "token_duration", cfg.Auth.TokenDuration)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(key), cfg.Auth.TokenDuration)
}

// ProvideAuthService provides the login/session service for the admin account.
func ProvideAuthService(i do.Injector) (*auth.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	creds := auth.Credentials{
		Username:     cfg.Auth.Username,
		PasswordHash: cfg.Auth.PasswordHash,
	}

	return auth.NewService(storeHandle.Store, tokens, creds, log.Logger), nil
}

// ProvideLoginLimiter provides the per-address login rate limiter.
func ProvideLoginLimiter(i do.Injector) (*ratelimit.KeyedLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return ratelimit.New(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst), nil
}
