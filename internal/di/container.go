// Package di provides dependency injection configuration for the archive server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/klausurarchiv/archiv-server/internal/access"
	"github.com/klausurarchiv/archiv-server/internal/auth"
	"github.com/klausurarchiv/archiv-server/internal/config"
	"github.com/klausurarchiv/archiv-server/internal/di/providers"
	"github.com/klausurarchiv/archiv-server/internal/logger"
	"github.com/klausurarchiv/archiv-server/internal/resource"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBlobStore)

	// Policy layer
	do.Provide(injector, providers.ProvideAccessRules)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideLoginLimiter)

	// Core engine
	do.Provide(injector, providers.ProvideEngine)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.BlobHandle](injector)
	_ = do.MustInvoke[*access.RuleSet](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*auth.Service](injector)
	_ = do.MustInvoke[*resource.Engine](injector)
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
