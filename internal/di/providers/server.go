package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/klausurarchiv/archiv-server/internal/access"
	"github.com/klausurarchiv/archiv-server/internal/api"
	"github.com/klausurarchiv/archiv-server/internal/auth"
	"github.com/klausurarchiv/archiv-server/internal/config"
	"github.com/klausurarchiv/archiv-server/internal/logger"
	"github.com/klausurarchiv/archiv-server/internal/ratelimit"
	"github.com/klausurarchiv/archiv-server/internal/resource"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	engine := do.MustInvoke[*resource.Engine](i)
	authService := do.MustInvoke[*auth.Service](i)
	rules := do.MustInvoke[*access.RuleSet](i)
	loginLimiter := do.MustInvoke[*ratelimit.KeyedLimiter](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler := api.NewServer(engine, authService, rules, loginLimiter, cfg.Uploads.MaxBytes, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
