package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/klausurarchiv/archiv-server/internal/auth"
	"github.com/klausurarchiv/archiv-server/internal/logger"
)

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	authService := do.MustInvoke[*auth.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()

		// Initial cleanup on startup
		if err := authService.CleanupExpired(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := authService.CleanupExpired(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}
