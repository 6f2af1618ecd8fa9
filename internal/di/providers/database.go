package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/klausurarchiv/archiv-server/internal/blob"
	"github.com/klausurarchiv/archiv-server/internal/config"
	"github.com/klausurarchiv/archiv-server/internal/logger"
	"github.com/klausurarchiv/archiv-server/internal/store/sqlite"
)

// StoreHandle wraps the entity store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the sqlite entity store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, err
	}

	db, err := sqlite.Open(cfg.DatabasePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.DatabasePath())

	return &StoreHandle{Store: db}, nil
}

// BlobHandle wraps the document blob store with shutdown capability.
type BlobHandle struct {
	*blob.Store
}

// Shutdown implements do.Shutdownable.
func (h *BlobHandle) Shutdown() error {
	return h.Close()
}

// ProvideBlobStore provides the document content store.
func ProvideBlobStore(i do.Injector) (*BlobHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	blobs, err := blob.Open(cfg.BlobPath(), cfg.Uploads.MaxBytes, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Blob store initialized", "path", cfg.BlobPath(), "max_bytes", cfg.Uploads.MaxBytes)

	return &BlobHandle{Store: blobs}, nil
}
