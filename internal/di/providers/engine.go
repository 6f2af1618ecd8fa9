package providers

import (
	"github.com/samber/do/v2"

	"github.com/klausurarchiv/archiv-server/internal/logger"
	"github.com/klausurarchiv/archiv-server/internal/resource"
)

// ProvideEngine provides the resource engine over the entity and blob stores.
func ProvideEngine(i do.Injector) (*resource.Engine, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobHandle := do.MustInvoke[*BlobHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return resource.NewEngine(storeHandle.Store, blobHandle.Store, log.Logger), nil
}
