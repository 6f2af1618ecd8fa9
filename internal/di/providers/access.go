package providers

import (
	"github.com/samber/do/v2"

	"github.com/klausurarchiv/archiv-server/internal/access"
	"github.com/klausurarchiv/archiv-server/internal/config"
	"github.com/klausurarchiv/archiv-server/internal/logger"
)

// ProvideAccessRules loads and compiles the network access rules. A
// contradictory rule file fails startup rather than a request.
func ProvideAccessRules(i do.Injector) (*access.RuleSet, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Access.RulesPath == "" {
		log.Info("No access rules configured, all networks allowed")
		return access.Compile(nil)
	}

	rules, err := access.LoadFile(cfg.Access.RulesPath)
	if err != nil {
		return nil, err
	}

	log.Info("Access rules loaded", "path", cfg.Access.RulesPath)

	return rules, nil
}
