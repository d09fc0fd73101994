package dedup

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dadosqualitativos/portal-api/internal/common/config"
)

// NewStore creates a dedup store based on configuration.
func NewStore(logger *zap.Logger, cfg *config.DedupConfig) (Store, error) {
	logger.Info("Initializing audit dedup store",
		zap.String("type", cfg.Type),
		zap.Duration("window", cfg.Window))
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(cfg.Window), nil
	case "redis":
		return NewRedisStore(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix, cfg.Window)
	default:
		return nil, fmt.Errorf("unsupported dedup store type: %s", cfg.Type)
	}
}
