package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/complyviz/complyviz/pkg/cache"
	"github.com/complyviz/complyviz/pkg/config"
	"github.com/complyviz/complyviz/pkg/pipeline"
	"github.com/complyviz/complyviz/pkg/store"
)

// buildRunner assembles a pipeline runner from configuration: store backend,
// cache backend, and the default keyer. The caller owns the runner and must
// Close it.
func buildRunner(ctx context.Context, cfg config.Config, logger *log.Logger) (*pipeline.Runner, error) {
	st, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c, err := buildCache(ctx, cfg)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return pipeline.NewRunner(st, c, nil, logger), nil
}

func buildStore(ctx context.Context, cfg config.Config, logger *log.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		st := store.NewMemoryStore()
		if cfg.Store.Seed != "" {
			if err := store.LoadSeedFile(ctx, st, cfg.Store.Seed); err != nil {
				return nil, err
			}
			logger.Debug("seeded memory store", "file", cfg.Store.Seed)
		}
		return st, nil
	case config.StoreMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.Store.URI,
			Database: cfg.Store.Database,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheFile:
		return cache.NewFileCache(cfg.Cache.Dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
