// Package bootstrap prepares the process-wide runtime shared by the server
// and the command-line tools.
package bootstrap

import (
	"fmt"
	"log"

	"pulse/internal/cache"
	"pulse/internal/config"
	"pulse/internal/fixtures"
	"pulse/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Runtime is everything a server needs before wiring repositories.
type Runtime struct {
	Dataset *fixtures.Dataset
	Redis   *redis.Client
}

// InitRuntime configures logging, loads the fixture dataset and connects to
// Redis. A missing Redis server is not an error; the client is nil.
func InitRuntime(cfg *config.Config) (*Runtime, error) {
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	ds, err := LoadDataset(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	return &Runtime{Dataset: ds, Redis: cache.GetClient()}, nil
}

// LoadDataset reads fixtures from FIXTURES_DIR, or the embedded set when unset.
func LoadDataset(cfg *config.Config) (*fixtures.Dataset, error) {
	ds, err := fixtures.Load(cfg.FixturesDir)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}
	if cfg.FixturesDir != "" {
		log.Printf("Loaded fixtures from %s: %d users, %d posts", cfg.FixturesDir, len(ds.Users), len(ds.Posts))
	}
	return ds, nil
}
