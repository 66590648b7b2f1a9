// Package config loads the TOML configuration file shared by the serve and
// render commands. Every field has a default; a missing file yields a fully
// usable in-memory configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the top-level configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig selects and configures the rule-base backend.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	URI      string `toml:"uri"`      // mongo connection string
	Database string `toml:"database"` // mongo database name
	Seed     string `toml:"seed"`     // JSON seed file for the memory backend
}

// CacheConfig selects and configures the pipeline cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"` // file backend directory
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Default returns the configuration used when no file is present: an
// in-memory store, file caching under the user cache dir, and a local
// listen address.
func Default() Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Backend: StoreMemory},
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     cacheDir + "/complyviz",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
	}
}

// Load reads a TOML config file, layering it over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks backend selectors and their required fields.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreMongo:
		if c.Store.URI == "" {
			return fmt.Errorf("store.uri is required for the mongo backend")
		}
		if c.Store.Database == "" {
			return fmt.Errorf("store.database is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q (must be memory or mongo)", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (must be none, file, or redis)", c.Cache.Backend)
	}
	return nil
}
