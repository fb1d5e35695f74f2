// Package config assembles runtime settings from the environment, with an
// optional .env file loaded first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/engreader/internal/cache"
	"github.com/abhisek/engreader/internal/llm"
	"github.com/abhisek/engreader/internal/store"
	"github.com/abhisek/engreader/internal/translate"
	"github.com/abhisek/engreader/internal/worker"
)

// Config is everything the CLI needs to build the services.
type Config struct {
	DBDriver    string
	DBPath      string // sqlite file; empty selects the default path
	PostgresDSN string

	Cache     cache.Config
	Translate translate.Config
	Worker    worker.Config

	// LogMode is "dev" or "prod".
	LogMode string

	LLM llm.Config
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DBDriver:  store.DriverSQLite,
		Cache:     cache.DefaultConfig(),
		Translate: translate.DefaultConfig(),
		Worker:    worker.DefaultConfig(),
		LogMode:   "dev",
		LLM:       llm.DefaultConfig(),
	}
}

// Load reads envFile into the process environment when it exists, without
// overriding variables already set, then builds the Config.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg := FromEnv()
	return cfg, cfg.Validate()
}

// FromEnv builds a Config from ENGREADER_* variables. Unparseable values
// keep their defaults.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("ENGREADER_DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	cfg.DBPath = os.Getenv("ENGREADER_DB")
	cfg.PostgresDSN = os.Getenv("ENGREADER_POSTGRES_DSN")

	cfg.Cache.RedisAddr = os.Getenv("ENGREADER_REDIS_ADDR")
	cfg.Cache.RedisPassword = os.Getenv("ENGREADER_REDIS_PASSWORD")
	if n, ok := envInt("ENGREADER_REDIS_DB"); ok && n >= 0 {
		cfg.Cache.RedisDB = n
	}
	if n, ok := envInt("ENGREADER_CACHE_MAX_KEYS"); ok && n > 0 {
		cfg.Cache.MaxKeys = int64(n)
	}
	if d, ok := envDuration("ENGREADER_CACHE_TTL"); ok {
		cfg.Translate.TTL = d
	}
	if v := os.Getenv("ENGREADER_TRANSLATE_DEDUP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Translate.Dedup = b
		}
	}
	if d, ok := envDuration("ENGREADER_STALE_AFTER"); ok {
		cfg.Worker.StaleAfter = d
	}
	if v := os.Getenv("ENGREADER_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}

	cfg.LLM = llmConfig()
	return cfg
}

// llmConfig prefers explicit ENGREADER_* settings and otherwise probes the
// vendors' standard key variables.
func llmConfig() llm.Config {
	if os.Getenv("ENGREADER_LLM_PROVIDER") != "" {
		return llm.ConfigFromEnv()
	}
	if c, ok := llm.DiscoverConfig(); ok {
		return c
	}
	return llm.ConfigFromEnv()
}

// Validate checks the storage selection. LLM settings are checked when
// a provider is built, so commands that never call one still work.
func (c Config) Validate() error {
	switch c.DBDriver {
	case store.DriverSQLite:
	case store.DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("ENGREADER_POSTGRES_DSN is required with the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported ENGREADER_DB_DRIVER %q", c.DBDriver)
	}
	if c.Translate.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	return nil
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
