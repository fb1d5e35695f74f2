// Package cache is the fast expiring key/value layer in front of the
// translation store. A Redis-backed cache is used when one is configured
// and reachable at startup; otherwise a process-local cache stands in.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/engreader/internal/logger"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// ErrRejected is returned by Set when the cache refused the write.
var ErrRejected = errors.New("cache write rejected")

// Cache stores byte values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Config selects and sizes the cache.
type Config struct {
	// RedisAddr is host:port. Empty selects the process-local cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MaxKeys bounds the process-local cache.
	MaxKeys int64

	// PingTimeout bounds the startup reachability check.
	PingTimeout time.Duration
}

// DefaultConfig returns a process-local configuration.
func DefaultConfig() Config {
	return Config{
		MaxKeys:     10_000,
		PingTimeout: 2 * time.Second,
	}
}

// Open picks the implementation once. An unreachable Redis is logged and
// replaced by the process-local cache.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (Cache, error) {
	if log == nil {
		log = logger.Nop()
	}

	if cfg.RedisAddr != "" {
		r := NewRedis(cfg)
		pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
		err := r.Ping(pingCtx)
		cancel()
		if err == nil {
			log.Info("using redis cache", "addr", cfg.RedisAddr)
			return r, nil
		}
		_ = r.Close()
		log.Warn("redis unreachable, falling back to in-process cache", "addr", cfg.RedisAddr, "error", err)
	}

	m, err := NewMemory(cfg.MaxKeys)
	if err != nil {
		return nil, err
	}
	log.Debug("using in-process cache", "max_keys", cfg.MaxKeys)
	return m, nil
}
