package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Memory is a process-local Cache. Each entry costs 1, so maxKeys bounds
// the entry count.
type Memory struct {
	c *ristretto.Cache[string, []byte]
}

// NewMemory creates a cache holding up to maxKeys entries.
func NewMemory(maxKeys int64) (*Memory, error) {
	if maxKeys <= 0 {
		maxKeys = DefaultConfig().MaxKeys
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxKeys * 10,
		MaxCost:     maxKeys,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &Memory{c: c}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

// Set stores value. Writes are buffered by ristretto, so Set waits for
// the buffer to drain before returning. A write ristretto drops, because
// its buffer is full or the cache is closed, returns ErrRejected.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if !m.c.SetWithTTL(key, value, 1, ttl) {
		return fmt.Errorf("%w: %s", ErrRejected, key)
	}
	m.c.Wait()
	return nil
}

func (m *Memory) Close() error {
	m.c.Close()
	return nil
}
