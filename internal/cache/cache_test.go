package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/engreader/internal/logger"
)

func TestRedis_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(Config{RedisAddr: mr.Addr()})
	defer r.Close()
	ctx := context.Background()

	_, err := r.Get(ctx, "translation:en:tr:hello")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, "translation:en:tr:hello", []byte(`{"t":"merhaba"}`), time.Hour))
	got, err := r.Get(ctx, "translation:en:tr:hello")
	require.NoError(t, err)
	assert.Equal(t, `{"t":"merhaba"}`, string(got))
	assert.Equal(t, time.Hour, mr.TTL("translation:en:tr:hello"))

	mr.FastForward(time.Hour + time.Second)
	_, err = r.Get(ctx, "translation:en:tr:hello")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedis_ServerError(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(Config{RedisAddr: mr.Addr()})
	defer r.Close()

	require.NoError(t, r.Set(context.Background(), "k", []byte("v"), time.Minute))
	mr.SetError("ERR injected failure")
	_, err := r.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestMemory_GetSet(t *testing.T) {
	m, err := NewMemory(100)
	require.NoError(t, err)
	defer m.Close()
	ctx := context.Background()

	_, err = m.Get(ctx, "k")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Hour))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestMemory_Expiry(t *testing.T) {
	m, err := NewMemory(100)
	require.NoError(t, err)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "short", []byte("v"), 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)
	_, err = m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemory_RejectedWriteIsReported(t *testing.T) {
	m, err := NewMemory(100)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	err = m.Set(context.Background(), "k", []byte("v"), time.Hour)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestOpen_Selection(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, DefaultConfig(), logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)
	c.Close()

	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.RedisAddr = mr.Addr()
	c, err = Open(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, c)
	c.Close()
}

func TestOpen_UnreachableRedisFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := DefaultConfig()
	cfg.RedisAddr = addr
	cfg.PingTimeout = 200 * time.Millisecond
	c, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &Memory{}, c)
}
