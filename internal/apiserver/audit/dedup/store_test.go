package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dadosqualitativos/portal-api/internal/common/config"
)

func TestMemoryStore_Seen(t *testing.T) {
	s := NewMemoryStore(5 * time.Second)
	now := time.Now()
	s.now = func() time.Time { return now }

	ctx := context.Background()

	seen, err := s.Seen(ctx, "u-1", "create", "users")
	require.NoError(t, err)
	assert.False(t, seen)

	// Same tuple inside the window is suppressed.
	seen, err = s.Seen(ctx, "u-1", "create", "users")
	require.NoError(t, err)
	assert.True(t, seen)

	// Different tuple is not.
	seen, err = s.Seen(ctx, "u-1", "update", "users")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = s.Seen(ctx, "u-2", "create", "users")
	require.NoError(t, err)
	assert.False(t, seen)

	// After the window the tuple records again.
	now = now.Add(6 * time.Second)
	seen, err = s.Seen(ctx, "u-1", "create", "users")
	require.NoError(t, err)
	assert.False(t, seen)

	assert.NoError(t, s.Close())
}

func TestRedisStore_Seen(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(mr.Addr(), "", "", 0, "", 5*time.Second)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	seen, err := s.Seen(ctx, "u-1", "delete", "menus")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = s.Seen(ctx, "u-1", "delete", "menus")
	require.NoError(t, err)
	assert.True(t, seen)

	// Expire the key and the tuple records again.
	mr.FastForward(6 * time.Second)
	seen, err = s.Seen(ctx, "u-1", "delete", "menus")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestNewStore(t *testing.T) {
	logger := zap.NewNop()

	s, err := NewStore(logger, &config.DedupConfig{Type: "memory", Window: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	mr := miniredis.RunT(t)
	s, err = NewStore(logger, &config.DedupConfig{
		Type:   "redis",
		Window: time.Second,
		Redis:  config.AuditRedisConfig{Addr: mr.Addr()},
	})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)

	_, err = NewStore(logger, &config.DedupConfig{Type: "etcd"})
	assert.Error(t, err)
}
