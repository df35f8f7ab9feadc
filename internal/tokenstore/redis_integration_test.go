//go:build integration

package tokenstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("DISHA_REDIS_ADDR")
	if addr == "" {
		t.Skip("DISHA_REDIS_ADDR not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, addr, "disha:test_token:")
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Put(ctx, "t1", time.Minute))
	ok, err := r.Valid(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.Revoke(ctx, "t1"))
	ok, err = r.Valid(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Put(ctx, "t2", 50*time.Millisecond))
	time.Sleep(200 * time.Millisecond)
	ok, err = r.Valid(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, ok, "redis TTL should expire the key")
}
