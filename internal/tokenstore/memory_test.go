package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Put(ctx, "a", time.Minute))
	require.NoError(t, m.Put(ctx, "b", time.Hour))
	ok, err := m.Valid(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = m.Valid(ctx, "a")
	assert.False(t, ok, "expired token must be invalid before sweep")
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Revoke(ctx, "b"))
	ok, _ = m.Valid(ctx, "b")
	assert.False(t, ok)
	ok, _ = m.Valid(ctx, "never")
	assert.False(t, ok)
}

func TestMemoryRunStopsOnCancel(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
