// Package tokenstore holds the live admin token ids behind the
// services.TokenStore interface.
package tokenstore

import (
	"context"
	"sync"
	"time"
)

// Memory keeps token ids in process with an expiry each. Expired ids are
// invalid immediately and removed by Sweep.
type Memory struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{tokens: map[string]time.Time{}, now: time.Now}
}

func (m *Memory) Put(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[id] = m.now().Add(ttl)
	return nil
}

func (m *Memory) Valid(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.tokens[id]
	return ok && m.now().Before(exp), nil
}

func (m *Memory) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	return nil
}

// Len reports the number of stored ids, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

// Sweep drops expired ids and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, exp := range m.tokens {
		if !now.Before(exp) {
			delete(m.tokens, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			m.Sweep()
		}
	}
}
