package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores string values (callers encode JSON themselves).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEX(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// TTLFetcher is implemented by caches that can report a key's remaining lifetime.
// LayeredCache uses it to backfill L1 without outliving L2.
type TTLFetcher interface {
	RemainingTTL(ctx context.Context, key string) (time.Duration, bool)
}

type entry struct {
	val string
	exp time.Time
}

func (e entry) expired(now time.Time) bool { return !e.exp.IsZero() && now.After(e.exp) }

// Memory is the process-local L1. Expired entries are dropped lazily on read.
type Memory struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

// NewMemory creates an L1 cache; defaultTTL applies when SetEX is called with ttl <= 0.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{data: make(map[string]entry), ttl: defaultTTL, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if e.expired(m.now()) {
		m.mu.Lock()
		if cur, ok := m.data[key]; ok && cur.expired(m.now()) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return "", nil
	}
	return e.val, nil
}

func (m *Memory) SetEX(_ context.Context, key, val string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.ttl
	}
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.data[key] = entry{val: val, exp: exp}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) RemainingTTL(_ context.Context, key string) (time.Duration, bool) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok || e.exp.IsZero() {
		return 0, false
	}
	d := e.exp.Sub(m.now())
	if d <= 0 {
		return 0, false
	}
	return d, true
}

func (m *Memory) Flush() {
	m.mu.Lock()
	m.data = make(map[string]entry)
	m.mu.Unlock()
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
