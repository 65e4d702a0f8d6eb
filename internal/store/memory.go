package store

import (
	"context"
	"sync"
	"time"

	"github.com/tinkerloft/errdoctor/internal/model"
)

// Memory is an in-process Store.
type Memory struct {
	mu           sync.Mutex
	cache        map[string]model.CacheEntry
	profiles     map[string]model.UserProfile
	history      map[string][]model.HistoryEntry
	historyLimit int
	now          func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithHistoryLimit overrides DefaultHistoryLimit.
func WithHistoryLimit(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.historyLimit = n
		}
	}
}

// NewMemory returns an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		cache:        make(map[string]model.CacheEntry),
		profiles:     make(map[string]model.UserProfile),
		history:      make(map[string][]model.HistoryEntry),
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cache[key]
	if !ok || e.Expired(m.now()) {
		return nil, nil
	}
	e.Diagnostic = e.Diagnostic.Clone()
	return &e, nil
}

func (m *Memory) Put(_ context.Context, key string, entry model.CacheEntry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ExpiresAt = expiry(m.now(), entry, ttl)
	entry.Diagnostic = entry.Diagnostic.Clone()
	m.cache[key] = entry
	return nil
}

func (m *Memory) Increment(_ context.Context, key, field string, delta int64) error {
	if field != FieldHitCount {
		return ErrUnknownField
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cache[key]
	if !ok {
		return nil
	}
	e.HitCount += delta
	m.cache[key] = e
	return nil
}

func (m *Memory) PurgeExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int64
	for k, e := range m.cache {
		if e.Expired(now) {
			delete(m.cache, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) GetProfile(_ context.Context, userID string) (model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return model.DefaultProfile, nil
}

func (m *Memory) SaveProfile(_ context.Context, userID string, p model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = p
	return nil
}

func (m *Memory) AppendHistory(_ context.Context, userID string, e model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := append([]model.HistoryEntry{e}, m.history[userID]...)
	if len(h) > m.historyLimit {
		h = h[:m.historyLimit]
	}
	m.history[userID] = h
	return nil
}

func (m *Memory) ListHistory(_ context.Context, userID string, limit int) ([]model.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.history[userID]
	if limit > 0 && len(h) > limit {
		h = h[:limit]
	}
	return append([]model.HistoryEntry{}, h...), nil
}

func (m *Memory) Close() error { return nil }
