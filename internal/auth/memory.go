package auth

import (
	"context"
	"time"

	"carteira/internal/cache"
)

const maxMemorySessions = 10_000

// MemoryStore keeps sessions in process. They are lost on restart.
type MemoryStore struct {
	cache *cache.LRUCache[Session]
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: cache.NewLRUCache[Session](maxMemorySessions, ttl),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Cleaner exposes the backing cache for periodic sweeping.
func (m *MemoryStore) Cleaner() cache.Cleaner { return m.cache }

func (m *MemoryStore) Create(ctx context.Context, token string) (Session, error) {
	now := m.now()
	s, err := newSession(token, m.ttl, now)
	if err != nil {
		return Session{}, err
	}
	m.cache.SetWithTTL(ctx, s.ID, s, s.ExpiresAt.Sub(now))
	return s, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	s, ok := m.cache.Get(ctx, id)
	if !ok || s.Expired(m.now()) {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.cache.Delete(ctx, id)
	return nil
}
