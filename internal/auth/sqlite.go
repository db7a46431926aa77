package auth

import (
	"context"
	"errors"
	"time"

	"carteira/internal/storage"
)

// SQLiteStore keeps sessions in the storage database so logins survive a
// restart.
type SQLiteStore struct {
	repo *storage.SQLiteRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewSQLiteStore(repo *storage.SQLiteRepository, ttl time.Duration) *SQLiteStore {
	return &SQLiteStore{repo: repo, ttl: ttl, now: time.Now}
}

func (s *SQLiteStore) Create(ctx context.Context, token string) (Session, error) {
	sess, err := newSession(token, s.ttl, s.now())
	if err != nil {
		return Session{}, err
	}
	err = s.repo.InsertSession(ctx, storage.SessionRow{
		ID:        sess.ID,
		Token:     sess.Token,
		Name:      sess.Name,
		Email:     sess.Email,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Session, error) {
	row, err := s.repo.GetSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:        row.ID,
		Token:     row.Token,
		Name:      row.Name,
		Email:     row.Email,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// Purge drops expired rows.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpired(ctx)
}
