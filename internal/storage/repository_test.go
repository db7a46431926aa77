package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "sessions.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSessionLifecycle(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	repo.now = func() time.Time { return now }

	row := SessionRow{ID: "s1", Token: "tok", Name: "Ana", Email: "ana@example.com",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := repo.InsertSession(ctx, row); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "tok" || got.Name != "Ana" || !got.ExpiresAt.Equal(row.ExpiresAt) {
		t.Fatalf("unexpected row %+v", got)
	}

	if err := repo.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetSession(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestExpiredSessions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	repo.now = func() time.Time { return now }

	for i, exp := range []time.Duration{-time.Minute, time.Minute, -time.Hour} {
		id := string(rune('a' + i))
		err := repo.InsertSession(ctx, SessionRow{ID: id, Token: "t", CreatedAt: now, ExpiresAt: now.Add(exp)})
		if err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	if _, err := repo.GetSession(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session must not load, got %v", err)
	}
	n, err := repo.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged %d rows, want 1 (a was dropped on read)", n)
	}
	if _, err := repo.GetSession(ctx, "b"); err != nil {
		t.Fatalf("live session lost: %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}
