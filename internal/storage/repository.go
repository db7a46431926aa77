// Package storage persists login sessions in SQLite so they survive a
// restart of the web process.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no live session row matches.
var ErrNotFound = errors.New("storage: session not found")

type SessionRow struct {
	ID        string
	Token     string
	Name      string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) InsertSession(ctx context.Context, s SessionRow) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, name, email, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Token, s.Name, s.Email, s.CreatedAt.Unix(), s.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession returns the session with id. An expired row is deleted and
// reported as ErrNotFound.
func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (SessionRow, error) {
	var (
		s                  SessionRow
		created, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, token, name, email, created_at, expires_at FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.Token, &s.Name, &s.Email, &created, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRow{}, ErrNotFound
	}
	if err != nil {
		return SessionRow{}, fmt.Errorf("get session: %w", err)
	}
	s.CreatedAt = time.Unix(created, 0)
	s.ExpiresAt = time.Unix(expiresAt, 0)

	if !r.now().Before(s.ExpiresAt) {
		if err := r.DeleteSession(ctx, id); err != nil {
			slog.WarnContext(ctx, "Failed to drop expired session", "error", err)
		}
		return SessionRow{}, ErrNotFound
	}
	return s, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired session and returns how many were removed.
func (r *SQLiteRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.InfoContext(ctx, "Purged expired sessions", "count", n)
	}
	return n, nil
}
