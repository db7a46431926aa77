package backend

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"carteira/internal/auth"
	"carteira/internal/config"
	"carteira/internal/log"
)

func testLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.New(cfg)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Sessions: MemorySessions, Cache: MemoryCache}, false},
		{"sqlite without path", Config{Sessions: SQLiteSessions, Cache: MemoryCache}, true},
		{"redis without url", Config{Sessions: MemorySessions, Cache: RedisCache}, true},
		{"unknown sessions", Config{Sessions: "bolt", Cache: MemoryCache}, true},
		{"unknown cache", Config{Sessions: MemorySessions, Cache: "memcached"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	c, err := FromAppConfig(&config.Config{
		SessionBackend: "sqlite",
		SQLiteDBPath:   "/tmp/x.db",
		SessionTTL:     time.Hour,
		CacheBackend:   "memory",
		CacheTTL:       time.Minute,
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if c.Sessions != SQLiteSessions || c.SessionTTL != time.Hour || c.CacheSize == 0 {
		t.Errorf("unexpected config %+v", c)
	}
}

func TestCreateMemory(t *testing.T) {
	res, err := NewFactory(testLogger()).Create(context.Background(), Config{
		Sessions: MemorySessions, SessionTTL: time.Hour,
		Cache: MemoryCache, CacheTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer res.Cleanup()

	if _, ok := res.Sessions.(*auth.MemoryStore); !ok {
		t.Errorf("sessions = %T, want *auth.MemoryStore", res.Sessions)
	}
	if len(res.Cleaners) != 3 {
		t.Errorf("cleaners = %d, want 3", len(res.Cleaners))
	}
	if res.Totals == nil || res.Ledger == nil {
		t.Error("caches not initialized")
	}
}

func TestCreateSQLite(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(testLogger()).Create(ctx, Config{
		Sessions: SQLiteSessions, SQLiteDBPath: filepath.Join(t.TempDir(), "sessions.db"), SessionTTL: time.Hour,
		Cache: MemoryCache, CacheTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer res.Cleanup()

	check, ok := res.Checks["sqlite"]
	if !ok {
		t.Fatal("missing sqlite readiness check")
	}
	if err := check(ctx); err != nil {
		t.Errorf("sqlite check error = %v", err)
	}

	s, err := res.Sessions.Create(ctx, "opaque-token")
	if err != nil {
		t.Fatalf("Create session error = %v", err)
	}
	got, err := res.Sessions.Get(ctx, s.ID)
	if err != nil || got.Token != "opaque-token" {
		t.Errorf("Get() = %+v, %v", got, err)
	}

	if n := res.Cleaners[0].CleanExpired(); n != 0 {
		t.Errorf("purged %d live sessions", n)
	}
}
