package backend

import (
	"fmt"
	"time"

	"carteira/internal/config"
)

type SessionType string

const (
	MemorySessions SessionType = "memory"
	SQLiteSessions SessionType = "sqlite"
)

func (t SessionType) IsValid() bool {
	return t == MemorySessions || t == SQLiteSessions
}

type CacheType string

const (
	MemoryCache CacheType = "memory"
	RedisCache  CacheType = "redis"
)

func (t CacheType) IsValid() bool {
	return t == MemoryCache || t == RedisCache
}

type Config struct {
	Sessions     SessionType
	SQLiteDBPath string
	SessionTTL   time.Duration

	Cache     CacheType
	RedisURL  string
	CacheTTL  time.Duration
	CacheSize int
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	c := Config{
		Sessions:     SessionType(appConfig.SessionBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		SessionTTL:   appConfig.SessionTTL,
		Cache:        CacheType(appConfig.CacheBackend),
		RedisURL:     appConfig.RedisURL,
		CacheTTL:     appConfig.CacheTTL,
		CacheSize:    1000,
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if !c.Sessions.IsValid() {
		return fmt.Errorf("invalid session backend: %s", c.Sessions)
	}
	if c.Sessions == SQLiteSessions && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite sessions")
	}
	if !c.Cache.IsValid() {
		return fmt.Errorf("invalid cache backend: %s", c.Cache)
	}
	if c.Cache == RedisCache && c.RedisURL == "" {
		return fmt.Errorf("redis URL is required for redis cache")
	}
	return nil
}
