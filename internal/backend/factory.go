package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"carteira/internal/auth"
	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/storage"
)

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Checks: map[string]Checker{}}
	var closers []CleanupFunc
	res.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	if err := f.createSessions(config, res, &closers); err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	if err := f.createCaches(ctx, config, res, &closers); err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	return res, nil
}

func (f *DefaultFactory) createSessions(config Config, res *Result, closers *[]CleanupFunc) error {
	switch config.Sessions {
	case SQLiteSessions:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize SQLite session store: %w", err)
		}
		store := auth.NewSQLiteStore(repo, config.SessionTTL)
		res.Sessions = store
		res.Cleaners = append(res.Cleaners, purger{store: store, logger: f.logger})
		res.Checks["sqlite"] = repo.Ping
		*closers = append(*closers, repo.Close)
		f.logger.Info("Initialized SQLite sessions", "db_path", config.SQLiteDBPath)

	default:
		store := auth.NewMemoryStore(config.SessionTTL)
		res.Sessions = store
		res.Cleaners = append(res.Cleaners, store.Cleaner())
		f.logger.Info("Initialized in-memory sessions")
	}
	return nil
}

func (f *DefaultFactory) createCaches(ctx context.Context, config Config, res *Result, closers *[]CleanupFunc) error {
	switch config.Cache {
	case RedisCache:
		client, err := cache.NewRedisClient(ctx, config.RedisURL)
		if err != nil {
			return err
		}
		res.Totals = cache.NewRedisCache[core.Totals](client, "carteira:", config.CacheTTL)
		res.Ledger = cache.NewRedisCache[[]core.Transaction](client, "carteira:", config.CacheTTL)
		res.Checks["redis"] = redisCheck(client)
		*closers = append(*closers, client.Close)
		f.logger.Info("Initialized redis cache", "ttl", config.CacheTTL.String())

	default:
		size := config.CacheSize
		if size <= 0 {
			size = 1000
		}
		totals := cache.NewLRUCache[core.Totals](size, config.CacheTTL)
		ledger := cache.NewLRUCache[[]core.Transaction](size, config.CacheTTL)
		res.Totals, res.Ledger = totals, ledger
		res.Cleaners = append(res.Cleaners, totals, ledger)
		f.logger.Info("Initialized in-memory cache", "ttl", config.CacheTTL.String(), "size", size)
	}
	return nil
}

func redisCheck(client *redis.Client) Checker {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// purger lets the cache manager sweep expired SQLite sessions.
type purger struct {
	store  *auth.SQLiteStore
	logger *log.Logger
}

func (p purger) CleanExpired() int {
	n, err := p.store.Purge(context.Background())
	if err != nil {
		p.logger.Warn("Session purge failed", log.FieldError, err.Error())
		return 0
	}
	return int(n)
}
