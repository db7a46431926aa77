package backend

import (
	"context"

	"carteira/internal/auth"
	"carteira/internal/cache"
	"carteira/internal/core"
)

// Checker reports whether a dependency is usable; /readyz runs them all.
type Checker func(ctx context.Context) error

// CleanupFunc releases a resource opened by the factory.
type CleanupFunc func() error

// Result is the state layer of the web process: where sessions live and
// where backend aggregates are cached.
type Result struct {
	Sessions auth.Store
	Totals   cache.Cache[core.Totals]
	Ledger   cache.Cache[[]core.Transaction]

	// Cleaners are swept periodically by a cache.Manager.
	Cleaners []cache.Cleaner
	Checks   map[string]Checker
	Cleanup  CleanupFunc
}

// Factory builds the state layer from configuration.
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}
