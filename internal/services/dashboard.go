package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"carteira/internal/api"
	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/events"
	"carteira/internal/log"
)

const (
	totalsPrefix = "totals"
	ledgerPrefix = "ledger"
)

// Dashboard serves the home page aggregates. Results are cached per
// session and dropped whenever that session changes the ledger or an
// account.
type Dashboard struct {
	api    *api.Client
	totals cache.Cache[core.Totals]
	ledger cache.Cache[[]core.Transaction]
	logger *log.Logger
	now    func() time.Time
}

// NewDashboard wires the dashboard to its caches. Nil caches disable caching.
func NewDashboard(client *api.Client, totals cache.Cache[core.Totals], ledger cache.Cache[[]core.Transaction], logger *log.Logger) *Dashboard {
	return &Dashboard{
		api:    client,
		totals: totals,
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentDashboard),
		now:    time.Now,
	}
}

// Totals fetches income, expense and balance concurrently. A missing total
// reads as zero; any failed call fails the whole headline.
func (d *Dashboard) Totals(ctx context.Context) (core.Totals, error) {
	key := sessionKey(ctx, totalsPrefix)
	if key != "" && d.totals != nil {
		if t, ok := d.totals.Get(ctx, key); ok {
			return t, nil
		}
	}

	var t core.Totals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		income, err := d.api.TotalReceitas(gctx)
		if err != nil {
			return fmt.Errorf("total receitas: %w", err)
		}
		t.Income = income
		return nil
	})
	g.Go(func() error {
		rows, err := d.api.Despesas(gctx)
		if err != nil {
			return fmt.Errorf("despesas: %w", err)
		}
		t.Expense = core.SumValues(core.ActiveTransactions(rows))
		return nil
	})
	g.Go(func() error {
		balance, err := d.api.TotalBalance(gctx)
		if err != nil {
			return fmt.Errorf("total balance: %w", err)
		}
		t.Balance = balance
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Totals{}, err
	}

	if key != "" && d.totals != nil {
		d.totals.Set(ctx, key, t)
	}
	return t, nil
}

// Transactions is the active ledger newest first, cached per session.
func (d *Dashboard) Transactions(ctx context.Context) ([]core.Transaction, error) {
	key := sessionKey(ctx, ledgerPrefix)
	if key != "" && d.ledger != nil {
		if rows, ok := d.ledger.Get(ctx, key); ok {
			return rows, nil
		}
	}
	rows, err := d.api.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	rows = core.ActiveTransactions(rows)
	core.SortDespesasByDate(rows)
	if key != "" && d.ledger != nil {
		d.ledger.Set(ctx, key, rows)
	}
	return rows, nil
}

// Recent returns the n newest ledger rows decorated for display.
func (d *Dashboard) Recent(ctx context.Context, n int) ([]core.TransactionDisplay, error) {
	rows, err := d.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return core.ClassifyAll(rows, ""), nil
}

// ExpensesByCategory feeds the doughnut chart.
func (d *Dashboard) ExpensesByCategory(ctx context.Context) ([]core.CategoryShare, error) {
	rows, err := d.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.ExpensesByCategory(rows), nil
}

func (d *Dashboard) TopCategories(ctx context.Context, n int) ([]core.CategoryShare, error) {
	rows, err := d.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.TopCategories(rows, n), nil
}

// MonthlySeries feeds the income/expense bar chart for the last months.
func (d *Dashboard) MonthlySeries(ctx context.Context, months int) (core.TimeSeries, error) {
	rows, err := d.Transactions(ctx)
	if err != nil {
		return core.TimeSeries{}, err
	}
	return core.MonthlySeries(rows, d.now(), months), nil
}

// HandleEvent drops the cached aggregates of the session that made a change.
func (d *Dashboard) HandleEvent(ctx context.Context, e events.Event) error {
	if e.Session == "" || e.Topic == events.CardChanged {
		return nil
	}
	if d.totals != nil {
		d.totals.Delete(ctx, totalsPrefix+":"+e.Session)
	}
	if d.ledger != nil {
		d.ledger.Delete(ctx, ledgerPrefix+":"+e.Session)
	}
	d.logger.DebugContext(ctx, "Dashboard cache invalidated",
		log.FieldSessionID, e.Session,
		log.FieldEventTopic, string(e.Topic))
	return nil
}
