package services

import (
	"context"
	"fmt"

	"carteira/internal/api"
	"carteira/internal/core"
	"carteira/internal/events"
	"carteira/internal/log"
)

type Accounts struct {
	api    *api.Client
	pub    Publisher
	logger *log.StructuredLogger
}

func NewAccounts(client *api.Client, pub Publisher, logger *log.Logger) *Accounts {
	return &Accounts{
		api:    client,
		pub:    orNoop(pub),
		logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentAccounts)),
	}
}

// List returns every account; activeOnly drops inactive ones.
func (a *Accounts) List(ctx context.Context, activeOnly bool) ([]core.Account, error) {
	accs, err := a.api.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if activeOnly {
		return core.ActiveAccounts(accs), nil
	}
	return accs, nil
}

func (a *Accounts) Get(ctx context.Context, uuid string) (core.Account, error) {
	accs, err := a.List(ctx, false)
	if err != nil {
		return core.Account{}, err
	}
	for _, acc := range accs {
		if acc.UUID == uuid {
			return acc, nil
		}
	}
	return core.Account{}, fmt.Errorf("account %s: %w", uuid, core.ErrNotFound)
}

func (a *Accounts) Create(ctx context.Context, in core.AccountInput) (core.Account, error) {
	if err := in.Validate(); err != nil {
		return core.Account{}, err
	}
	acc, err := a.api.CreateAccount(ctx, in)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	a.changed(ctx, log.OpCreate, events.ActionCreated, acc.UUID, in.Balance.Cents)
	return acc, nil
}

func (a *Accounts) Update(ctx context.Context, uuid string, in core.AccountInput) (core.Account, error) {
	if err := in.Validate(); err != nil {
		return core.Account{}, err
	}
	acc, err := a.api.UpdateAccount(ctx, uuid, in)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account %s: %w", uuid, err)
	}
	a.changed(ctx, log.OpUpdate, events.ActionUpdated, uuid, in.Balance.Cents)
	return acc, nil
}

func (a *Accounts) Activate(ctx context.Context, uuid string) error {
	if err := a.api.ActivateAccount(ctx, uuid); err != nil {
		return fmt.Errorf("activate account %s: %w", uuid, err)
	}
	a.changed(ctx, log.OpActivate, events.ActionActivated, uuid, 0)
	return nil
}

func (a *Accounts) Deactivate(ctx context.Context, uuid string) error {
	if err := a.api.DeactivateAccount(ctx, uuid); err != nil {
		return fmt.Errorf("deactivate account %s: %w", uuid, err)
	}
	a.changed(ctx, log.OpDeactivate, events.ActionDeactivated, uuid, 0)
	return nil
}

// Statement is the ledger of one account, transfer legs signed from its
// point of view.
func (a *Accounts) Statement(ctx context.Context, uuid string) (core.Statement, error) {
	rows, err := a.api.Transactions(ctx)
	if err != nil {
		return core.Statement{}, fmt.Errorf("statement %s: %w", uuid, err)
	}
	rows = core.ActiveTransactions(rows)
	core.SortDespesasByDate(rows)
	return core.StatementFor(rows, uuid), nil
}

func (a *Accounts) Banks(ctx context.Context) ([]core.Bank, error) {
	return a.api.Banks(ctx)
}

func (a *Accounts) Types(ctx context.Context) ([]core.AccountType, error) {
	return a.api.AccountTypes(ctx)
}

func (a *Accounts) changed(ctx context.Context, op, action, uuid string, cents int64) {
	a.logger.LogLedgerChange(ctx, op, "account", uuid, uuid, cents)
	announce(ctx, a.pub, events.AccountChanged, action, "account", uuid, nil)
}
