package services

import (
	"context"
	"fmt"

	"carteira/internal/api"
	"carteira/internal/core"
	"carteira/internal/events"
	"carteira/internal/log"
)

// Ledger handles despesas, receitas and transfers.
type Ledger struct {
	api    *api.Client
	pub    Publisher
	logger *log.StructuredLogger
}

func NewLedger(client *api.Client, pub Publisher, logger *log.Logger) *Ledger {
	return &Ledger{
		api:    client,
		pub:    orNoop(pub),
		logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentLedger)),
	}
}

// Despesas lists active expenses newest first, optionally limited to the
// [from, to] date range.
func (l *Ledger) Despesas(ctx context.Context, from, to string) ([]core.Despesa, error) {
	var (
		rows []core.Despesa
		err  error
	)
	if from != "" || to != "" {
		rows, err = l.api.SearchDespesas(ctx, from, to)
	} else {
		rows, err = l.api.Despesas(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list despesas: %w", err)
	}
	rows = core.ActiveTransactions(rows)
	core.SortDespesasByDate(rows)
	return rows, nil
}

// Receitas lists active incomes newest first. The income endpoint also
// returns transfers and expenses; they are filtered out here.
func (l *Ledger) Receitas(ctx context.Context, from, to string) ([]core.Receita, error) {
	var (
		rows []core.Receita
		err  error
	)
	if from != "" || to != "" {
		rows, err = l.api.SearchReceitas(ctx, from, to)
	} else {
		rows, err = l.api.Receitas(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list receitas: %w", err)
	}
	out := make([]core.Receita, 0, len(rows))
	for _, r := range core.ActiveTransactions(rows) {
		if r.IsIncome() && !r.IsTransfer() {
			out = append(out, r)
		}
	}
	core.SortDespesasByDate(out)
	return out, nil
}

func (l *Ledger) CreateDespesa(ctx context.Context, e core.Entry) (core.Despesa, error) {
	if err := e.Validate(); err != nil {
		return core.Despesa{}, err
	}
	tx, err := l.api.CreateDespesa(ctx, e)
	if err != nil {
		return core.Despesa{}, fmt.Errorf("create despesa: %w", err)
	}
	l.changed(ctx, log.OpCreate, events.ActionCreated, core.EntryDespesa, "", tx, e)
	return tx, nil
}

func (l *Ledger) UpdateDespesa(ctx context.Context, uuid string, e core.Entry) (core.Despesa, error) {
	if err := e.Validate(); err != nil {
		return core.Despesa{}, err
	}
	tx, err := l.api.UpdateDespesa(ctx, uuid, e)
	if err != nil {
		return core.Despesa{}, fmt.Errorf("update despesa %s: %w", uuid, err)
	}
	l.changed(ctx, log.OpUpdate, events.ActionUpdated, core.EntryDespesa, uuid, tx, e)
	if tx.UUID == "" {
		tx.UUID = uuid
	}
	return tx, nil
}

func (l *Ledger) DeleteDespesa(ctx context.Context, uuid string) error {
	if err := l.api.DeleteDespesa(ctx, uuid); err != nil {
		return fmt.Errorf("delete despesa %s: %w", uuid, err)
	}
	l.deleted(ctx, core.EntryDespesa, uuid)
	return nil
}

func (l *Ledger) CreateReceita(ctx context.Context, e core.Entry) (core.Receita, error) {
	if err := e.Validate(); err != nil {
		return core.Receita{}, err
	}
	tx, err := l.api.CreateReceita(ctx, e)
	if err != nil {
		return core.Receita{}, fmt.Errorf("create receita: %w", err)
	}
	l.changed(ctx, log.OpCreate, events.ActionCreated, core.EntryReceita, "", tx, e)
	return tx, nil
}

func (l *Ledger) UpdateReceita(ctx context.Context, uuid string, e core.Entry) (core.Receita, error) {
	if err := e.Validate(); err != nil {
		return core.Receita{}, err
	}
	tx, err := l.api.UpdateReceita(ctx, uuid, e)
	if err != nil {
		return core.Receita{}, fmt.Errorf("update receita %s: %w", uuid, err)
	}
	l.changed(ctx, log.OpUpdate, events.ActionUpdated, core.EntryReceita, uuid, tx, e)
	if tx.UUID == "" {
		tx.UUID = uuid
	}
	return tx, nil
}

func (l *Ledger) DeleteReceita(ctx context.Context, uuid string) error {
	if err := l.api.DeleteReceita(ctx, uuid); err != nil {
		return fmt.Errorf("delete receita %s: %w", uuid, err)
	}
	l.deleted(ctx, core.EntryReceita, uuid)
	return nil
}

// Transfer moves money between two of the user's accounts. It is checked
// against the current balances before reaching the backend.
func (l *Ledger) Transfer(ctx context.Context, t core.Transfer) (core.Transaction, error) {
	accounts, err := l.api.Accounts(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load accounts: %w", err)
	}
	if err := t.Validate(accounts); err != nil {
		return core.Transaction{}, err
	}
	tx, err := l.api.CreateTransfer(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transfer: %w", err)
	}
	l.changed(ctx, log.OpTransfer, events.ActionCreated, core.EntryTransfer, "", tx, t.Entry)
	announce(ctx, l.pub, events.AccountChanged, events.ActionUpdated, "", t.AccountUUID, nil)
	announce(ctx, l.pub, events.AccountChanged, events.ActionUpdated, "", t.ToAccountUUID, nil)
	return tx, nil
}

// Transactions is the unified ledger of the user, inactive rows removed.
func (l *Ledger) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := l.api.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.ActiveTransactions(rows), nil
}

// changed announces a written row. known is the uuid the caller already
// has (updates); tx is whatever the backend replied with.
func (l *Ledger) changed(ctx context.Context, op, action, kind, known string, tx core.Transaction, in core.Entry) {
	id := tx.UUID
	if id == "" {
		id = known
	}
	l.logger.LogLedgerChange(ctx, op, kind, id, in.AccountUUID, in.Value.Cents)
	if tx.UUID == "" {
		// Backend answered without a body. The row is announced so pages
		// refresh, but without a payload the mirror keeps its last copy.
		announce(ctx, l.pub, events.TransactionChanged, action, kind, id, nil)
		return
	}
	entry := core.NewLedgerEntry(tx)
	entry.Kind = kind
	announce(ctx, l.pub, events.TransactionChanged, action, kind, tx.UUID, entry)
}

func (l *Ledger) deleted(ctx context.Context, kind, uuid string) {
	l.logger.LogLedgerChange(ctx, log.OpDelete, kind, uuid, "", 0)
	announce(ctx, l.pub, events.TransactionChanged, events.ActionDeleted, kind, uuid, nil)
}
