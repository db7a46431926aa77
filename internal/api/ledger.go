package api

import (
	"context"
	"encoding/json"
	"net/url"

	"carteira/internal/core"
)

// despesaPayload carries the date twice: older backend builds read it from
// dateRegistration.
type despesaPayload struct {
	Value            core.Money `json:"value"`
	Description      string     `json:"description"`
	PayDate          string     `json:"payDate"`
	DateRegistration string     `json:"dateRegistration"`
	Category         ref        `json:"category"`
	Accounts         ref        `json:"accounts"`
}

type receitaPayload struct {
	Value            core.Money `json:"value"`
	Description      string     `json:"description"`
	RegistrationDate string     `json:"registrationDate"`
	Accounts         ref        `json:"accounts"`
	Category         ref        `json:"category"`
}

type transferPayload struct {
	Value            core.Money `json:"value"`
	Description      string     `json:"description"`
	RegistrationDate string     `json:"registrationDate"`
	Accounts         ref        `json:"accounts"`
	ForAccounts      ref        `json:"foraccounts"`
	Category         ref        `json:"category"`
}

func newDespesaPayload(e core.Entry) despesaPayload {
	return despesaPayload{
		Value:            e.Value,
		Description:      e.Description,
		PayDate:          e.Date,
		DateRegistration: e.Date,
		Category:         ref{e.CategoryUUID},
		Accounts:         ref{e.AccountUUID},
	}
}

func newReceitaPayload(e core.Entry) receitaPayload {
	return receitaPayload{
		Value:            e.Value,
		Description:      e.Description,
		RegistrationDate: e.Date,
		Accounts:         ref{e.AccountUUID},
		Category:         ref{e.CategoryUUID},
	}
}

func (c *Client) Despesas(ctx context.Context) ([]core.Despesa, error) {
	var out []core.Despesa
	err := c.get(ctx, "/expense", nil, &out)
	return out, err
}

// SearchDespesas lists expenses dated between from and to (YYYY-MM-DD).
func (c *Client) SearchDespesas(ctx context.Context, from, to string) ([]core.Despesa, error) {
	var out []core.Despesa
	err := c.get(ctx, "/expense/search", url.Values{"from": {from}, "to": {to}}, &out)
	return out, err
}

func (c *Client) CreateDespesa(ctx context.Context, e core.Entry) (core.Despesa, error) {
	var out core.Despesa
	err := c.post(ctx, "/expense/create", newDespesaPayload(e), &out)
	return out, err
}

func (c *Client) UpdateDespesa(ctx context.Context, uuid string, e core.Entry) (core.Despesa, error) {
	var out core.Despesa
	err := c.put(ctx, "/expense"+seg(uuid), newDespesaPayload(e), &out)
	return out, err
}

func (c *Client) DeleteDespesa(ctx context.Context, uuid string) error {
	return c.delete(ctx, "/expense"+seg(uuid))
}

func (c *Client) Receitas(ctx context.Context) ([]core.Receita, error) {
	var out []core.Receita
	err := c.get(ctx, "/reciphe", nil, &out)
	return out, err
}

// SearchReceitas lists incomes registered between from and to (YYYY-MM-DD).
func (c *Client) SearchReceitas(ctx context.Context, from, to string) ([]core.Receita, error) {
	var out []core.Receita
	q := url.Values{"field": {"registration"}, "fromDate": {from}, "toDate": {to}}
	err := c.get(ctx, "/reciphe/search", q, &out)
	return out, err
}

func (c *Client) CreateReceita(ctx context.Context, e core.Entry) (core.Receita, error) {
	var out core.Receita
	err := c.post(ctx, "/reciphe/create", newReceitaPayload(e), &out)
	return out, err
}

func (c *Client) UpdateReceita(ctx context.Context, uuid string, e core.Entry) (core.Receita, error) {
	var out core.Receita
	err := c.put(ctx, "/reciphe"+seg(uuid), newReceitaPayload(e), &out)
	return out, err
}

func (c *Client) DeleteReceita(ctx context.Context, uuid string) error {
	return c.delete(ctx, "/reciphe"+seg(uuid))
}

// TotalReceitas returns the backend's income total.
func (c *Client) TotalReceitas(ctx context.Context) (core.Money, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/reciphe/total", nil, &raw); err != nil {
		return core.Money{}, err
	}
	return decodeTotal(raw)
}

// Transactions returns every ledger row of the user, transfers included.
// The backend serves the unified ledger from the income collection.
func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	err := c.get(ctx, "/reciphe", nil, &out)
	return out, err
}

func (c *Client) CreateTransfer(ctx context.Context, t core.Transfer) (core.Transaction, error) {
	var out core.Transaction
	err := c.post(ctx, "/transactions/create", transferPayload{
		Value:            t.Value,
		Description:      t.Description,
		RegistrationDate: t.Date,
		Accounts:         ref{t.AccountUUID},
		ForAccounts:      ref{t.ToAccountUUID},
		Category:         ref{t.CategoryUUID},
	}, &out)
	return out, err
}
