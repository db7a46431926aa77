package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"carteira/internal/core"
)

type accountPayload struct {
	UUID    string     `json:"uuid,omitempty"`
	Name    string     `json:"name"`
	Balance core.Money `json:"balance"`
	Bank    ref        `json:"bank"`
	Type    ref        `json:"type"`
}

func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	var out []core.Account
	err := c.get(ctx, "/accounts", nil, &out)
	return out, err
}

func (c *Client) CreateAccount(ctx context.Context, in core.AccountInput) (core.Account, error) {
	var out core.Account
	err := c.post(ctx, "/accounts/create", accountPayload{
		Name:    in.Name,
		Balance: in.Balance,
		Bank:    ref{in.BankUUID},
		Type:    ref{in.TypeUUID},
	}, &out)
	return out, err
}

func (c *Client) UpdateAccount(ctx context.Context, uuid string, in core.AccountInput) (core.Account, error) {
	var out core.Account
	err := c.put(ctx, "/accounts"+seg(uuid), accountPayload{
		UUID:    uuid,
		Name:    in.Name,
		Balance: in.Balance,
		Bank:    ref{in.BankUUID},
		Type:    ref{in.TypeUUID},
	}, &out)
	return out, err
}

func (c *Client) DeactivateAccount(ctx context.Context, uuid string) error {
	return c.delete(ctx, "/accounts/deactivate"+seg(uuid))
}

func (c *Client) ActivateAccount(ctx context.Context, uuid string) error {
	return c.put(ctx, "/accounts/activate"+seg(uuid), struct{}{}, nil)
}

// TotalBalance returns the sum of every account balance.
func (c *Client) TotalBalance(ctx context.Context) (core.Money, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/accounts/total-balance", nil, &raw); err != nil {
		return core.Money{}, err
	}
	return decodeTotal(raw)
}

func (c *Client) Banks(ctx context.Context) ([]core.Bank, error) {
	var out []core.Bank
	err := c.get(ctx, "/banks", nil, &out)
	return out, err
}

func (c *Client) AccountTypes(ctx context.Context) ([]core.AccountType, error) {
	var out []core.AccountType
	err := c.get(ctx, "/account-types", nil, &out)
	return out, err
}

// CategoryFilter narrows the category listing by kind.
type CategoryFilter int

const (
	AllCategories CategoryFilter = iota
	ExpenseCategories
	IncomeCategories
)

func (c *Client) Categories(ctx context.Context, filter CategoryFilter) ([]core.Category, error) {
	var q url.Values
	switch filter {
	case ExpenseCategories:
		q = url.Values{"earn": {"0"}}
	case IncomeCategories:
		q = url.Values{"earn": {"1"}}
	}
	var out []core.Category
	err := c.get(ctx, "/category", q, &out)
	return out, err
}

type categoryPayload struct {
	Description string `json:"description"`
	Earn        bool   `json:"earn"`
	Icon        string `json:"icon,omitempty"`
}

func (c *Client) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	var out core.Category
	err := c.post(ctx, "/category", categoryPayload{
		Description: in.Description,
		Earn:        in.Earn,
		Icon:        core.CategoryIcon(in.Description),
	}, &out)
	return out, err
}

func (c *Client) UpdateCategory(ctx context.Context, uuid string, in core.CategoryInput) (core.Category, error) {
	var out core.Category
	err := c.put(ctx, "/category"+seg(uuid), categoryPayload{
		Description: in.Description,
		Earn:        in.Earn,
		Icon:        core.CategoryIcon(in.Description),
	}, &out)
	return out, err
}

// decodeTotal reads either {"total": n} or a bare number.
func decodeTotal(raw json.RawMessage) (core.Money, error) {
	if len(raw) == 0 {
		return core.Money{}, nil
	}
	var obj struct {
		Total core.Money `json:"total"`
	}
	if raw[0] == '{' {
		if err := json.Unmarshal(raw, &obj); err != nil {
			return core.Money{}, fmt.Errorf("decode total: %w", err)
		}
		return obj.Total, nil
	}
	var m core.Money
	if err := json.Unmarshal(raw, &m); err != nil {
		return core.Money{}, fmt.Errorf("decode total: %w", err)
	}
	return m, nil
}
