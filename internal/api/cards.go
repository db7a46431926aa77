package api

import (
	"context"

	"carteira/internal/core"
)

type cardPayload struct {
	Description string     `json:"description"`
	ExpiryDate  string     `json:"expiryDate"`
	CloseDate   string     `json:"closeDate"`
	Flags       string     `json:"flags"`
	Limit       core.Money `json:"limite"`
}

func newCardPayload(in core.CardInput) cardPayload {
	return cardPayload{
		Description: in.Description,
		ExpiryDate:  in.ExpiryDate,
		CloseDate:   in.CloseDate,
		Flags:       in.FlagUUID,
		Limit:       in.Limit,
	}
}

func (c *Client) CreditCards(ctx context.Context) ([]core.CreditCard, error) {
	var out []core.CreditCard
	err := c.get(ctx, "/creditCard", nil, &out)
	return out, err
}

func (c *Client) CreditCard(ctx context.Context, uuid string) (core.CreditCard, error) {
	var out core.CreditCard
	err := c.get(ctx, "/creditCard"+seg(uuid), nil, &out)
	return out, err
}

func (c *Client) CardFlags(ctx context.Context) ([]core.CardFlag, error) {
	var out []core.CardFlag
	err := c.get(ctx, "/flags", nil, &out)
	return out, err
}

func (c *Client) CreateCreditCard(ctx context.Context, in core.CardInput) (core.CreditCard, error) {
	var out core.CreditCard
	err := c.post(ctx, "/creditCard", newCardPayload(in), &out)
	return out, err
}

func (c *Client) UpdateCreditCard(ctx context.Context, uuid string, in core.CardInput) (core.CreditCard, error) {
	var out core.CreditCard
	err := c.put(ctx, "/creditCard"+seg(uuid), newCardPayload(in), &out)
	return out, err
}

func (c *Client) DeleteCreditCard(ctx context.Context, uuid string) error {
	return c.delete(ctx, "/creditCard"+seg(uuid))
}

func (c *Client) DeactivateCreditCard(ctx context.Context, uuid string) error {
	return c.delete(ctx, "/creditCard/deactivate"+seg(uuid))
}

func (c *Client) ActivateCreditCard(ctx context.Context, uuid string) error {
	return c.put(ctx, "/creditCard/activate"+seg(uuid), struct{}{}, nil)
}

// Bills lists the faturas of one card.
func (c *Client) Bills(ctx context.Context, cardUUID string) ([]core.RawBill, error) {
	var out []core.RawBill
	err := c.get(ctx, "/bill"+seg(cardUUID), nil, &out)
	return out, err
}

func (c *Client) Bill(ctx context.Context, billUUID string) (core.RawBill, error) {
	var out core.RawBill
	err := c.get(ctx, "/creditCardBill"+seg(billUUID), nil, &out)
	return out, err
}

// BillItems lists the purchases on a bill. Disabled items are included;
// callers filter them.
func (c *Client) BillItems(ctx context.Context, billUUID string) ([]core.RawBillItem, error) {
	var out []core.RawBillItem
	err := c.get(ctx, "/creditCardBill/bill"+seg(billUUID), nil, &out)
	return out, err
}

func (c *Client) PayBill(ctx context.Context, billUUID string, amount core.Money) error {
	body := struct {
		UUID   string     `json:"uuid"`
		Amount core.Money `json:"amount"`
	}{billUUID, amount}
	return c.post(ctx, "/bill/payment"+seg(billUUID), body, nil)
}

type billItemPayload struct {
	Value              core.Money `json:"value"`
	Description        string     `json:"description"`
	RegistrationDate   string     `json:"registrationDate"`
	CreditCard         ref        `json:"creditCard"`
	Bill               ref        `json:"bill"`
	Category           ref        `json:"category"`
	Installments       string     `json:"installments,omitempty"`
	NumberInstallments int        `json:"numberinstallments,omitempty"`
}

func (c *Client) CreateBillItem(ctx context.Context, in core.BillItemInput) error {
	p := billItemPayload{
		Value:            in.Value,
		Description:      in.Description,
		RegistrationDate: in.Date,
		CreditCard:       ref{in.CardUUID},
		Bill:             ref{in.BillUUID},
		Category:         ref{in.CategoryUUID},
	}
	if in.Installments > 1 {
		p.Installments = "sim"
		p.NumberInstallments = in.Installments
	}
	return c.post(ctx, "/creditCardBill/create", p, nil)
}
