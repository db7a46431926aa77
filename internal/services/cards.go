package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"carteira/internal/api"
	"carteira/internal/core"
	"carteira/internal/events"
	"carteira/internal/log"
)

// Cards handles credit cards and their faturas.
type Cards struct {
	api    *api.Client
	pub    Publisher
	logger *log.StructuredLogger
}

func NewCards(client *api.Client, pub Publisher, logger *log.Logger) *Cards {
	return &Cards{
		api:    client,
		pub:    orNoop(pub),
		logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentCards)),
	}
}

func (c *Cards) List(ctx context.Context, activeOnly bool) ([]core.CreditCard, error) {
	cards, err := c.api.CreditCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	if activeOnly {
		return core.ActiveCards(cards), nil
	}
	return cards, nil
}

func (c *Cards) Get(ctx context.Context, uuid string) (core.CreditCard, error) {
	card, err := c.api.CreditCard(ctx, uuid)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("get card %s: %w", uuid, err)
	}
	return card, nil
}

func (c *Cards) Flags(ctx context.Context) ([]core.CardFlag, error) {
	return c.api.CardFlags(ctx)
}

func (c *Cards) Create(ctx context.Context, in core.CardInput) (core.CreditCard, error) {
	if err := in.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	card, err := c.api.CreateCreditCard(ctx, in)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("create card: %w", err)
	}
	c.changed(ctx, log.OpCreate, events.ActionCreated, card.UUID, in.Limit.Cents)
	return card, nil
}

func (c *Cards) Update(ctx context.Context, uuid string, in core.CardInput) (core.CreditCard, error) {
	if err := in.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	card, err := c.api.UpdateCreditCard(ctx, uuid, in)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("update card %s: %w", uuid, err)
	}
	c.changed(ctx, log.OpUpdate, events.ActionUpdated, uuid, in.Limit.Cents)
	return card, nil
}

func (c *Cards) Delete(ctx context.Context, uuid string) error {
	if err := c.api.DeleteCreditCard(ctx, uuid); err != nil {
		return fmt.Errorf("delete card %s: %w", uuid, err)
	}
	c.changed(ctx, log.OpDelete, events.ActionDeleted, uuid, 0)
	return nil
}

func (c *Cards) Activate(ctx context.Context, uuid string) error {
	if err := c.api.ActivateCreditCard(ctx, uuid); err != nil {
		return fmt.Errorf("activate card %s: %w", uuid, err)
	}
	c.changed(ctx, log.OpActivate, events.ActionActivated, uuid, 0)
	return nil
}

func (c *Cards) Deactivate(ctx context.Context, uuid string) error {
	if err := c.api.DeactivateCreditCard(ctx, uuid); err != nil {
		return fmt.Errorf("deactivate card %s: %w", uuid, err)
	}
	c.changed(ctx, log.OpDeactivate, events.ActionDeactivated, uuid, 0)
	return nil
}

// Bills lists the faturas of a card in chronological order. Bills that come
// back without their card get the card's limit so the available limit is
// still meaningful.
func (c *Cards) Bills(ctx context.Context, cardUUID string) ([]core.Bill, error) {
	var (
		raws []core.RawBill
		card core.CreditCard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raws, err = c.api.Bills(gctx, cardUUID)
		return err
	})
	g.Go(func() error {
		var err error
		card, err = c.api.CreditCard(gctx, cardUUID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("bills of card %s: %w", cardUUID, err)
	}
	for i := range raws {
		if raws[i].CreditCard == nil {
			raws[i].CreditCard = &core.BillCard{UUID: card.UUID, Limit: card.Limit}
		}
	}
	return core.MapBills(raws), nil
}

// BillDetail is one fatura with its active purchases.
type BillDetail struct {
	Bill  core.Bill
	Items []core.BillItem
	Total core.Money
}

func (c *Cards) Bill(ctx context.Context, billUUID string) (BillDetail, error) {
	var (
		raw   core.RawBill
		items []core.RawBillItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = c.api.Bill(gctx, billUUID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = c.api.BillItems(gctx, billUUID)
		return err
	})
	if err := g.Wait(); err != nil {
		return BillDetail{}, fmt.Errorf("bill %s: %w", billUUID, err)
	}

	d := BillDetail{Bill: core.MapBill(raw), Items: core.ActiveBillItems(items)}
	for _, it := range d.Items {
		d.Total = d.Total.Add(it.Value)
	}
	return d, nil
}

func (c *Cards) PayBill(ctx context.Context, billUUID string, amount core.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if err := c.api.PayBill(ctx, billUUID, amount); err != nil {
		return fmt.Errorf("pay bill %s: %w", billUUID, err)
	}
	c.logger.LogLedgerChange(ctx, log.OpPay, "bill", billUUID, "", amount.Cents)
	announce(ctx, c.pub, events.CardChanged, events.ActionPaid, "bill", billUUID, nil)
	return nil
}

// AddBillItem records a purchase on an open bill. Installments of 2..24
// split the purchase; 0 is a single payment.
func (c *Cards) AddBillItem(ctx context.Context, in core.BillItemInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := c.api.CreateBillItem(ctx, in); err != nil {
		return fmt.Errorf("add item to bill %s: %w", in.BillUUID, err)
	}
	c.logger.LogLedgerChange(ctx, log.OpCreate, "bill_item", in.BillUUID, "", in.Value.Cents)
	announce(ctx, c.pub, events.CardChanged, events.ActionUpdated, "bill", in.BillUUID, nil)
	return nil
}

func (c *Cards) changed(ctx context.Context, op, action, uuid string, cents int64) {
	c.logger.LogLedgerChange(ctx, op, "card", uuid, "", cents)
	announce(ctx, c.pub, events.CardChanged, action, "card", uuid, nil)
}
