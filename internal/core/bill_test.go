package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapBill(t *testing.T) {
	raw := RawBill{
		UUID:       "b1",
		Value:      Money{Cents: 120_000},
		ValuePay:   Money{Cents: 20_000},
		Status:     BillClosePending,
		CloseDate:  "2025-03-05",
		OpenDate:   "2025-02-05",
		PayDate:    "2025-03-15",
		CreditCard: &BillCard{UUID: "card", Limit: Money{Cents: 500_000}},
	}
	b := MapBill(raw)

	assert.Equal(t, "Março", b.MonthName)
	assert.Equal(t, time.March, b.Month)
	assert.Equal(t, 2025, b.Year)
	assert.Equal(t, "Fechamento Pendente", b.Status)
	assert.Equal(t, "15/03/2025", b.DueDate)
	assert.Equal(t, "05/03/2025", b.CloseDate)
	assert.Equal(t, int64(380_000), b.AvailableLimit.Cents)
	assert.Equal(t, "card", b.CardUUID)

	noCard := MapBill(RawBill{Value: Money{Cents: 100}, Status: "WHATEVER"})
	assert.Equal(t, "Em aberto", noCard.Status)
	assert.Equal(t, int64(-100), noCard.AvailableLimit.Cents)
}

func TestMapBillsSorted(t *testing.T) {
	bills := MapBills([]RawBill{
		{UUID: "c", CloseDate: "2025-01-05"},
		{UUID: "a", CloseDate: "2024-12-05"},
		{UUID: "b", CloseDate: "2024-11-05"},
	})
	require.Len(t, bills, 3)
	assert.Equal(t, "b", bills[0].UUID)
	assert.Equal(t, "a", bills[1].UUID)
	assert.Equal(t, "c", bills[2].UUID)
}

func TestActiveBillItems(t *testing.T) {
	items := ActiveBillItems([]RawBillItem{
		{UUID: "1", Installments: "SIM", NumberInstallments: 3, RegistrationDate: "2025-03-01"},
		{UUID: "2", Installments: "sim", NumberInstallments: 1, Category: &Category{Description: "Lazer"}},
		{UUID: "3", Active: StatusDisable},
		{UUID: "4", Active: StatusDisabled},
		{UUID: "5", Installments: "nao", NumberInstallments: 4, Active: StatusActive},
	})
	require.Len(t, items, 3)

	assert.True(t, items[0].Installment)
	assert.Equal(t, Uncategorized, items[0].Category)
	assert.Equal(t, "01/03/2025", items[0].Date)

	assert.False(t, items[1].Installment)
	assert.Equal(t, "Lazer", items[1].Category)

	assert.False(t, items[2].Installment)
}

func TestBillItemInputValidate(t *testing.T) {
	good := BillItemInput{
		Value:        Money{Cents: 1},
		Description:  "Livro",
		Date:         "2025-03-01",
		CategoryUUID: "cat",
		CardUUID:     "card",
		BillUUID:     "bill",
	}
	require.NoError(t, good.Validate())

	split := good
	split.Installments = 24
	require.NoError(t, split.Validate())

	cases := []struct {
		mut  func(*BillItemInput)
		want error
	}{
		{func(b *BillItemInput) { b.Installments = 1 }, ErrInvalidInstallments},
		{func(b *BillItemInput) { b.Installments = 25 }, ErrInvalidInstallments},
		{func(b *BillItemInput) { b.Description = "ab" }, ErrShortDescription},
		{func(b *BillItemInput) { b.Value = Money{} }, ErrInvalidAmount},
		{func(b *BillItemInput) { b.Date = "" }, ErrInvalidDate},
		{func(b *BillItemInput) { b.CategoryUUID = "" }, ErrMissingCategory},
	}
	for i, tc := range cases {
		in := good
		tc.mut(&in)
		if err := in.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestInstallmentValue(t *testing.T) {
	assert.Equal(t, int64(3_333), InstallmentValue(Money{Cents: 10_000}, 3).Cents)
	assert.Equal(t, int64(10_000), InstallmentValue(Money{Cents: 10_000}, 0).Cents)
}

func TestMedalFor(t *testing.T) {
	assert.Equal(t, "medalha_ouro.png", MedalFor("ouro"))
	assert.Equal(t, "", MedalFor("MADEIRA"))
}
