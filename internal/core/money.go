// Package core holds the finance domain shared by the web front-end and the
// worker: ledger rows, accounts, cards and bills, plus the pure reshaping the
// pages need (classification, chart aggregates, bill mapping).
//
// Amounts are kept in cents. The backend speaks JSON numbers with two
// decimals; Money converts at the boundary through shopspring/decimal so no
// float rounding leaks into sums.
package core

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// NewMoney returns an amount from a whole-cents value.
func NewMoney(cents int64) Money { return Money{Cents: cents} }

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }

// Decimal returns the amount in reais.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount in reais for chart payloads.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		m.Cents = 0
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Cents = d.Mul(hundred).Round(0).IntPart()
	return nil
}

// ParseDecimalToCents converts user input to cents, rounding half-up on the
// third decimal. Both "1234.56" and "1.234,56" are accepted; a leading "R$"
// is ignored. Zero and negative amounts are rejected.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(decimal.NewFromInt(1<<62)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ParseMoney is ParseDecimalToCents wrapped in Money.
func ParseMoney(s string) (Money, error) {
	c, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: c}, nil
}

// FormatBRL renders the amount the way pt-BR currency formatting does,
// e.g. "R$ 1.234,56" and "-R$ 10,00".
func FormatBRL(m Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("R$ ")
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}
