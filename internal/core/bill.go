package core

import (
	"sort"
	"strings"
	"time"
)

// Backend bill states.
const (
	BillClosePending = "CLOSE_PENDING"
	BillPaid         = "PAID"
	BillFuture       = "FUTURE_BILLS"
	BillOpen         = "OPEN"
)

var billStatusLabels = map[string]string{
	BillClosePending: "Fechamento Pendente",
	BillPaid:         "Pago",
	BillFuture:       "Futura",
	BillOpen:         "Em aberto",
}

type (
	// RawBill is a credit-card bill (fatura) as the backend sends it.
	RawBill struct {
		UUID       string    `json:"uuid"`
		Value      Money     `json:"value"`
		ValuePay   Money     `json:"valuepay"`
		Status     string    `json:"status"`
		CloseDate  string    `json:"closeDate"`
		OpenDate   string    `json:"openDate"`
		PayDate    string    `json:"payDate"`
		CreditCard *BillCard `json:"creditCard,omitempty"`
		Active     Status    `json:"active,omitempty"`
	}

	BillCard struct {
		UUID  string `json:"uuid"`
		Limit Money  `json:"limite"`
	}

	// Bill is a fatura prepared for display.
	Bill struct {
		UUID           string
		MonthName      string
		Month          time.Month
		Year           int
		Value          Money
		Paid           Money
		DueDate        string
		CloseDate      string
		OpenDate       string
		Status         string
		StatusCode     string
		AvailableLimit Money
		CardUUID       string
	}

	RawBillItem struct {
		UUID               string    `json:"uuid"`
		Value              Money     `json:"value"`
		Description        string    `json:"description"`
		RegistrationDate   string    `json:"registrationDate"`
		Category           *Category `json:"category,omitempty"`
		Active             Status    `json:"active,omitempty"`
		NumberInstallments int       `json:"numberinstallments"`
		Installments       string    `json:"installments,omitempty"`
	}

	BillItem struct {
		UUID         string
		Description  string
		Value        Money
		Date         string
		Category     string
		Installment  bool
		Installments int
		Active       Status
	}

	// BillItemInput is a purchase added to an open bill.
	BillItemInput struct {
		Value        Money
		Description  string
		Date         string
		CategoryUUID string
		CardUUID     string
		BillUUID     string
		Installments int // 0 for a single payment
	}
)

// BillStatusLabel translates a backend bill state; unknown states read as open.
func BillStatusLabel(status string) string {
	if l, ok := billStatusLabels[status]; ok {
		return l
	}
	return billStatusLabels[BillOpen]
}

// MapBill prepares raw for display. The bill's month is the month it closes.
func MapBill(raw RawBill) Bill {
	b := Bill{
		UUID:       raw.UUID,
		Value:      raw.Value,
		Paid:       raw.ValuePay,
		DueDate:    FormatBRDate(raw.PayDate),
		CloseDate:  FormatBRDate(raw.CloseDate),
		OpenDate:   FormatBRDate(raw.OpenDate),
		Status:     BillStatusLabel(raw.Status),
		StatusCode: raw.Status,
	}
	if t, ok := ParseISODate(raw.CloseDate); ok {
		b.Month = t.Month()
		b.Year = t.Year()
		b.MonthName = MonthName(t.Month())
	}
	var limit Money
	if raw.CreditCard != nil {
		limit = raw.CreditCard.Limit
		b.CardUUID = raw.CreditCard.UUID
	}
	b.AvailableLimit = limit.Sub(raw.Value)
	return b
}

// MapBills maps and orders bills chronologically.
func MapBills(raws []RawBill) []Bill {
	out := make([]Bill, len(raws))
	for i, r := range raws {
		out[i] = MapBill(r)
	}
	SortBills(out)
	return out
}

func SortBills(bills []Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		if bills[i].Year != bills[j].Year {
			return bills[i].Year < bills[j].Year
		}
		return bills[i].Month < bills[j].Month
	})
}

func MapBillItem(raw RawBillItem) BillItem {
	cat := Uncategorized
	if raw.Category != nil && strings.TrimSpace(raw.Category.Description) != "" {
		cat = raw.Category.Description
	}
	return BillItem{
		UUID:         raw.UUID,
		Description:  raw.Description,
		Value:        raw.Value,
		Date:         FormatBRDate(raw.RegistrationDate),
		Category:     cat,
		Installment:  strings.EqualFold(raw.Installments, "sim") && raw.NumberInstallments > 1,
		Installments: raw.NumberInstallments,
		Active:       raw.Active,
	}
}

// ActiveBillItems drops disabled items and maps the rest. Active items come
// back with a null status, so only explicit disables are filtered.
func ActiveBillItems(raws []RawBillItem) []BillItem {
	out := make([]BillItem, 0, len(raws))
	for _, r := range raws {
		if r.Active == StatusDisable || r.Active == StatusDisabled {
			continue
		}
		out = append(out, MapBillItem(r))
	}
	return out
}

// InstallmentValue is the per-installment amount of a split purchase.
func InstallmentValue(total Money, n int) Money {
	if n <= 1 {
		return total
	}
	return Money{Cents: total.Cents / int64(n)}
}

func (in BillItemInput) Validate() error {
	if err := in.Value.Validate(); err != nil {
		return err
	}
	if len([]rune(strings.TrimSpace(in.Description))) < 3 {
		return ErrShortDescription
	}
	if _, err := time.Parse(isoDate, in.Date); err != nil {
		return ErrInvalidDate
	}
	if in.CategoryUUID == "" {
		return ErrMissingCategory
	}
	if in.CardUUID == "" {
		return ErrMissingCard
	}
	if in.BillUUID == "" {
		return ErrMissingBill
	}
	if in.Installments != 0 && (in.Installments < 2 || in.Installments > 24) {
		return ErrInvalidInstallments
	}
	return nil
}
