package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the activation state the backend attaches to most records.
// Some endpoints return it as null, which decodes to the empty Status.
const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusDisable  Status = "DISABLE"
	StatusDisabled Status = "DISABLED"
)

type (
	Status string

	Bank struct {
		UUID string `json:"uuid"`
		Name string `json:"name"`
	}

	AccountType struct {
		UUID        string `json:"uuid"`
		Name        string `json:"name,omitempty"`
		Description string `json:"description,omitempty"`
	}

	Account struct {
		UUID    string      `json:"uuid"`
		Name    string      `json:"name"`
		Balance Money       `json:"balance"`
		Bank    Bank        `json:"bank"`
		Type    AccountType `json:"type"`
		Active  Status      `json:"active,omitempty"`
	}

	// AccountRef is the abbreviated account embedded in ledger rows.
	AccountRef struct {
		UUID    string `json:"uuid"`
		Name    string `json:"name,omitempty"`
		Balance Money  `json:"balance"`
	}

	Category struct {
		UUID        string `json:"uuid"`
		Description string `json:"description"`
		Earn        bool   `json:"earn"`
		Active      Status `json:"active,omitempty"`
		Icon        string `json:"icon,omitempty"`
	}

	// Transaction is one ledger row as returned by the backend. Expenses,
	// incomes and transfers share the shape; a transfer carries ForAccount.
	Transaction struct {
		UUID             string      `json:"uuid"`
		Value            Money       `json:"value"`
		Description      string      `json:"description"`
		RegistrationDate string      `json:"registrationDate,omitempty"`
		DateRegistration string      `json:"dateRegistration,omitempty"`
		PayDate          string      `json:"payDate,omitempty"`
		Category         *Category   `json:"category,omitempty"`
		Account          *AccountRef `json:"accounts,omitempty"`
		ForAccount       *AccountRef `json:"foraccounts,omitempty"`
		Active           Status      `json:"active,omitempty"`
	}

	// Despesa is an expense row, Receita an income row.
	Despesa = Transaction
	Receita = Transaction

	// Entry is the user input behind a despesa or receita.
	Entry struct {
		Value        Money
		Description  string
		Date         string // YYYY-MM-DD
		CategoryUUID string
		AccountUUID  string
	}

	// Transfer moves money between two of the user's accounts.
	Transfer struct {
		Entry
		ToAccountUUID string
	}

	AccountInput struct {
		Name     string
		Balance  Money
		BankUUID string
		TypeUUID string
	}

	CategoryInput struct {
		Description string
		Earn        bool
	}

	CardFlag struct {
		UUID string `json:"uuid"`
		Name string `json:"name"`
	}

	CreditCard struct {
		UUID        string   `json:"uuid"`
		Description string   `json:"description"`
		Flag        CardFlag `json:"flags"`
		Limit       Money    `json:"limite"`
		CloseDate   string   `json:"closeDate"`
		ExpiryDate  string   `json:"expiryDate"`
		Active      Status   `json:"active,omitempty"`
	}

	CardInput struct {
		Description string
		FlagUUID    string
		Limit       Money
		CloseDate   string
		ExpiryDate  string
	}

	Mission struct {
		UUID        string  `json:"uuid"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Value       float64 `json:"value"`
	}

	Achievement struct {
		UUID        string  `json:"uuid"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Completed   bool    `json:"completed"`
		CompletedAt *string `json:"completedAt"`
	}

	Authority struct {
		Authority string `json:"authority"`
	}

	UserInfo struct {
		UUID        string      `json:"uuid"`
		Name        string      `json:"name"`
		Role        string      `json:"role"`
		Active      Status      `json:"active"`
		Rank        string      `json:"rank"`
		Authorities []Authority `json:"authorities"`
		XP          int64       `json:"xp"`
	}

	Registration struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Number   string `json:"number"`
		Password string `json:"password"`
		Role     int    `json:"role"`
	}

	ProfileUpdate struct {
		Name            string `json:"name,omitempty"`
		Email           string `json:"email,omitempty"`
		Phone           string `json:"phone,omitempty"`
		Password        string `json:"password,omitempty"`
		CurrentPassword string `json:"currentPassword,omitempty"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrShortDescription    = errors.New("description must have at least 3 characters")
	ErrLongDescription     = errors.New("description too long (max 200 characters)")
	ErrInvalidDate         = errors.New("invalid date")
	ErrMissingCategory     = errors.New("category is required")
	ErrMissingAccount      = errors.New("account is required")
	ErrSameAccount         = errors.New("destination must differ from origin account")
	ErrInactiveDestination = errors.New("destination account is not active")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrNotFound            = errors.New("record not found")
	ErrInsufficientBalance = errors.New("amount exceeds origin account balance")
	ErrInvalidInstallments = errors.New("installments must be between 2 and 24")
	ErrMissingCard         = errors.New("credit card is required")
	ErrMissingBill         = errors.New("bill is required")
	ErrEmptyName           = errors.New("name is required")
	ErrMissingBank         = errors.New("bank is required")
	ErrMissingAccountType  = errors.New("account type is required")
)

// IsActive reports whether a record with the given status should be shown.
// The backend returns null for active ledger rows, so empty counts as active.
func IsActive(s Status) bool {
	return s == StatusActive || s == ""
}

// IsActive reports whether the account is explicitly ACTIVE. Accounts are
// stricter than ledger rows: no status means not selectable.
func (a Account) IsActive() bool {
	return a.Active == StatusActive
}

// IsTransfer reports whether the row moves money to another account.
func (t Transaction) IsTransfer() bool {
	return t.ForAccount != nil && t.ForAccount.UUID != ""
}

// IsIncome reports whether the row's category is an earning category.
func (t Transaction) IsIncome() bool {
	return t.Category != nil && t.Category.Earn
}

// Date returns the row's date as YYYY-MM-DD, or "" when it has none.
func (t Transaction) Date() string {
	for _, s := range []string{t.RegistrationDate, t.DateRegistration, t.PayDate} {
		if d := NormalizeISODate(s); d != "" {
			return d
		}
	}
	return ""
}

// CategoryName returns the category description or the fallback label.
func (t Transaction) CategoryName() string {
	if t.Category == nil || strings.TrimSpace(t.Category.Description) == "" {
		return Uncategorized
	}
	return t.Category.Description
}

func (e Entry) Validate() error {
	if err := e.Value.Validate(); err != nil {
		return err
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > 200 {
		return ErrLongDescription
	}
	if _, err := time.Parse(isoDate, e.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.CategoryUUID) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(e.AccountUUID) == "" {
		return ErrMissingAccount
	}
	return nil
}

// Validate checks the transfer against the user's current accounts.
func (t Transfer) Validate(accounts []Account) error {
	if err := t.Entry.Validate(); err != nil {
		return err
	}
	if len([]rune(strings.TrimSpace(t.Description))) < 3 {
		return ErrShortDescription
	}
	if t.ToAccountUUID == "" {
		return ErrMissingAccount
	}
	if t.ToAccountUUID == t.AccountUUID {
		return ErrSameAccount
	}

	var origin, dest *Account
	for i := range accounts {
		switch accounts[i].UUID {
		case t.AccountUUID:
			origin = &accounts[i]
		case t.ToAccountUUID:
			dest = &accounts[i]
		}
	}
	if origin == nil || dest == nil {
		return ErrUnknownAccount
	}
	if !dest.IsActive() {
		return ErrInactiveDestination
	}
	if t.Value.Cents > origin.Balance.Cents {
		return ErrInsufficientBalance
	}
	return nil
}

func (a AccountInput) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Balance.Cents < 0 {
		return ErrInvalidAmount
	}
	if a.BankUUID == "" {
		return ErrMissingBank
	}
	if a.TypeUUID == "" {
		return ErrMissingAccountType
	}
	return nil
}

func (c CategoryInput) Validate() error {
	if strings.TrimSpace(c.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (c CardInput) Validate() error {
	if strings.TrimSpace(c.Description) == "" {
		return ErrEmptyDescription
	}
	if err := c.Limit.Validate(); err != nil {
		return err
	}
	if _, err := time.Parse(isoDate, c.CloseDate); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse(isoDate, c.ExpiryDate); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ActiveAccounts keeps accounts explicitly marked ACTIVE.
func ActiveAccounts(in []Account) []Account {
	out := make([]Account, 0, len(in))
	for _, a := range in {
		if a.IsActive() {
			out = append(out, a)
		}
	}
	return out
}

// ActiveTransactions keeps ledger rows whose status is active or unset.
func ActiveTransactions(in []Transaction) []Transaction {
	out := make([]Transaction, 0, len(in))
	for _, t := range in {
		if IsActive(t.Active) {
			out = append(out, t)
		}
	}
	return out
}

// ActiveCards keeps cards that are not deactivated.
func ActiveCards(in []CreditCard) []CreditCard {
	out := make([]CreditCard, 0, len(in))
	for _, c := range in {
		if IsActive(c.Active) {
			out = append(out, c)
		}
	}
	return out
}
