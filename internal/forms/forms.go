// Package forms decodes and validates the HTML forms the pages post. Each
// Parse function reads raw values, checks them with struct tags and returns
// the core input type the services expect.
package forms

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"carteira/internal/core"
)

// Values is anything that yields form values by name: url.Values or the
// http package's body parser. Parsers trim what they read, except passwords.
type Values interface {
	Get(key string) string
}

var (
	once     sync.Once
	validate *validator.Validate
)

func v() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
			_, err := core.ParseMoney(fl.Field().String())
			return err == nil
		})
		// amount is money that may also be zero or left blank.
		_ = validate.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" || isZero(s) {
				return true
			}
			_, err := core.ParseMoney(s)
			return err == nil
		})
	})
	return validate
}

func isZero(s string) bool {
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	s = strings.NewReplacer(",", "", ".", "", "0", "").Replace(s)
	return s == ""
}

func get(vals Values, key string) string {
	return strings.TrimSpace(vals.Get(key))
}

// date accepts timestamps as well as plain dates; unreadable input is kept
// so the datetime rule reports it.
func date(vals Values, key string) string {
	raw := get(vals, key)
	if d := core.NormalizeISODate(raw); d != "" {
		return d
	}
	return raw
}

func checked(vals Values, key string) bool {
	switch strings.ToLower(get(vals, key)) {
	case "on", "true", "1", "sim", "yes":
		return true
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// money is only called on values that passed the money/amount tags.
func money(s string) core.Money {
	m, _ := core.ParseMoney(s)
	return m
}

type EntryForm struct {
	Value       string `form:"value" validate:"required,money"`
	Description string `form:"description" validate:"required,max=200"`
	Date        string `form:"date" validate:"required,datetime=2006-01-02"`
	Category    string `form:"category" validate:"required"`
	Account     string `form:"account" validate:"required"`
}

func (f EntryForm) entry() core.Entry {
	return core.Entry{
		Value:        money(f.Value),
		Description:  f.Description,
		Date:         f.Date,
		CategoryUUID: f.Category,
		AccountUUID:  f.Account,
	}
}

// ParseEntry reads a despesa or receita form.
func ParseEntry(vals Values) (core.Entry, error) {
	f := EntryForm{
		Value:       get(vals, "value"),
		Description: get(vals, "description"),
		Date:        date(vals, "date"),
		Category:    get(vals, "category"),
		Account:     get(vals, "account"),
	}
	if err := v().Struct(f); err != nil {
		return core.Entry{}, err
	}
	return f.entry(), nil
}

type TransferForm struct {
	Value       string `form:"value" validate:"required,money"`
	Description string `form:"description" validate:"required,min=3,max=200"`
	Date        string `form:"date" validate:"required,datetime=2006-01-02"`
	Category    string `form:"category" validate:"required"`
	Account     string `form:"account" validate:"required"`
	ToAccount   string `form:"to_account" validate:"required,nefield=Account"`
}

// ParseTransfer reads the transfer modal. The origin account comes from the
// URL, not the form.
func ParseTransfer(vals Values, fromAccount string) (core.Transfer, error) {
	f := TransferForm{
		Value:       get(vals, "value"),
		Description: get(vals, "description"),
		Date:        date(vals, "date"),
		Category:    get(vals, "category"),
		Account:     fromAccount,
		ToAccount:   get(vals, "to_account"),
	}
	if err := v().Struct(f); err != nil {
		return core.Transfer{}, err
	}
	e := EntryForm{Value: f.Value, Description: f.Description, Date: f.Date, Category: f.Category, Account: f.Account}
	return core.Transfer{Entry: e.entry(), ToAccountUUID: f.ToAccount}, nil
}

type AccountForm struct {
	Name    string `form:"name" validate:"required,max=100"`
	Balance string `form:"balance" validate:"amount"`
	Bank    string `form:"bank" validate:"required"`
	Type    string `form:"type" validate:"required"`
}

func ParseAccount(vals Values) (core.AccountInput, error) {
	f := AccountForm{
		Name:    get(vals, "name"),
		Balance: get(vals, "balance"),
		Bank:    get(vals, "bank"),
		Type:    get(vals, "type"),
	}
	if err := v().Struct(f); err != nil {
		return core.AccountInput{}, err
	}
	return core.AccountInput{Name: f.Name, Balance: money(f.Balance), BankUUID: f.Bank, TypeUUID: f.Type}, nil
}

type CategoryForm struct {
	Description string `form:"description" validate:"required,max=100"`
	Earn        bool   `form:"earn"`
}

func ParseCategory(vals Values) (core.CategoryInput, error) {
	f := CategoryForm{Description: get(vals, "description"), Earn: checked(vals, "earn")}
	if err := v().Struct(f); err != nil {
		return core.CategoryInput{}, err
	}
	return core.CategoryInput{Description: f.Description, Earn: f.Earn}, nil
}

type CardForm struct {
	Description string `form:"description" validate:"required,max=100"`
	Flag        string `form:"flag" validate:"required"`
	Limit       string `form:"limit" validate:"required,money"`
	CloseDate   string `form:"close_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate  string `form:"expiry_date" validate:"required,datetime=2006-01-02"`
}

func ParseCard(vals Values) (core.CardInput, error) {
	f := CardForm{
		Description: get(vals, "description"),
		Flag:        get(vals, "flag"),
		Limit:       get(vals, "limit"),
		CloseDate:   date(vals, "close_date"),
		ExpiryDate:  date(vals, "expiry_date"),
	}
	if err := v().Struct(f); err != nil {
		return core.CardInput{}, err
	}
	return core.CardInput{
		Description: f.Description,
		FlagUUID:    f.Flag,
		Limit:       money(f.Limit),
		CloseDate:   f.CloseDate,
		ExpiryDate:  f.ExpiryDate,
	}, nil
}

type BillItemForm struct {
	Value        string `form:"value" validate:"required,money"`
	Description  string `form:"description" validate:"required,min=3,max=200"`
	Date         string `form:"date" validate:"required,datetime=2006-01-02"`
	Category     string `form:"category" validate:"required"`
	Card         string `form:"card" validate:"required"`
	Installment  bool   `form:"installment"`
	Installments int    `form:"installments" validate:"required_if=Installment true,omitempty,min=2,max=24"`
}

// ParseBillItem reads a purchase for billUUID. The installment count is
// only read when the installment box is ticked.
func ParseBillItem(vals Values, billUUID string) (core.BillItemInput, error) {
	f := BillItemForm{
		Value:       get(vals, "value"),
		Description: get(vals, "description"),
		Date:        date(vals, "date"),
		Category:    get(vals, "category"),
		Card:        get(vals, "card"),
		Installment: checked(vals, "installment"),
	}
	if f.Installment {
		f.Installments = atoi(get(vals, "installments"))
	}
	if err := v().Struct(f); err != nil {
		return core.BillItemInput{}, err
	}
	return core.BillItemInput{
		Value:        money(f.Value),
		Description:  f.Description,
		Date:         f.Date,
		CategoryUUID: f.Category,
		CardUUID:     f.Card,
		BillUUID:     billUUID,
		Installments: f.Installments,
	}, nil
}

type PaymentForm struct {
	Amount string `form:"amount" validate:"required,money"`
}

func ParsePayment(vals Values) (core.Money, error) {
	f := PaymentForm{Amount: get(vals, "amount")}
	if err := v().Struct(f); err != nil {
		return core.Money{}, err
	}
	return money(f.Amount), nil
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func ParseLogin(vals Values) (LoginForm, error) {
	f := LoginForm{Email: strings.ToLower(get(vals, "email")), Password: vals.Get("password")}
	return f, v().Struct(f)
}

type SignupForm struct {
	Name     string `form:"name" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email"`
	Number   string `form:"number" validate:"omitempty,max=20"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"confirm" validate:"eqfield=Password"`
}

func ParseSignup(vals Values) (core.Registration, error) {
	f := SignupForm{
		Name:     get(vals, "name"),
		Email:    strings.ToLower(get(vals, "email")),
		Number:   get(vals, "number"),
		Password: vals.Get("password"),
		Confirm:  vals.Get("confirm"),
	}
	if err := v().Struct(f); err != nil {
		return core.Registration{}, err
	}
	return core.Registration{Name: f.Name, Email: f.Email, Number: f.Number, Password: f.Password}, nil
}

type ForgotForm struct {
	Email string `form:"email" validate:"required,email"`
}

func ParseForgot(vals Values) (string, error) {
	f := ForgotForm{Email: strings.ToLower(get(vals, "email"))}
	return f.Email, v().Struct(f)
}

type ResetForm struct {
	Token    string `form:"token" validate:"required"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"confirm" validate:"eqfield=Password"`
}

func ParseReset(vals Values) (ResetForm, error) {
	f := ResetForm{Token: get(vals, "token"), Password: vals.Get("password"), Confirm: vals.Get("confirm")}
	return f, v().Struct(f)
}

type ProfileForm struct {
	Name            string `form:"name" validate:"omitempty,max=100"`
	Email           string `form:"email" validate:"omitempty,email"`
	Phone           string `form:"phone" validate:"omitempty,max=20"`
	Password        string `form:"password" validate:"omitempty,min=6"`
	CurrentPassword string `form:"current_password" validate:"required_with=Password"`
}

func ParseProfile(vals Values) (core.ProfileUpdate, error) {
	f := ProfileForm{
		Name:            get(vals, "name"),
		Email:           strings.ToLower(get(vals, "email")),
		Phone:           get(vals, "phone"),
		Password:        vals.Get("password"),
		CurrentPassword: vals.Get("current_password"),
	}
	if err := v().Struct(f); err != nil {
		return core.ProfileUpdate{}, err
	}
	return core.ProfileUpdate(f), nil
}

type RangeForm struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ParseRange reads an optional from/to date filter.
func ParseRange(vals Values) (from, to string, err error) {
	f := RangeForm{From: date(vals, "from"), To: date(vals, "to")}
	if err := v().Struct(f); err != nil {
		return "", "", err
	}
	return f.From, f.To, nil
}
