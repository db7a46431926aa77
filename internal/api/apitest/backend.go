// Package apitest runs an in-memory stand-in for the finance REST backend
// on an httptest server. It keeps enough state for page and service tests
// to create, list and delete records, and records every request it sees.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"carteira/internal/core"
)

const (
	Token    = "test-token"
	Email    = "ana@example.com"
	Password = "segredo123"
)

// Request is one call the backend received.
type Request struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

type Backend struct {
	mu sync.Mutex

	User         core.UserInfo
	Accounts     []core.Account
	Categories   []core.Category
	Ledger       []core.Transaction
	Cards        []core.CreditCard
	Flags        []core.CardFlag
	Banks        []core.Bank
	AccountTypes []core.AccountType
	Bills        map[string][]core.RawBill     // by card uuid
	BillItems    map[string][]core.RawBillItem // by bill uuid
	Missions     []core.Mission
	Achievements []core.Achievement

	requests []Request
	failures map[string]int
	seq      int

	server *httptest.Server
}

// New starts a seeded backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := Seeded()
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// Seeded returns backend state without starting a server.
func Seeded() *Backend {
	food := core.Category{UUID: "cat-food", Description: "Alimentação", Active: core.StatusActive}
	salary := core.Category{UUID: "cat-salary", Description: "Salário", Earn: true, Active: core.StatusActive}
	transfer := core.Category{UUID: "cat-transfer", Description: "Transferências", Active: core.StatusActive}
	old := core.Category{UUID: "cat-old", Description: "Antiga", Active: core.StatusDisable}

	nubank := core.Account{UUID: "acc-nubank", Name: "Nubank", Balance: core.NewMoney(150_000),
		Bank: core.Bank{UUID: "bank-nu", Name: "Nubank"}, Type: core.AccountType{UUID: "type-cc", Name: "Corrente"}, Active: core.StatusActive}
	itau := core.Account{UUID: "acc-itau", Name: "Itaú", Balance: core.NewMoney(20_000),
		Bank: core.Bank{UUID: "bank-itau", Name: "Itaú"}, Type: core.AccountType{UUID: "type-cc", Name: "Corrente"}, Active: core.StatusActive}
	closed := core.Account{UUID: "acc-closed", Name: "Encerrada", Active: core.StatusInactive}

	ref := func(a core.Account) *core.AccountRef {
		return &core.AccountRef{UUID: a.UUID, Name: a.Name, Balance: a.Balance}
	}
	cat := func(c core.Category) *core.Category { return &c }

	return &Backend{
		User:       core.UserInfo{UUID: "user-1", Name: "Ana", Role: "USER", Active: core.StatusActive, Rank: "OURO", XP: 420},
		Accounts:   []core.Account{nubank, itau, closed},
		Categories: []core.Category{food, salary, transfer, old},
		Ledger: []core.Transaction{
			{UUID: "tx-1", Value: core.NewMoney(500_000), Description: "Salário março", DateRegistration: "2025-03-05", Category: cat(salary), Account: ref(nubank)},
			{UUID: "tx-2", Value: core.NewMoney(12_050), Description: "Mercado", PayDate: "2025-03-07", Category: cat(food), Account: ref(nubank)},
			{UUID: "tx-3", Value: core.NewMoney(10_000), Description: "Reserva", RegistrationDate: "2025-03-08", Category: cat(transfer), Account: ref(nubank), ForAccount: ref(itau)},
		},
		Cards: []core.CreditCard{
			{UUID: "card-1", Description: "Roxinho", Flag: core.CardFlag{UUID: "flag-mc", Name: "Mastercard"}, Limit: core.NewMoney(500_000), CloseDate: "2025-03-05", ExpiryDate: "2030-01-01", Active: core.StatusActive},
		},
		Flags:        []core.CardFlag{{UUID: "flag-mc", Name: "Mastercard"}, {UUID: "flag-visa", Name: "Visa"}},
		Banks:        []core.Bank{{UUID: "bank-nu", Name: "Nubank"}, {UUID: "bank-itau", Name: "Itaú"}},
		AccountTypes: []core.AccountType{{UUID: "type-cc", Name: "Corrente"}, {UUID: "type-pp", Name: "Poupança"}},
		Bills: map[string][]core.RawBill{
			"card-1": {
				{UUID: "bill-apr", Value: core.NewMoney(0), Status: core.BillFuture, CloseDate: "2025-04-05", OpenDate: "2025-03-06", PayDate: "2025-04-15", CreditCard: &core.BillCard{UUID: "card-1", Limit: core.NewMoney(500_000)}},
				{UUID: "bill-mar", Value: core.NewMoney(80_000), Status: core.BillOpen, CloseDate: "2025-03-05", OpenDate: "2025-02-06", PayDate: "2025-03-15", CreditCard: &core.BillCard{UUID: "card-1", Limit: core.NewMoney(500_000)}},
			},
		},
		BillItems: map[string][]core.RawBillItem{
			"bill-mar": {
				{UUID: "item-1", Value: core.NewMoney(60_000), Description: "Notebook", RegistrationDate: "2025-02-10", Category: cat(food), Installments: "sim", NumberInstallments: 10},
				{UUID: "item-2", Value: core.NewMoney(20_000), Description: "Cinema", RegistrationDate: "2025-02-12"},
				{UUID: "item-3", Value: core.NewMoney(5_000), Description: "Estornado", Active: core.StatusDisable},
			},
		},
		Missions:     []core.Mission{{UUID: "m-1", Title: "Primeira despesa", Description: "Registre uma despesa", Value: 50}},
		Achievements: []core.Achievement{{UUID: "a-1", Title: "Poupador", Description: "Economize 10%", Completed: true}},
		failures:     map[string]int{},
	}
}

// URL is the base URL to hand to api.New.
func (b *Backend) URL() string { return b.server.URL }

// Handler exposes the routes for tests that host the backend themselves.
func (b *Backend) Handler() http.Handler { return b.routes() }

// Fail makes every "METHOD /path" call answer with status until cleared
// with status 0.
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = status
}

// Requests returns a copy of every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// LastRequest returns the latest request matching method and path.
func (b *Backend) LastRequest(method, path string) (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if r := b.requests[i]; r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Request{}, false
}

// Snapshot returns a copy of the ledger.
func (b *Backend) Snapshot() []core.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.Transaction(nil), b.Ledger...)
}

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-new-%d", prefix, b.seq)
}

var public = map[string]bool{
	"POST /users/login":          true,
	"POST /users/register":       true,
	"POST /auth/forgot-password": true,
	"POST /auth/reset-password":  true,
}

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users/login", b.login)
	mux.HandleFunc("POST /users/register", b.noContent)
	mux.HandleFunc("POST /auth/forgot-password", b.noContent)
	mux.HandleFunc("POST /auth/reset-password", b.noContent)
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.User) })
	mux.HandleFunc("PUT /users/me", b.updateProfile)
	mux.HandleFunc("GET /missions", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.Missions) })
	mux.HandleFunc("GET /archivement/arch", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.Achievements) })

	mux.HandleFunc("GET /accounts", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.Accounts) })
	mux.HandleFunc("POST /accounts/create", b.saveAccount)
	mux.HandleFunc("PUT /accounts/{id}", b.saveAccount)
	mux.HandleFunc("DELETE /accounts/deactivate/{id}", b.setAccountStatus(core.StatusInactive))
	mux.HandleFunc("PUT /accounts/activate/{id}", b.setAccountStatus(core.StatusActive))
	mux.HandleFunc("GET /accounts/total-balance", b.totalBalance)
	mux.HandleFunc("GET /banks", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.Banks) })
	mux.HandleFunc("GET /account-types", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.AccountTypes) })

	mux.HandleFunc("GET /category", b.listCategories)
	mux.HandleFunc("POST /category", b.saveCategory)
	mux.HandleFunc("PUT /category/{id}", b.saveCategory)

	mux.HandleFunc("GET /expense", b.listLedger(false))
	mux.HandleFunc("GET /expense/search", b.listLedger(false))
	mux.HandleFunc("POST /expense/create", b.saveEntry)
	mux.HandleFunc("PUT /expense/{id}", b.saveEntry)
	mux.HandleFunc("DELETE /expense/{id}", b.deleteEntry)
	mux.HandleFunc("GET /reciphe", b.listLedger(true))
	mux.HandleFunc("GET /reciphe/search", b.listLedger(true))
	mux.HandleFunc("GET /reciphe/total", b.incomeTotal)
	mux.HandleFunc("POST /reciphe/create", b.saveEntry)
	mux.HandleFunc("PUT /reciphe/{id}", b.saveEntry)
	mux.HandleFunc("DELETE /reciphe/{id}", b.deleteEntry)
	mux.HandleFunc("POST /transactions/create", b.saveEntry)

	mux.HandleFunc("GET /flags", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.Flags) })
	mux.HandleFunc("GET /creditCard", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.Cards) })
	mux.HandleFunc("GET /creditCard/{id}", b.getCard)
	mux.HandleFunc("POST /creditCard", b.saveCard)
	mux.HandleFunc("PUT /creditCard/{id}", b.saveCard)
	mux.HandleFunc("DELETE /creditCard/{id}", b.deleteCard)
	mux.HandleFunc("DELETE /creditCard/deactivate/{id}", b.setCardStatus(core.StatusInactive))
	mux.HandleFunc("PUT /creditCard/activate/{id}", b.setCardStatus(core.StatusActive))
	mux.HandleFunc("GET /bill/{card}", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.Bills[r.PathValue("card")]) })
	mux.HandleFunc("GET /creditCardBill/{id}", b.getBill)
	mux.HandleFunc("GET /creditCardBill/bill/{id}", func(w http.ResponseWriter, r *http.Request) { b.reply(w, b.BillItems[r.PathValue("id")]) })
	mux.HandleFunc("POST /bill/payment/{id}", b.payBill)
	mux.HandleFunc("POST /creditCardBill/create", b.addBillItem)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		b.mu.Lock()
		defer b.mu.Unlock()

		b.requests = append(b.requests, Request{
			Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery,
			Auth: r.Header.Get("Authorization"), Body: body,
		})
		if status, ok := b.failures[r.Method+" "+r.URL.Path]; ok {
			writeJSON(w, status, map[string]string{"message": "falha simulada"})
			return
		}
		if !public[r.Method+" "+r.URL.Path] && r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token inválido"})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// Handlers below run with b.mu held.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) reply(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func (b *Backend) noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	if !decode(r, &in) || in.Email != Email || in.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Credenciais inválidas"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": Token})
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in core.ProfileUpdate
	if !decode(r, &in) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "payload inválido"})
		return
	}
	if in.Name != "" {
		b.User.Name = in.Name
	}
	b.reply(w, b.User)
}

type uuidRef struct {
	UUID string `json:"uuid"`
}

func (b *Backend) account(id string) *core.Account {
	for i := range b.Accounts {
		if b.Accounts[i].UUID == id {
			return &b.Accounts[i]
		}
	}
	return nil
}

func (b *Backend) saveAccount(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name    string     `json:"name"`
		Balance core.Money `json:"balance"`
		Bank    uuidRef    `json:"bank"`
		Type    uuidRef    `json:"type"`
	}
	if !decode(r, &in) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "payload inválido"})
		return
	}
	acc := core.Account{Name: in.Name, Balance: in.Balance, Bank: core.Bank{UUID: in.Bank.UUID}, Type: core.AccountType{UUID: in.Type.UUID}, Active: core.StatusActive}
	if id := r.PathValue("id"); id != "" {
		existing := b.account(id)
		if existing == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "conta não encontrada"})
			return
		}
		acc.UUID = id
		*existing = acc
	} else {
		acc.UUID = b.nextID("acc")
		b.Accounts = append(b.Accounts, acc)
	}
	b.reply(w, acc)
}

func (b *Backend) setAccountStatus(s core.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc := b.account(r.PathValue("id"))
		if acc == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "conta não encontrada"})
			return
		}
		acc.Active = s
		b.reply(w, map[string]string{"message": "ok"})
	}
}

func (b *Backend) totalBalance(w http.ResponseWriter, _ *http.Request) {
	var total core.Money
	for _, a := range b.Accounts {
		total = total.Add(a.Balance)
	}
	b.reply(w, map[string]core.Money{"total": total})
}

func (b *Backend) incomeTotal(w http.ResponseWriter, _ *http.Request) {
	var total core.Money
	for _, t := range b.Ledger {
		if t.IsIncome() && !t.IsTransfer() {
			total = total.Add(t.Value)
		}
	}
	b.reply(w, map[string]core.Money{"total": total})
}

func (b *Backend) listCategories(w http.ResponseWriter, r *http.Request) {
	out := b.Categories
	if earn := r.URL.Query().Get("earn"); earn != "" {
		out = core.FilterCategories(out, earn == "1")
	}
	b.reply(w, out)
}

func (b *Backend) category(id string) *core.Category {
	for i := range b.Categories {
		if b.Categories[i].UUID == id {
			c := b.Categories[i]
			return &c
		}
	}
	return nil
}

func (b *Backend) saveCategory(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Description string `json:"description"`
		Earn        bool   `json:"earn"`
	}
	if !decode(r, &in) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "payload inválido"})
		return
	}
	c := core.Category{Description: in.Description, Earn: in.Earn, Active: core.StatusActive}
	if id := r.PathValue("id"); id != "" {
		c.UUID = id
		for i := range b.Categories {
			if b.Categories[i].UUID == id {
				b.Categories[i] = c
			}
		}
	} else {
		c.UUID = b.nextID("cat")
		b.Categories = append(b.Categories, c)
	}
	b.reply(w, c)
}

// listLedger serves the unified ledger (all) or expenses only.
func (b *Backend) listLedger(all bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from := q.Get("from") + q.Get("fromDate")
		to := q.Get("to") + q.Get("toDate")
		out := []core.Transaction{}
		for _, t := range b.Ledger {
			if !all && (t.IsIncome() || t.IsTransfer()) {
				continue
			}
			if d := t.Date(); (from != "" && d < from) || (to != "" && d > to) {
				continue
			}
			out = append(out, t)
		}
		b.reply(w, out)
	}
}

func (b *Backend) saveEntry(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Value            core.Money `json:"value"`
		Description      string     `json:"description"`
		PayDate          string     `json:"payDate"`
		RegistrationDate string     `json:"registrationDate"`
		Category         uuidRef    `json:"category"`
		Accounts         uuidRef    `json:"accounts"`
		ForAccounts      *uuidRef   `json:"foraccounts"`
	}
	if !decode(r, &in) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "payload inválido"})
		return
	}
	origin := b.account(in.Accounts.UUID)
	if origin == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "conta inválida"})
		return
	}
	tx := core.Transaction{
		Value:            in.Value,
		Description:      in.Description,
		PayDate:          in.PayDate,
		RegistrationDate: in.RegistrationDate,
		Category:         b.category(in.Category.UUID),
		Account:          &core.AccountRef{UUID: origin.UUID, Name: origin.Name},
	}
	if in.ForAccounts != nil {
		dest := b.account(in.ForAccounts.UUID)
		if dest == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "conta destino inválida"})
			return
		}
		tx.ForAccount = &core.AccountRef{UUID: dest.UUID, Name: dest.Name}
		origin.Balance = origin.Balance.Sub(in.Value)
		dest.Balance = dest.Balance.Add(in.Value)
	}

	if id := r.PathValue("id"); id != "" {
		tx.UUID = id
		for i := range b.Ledger {
			if b.Ledger[i].UUID == id {
				b.Ledger[i] = tx
				b.reply(w, tx)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "lançamento não encontrado"})
		return
	}
	tx.UUID = b.nextID("tx")
	b.Ledger = append(b.Ledger, tx)
	writeJSON(w, http.StatusCreated, tx)
}

func (b *Backend) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for i := range b.Ledger {
		if b.Ledger[i].UUID == id {
			b.Ledger = append(b.Ledger[:i], b.Ledger[i+1:]...)
			b.reply(w, map[string]string{"message": "removido"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "lançamento não encontrado"})
}

func (b *Backend) card(id string) *core.CreditCard {
	for i := range b.Cards {
		if b.Cards[i].UUID == id {
			return &b.Cards[i]
		}
	}
	return nil
}

func (b *Backend) getCard(w http.ResponseWriter, r *http.Request) {
	c := b.card(r.PathValue("id"))
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "cartão não encontrado"})
		return
	}
	b.reply(w, c)
}

func (b *Backend) saveCard(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Description string     `json:"description"`
		ExpiryDate  string     `json:"expiryDate"`
		CloseDate   string     `json:"closeDate"`
		Flags       string     `json:"flags"`
		Limit       core.Money `json:"limite"`
	}
	if !decode(r, &in) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "payload inválido"})
		return
	}
	c := core.CreditCard{Description: in.Description, ExpiryDate: in.ExpiryDate, CloseDate: in.CloseDate,
		Flag: core.CardFlag{UUID: in.Flags}, Limit: in.Limit, Active: core.StatusActive}
	if id := r.PathValue("id"); id != "" {
		existing := b.card(id)
		if existing == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "cartão não encontrado"})
			return
		}
		c.UUID = id
		*existing = c
	} else {
		c.UUID = b.nextID("card")
		b.Cards = append(b.Cards, c)
	}
	b.reply(w, c)
}

func (b *Backend) deleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for i := range b.Cards {
		if b.Cards[i].UUID == id {
			b.Cards = append(b.Cards[:i], b.Cards[i+1:]...)
			b.reply(w, map[string]string{"message": "removido"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "cartão não encontrado"})
}

func (b *Backend) setCardStatus(s core.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := b.card(r.PathValue("id"))
		if c == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "cartão não encontrado"})
			return
		}
		c.Active = s
		b.reply(w, map[string]string{"message": "ok"})
	}
}

func (b *Backend) bill(id string) *core.RawBill {
	for card := range b.Bills {
		for i := range b.Bills[card] {
			if b.Bills[card][i].UUID == id {
				return &b.Bills[card][i]
			}
		}
	}
	return nil
}

func (b *Backend) getBill(w http.ResponseWriter, r *http.Request) {
	bill := b.bill(r.PathValue("id"))
	if bill == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "fatura não encontrada"})
		return
	}
	b.reply(w, bill)
}

func (b *Backend) payBill(w http.ResponseWriter, r *http.Request) {
	bill := b.bill(r.PathValue("id"))
	var in struct {
		Amount core.Money `json:"amount"`
	}
	if bill == nil || !decode(r, &in) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "fatura não encontrada"})
		return
	}
	bill.ValuePay = bill.ValuePay.Add(in.Amount)
	if bill.ValuePay.Cents >= bill.Value.Cents {
		bill.Status = core.BillPaid
	}
	b.reply(w, map[string]string{"message": "pago"})
}

func (b *Backend) addBillItem(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Value              core.Money `json:"value"`
		Description        string     `json:"description"`
		RegistrationDate   string     `json:"registrationDate"`
		Bill               uuidRef    `json:"bill"`
		Category           uuidRef    `json:"category"`
		Installments       string     `json:"installments"`
		NumberInstallments int        `json:"numberinstallments"`
	}
	if !decode(r, &in) || b.bill(in.Bill.UUID) == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "fatura inválida"})
		return
	}
	item := core.RawBillItem{
		UUID: b.nextID("item"), Value: in.Value, Description: in.Description,
		RegistrationDate: in.RegistrationDate, Category: b.category(in.Category.UUID),
		Installments: in.Installments, NumberInstallments: in.NumberInstallments,
	}
	b.BillItems[in.Bill.UUID] = append(b.BillItems[in.Bill.UUID], item)
	bill := b.bill(in.Bill.UUID)
	bill.Value = bill.Value.Add(in.Value)
	writeJSON(w, http.StatusCreated, item)
}
