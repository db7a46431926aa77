package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carteira/internal/api"
	"carteira/internal/api/apitest"
	"carteira/internal/auth"
	"carteira/internal/backend"
	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/services"
)

type harness struct {
	t       *testing.T
	backend *apitest.Backend
	srv     *Server
	cookie  *http.Cookie
	ready   error
}

func testLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.New(cfg)
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{t: t, backend: apitest.New(t)}

	client, err := api.New(h.backend.URL())
	require.NoError(t, err)
	logger := testLogger()

	deps := Deps{
		API:        client,
		Guard:      auth.NewGuard(auth.NewMemoryStore(time.Hour), false),
		Ledger:     services.NewLedger(client, nil, logger),
		Accounts:   services.NewAccounts(client, nil, logger),
		Categories: services.NewCategories(client),
		Cards:      services.NewCards(client, nil, logger),
		Dashboard: services.NewDashboard(client,
			cache.NewLRUCache[core.Totals](16, time.Minute),
			cache.NewLRUCache[[]core.Transaction](16, time.Minute),
			logger),
		Profile: services.NewProfile(client),
		Checks: map[string]backend.Checker{
			"sessions": func(context.Context) error { return h.ready },
		},
	}

	h.srv, err = NewServer(cfg, deps, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.srv.Shutdown(context.Background()) })
	return h
}

func (h *harness) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	h.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rr := httptest.NewRecorder()
	h.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (h *harness) login() {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/login", url.Values{"email": {apitest.Email}, "password": {apitest.Password}}, false)
	require.Equal(h.t, http.StatusSeeOther, rr.Code)
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			h.cookie = c
		}
	}
	require.NotNil(h.t, h.cookie, "session cookie not set")
}

func triggers(t *testing.T, rr *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	raw := rr.Header().Get("HX-Trigger")
	require.NotEmpty(t, raw, "missing HX-Trigger")
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestHealthReadyAndMetrics(t *testing.T) {
	h := newHarness(t, Config{Addr: ":0"})

	rr := h.do(http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)

	rr = h.do(http.MethodGet, "/readyz", nil, false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"sessions":"ok"`)

	h.ready = errors.New("store down")
	rr = h.do(http.MethodGet, "/readyz", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "store down")

	rr = h.do(http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, rr.Code)
	for _, name := range []string{"http_requests_total", "ledger_mutations_total", "backend_errors_total", "websocket_connections"} {
		assert.Contains(t, rr.Body.String(), name)
	}
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestPrivatePagesRequireSession(t *testing.T) {
	h := newHarness(t, Config{})

	rr := h.do(http.MethodGet, "/despesas", nil, false)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	rr = h.do(http.MethodGet, "/ui/totals", nil, true)
	assert.Equal(t, "/login", rr.Header().Get("HX-Redirect"))
	assert.Empty(t, h.backend.Requests(), "backend must not be called without a session")
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t, Config{})

	rr := h.do(http.MethodGet, "/login", nil, false)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(http.MethodPost, "/login", url.Values{"email": {"not-an-email"}, "password": {"x"}}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = h.do(http.MethodPost, "/login", url.Values{"email": {apitest.Email}, "password": {"errada123"}}, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Credenciais inválidas")
	assert.Contains(t, rr.Body.String(), apitest.Email, "email is kept in the form")

	h.login()
	assert.True(t, h.cookie.HttpOnly)

	rr = h.do(http.MethodGet, "/", nil, false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Últimas transações")

	rr = h.do(http.MethodGet, "/login", nil, false)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = h.do(http.MethodPost, "/logout", nil, true)
	assert.Equal(t, "/login", rr.Header().Get("HX-Redirect"))

	rr = h.do(http.MethodGet, "/", nil, false)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestSignupAndPasswordReset(t *testing.T) {
	h := newHarness(t, Config{})

	rr := h.do(http.MethodPost, "/signup", url.Values{
		"name": {"Bia"}, "email": {"bia@example.com"}, "password": {"segredo1"}, "confirm": {"outra123"},
	}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = h.do(http.MethodPost, "/signup", url.Values{
		"name": {"Bia"}, "email": {"bia@example.com"}, "password": {"segredo1"}, "confirm": {"segredo1"},
	}, false)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?registered=1", rr.Header().Get("Location"))

	rr = h.do(http.MethodPost, "/forgot-password", url.Values{"email": {"bia@example.com"}}, false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "bia@example.com")

	rr = h.do(http.MethodPost, "/reset-password", url.Values{
		"token": {"abc"}, "password": {"nova1234"}, "confirm": {"nova1234"},
	}, false)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?reset=1", rr.Header().Get("Location"))
	_, ok := h.backend.LastRequest(http.MethodPost, "/auth/reset-password")
	assert.True(t, ok)
}

func TestCreateDespesa(t *testing.T) {
	h := newHarness(t, Config{})
	h.login()

	valid := url.Values{
		"value":       {"45,90"},
		"description": {"Farmácia"},
		"date":        {"2025-03-10"},
		"category":    {"cat-food"},
		"account":     {"acc-nubank"},
	}

	bad := url.Values{}
	for k, v := range valid {
		bad[k] = v
	}
	bad.Set("value", "abc")
	rr := h.do(http.MethodPost, "/despesas", bad, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, triggers(t, rr), EventNotification)
	_, called := h.backend.LastRequest(http.MethodPost, "/expense/create")
	assert.False(t, called, "invalid input must not reach the backend")

	rr = h.do(http.MethodPost, "/despesas", valid, true)
	require.Equal(t, http.StatusOK, rr.Code)
	tr := triggers(t, rr)
	assert.Contains(t, tr, EventFormReset)
	assert.Contains(t, tr, EventAccountChanged)
	require.Contains(t, tr, EventTransactionChanged)

	var changed map[string]string
	require.NoError(t, json.Unmarshal(tr[EventTransactionChanged], &changed))
	assert.Equal(t, core.EntryDespesa, changed["kind"])
	assert.NotEmpty(t, changed["uuid"])

	req, ok := h.backend.LastRequest(http.MethodPost, "/expense/create")
	require.True(t, ok)
	assert.Equal(t, "Bearer "+apitest.Token, req.Auth)
	assert.Contains(t, string(req.Body), "45.90")
	assert.Len(t, h.backend.Snapshot(), 4)

	rr = h.do(http.MethodGet, "/metrics", nil, false)
	assert.Contains(t, rr.Body.String(), "ledger_mutations_total 1")
}

func TestLedgerPagesSearchAndDelete(t *testing.T) {
	h := newHarness(t, Config{})
	h.login()

	rr := h.do(http.MethodGet, "/despesas", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Mercado")
	assert.Contains(t, rr.Body.String(), "Alimentação", "category options are rendered")

	rr = h.do(http.MethodGet, "/receitas", nil, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Salário março")
	assert.NotContains(t, rr.Body.String(), "<html", "htmx refresh renders the table only")

	rr = h.do(http.MethodGet, "/despesas/search?from=2025-03-01&to=2025-03-31", nil, true)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Mercado")

	rr = h.do(http.MethodGet, "/despesas/search?from=2025-04-01", nil, true)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Mercado")

	rr = h.do(http.MethodGet, "/despesas/search?from=ontem", nil, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = h.do(http.MethodDelete, "/despesas/tx-2", nil, true)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
	for _, tx := range h.backend.Snapshot() {
		assert.NotEqual(t, "tx-2", tx.UUID)
	}

	rr = h.do(http.MethodDelete, "/despesas/tx%3B2", nil, true)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRejectedTokenEndsSession(t *testing.T) {
	h := newHarness(t, Config{})
	h.login()

	h.backend.Fail(http.MethodGet, "/expense", http.StatusUnauthorized)
	rr := h.do(http.MethodGet, "/despesas", nil, true)
	assert.Equal(t, "/login", rr.Header().Get("HX-Redirect"))

	h.backend.Fail(http.MethodGet, "/expense", 0)
	rr = h.do(http.MethodGet, "/despesas", nil, false)
	assert.Equal(t, http.StatusSeeOther, rr.Code, "session must be gone")
}

func TestBackendFailureBecomesToast(t *testing.T) {
	h := newHarness(t, Config{})
	h.login()

	h.backend.Fail(http.MethodGet, "/accounts", http.StatusInternalServerError)
	rr := h.do(http.MethodGet, "/accounts", nil, true)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	var toast map[string]any
	require.NoError(t, json.Unmarshal(triggers(t, rr)[EventNotification], &toast))
	assert.Equal(t, "error", toast["type"])
	assert.Equal(t, "Não foi possível carregar as contas", toast["message"])

	rr = h.do(http.MethodGet, "/accounts", nil, false)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "Algo deu errado")

	rr = h.do(http.MethodGet, "/metrics", nil, false)
	assert.Contains(t, rr.Body.String(), "backend_errors_total 2")
}

func TestChartEndpoints(t *testing.T) {
	h := newHarness(t, Config{})
	h.login()

	rr := h.do(http.MethodGet, "/api/charts/categories", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	var shares []core.CategoryShare
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &shares))
	require.Len(t, shares, 1)
	assert.Equal(t, "Alimentação", shares[0].Category)
	assert.Equal(t, int64(12_050), shares[0].Value.Cents)

	rr = h.do(http.MethodGet, "/api/charts/series?months=3", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	var series core.TimeSeries
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &series))
	assert.Len(t, series.Labels, 3)
}

func TestChartRejectedTokenIsJSON(t *testing.T) {
	h := newHarness(t, Config{})
	h.login()

	h.backend.Fail(http.MethodGet, "/reciphe", http.StatusUnauthorized)
	rr := h.do(http.MethodGet, "/api/charts/categories", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
}

func TestTransferAndStatement(t *testing.T) {
	h := newHarness(t, Config{})
	h.login()

	form := func(to, value string) url.Values {
		return url.Values{
			"value": {value}, "description": {"Reserva"}, "date": {"2025-03-12"},
			"category": {"cat-transfer"}, "to_account": {to},
		}
	}

	rr := h.do(http.MethodPost, "/accounts/acc-nubank/transfer", form("acc-nubank", "10,00"), true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = h.do(http.MethodPost, "/accounts/acc-itau/transfer", form("acc-nubank", "5000,00"), true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "exceeds origin balance")

	rr = h.do(http.MethodPost, "/accounts/acc-nubank/transfer", form("acc-closed", "10,00"), true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "inactive destination")

	rr = h.do(http.MethodPost, "/accounts/acc-nubank/transfer", form("acc-itau", "10,00"), true)
	require.Equal(t, http.StatusOK, rr.Code)
	var changed map[string]string
	require.NoError(t, json.Unmarshal(triggers(t, rr)[EventTransactionChanged], &changed))
	assert.Equal(t, core.EntryTransfer, changed["kind"])

	rr = h.do(http.MethodGet, "/accounts/acc-itau/statement", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Transferência recebida")
	assert.NotContains(t, rr.Body.String(), "Mercado", "rows of other accounts are left out")
}

func TestStatementOfUnknownAccount(t *testing.T) {
	h := newHarness(t, Config{})
	h.login()

	rr := h.do(http.MethodGet, "/accounts/acc-nope/statement", nil, false)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Registro não encontrado")

	rr = h.do(http.MethodGet, "/accounts/acc-nope/statement", nil, true)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Registro não encontrado")
	assert.NotEmpty(t, rr.Header().Get("HX-Trigger"))
}

func TestCardsAndBills(t *testing.T) {
	h := newHarness(t, Config{})
	h.login()

	rr := h.do(http.MethodGet, "/cards", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Roxinho")
	assert.Contains(t, rr.Body.String(), "Visa", "flag options are rendered")

	rr = h.do(http.MethodGet, "/cards/card-1/bills", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Em aberto")

	rr = h.do(http.MethodGet, "/bills/bill-mar", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Notebook")
	assert.NotContains(t, rr.Body.String(), "Estornado", "inactive items are hidden")

	rr = h.do(http.MethodPost, "/bills/bill-mar/items", url.Values{
		"value": {"300,00"}, "description": {"Geladeira"}, "date": {"2025-03-01"},
		"category": {"cat-food"}, "card": {"card-1"}, "installment": {"on"}, "installments": {"30"},
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = h.do(http.MethodPost, "/bills/bill-mar/pay", url.Values{"amount": {"800,00"}}, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, triggers(t, rr), EventCardChanged)
	req, ok := h.backend.LastRequest(http.MethodPost, "/bill/payment/bill-mar")
	require.True(t, ok)
	assert.Contains(t, string(req.Body), "800")
}

func TestWritesAreRateLimited(t *testing.T) {
	h := newHarness(t, Config{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		rr := h.do(http.MethodPost, "/login", url.Values{}, false)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	}
	rr := h.do(http.MethodPost, "/login", url.Values{}, false)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	rr = h.do(http.MethodGet, "/login", nil, false)
	assert.Equal(t, http.StatusOK, rr.Code, "reads are not limited")
}
