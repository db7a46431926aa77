package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"carteira/internal/api"
	"carteira/internal/auth"
	"carteira/internal/core"
	"carteira/internal/forms"
	"carteira/internal/log"
	appweb "carteira/web"
)

var templateFuncs = template.FuncMap{
	"brl":       core.FormatBRL,
	"brDate":    core.FormatBRDate,
	"txDate":    func(tx core.Transaction) string { return core.FormatBRDate(tx.Date()) },
	"isActive":  core.IsActive,
	"billLabel": core.BillStatusLabel,
	// moneyInput renders a value the money form fields read back.
	"moneyInput": func(m core.Money) string { return m.Decimal().StringFixed(2) },
	"signClass": func(m core.Money) string {
		if m.Cents < 0 {
			return "negative"
		}
		return "positive"
	},
	"percent": func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	"installmentValue": func(total core.Money, n int) string {
		return core.FormatBRL(core.InstallmentValue(total, n))
	},
	"upper": strings.ToUpper,
}

func parseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// page is the data every full page template receives.
type page struct {
	Title   string
	Nav     string
	Session auth.Session
	Flash   string
	Error   string
	Data    any
}

func (s *Server) newPage(r *http.Request, title, nav string, data any) page {
	sess, _ := auth.SessionFrom(r.Context())
	return page{Title: title, Nav: nav, Session: sess, Data: data}
}

// render executes name into a buffer first so a template failure never
// leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.slog.LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.NewFields().WithErrorType(log.ErrorTypeInternal))
		http.Error(w, "Erro ao montar a página", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderView renders the partial for htmx requests and the full page
// otherwise.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request, pageName, partialName string, p page) {
	if isHTMX(r) {
		s.render(w, r, http.StatusOK, partialName, p.Data)
		return
	}
	s.render(w, r, http.StatusOK, pageName, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps err to a response. Invalid input is a 422 with the translated
// message; a rejected token ends the session; anything else is a backend
// failure shown as an error toast with fallback as the message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		log.FromContext(ctx).InfoContext(ctx, "Backend rejected session token",
			log.FieldComponent, log.ComponentAuth,
			log.FieldOperation, log.OpLogout)
		s.deps.Guard.Logout(w, r)
		auth.Redirect(w, r, "/login")
	case errors.Is(err, core.ErrNotFound):
		if isHTMX(r) {
			NotFoundError("Registro não encontrado").Write(w)
			return
		}
		p := s.newPage(r, "Não encontrado", "", nil)
		p.Error = "Registro não encontrado"
		s.render(w, r, http.StatusNotFound, "error.html", p)
	case forms.IsInvalid(err):
		s.appMetrics.invalidInput.Add(1)
		UnprocessableEntityError(forms.Translate(err)).Write(w)
	default:
		s.appMetrics.backendErrors.Add(1)
		s.slog.LogError(ctx, "Backend request failed", err, log.ComponentAPI, r.Method+" "+r.URL.Path,
			log.NewFields().WithErrorType(log.ErrorTypeBackend))
		msg := api.UserMessage(err, fallback)
		if isHTMX(r) {
			BadGatewayError(msg).Write(w)
			return
		}
		p := s.newPage(r, "Erro", "", nil)
		p.Error = msg
		s.render(w, r, http.StatusBadGateway, "error.html", p)
	}
}

// failJSON is fail for the chart endpoints.
func (s *Server) failJSON(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		s.deps.Guard.Logout(w, r)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Sessão expirada"})
		return
	}
	s.appMetrics.backendErrors.Add(1)
	s.slog.LogError(r.Context(), "Chart data failed", err, log.ComponentDashboard, log.OpRead, nil)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": api.UserMessage(err, "Não foi possível carregar o gráfico")})
}

// changed answers a successful mutation with a toast plus the given
// client events.
func (s *Server) changed(w http.ResponseWriter, message string, b *HTMXResponseBuilder) {
	s.appMetrics.mutations.Add(1)
	b.TriggerSuccessNotification(message).Write(w)
}

func badID(w http.ResponseWriter) {
	NotFoundError("Registro não encontrado").Write(w)
}
