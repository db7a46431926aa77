package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyString("test").
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerTransactionChanged("despesa", "tx-9").
		TriggerAccountChanged("acc-1").
		TriggerFormReset().
		TriggerSuccessNotification("Despesa salva").
		Write(w)

	var got map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{EventTransactionChanged, EventAccountChanged, EventFormReset, EventNotification} {
		if _, ok := got[name]; !ok {
			t.Errorf("HX-Trigger missing %q", name)
		}
	}
	if string(got[EventTransactionChanged]) != `{"kind":"despesa","uuid":"tx-9"}` {
		t.Errorf("transaction payload = %s", got[EventTransactionChanged])
	}

	var note struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(got[EventNotification], &note); err != nil {
		t.Fatal(err)
	}
	if note.Type != "success" || note.Message != "Despesa salva" || note.Duration != 3000 {
		t.Errorf("notification = %+v", note)
	}
}

func TestHTMXResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("X-Custom", "value").
		Status(http.StatusCreated).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{"bad request", BadRequestError("Requisição inválida"), http.StatusBadRequest, `<div class="error">Requisição inválida</div>`},
		{"unprocessable entity", UnprocessableEntityError("Valor inválido"), http.StatusUnprocessableEntity, `<div class="error">Valor inválido</div>`},
		{"bad gateway", BadGatewayError("Serviço indisponível"), http.StatusBadGateway, `<div class="error">Serviço indisponível</div>`},
		{"internal server error", InternalServerError("Erro interno"), http.StatusInternalServerError, `<div class="error">Erro interno</div>`},
		{"not found", NotFoundError("Não encontrado"), http.StatusNotFound, `<div class="error">Não encontrado</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
				t.Errorf("error toast missing: %s", w.Header().Get("HX-Trigger"))
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("Error response did not properly escape HTML entities")
	}
}

func TestNotificationTypes(t *testing.T) {
	tests := []struct {
		notifType NotificationType
		want      string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		NewHTMXResponse().
			TriggerNotification(tt.notifType, "test", 1000).
			Write(w)

		trigger := w.Header().Get("HX-Trigger")
		if !strings.Contains(trigger, `"type":"`+tt.want+`"`) {
			t.Errorf("Notification type %q not found in trigger: %s", tt.want, trigger)
		}
	}
}
