package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"value": "12,50", "description": "Mercado", "installments": 3, "installment": true}`
	req := httptest.NewRequest(http.MethodPost, "/despesas", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	tests := map[string]string{
		"value":        "12,50",
		"description":  "Mercado",
		"installments": "3",
		"installment":  "true",
		"missing":      "",
	}
	for key, want := range tests {
		if got := parser.Get(key); got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "description=Padaria+%01central&password=+com+espaco+"
	req := httptest.NewRequest(http.MethodPost, "/despesas", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if got := parser.Get("description"); got != "Padaria central" {
		t.Errorf("control characters not stripped: %q", got)
	}
	if got := parser.Get("password"); got != " com espaco " {
		t.Errorf("password must keep its spaces: %q", got)
	}
}

func TestRequestBodyParser_EmptyAndBroken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	parser := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"broken"`))
	if _, fail := parseBody(httptest.NewRecorder(), req); fail == nil {
		t.Error("expected a 400 response for malformed JSON")
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		id string
		ok bool
	}{
		{"acc-nubank", true},
		{"3f1c2b9a-0d7e-4a51-9a63-2f4d1e0c7b88", true},
		{"a_b", true},
		{"", false},
		{"a.b", false},
		{"a%20b", false},
		{strings.Repeat("x", 65), false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetPathValue("uuid", tt.id)
		got, ok := pathID(req, "uuid")
		if ok != tt.ok || (ok && got != tt.id) {
			t.Errorf("pathID(%q) = %q, %v", tt.id, got, ok)
		}
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 6},
		{"abc", 6},
		{"0", 6},
		{"-3", 6},
		{"12", 12},
		{"99", 24},
	}
	for _, tt := range tests {
		if got := queryInt(url.Values{"months": {tt.raw}}, "months", 6, 24); got != tt.want {
			t.Errorf("queryInt(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestIsHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTMX(req) {
		t.Error("plain request reported as htmx")
	}
	req.Header.Set("HX-Request", "true")
	if !isHTMX(req) {
		t.Error("htmx request not detected")
	}
	req.Header.Set("HX-Boosted", "true")
	if isHTMX(req) {
		t.Error("boosted navigation must get the full page")
	}
}
