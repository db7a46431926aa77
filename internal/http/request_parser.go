// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// form bodies, path identifiers and query parameters.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body of r once, up to maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a value from the parsed data with control characters removed.
// Values are not trimmed so passwords arrive as typed.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab and line breaks.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// parseBody reads and parses the request body, or returns the 400 response
// to send instead.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, *HTMXResponseBuilder) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return nil, BadRequestError("Formato de requisição inválido")
	}
	return p, nil
}

// pathID returns the named path value when it is a plausible backend id.
// Ids are opaque to this service, so only their shape is checked.
func pathID(r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if id == "" || len(id) > 64 {
		return "", false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return "", false
		}
	}
	return id, true
}

// queryInt reads a positive integer query parameter clamped to [1, max].
func queryInt(q url.Values, key string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// isHTMX reports whether r is an htmx partial request. Boosted navigation
// wants the full page.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Boosted") != "true"
}
