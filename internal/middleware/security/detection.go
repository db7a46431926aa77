package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"carteira/internal/log"
)

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}
	suspiciousAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab",
	}
	unusualMethods = map[string]bool{"TRACE": true, "TRACK": true, "DEBUG": true, "CONNECT": true}
)

// Detector flags requests that look like probes and resolves the client IP
// behind trusted proxies.
type Detector struct {
	suspicious     atomic.Int64
	trustedProxies []*net.IPNet
}

// NewDetector trusts loopback and the private ranges, plus any extra CIDRs.
func NewDetector(extraProxies ...string) (*Detector, error) {
	d := &Detector{}
	for _, cidr := range append([]string{"127.0.0.0/8", "::1/128", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}, extraProxies...) {
		if err := d.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// DetectSuspiciousRequest reports whether r matches a known probing pattern.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	if d.matches(r) {
		d.suspicious.Add(1)
		return true
	}
	return false
}

func (d *Detector) matches(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			return true
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, a := range suspiciousAgents {
		if strings.Contains(agent, a) {
			return true
		}
	}

	if unusualMethods[r.Method] || len(r.URL.String()) > 2048 {
		return true
	}
	// More than five proxy hops.
	return strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5
}

// ExtractClientIP returns the peer address, or the forwarded client address
// when the peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !d.isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
	if err != nil {
		return fmt.Errorf("invalid trusted proxy CIDR %q: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// SuspiciousRequests returns how many requests were flagged so far.
func (d *Detector) SuspiciousRequests() int64 {
	return d.suspicious.Load()
}

// Middleware logs flagged requests and answers them with 404 without
// reaching the handlers.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request blocked",
				log.FieldComponent, log.ComponentSecurity,
				log.FieldClientIP, d.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
