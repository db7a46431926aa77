package core

import (
	"fmt"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var monthAbbr = [12]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// NormalizeISODate reduces the date formats the backend emits (plain dates,
// RFC 3339 timestamps, "YYYY-MM-DD hh:mm:ss") to YYYY-MM-DD. It returns ""
// for anything it cannot read.
func NormalizeISODate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < len(isoDate) {
		return ""
	}
	if i := strings.IndexAny(s, "T "); i == len(isoDate) {
		s = s[:i]
	}
	if _, err := time.Parse(isoDate, s); err != nil {
		return ""
	}
	return s
}

// ParseISODate parses any format NormalizeISODate accepts.
func ParseISODate(s string) (time.Time, bool) {
	n := NormalizeISODate(s)
	if n == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDate, n)
	return t, err == nil
}

// FormatBRDate renders a backend date as DD/MM/YYYY. Unreadable input is
// returned unchanged.
func FormatBRDate(s string) string {
	t, ok := ParseISODate(s)
	if !ok {
		return s
	}
	return t.Format("02/01/2006")
}

// MonthName returns the pt-BR month name for m in 1..12.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// MonthLabel is the short chart label for a month, e.g. "mar/2025".
func MonthLabel(year int, m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return fmt.Sprintf("%s/%d", monthAbbr[m-1], year)
}

// Today returns the current date as YYYY-MM-DD.
func Today(now time.Time) string {
	return now.Format(isoDate)
}
