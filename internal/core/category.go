package core

import (
	"sort"
	"strings"
)

// Uncategorized labels rows whose category is missing.
const Uncategorized = "Sem categoria"

const defaultIcon = "📦"

var categoryIcons = map[string]string{
	"alimentação":    "🍔",
	"mercado":        "🛒",
	"transporte":     "🚗",
	"moradia":        "🏠",
	"saúde":          "💊",
	"educação":       "📚",
	"faculdade":      "🎓",
	"lazer":          "🎮",
	"jogos":          "🎯",
	"compras":        "🛍️",
	"contas":         "💡",
	"investimentos":  "📈",
	"transferências": "💰",
	"transferencia":  "💰",
	"salário":        "💼",
	"salario":        "💼",
	"freelance":      "💻",
	"vendas":         "💵",
	"presentes":      "🎁",
	"reembolso":      "↩️",
	"outros":         "📦",
}

// CategoryIcon maps a category description to its emoji, case-insensitively.
func CategoryIcon(description string) string {
	if icon, ok := categoryIcons[strings.ToLower(strings.TrimSpace(description))]; ok {
		return icon
	}
	return defaultIcon
}

// WithIcons returns a copy of cats with Icon filled from the description.
func WithIcons(cats []Category) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		c.Icon = CategoryIcon(c.Description)
		out[i] = c
	}
	return out
}

// ActiveCategories keeps categories explicitly marked ACTIVE. Unlike ledger
// rows, the category endpoint always sends a status.
func ActiveCategories(cats []Category) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		if c.Active == StatusActive {
			out = append(out, c)
		}
	}
	return out
}

// FilterCategories keeps categories of one kind (earn = income).
func FilterCategories(cats []Category, earn bool) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		if c.Earn == earn {
			out = append(out, c)
		}
	}
	return out
}

// SortDespesasByDate orders rows newest first; rows without a date go last.
func SortDespesasByDate(rows []Transaction) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].Date(), rows[j].Date()
		if di == "" || dj == "" {
			return di != "" && dj == ""
		}
		return di > dj
	})
}
