package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// chartPalette colors categories in first-seen order.
var chartPalette = [...]string{
	"#f97316", "#ea580c", "#fb923c", "#fdba74", "#fed7aa",
	"#3b82f6", "#8b5cf6", "#ec4899", "#10b981", "#f59e0b",
	"#ef4444", "#06b6d4",
}

// CategoryShare is one slice of the expenses-by-category chart.
type CategoryShare struct {
	Category   string  `json:"category"`
	Value      Money   `json:"value"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
	Icon       string  `json:"icon"`
}

// TimeSeries holds income and expense totals per month, oldest first.
type TimeSeries struct {
	Labels  []string `json:"labels"`
	Income  []Money  `json:"receitas"`
	Expense []Money  `json:"despesas"`
}

// ExpensesByCategory groups positive, non-transfer expense rows by category
// name, largest first. It returns an empty slice when there is nothing to
// chart.
func ExpensesByCategory(rows []Transaction) []CategoryShare {
	var (
		order []string
		sums  = map[string]Money{}
		total Money
	)
	for _, tx := range rows {
		if tx.Category == nil || tx.Category.Earn || tx.IsTransfer() || tx.Value.Cents <= 0 {
			continue
		}
		name := tx.CategoryName()
		if _, seen := sums[name]; !seen {
			order = append(order, name)
		}
		sums[name] = sums[name].Add(tx.Value)
		total = total.Add(tx.Value)
	}
	if total.Cents == 0 {
		return []CategoryShare{}
	}

	out := make([]CategoryShare, len(order))
	for i, name := range order {
		v := sums[name]
		pct, _ := decimal.NewFromInt(v.Cents).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(total.Cents)).
			Float64()
		out[i] = CategoryShare{
			Category:   name,
			Value:      v,
			Percentage: pct,
			Color:      chartPalette[i%len(chartPalette)],
			Icon:       CategoryIcon(name),
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value.Cents > out[j].Value.Cents })
	return out
}

// TopCategories returns at most n of the largest expense categories.
func TopCategories(rows []Transaction, n int) []CategoryShare {
	if n <= 0 {
		n = 5
	}
	all := ExpensesByCategory(rows)
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// MonthlySeries buckets rows into the last months calendar months ending
// with the month of now. Transfers, undated rows and non-positive values
// are skipped.
func MonthlySeries(rows []Transaction, now time.Time, months int) TimeSeries {
	if months <= 0 {
		months = 6
	}
	ts := TimeSeries{
		Labels:  make([]string, months),
		Income:  make([]Money, months),
		Expense: make([]Money, months),
	}
	index := make(map[[2]int]int, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i-months+1, 0)
		ts.Labels[i] = MonthLabel(m.Year(), m.Month())
		index[[2]int{m.Year(), int(m.Month())}] = i
	}

	for _, tx := range rows {
		if tx.IsTransfer() || tx.Value.Cents <= 0 {
			continue
		}
		d, ok := ParseISODate(tx.Date())
		if !ok {
			continue
		}
		i, ok := index[[2]int{d.Year(), int(d.Month())}]
		if !ok {
			continue
		}
		if tx.IsIncome() {
			ts.Income[i] = ts.Income[i].Add(tx.Value)
		} else {
			ts.Expense[i] = ts.Expense[i].Add(tx.Value)
		}
	}
	return ts
}
