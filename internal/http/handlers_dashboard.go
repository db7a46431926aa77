package http

import (
	"net/http"

	"carteira/internal/core"
)

const recentRows = 10

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "dashboard.html", s.newPage(r, "Início", "dashboard", nil))
}

// handleTotals renders the income, expense and balance cards.
func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.deps.Dashboard.Totals(r.Context())
	if err != nil {
		s.fail(w, r, err, "Não foi possível carregar os totais")
		return
	}
	s.render(w, r, http.StatusOK, "totals.html", totals)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Dashboard.Recent(r.Context(), recentRows)
	if err != nil {
		s.fail(w, r, err, "Não foi possível carregar as últimas transações")
		return
	}
	s.render(w, r, http.StatusOK, "recent.html", rows)
}

// handleChartCategories returns the expense split by category. ?top=N
// limits it to the N largest.
func (s *Server) handleChartCategories(w http.ResponseWriter, r *http.Request) {
	var (
		shares []core.CategoryShare
		err    error
	)
	if r.URL.Query().Has("top") {
		shares, err = s.deps.Dashboard.TopCategories(r.Context(), queryInt(r.URL.Query(), "top", 5, 20))
	} else {
		shares, err = s.deps.Dashboard.ExpensesByCategory(r.Context())
	}
	if err != nil {
		s.failJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

// handleChartSeries returns monthly income and expense for ?months=N
// (default 6, at most 24).
func (s *Server) handleChartSeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.deps.Dashboard.MonthlySeries(r.Context(), queryInt(r.URL.Query(), "months", 6, 24))
	if err != nil {
		s.failJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
