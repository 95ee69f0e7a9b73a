package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/wealthease/internal/metrics"
)

type categorySummary struct {
	Categories   []metrics.CategoryTotal `json:"categories"`
	TotalExpense float64                 `json:"totalExpense"`
}

type incomeExpenseSummary struct {
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	Balance     float64 `json:"balance"`
	SavingsRate float64 `json:"savingsRate"`
}

// handleAnalytics serves /api/analytics, /api/analytics?month=N and /api/analytics/{N}.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("month")
	if raw == "" {
		raw = r.URL.Query().Get("month")
	}

	var month time.Month
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month. Please provide a month number between 1-12")
			return
		}
		month = time.Month(n)
	}

	txns, ok := s.loadTransactions(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Data: metrics.MonthlyAnalytics(txns, month)})
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	txns, ok := s.loadTransactions(w, r)
	if !ok {
		return
	}

	a := metrics.MonthlyAnalytics(txns, 0)
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Data: categorySummary{
		Categories:   a.Categories,
		TotalExpense: a.Expense,
	}})
}

func (s *Server) handleIncomeExpense(w http.ResponseWriter, r *http.Request) {
	txns, ok := s.loadTransactions(w, r)
	if !ok {
		return
	}

	a := metrics.MonthlyAnalytics(txns, 0)
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Data: incomeExpenseSummary{
		Income:      a.Income,
		Expense:     a.Expense,
		Balance:     a.Balance,
		SavingsRate: roundCents(a.SavingsRatePercent()),
	}})
}

func roundCents(v float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return rounded
}
