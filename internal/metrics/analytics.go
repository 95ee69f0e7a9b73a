package metrics

import (
	"strconv"
	"time"

	"github.com/Veraticus/wealthease/internal/model"
)

// AllMonths labels an analytics summary that is not filtered by month.
const AllMonths = "all"

// Analytics is the income/expense overview shown on the analytics page.
type Analytics struct {
	Month             string          `json:"month"`
	Categories        []CategoryTotal `json:"categories"`
	Income            float64         `json:"income"`
	Expense           float64         `json:"expense"`
	Balance           float64         `json:"balance"`
	TotalTransactions int             `json:"totalTransactions"`
}

// SavingsRatePercent returns balance as a percentage of income, or 0 without income.
func (a Analytics) SavingsRatePercent() float64 {
	if a.Income <= 0 {
		return 0
	}
	return a.Balance / a.Income * 100
}

// MonthlyAnalytics summarizes txns. A month in 1..12 keeps only transactions dated in
// that calendar month of any year; any other value summarizes everything.
func MonthlyAnalytics(txns []model.Transaction, month time.Month) Analytics {
	filtered := txns
	label := AllMonths
	if month >= time.January && month <= time.December {
		label = strconv.Itoa(int(month))
		filtered = make([]model.Transaction, 0, len(txns))
		for _, t := range txns {
			if !t.Date.IsZero() && t.Date.Month() == month {
				filtered = append(filtered, t)
			}
		}
	}

	income, expense := Totals(filtered)
	return Analytics{
		Month:             label,
		Income:            income,
		Expense:           expense,
		Balance:           income - expense,
		Categories:        SortedCategories(CategoryBreakdown(filtered)),
		TotalTransactions: len(filtered),
	}
}
