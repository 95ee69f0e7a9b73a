// Package metrics computes balance, income, expense and category figures from a
// transaction list. Every function is pure: inputs are never mutated.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/Veraticus/wealthease/internal/model"
)

// MonthWeights weight the current and two preceding calendar months.
var MonthWeights = [3]float64{0.5, 0.3, 0.2}

// Spending pattern labels.
const (
	PatternIncreasing   = "Increasing spending"
	PatternDecreasing   = "Decreasing spending"
	PatternStable       = "Stable spending"
	PatternInsufficient = "Insufficient data"
)

// NoCategory is reported as the most frequent category when there are no expenses.
const NoCategory = "No data"

// Summary holds every figure derived from a transaction list.
type Summary struct {
	CategoryBreakdown    map[string]float64
	MostFrequentCategory string
	SpendingPattern      string
	TotalBalance         float64
	MonthlyIncome        float64
	MonthlyExpenses      float64
	SavingsRate          float64
	SpendingVolatility   float64
	AverageTransaction   float64
	LargestExpense       float64
	IncomeExpenseRatio   float64
	TotalTransactions    int
}

// CategoryTotal is one entry of a sorted category breakdown.
type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Compute derives the full summary relative to now.
func Compute(txns []model.Transaction, now time.Time) Summary {
	income := MonthlyIncome(txns, now)
	expenses := MonthlyExpenses(txns, now)

	s := Summary{
		TotalBalance:         TotalBalance(txns),
		MonthlyIncome:        income,
		MonthlyExpenses:      expenses,
		SavingsRate:          SavingsRate(income, expenses),
		SpendingVolatility:   SpendingVolatility(txns),
		CategoryBreakdown:    CategoryBreakdown(txns),
		MostFrequentCategory: MostFrequentCategory(txns),
		SpendingPattern:      SpendingPattern(txns),
		AverageTransaction:   AverageTransaction(txns),
		LargestExpense:       LargestExpense(txns),
		TotalTransactions:    CountableTransactions(txns),
	}
	if income > 0 {
		s.IncomeExpenseRatio = expenses / income * 100
	}
	return s
}

// Profile derives the user profile for name from txns.
func Profile(name string, txns []model.Transaction, now time.Time) model.UserProfile {
	if name == "" {
		name = "User"
	}
	income := MonthlyIncome(txns, now)
	expenses := MonthlyExpenses(txns, now)
	return model.UserProfile{
		Name:            name,
		TotalBalance:    TotalBalance(txns),
		MonthlyIncome:   income,
		MonthlyExpenses: expenses,
		SavingsRate:     SavingsRate(income, expenses),
	}
}

// Profile returns the user profile view of the summary.
func (s Summary) Profile(name string) model.UserProfile {
	if name == "" {
		name = "User"
	}
	return model.UserProfile{
		Name:            name,
		TotalBalance:    s.TotalBalance,
		MonthlyIncome:   s.MonthlyIncome,
		MonthlyExpenses: s.MonthlyExpenses,
		SavingsRate:     s.SavingsRate,
	}
}

// TotalBalance is income magnitudes minus expense magnitudes over all transactions.
func TotalBalance(txns []model.Transaction) float64 {
	var total float64
	for _, t := range txns {
		total += t.Signed()
	}
	return total
}

// Totals returns the summed income and expense magnitudes.
func Totals(txns []model.Transaction) (income, expense float64) {
	for _, t := range txns {
		if !t.Countable() {
			continue
		}
		if t.Type == model.TypeIncome {
			income += t.Amount.Magnitude()
		} else {
			expense += t.Amount.Magnitude()
		}
	}
	return income, expense
}

// MonthlyIncome is the weighted average income of the last three calendar months.
func MonthlyIncome(txns []model.Transaction, now time.Time) float64 {
	return weightedMonthly(txns, now, model.TypeIncome)
}

// MonthlyExpenses is the weighted average spending of the last three calendar months.
func MonthlyExpenses(txns []model.Transaction, now time.Time) float64 {
	return weightedMonthly(txns, now, model.TypeExpense)
}

func weightedMonthly(txns []model.Transaction, now time.Time, typ model.TransactionType) float64 {
	year, month, _ := now.UTC().Date()

	var result float64
	for i, weight := range MonthWeights {
		start := time.Date(year, month-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)

		var sum float64
		for _, t := range txns {
			if !t.Countable() || t.Type != typ || t.Date.IsZero() {
				continue
			}
			if !t.Date.Before(start) && t.Date.Before(end) {
				sum += t.Amount.Magnitude()
			}
		}
		result += sum * weight
	}
	return result
}

// SavingsRate is (income - expenses) / income as a percentage, or 0 without income.
func SavingsRate(income, expenses float64) float64 {
	if income <= 0 {
		return 0
	}
	return (income - expenses) / income * 100
}

// SpendingVolatility is the coefficient of variation of expense magnitudes, in percent.
func SpendingVolatility(txns []model.Transaction) float64 {
	amounts := expenseAmounts(txns)
	if len(amounts) < 2 {
		return 0
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))
	if mean == 0 {
		return 0
	}

	var squares float64
	for _, a := range amounts {
		squares += (a - mean) * (a - mean)
	}
	stdDev := math.Sqrt(squares / float64(len(amounts)-1))

	return stdDev / mean * 100
}

// CategoryBreakdown sums expense magnitudes per category.
func CategoryBreakdown(txns []model.Transaction) map[string]float64 {
	categories := make(map[string]float64)
	for _, t := range txns {
		if t.Countable() && t.Type == model.TypeExpense {
			categories[t.Category] += t.Amount.Magnitude()
		}
	}
	return categories
}

// SortedCategories orders a breakdown by descending value, then by name.
func SortedCategories(breakdown map[string]float64) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(breakdown))
	for name, value := range breakdown {
		out = append(out, CategoryTotal{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MostFrequentCategory returns the expense category with the highest count.
// Ties go to the category encountered first.
func MostFrequentCategory(txns []model.Transaction) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range txns {
		if !t.Countable() || t.Type != model.TypeExpense {
			continue
		}
		if _, seen := counts[t.Category]; !seen {
			order = append(order, t.Category)
		}
		counts[t.Category]++
	}

	best := NoCategory
	bestCount := 0
	for _, name := range order {
		if counts[name] > bestCount {
			best = name
			bestCount = counts[name]
		}
	}
	return best
}

// SpendingPattern compares the average of the last 10 expenses to the 10 before them.
func SpendingPattern(txns []model.Transaction) string {
	amounts := expenseAmounts(txns)
	n := len(amounts)
	if n <= 10 {
		return PatternInsufficient
	}

	recent := amounts[n-10:]
	olderStart := n - 20
	if olderStart < 0 {
		olderStart = 0
	}
	older := amounts[olderStart : n-10]

	recentAvg := mean(recent)
	olderAvg := mean(older)
	if olderAvg == 0 {
		return PatternStable
	}

	change := (recentAvg - olderAvg) / olderAvg * 100
	switch {
	case change > 10:
		return PatternIncreasing
	case change < -10:
		return PatternDecreasing
	default:
		return PatternStable
	}
}

// AverageTransaction is the mean magnitude over countable transactions.
func AverageTransaction(txns []model.Transaction) float64 {
	var sum float64
	var n int
	for _, t := range txns {
		if t.Countable() {
			sum += t.Amount.Magnitude()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// CountableTransactions returns how many records have a valid type and amount.
func CountableTransactions(txns []model.Transaction) int {
	var n int
	for _, t := range txns {
		if t.Countable() {
			n++
		}
	}
	return n
}

// LargestExpense returns the largest expense magnitude, or 0.
func LargestExpense(txns []model.Transaction) float64 {
	var largest float64
	for _, a := range expenseAmounts(txns) {
		if a > largest {
			largest = a
		}
	}
	return largest
}

// RecentExpenseCount counts expenses dated strictly after now minus window.
func RecentExpenseCount(txns []model.Transaction, now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	var n int
	for _, t := range txns {
		if t.Countable() && t.Type == model.TypeExpense && t.Date.After(cutoff) {
			n++
		}
	}
	return n
}

func expenseAmounts(txns []model.Transaction) []float64 {
	var amounts []float64
	for _, t := range txns {
		if t.Countable() && t.Type == model.TypeExpense {
			amounts = append(amounts, t.Amount.Magnitude())
		}
	}
	return amounts
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
