// Package trend estimates the daily direction of a balance from its transaction history.
package trend

import (
	"sort"
	"time"

	"github.com/Veraticus/wealthease/internal/model"
)

// Estimation methods.
const (
	MethodCombined     = "combined_weighted"
	MethodInsufficient = "insufficient_data"
)

const (
	window         = 7
	emaAlpha       = 0.3
	weightSMA      = 0.3
	weightEMA      = 0.4
	weightLinear   = 0.3
	minTransaction = 3
)

// Result is the blended trend in currency units per day plus its components.
type Result struct {
	Method        string  `json:"method"`
	Daily         float64 `json:"trendStrength"`
	WeeklyChange  float64 `json:"weeklyChange"`
	MonthlyChange float64 `json:"monthlyChange"`
	SMA           float64 `json:"sma"`
	EMA           float64 `json:"ema"`
	Linear        float64 `json:"linear"`
}

// Estimate blends moving-average, exponential-average and regression deltas
// computed over the daily balance series.
func Estimate(txns []model.Transaction) Result {
	dated := sortedDated(txns)
	if len(dated) < minTransaction {
		return Result{Method: MethodInsufficient}
	}

	series := DailyBalances(dated)
	r := Result{
		Method: MethodCombined,
		SMA:    SMADelta(series),
		EMA:    EMADelta(series),
		Linear: Slope(series),
	}
	r.Daily = weightSMA*r.SMA + weightEMA*r.EMA + weightLinear*r.Linear
	r.WeeklyChange = r.Daily * 7
	r.MonthlyChange = r.Daily * 30

	return r
}

// DailyBalances returns the running balance for every calendar day from the first to
// the last transaction date inclusive. txns must be sorted by date.
func DailyBalances(txns []model.Transaction) []float64 {
	if len(txns) == 0 {
		return nil
	}

	first := model.Day(txns[0].Date)
	last := model.Day(txns[len(txns)-1].Date)
	days := int(last.Sub(first).Hours()/24) + 1

	perDay := make([]float64, days)
	for _, t := range txns {
		idx := int(model.Day(t.Date).Sub(first).Hours() / 24)
		perDay[idx] += t.Signed()
	}

	balances := make([]float64, days)
	var running float64
	for i, delta := range perDay {
		running += delta
		balances[i] = running
	}
	return balances
}

// SMADelta is the mean of the last 7 values minus the mean of the 7 before them.
// The earlier window is always divided by 7, even when fewer values exist.
func SMADelta(series []float64) float64 {
	n := len(series)
	if n < window {
		return 0
	}

	recent := sum(series[n-window:]) / window
	start := n - 2*window
	if start < 0 {
		start = 0
	}
	previous := sum(series[start:n-window]) / window

	return recent - previous
}

// EMADelta is the exponential moving average of the whole series minus the mean
// of its last 7 values.
func EMADelta(series []float64) float64 {
	n := len(series)
	if n < window {
		return 0
	}

	ema := series[0]
	for _, v := range series[1:] {
		ema = emaAlpha*v + (1-emaAlpha)*ema
	}

	return ema - sum(series[n-window:])/window
}

// Slope is the ordinary least squares slope of value against index.
func Slope(series []float64) float64 {
	n := float64(len(series))
	if len(series) < minTransaction {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

// Projection is a forecast point for the balance chart.
type Projection struct {
	Date    time.Time `json:"date"`
	Balance float64   `json:"balance"`
}

// ChartWeeklyGrowth is the fixed weekly growth drawn on the forecast chart.
const ChartWeeklyGrowth = 50.0

// Forecast projects balance forward day by day at ChartWeeklyGrowth per week.
func Forecast(balance float64, from time.Time, days int) []Projection {
	daily := ChartWeeklyGrowth / 7
	start := model.Day(from.UTC())

	out := make([]Projection, 0, days)
	for i := 1; i <= days; i++ {
		balance += daily
		out = append(out, Projection{Date: start.AddDate(0, 0, i), Balance: balance})
	}
	return out
}

func sortedDated(txns []model.Transaction) []model.Transaction {
	dated := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Countable() && !t.Date.IsZero() {
			dated = append(dated, t)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.Before(dated[j].Date)
	})
	return dated
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
