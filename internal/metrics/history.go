package metrics

import (
	"time"

	"github.com/Veraticus/wealthease/internal/model"
)

// BalancePoint is the running balance at the end of a calendar day.
type BalancePoint struct {
	Date    time.Time `json:"date"`
	Balance float64   `json:"balance"`
}

// BalanceAt is the running balance over transactions dated on or before day.
func BalanceAt(txns []model.Transaction, day time.Time) float64 {
	day = model.Day(day)
	var balance float64
	for _, t := range txns {
		if !t.Date.IsZero() && !t.Date.After(day) {
			balance += t.Signed()
		}
	}
	return balance
}

// History returns the balance for each of the last days calendar days ending at now.
// The final point is pinned to the all-time total so undated records are included.
func History(txns []model.Transaction, now time.Time, days int) []BalancePoint {
	if days <= 0 {
		return nil
	}

	today := model.Day(now.UTC())
	points := make([]BalancePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		points = append(points, BalancePoint{Date: day, Balance: BalanceAt(txns, day)})
	}
	points[len(points)-1].Balance = TotalBalance(txns)

	return points
}
