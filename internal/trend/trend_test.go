package trend

import (
	"testing"
	"time"

	"github.com/Veraticus/wealthease/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC)
}

func txn(d int, typ model.TransactionType, amount float64) model.Transaction {
	return model.Transaction{Date: day(d), Type: typ, Amount: model.NewAmount(amount), Category: "misc"}
}

func TestEstimate_InsufficientData(t *testing.T) {
	tests := []struct {
		name string
		txns []model.Transaction
	}{
		{name: "empty"},
		{name: "two transactions", txns: []model.Transaction{
			txn(1, model.TypeIncome, 1000),
			txn(2, model.TypeExpense, 900),
		}},
		{name: "third transaction has no usable amount", txns: []model.Transaction{
			txn(1, model.TypeIncome, 1000),
			txn(2, model.TypeExpense, 900),
			{Date: day(3), Type: model.TypeExpense},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Estimate(tt.txns)
			assert.Equal(t, MethodInsufficient, r.Method)
			assert.Zero(t, r.WeeklyChange)
			assert.Zero(t, r.MonthlyChange)
			assert.Zero(t, r.Daily)
		})
	}
}

func TestEstimate_ShortSeriesUsesRegressionOnly(t *testing.T) {
	r := Estimate([]model.Transaction{
		txn(1, model.TypeIncome, 100),
		txn(2, model.TypeExpense, 10),
		txn(3, model.TypeExpense, 10),
	})

	assert.Equal(t, MethodCombined, r.Method)
	assert.Zero(t, r.SMA)
	assert.Zero(t, r.EMA)
	assert.InDelta(t, -10, r.Linear, 1e-9)
	assert.InDelta(t, -3, r.Daily, 1e-9)
	assert.InDelta(t, -21, r.WeeklyChange, 1e-9)
	assert.InDelta(t, -90, r.MonthlyChange, 1e-9)
}

func TestEstimate_OrderIndependent(t *testing.T) {
	sorted := []model.Transaction{
		txn(1, model.TypeIncome, 500),
		txn(3, model.TypeExpense, 20),
		txn(6, model.TypeExpense, 40),
		txn(9, model.TypeIncome, 100),
		txn(12, model.TypeExpense, 15),
	}
	shuffled := []model.Transaction{sorted[3], sorted[0], sorted[4], sorted[2], sorted[1]}

	assert.Equal(t, Estimate(sorted), Estimate(shuffled))
}

func TestDailyBalances_FillsGaps(t *testing.T) {
	series := DailyBalances([]model.Transaction{
		txn(1, model.TypeIncome, 100),
		txn(4, model.TypeExpense, 30),
		txn(4, model.TypeIncome, 5),
	})

	assert.Equal(t, []float64{100, 100, 100, 75}, series)
}

func TestSMADelta(t *testing.T) {
	ramp := func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = float64(i)
		}
		return out
	}

	assert.Zero(t, SMADelta(ramp(6)))
	assert.InDelta(t, 7, SMADelta(ramp(14)), 1e-9)
	assert.InDelta(t, 6-3.0/7, SMADelta(ramp(10)), 1e-9)
}

func TestEMADelta(t *testing.T) {
	assert.Zero(t, EMADelta([]float64{1, 2, 3}))
	assert.InDelta(t, 0, EMADelta([]float64{5, 5, 5, 5, 5, 5, 5, 5}), 1e-9)

	// A step up at the end pulls the last-7 mean above the lagging EMA.
	delta := EMADelta([]float64{0, 0, 0, 0, 0, 0, 0, 70})
	assert.InDelta(t, 21-10, delta, 1e-9)
}

func TestSlope(t *testing.T) {
	assert.InDelta(t, 2, Slope([]float64{1, 3, 5, 7}), 1e-9)
	assert.Zero(t, Slope([]float64{1, 2}))
	assert.InDelta(t, 0, Slope([]float64{4, 4, 4}), 1e-9)
}

func TestForecast(t *testing.T) {
	points := Forecast(100, day(10), 7)

	require.Len(t, points, 7)
	assert.Equal(t, day(11), points[0].Date)
	assert.InDelta(t, 100+50.0/7, points[0].Balance, 1e-9)
	assert.InDelta(t, 150, points[6].Balance, 1e-9)
}
