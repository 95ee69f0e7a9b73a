package analysis

import (
	"time"

	"github.com/Veraticus/wealthease/internal/model"
)

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

// scenarioTransactions is income 3000 then expenses 500 and 200 on consecutive days.
func scenarioTransactions() []model.Transaction {
	return []model.Transaction{
		model.NewTransaction(day(1), model.TypeIncome, 3000, "salary", "March salary"),
		model.NewTransaction(day(2), model.TypeExpense, 500, "food", "Groceries"),
		model.NewTransaction(day(3), model.TypeExpense, 200, "transport", ""),
	}
}

const validAnalysisJSON = `{
	"analysis": "Solid month.",
	"recommendations": "Keep saving.",
	"predictions": {"nextWeekBalance": 2400, "nextMonthBalance": 2900, "trend": "Bullish", "summary": "Up and to the right."},
	"warnings": "None.",
	"score": {"financialHealth": 82, "spendingDiscipline": 75, "savingsRate": 76.7, "volatility": 60.6, "confidence": 88}
}`
