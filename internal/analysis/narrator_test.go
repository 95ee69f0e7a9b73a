package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/wealthease/internal/metrics"
	"github.com/Veraticus/wealthease/internal/model"
)

func TestLocalAnalysis_Tiers(t *testing.T) {
	tests := []struct {
		rate   float64
		prefix string
	}{
		{25, "🎉 Excellent! You have a 25.0% savings rate with 4 transactions."},
		{15, "👍 Good progress! You have a 15.0% savings rate"},
		{5, "💪 You're making progress! With a 5.0% savings rate and 4 transactions"},
		{0, "🚀 Ready for transformation! With 4 transactions tracked"},
		{-30, "🚀 Ready for transformation!"},
	}

	for _, tt := range tests {
		in := NarrativeInput{Profile: model.UserProfile{SavingsRate: tt.rate}, TransactionCount: 4}
		assert.True(t, strings.HasPrefix(LocalAnalysis(in), tt.prefix), "rate %v: %s", tt.rate, LocalAnalysis(in))
	}
}

func TestLocalRecommendations(t *testing.T) {
	in := NarrativeInput{
		Profile: model.UserProfile{MonthlyIncome: 1000, MonthlyExpenses: 1200, SavingsRate: -20},
		Largest: &metrics.CategoryTotal{Name: "food", Value: 400},
	}

	got := LocalRecommendations(in)
	assert.Contains(t, got, "🎯 Set a goal")
	assert.Contains(t, got, "💡 Focus on one expense category")
	assert.Contains(t, got, "📊 Your food spending is significant - try reducing it by 10% for immediate impact!")
	assert.True(t, strings.HasSuffix(got, "📈 Track your progress weekly to stay motivated and see your financial growth!"))

	healthy := NarrativeInput{
		Profile: model.UserProfile{MonthlyIncome: 1000, MonthlyExpenses: 500, SavingsRate: 50},
		Largest: &metrics.CategoryTotal{Name: "food", Value: 300},
	}
	got = LocalRecommendations(healthy)
	assert.NotContains(t, got, "🎯")
	assert.Contains(t, got, "🌟 Great job keeping expenses below income!")
	assert.NotContains(t, got, "📊", "300 is not more than 30% of 1000")
}

func TestLocalPredictionSummary(t *testing.T) {
	in := NarrativeInput{Profile: model.UserProfile{TotalBalance: 1000}}
	got := LocalPredictionSummary(in, model.Predictions{NextWeekBalance: 1210, NextMonthBalance: 1840})
	assert.Contains(t, got, "grow by $210.00 this week and $840.00 this month")
}

func TestLocalWarnings(t *testing.T) {
	calm := NarrativeInput{Profile: model.UserProfile{MonthlyIncome: 100, MonthlyExpenses: 50, SavingsRate: 50}}
	assert.Equal(t, "🎉 No major concerns detected! You're managing your finances well. Keep up the excellent work!", LocalWarnings(calm))

	busy := NarrativeInput{
		Profile:        model.UserProfile{MonthlyIncome: 100, MonthlyExpenses: 150, SavingsRate: -50},
		RecentExpenses: 11,
	}
	got := LocalWarnings(busy)
	assert.Equal(t, 3, strings.Count(got, "⚠️"))

	busy.RecentExpenses = 10
	assert.Equal(t, 2, strings.Count(LocalWarnings(busy), "⚠️"))
}

func TestBasicRecommendationsAndWarnings(t *testing.T) {
	in := NarrativeInput{
		Profile: model.UserProfile{MonthlyIncome: 1000, MonthlyExpenses: 1100, SavingsRate: -10},
		Largest: &metrics.CategoryTotal{Name: "rent", Value: 900},
	}

	assert.Equal(t,
		"Consider increasing your savings rate to at least 20% of income. Your expenses exceed income. Review and reduce unnecessary spending. Consider reducing spending in rent category.",
		BasicRecommendations(in))
	assert.Contains(t, BasicWarnings(in), "Monthly expenses exceed income")

	fine := NarrativeInput{Profile: model.UserProfile{MonthlyIncome: 1000, MonthlyExpenses: 100, SavingsRate: 90}}
	assert.Equal(t, ".", BasicRecommendations(fine))
	assert.Equal(t, NoWarnings, BasicWarnings(fine))
}

func TestNewNarrativeInput(t *testing.T) {
	txns := scenarioTransactions()
	summary := metrics.Compute(txns, testNow)

	in := NewNarrativeInput(summary, summary.Profile("Ana"), txns, day(4))
	assert.Equal(t, 3, in.TransactionCount)
	assert.Equal(t, 2, in.RecentExpenses)

	// Both expenses fall before the 7-day window ending on the 10th at noon.
	assert.Zero(t, NewNarrativeInput(summary, summary.Profile("Ana"), txns, testNow).RecentExpenses)
	if assert.NotNil(t, in.Largest) {
		assert.Equal(t, "food", in.Largest.Name)
	}

	empty := NewNarrativeInput(metrics.Compute(nil, testNow), model.UserProfile{}, nil, testNow)
	assert.Nil(t, empty.Largest)
}
