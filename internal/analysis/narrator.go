package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/wealthease/internal/metrics"
	"github.com/Veraticus/wealthease/internal/model"
)

// Thresholds shared by the local narrative and basic insights.
const (
	RecentWindow          = 7 * 24 * time.Hour
	HighFrequencyExpenses = 10
	LargestCategoryShare  = 0.3
	TargetSavingsRate     = 20.0
)

// NoWarnings is the basic-insights text when nothing is flagged.
const NoWarnings = "No major financial warnings detected."

// NarrativeInput is what the local narrative is written from.
type NarrativeInput struct {
	Largest          *metrics.CategoryTotal
	Profile          model.UserProfile
	TransactionCount int
	RecentExpenses   int
}

// NewNarrativeInput derives a NarrativeInput from a summary.
func NewNarrativeInput(s metrics.Summary, profile model.UserProfile, txns []model.Transaction, now time.Time) NarrativeInput {
	in := NarrativeInput{
		Profile:          profile,
		TransactionCount: len(txns),
		RecentExpenses:   metrics.RecentExpenseCount(txns, now, RecentWindow),
	}
	if sorted := metrics.SortedCategories(s.CategoryBreakdown); len(sorted) > 0 {
		in.Largest = &sorted[0]
	}
	return in
}

func (in NarrativeInput) overspending() bool {
	return in.Profile.MonthlyExpenses > in.Profile.MonthlyIncome
}

func (in NarrativeInput) dominantCategory() (string, bool) {
	if in.Largest == nil || in.Largest.Value <= in.Profile.MonthlyIncome*LargestCategoryShare {
		return "", false
	}
	return in.Largest.Name, true
}

// LocalAnalysis is the encouraging overview used when no model is consulted.
func LocalAnalysis(in NarrativeInput) string {
	rate := in.Profile.SavingsRate
	n := in.TransactionCount

	switch {
	case rate > 20:
		return fmt.Sprintf("🎉 Excellent! You have a %.1f%% savings rate with %d transactions. You're on track for financial success! Your disciplined approach to money management is paying off.", rate, n)
	case rate > 10:
		return fmt.Sprintf("👍 Good progress! You have a %.1f%% savings rate with %d transactions. You're building solid financial habits. With a few adjustments, you can reach even greater financial heights!", rate, n)
	case rate > 0:
		return fmt.Sprintf("💪 You're making progress! With a %.1f%% savings rate and %d transactions, you're on the right path. Every small step counts toward your financial goals!", rate, n)
	default:
		return fmt.Sprintf("🚀 Ready for transformation! With %d transactions tracked, you have the foundation to build wealth. Let's turn this into a positive savings journey!", n)
	}
}

// LocalRecommendations lists encouraging next steps.
func LocalRecommendations(in NarrativeInput) string {
	var recs []string

	if in.Profile.SavingsRate < TargetSavingsRate {
		recs = append(recs, "🎯 Set a goal to increase your savings rate to 20% - you're closer than you think!")
	}

	if in.overspending() {
		recs = append(recs, "💡 Focus on one expense category to reduce this month - small changes lead to big results!")
	} else {
		recs = append(recs, "🌟 Great job keeping expenses below income! Consider investing the difference for long-term growth.")
	}

	if name, ok := in.dominantCategory(); ok {
		recs = append(recs, fmt.Sprintf("📊 Your %s spending is significant - try reducing it by 10%% for immediate impact!", name))
	}

	recs = append(recs, "📈 Track your progress weekly to stay motivated and see your financial growth!")

	return strings.Join(recs, " ")
}

// LocalPredictionSummary describes projected growth over the balance.
func LocalPredictionSummary(in NarrativeInput, p model.Predictions) string {
	weekly := p.NextWeekBalance - in.Profile.TotalBalance
	monthly := p.NextMonthBalance - in.Profile.TotalBalance
	return fmt.Sprintf("🚀 Exciting times ahead! Your balance is projected to grow by $%.2f this week and $%.2f this month. With consistent effort, you're building a strong financial future!", weekly, monthly)
}

// LocalWarnings flags overspending and bursts of expenses, framed positively.
func LocalWarnings(in NarrativeInput) string {
	var warnings []string

	if in.overspending() {
		warnings = append(warnings, "⚠️ Your expenses exceed income - this is a great opportunity to optimize your spending and boost your savings!")
	}
	if in.Profile.SavingsRate < 0 {
		warnings = append(warnings, "⚠️ Negative savings rate detected - let's turn this around with a positive action plan!")
	}
	if in.RecentExpenses > HighFrequencyExpenses {
		warnings = append(warnings, "⚠️ High spending frequency - this is a chance to review and optimize your spending patterns!")
	}

	if len(warnings) == 0 {
		return "🎉 No major concerns detected! You're managing your finances well. Keep up the excellent work!"
	}
	return strings.Join(warnings, " ")
}

// BasicRecommendations is the plain variant used by basic insights.
func BasicRecommendations(in NarrativeInput) string {
	var recs []string

	if in.Profile.SavingsRate < 10 {
		recs = append(recs, "Consider increasing your savings rate to at least 20% of income")
	}
	if in.overspending() {
		recs = append(recs, "Your expenses exceed income. Review and reduce unnecessary spending")
	}
	if name, ok := in.dominantCategory(); ok {
		recs = append(recs, fmt.Sprintf("Consider reducing spending in %s category", name))
	}

	return strings.Join(recs, ". ") + "."
}

// BasicWarnings is the plain variant used by basic insights.
func BasicWarnings(in NarrativeInput) string {
	var warnings []string

	if in.overspending() {
		warnings = append(warnings, "⚠️ Monthly expenses exceed income - immediate attention required")
	}
	if in.Profile.SavingsRate < 0 {
		warnings = append(warnings, "⚠️ Negative savings rate - you're spending more than you earn")
	}
	if in.RecentExpenses > HighFrequencyExpenses {
		warnings = append(warnings, "⚠️ High frequency of recent expenses - consider reviewing spending patterns")
	}

	if len(warnings) == 0 {
		return NoWarnings
	}
	return strings.Join(warnings, " ")
}
