package forecast

import (
	"math"

	"github.com/Veraticus/wealthease/internal/metrics"
	"github.com/Veraticus/wealthease/internal/model"
	"github.com/Veraticus/wealthease/internal/trend"
)

// Engine applies a Policy to profile figures.
type Engine struct {
	policy Policy
}

// NewEngine creates an engine with the given policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the engine's constants.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Outcome is the forecast and presentation-ready scores for one analysis.
type Outcome struct {
	Predictions model.Predictions
	Score       model.Score
	Boost       Change
	Growth      Change
}

// Evaluate produces predictions and presentation scores from a summary and trend.
func (e *Engine) Evaluate(s metrics.Summary, tr trend.Result) Outcome {
	profile := s.Profile("")
	volatility := s.SpendingVolatility

	growth := e.Growth(tr)
	boost := e.Boost(profile, volatility)
	predictions := e.Predict(profile, tr, volatility)

	health := e.FinancialHealth(profile, volatility)
	discipline := e.SpendingDiscipline(profile, volatility, len(s.CategoryBreakdown))

	return Outcome{
		Growth:      growth,
		Boost:       boost,
		Predictions: predictions,
		Score: model.Score{
			FinancialHealth:    clamp(health + e.policy.HealthOffset),
			SpendingDiscipline: clamp(discipline + e.policy.DisciplineOffset),
			SavingsRate:        clamp(profile.SavingsRate),
			Volatility:         clamp(volatility),
			Confidence:         e.policy.LocalConfidence,
		},
	}
}

// Predict projects the balance one week and one month ahead: floored trend growth plus
// the boost, labelled with the policy's trend label.
func (e *Engine) Predict(profile model.UserProfile, tr trend.Result, volatility float64) model.Predictions {
	growth := e.Growth(tr)
	boost := e.Boost(profile, volatility)

	return model.Predictions{
		NextWeekBalance:  profile.TotalBalance + growth.Weekly + boost.Weekly,
		NextMonthBalance: profile.TotalBalance + growth.Monthly + boost.Monthly,
		Trend:            e.policy.TrendLabel,
	}
}

// Growth applies the minimum floors to the trend estimate.
func (e *Engine) Growth(tr trend.Result) Change {
	return Change{
		Weekly:  math.Max(tr.WeeklyChange, e.policy.Floor.Weekly),
		Monthly: math.Max(tr.MonthlyChange, e.policy.Floor.Monthly),
	}
}

// Boost sums the base, savings-rate and volatility boosts.
func (e *Engine) Boost(profile model.UserProfile, volatility float64) Change {
	boost := e.policy.BaseBoost

	savings := e.policy.SavingsFallback
	for _, tier := range e.policy.SavingsTiers {
		if profile.SavingsRate > tier.Threshold {
			savings = tier.Boost
			break
		}
	}

	steadiness := e.policy.VolatilityFallback
	for _, tier := range e.policy.VolatilityTiers {
		if volatility < tier.Threshold {
			steadiness = tier.Boost
			break
		}
	}

	boost.Weekly += savings.Weekly + steadiness.Weekly
	boost.Monthly += savings.Monthly + steadiness.Monthly
	return boost
}

// FinancialHealth scores savings rate (40), volatility (30) and expense ratio (30).
func (e *Engine) FinancialHealth(profile model.UserProfile, volatility float64) float64 {
	var score float64

	switch rate := profile.SavingsRate; {
	case rate >= 20:
		score += 40
	case rate >= 10:
		score += 30
	case rate >= 0:
		score += 20
	}

	switch {
	case volatility < 20:
		score += 30
	case volatility < 40:
		score += 20
	case volatility < 60:
		score += 10
	}

	if profile.MonthlyIncome > profile.MonthlyExpenses {
		switch ratio := profile.MonthlyExpenses / profile.MonthlyIncome; {
		case ratio < 0.5:
			score += 30
		case ratio < 0.7:
			score += 20
		case ratio < 0.9:
			score += 10
		default:
			score += 5
		}
	}

	return clamp(score)
}

// SpendingDiscipline scores volatility (50), budget adherence (30) and category spread (20).
func (e *Engine) SpendingDiscipline(profile model.UserProfile, volatility float64, categories int) float64 {
	var score float64

	switch {
	case volatility < 15:
		score += 50
	case volatility < 30:
		score += 40
	case volatility < 50:
		score += 30
	case volatility < 70:
		score += 20
	default:
		score += 10
	}

	if profile.MonthlyIncome > profile.MonthlyExpenses {
		overspend := (profile.MonthlyExpenses - profile.MonthlyIncome*0.8) / profile.MonthlyIncome
		switch {
		case overspend <= 0:
			score += 30
		case overspend <= 0.1:
			score += 20
		case overspend <= 0.2:
			score += 10
		}
	}

	switch {
	case categories >= 5:
		score += 20
	case categories >= 3:
		score += 15
	case categories >= 2:
		score += 10
	default:
		score += 5
	}

	return clamp(score)
}

func clamp(score float64) float64 {
	return math.Min(100, math.Max(0, score))
}
