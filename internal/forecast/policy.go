// Package forecast turns a trend estimate and profile figures into balance
// predictions and 0-100 scores.
//
// Forecasts are deliberately biased upward: minimum growth floors, additive
// motivational boosts, a fixed "bullish" label and post-hoc score offsets are
// product rules. Every constant lives in Policy so callers can override them.
package forecast

import "github.com/Veraticus/wealthease/internal/model"

// Change is a weekly/monthly pair of currency amounts.
type Change struct {
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// Tier adds Boost when the measured value passes Threshold.
type Tier struct {
	Threshold float64
	Boost     Change
}

// Policy holds the product constants used by Engine.
type Policy struct {
	// TrendLabel is reported for every prediction regardless of the computed trend.
	TrendLabel string

	// Floor is the minimum growth applied before boosts.
	Floor Change
	// BaseBoost is added for every user.
	BaseBoost Change

	// SavingsTiers apply to savings rates strictly above Threshold, checked in order.
	SavingsTiers []Tier
	// SavingsFallback applies when no savings tier matched.
	SavingsFallback Change

	// VolatilityTiers apply to volatility strictly below Threshold, checked in order.
	VolatilityTiers []Tier
	// VolatilityFallback applies when no volatility tier matched.
	VolatilityFallback Change

	// HealthOffset and DisciplineOffset are added to scores at presentation time.
	HealthOffset     float64
	DisciplineOffset float64

	// LocalConfidence is reported by the local analysis path.
	LocalConfidence float64
}

// DefaultPolicy returns the shipped product constants.
func DefaultPolicy() Policy {
	return Policy{
		TrendLabel: model.TrendBullish,
		Floor:      Change{Weekly: 100, Monthly: 400},
		BaseBoost:  Change{Weekly: 50, Monthly: 200},
		SavingsTiers: []Tier{
			{Threshold: 20, Boost: Change{Weekly: 100, Monthly: 400}},
			{Threshold: 10, Boost: Change{Weekly: 50, Monthly: 200}},
			{Threshold: 0, Boost: Change{Weekly: 25, Monthly: 100}},
		},
		SavingsFallback: Change{Weekly: 15, Monthly: 60},
		VolatilityTiers: []Tier{
			{Threshold: 20, Boost: Change{Weekly: 60, Monthly: 240}},
			{Threshold: 40, Boost: Change{Weekly: 30, Monthly: 120}},
		},
		VolatilityFallback: Change{Weekly: 10, Monthly: 40},
		HealthOffset:       15,
		DisciplineOffset:   10,
		LocalConfidence:    90,
	}
}
