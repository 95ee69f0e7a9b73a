package analysis

import (
	"fmt"

	"github.com/Veraticus/wealthease/internal/model"
)

// Insight kinds.
const (
	InsightAnalysis        = "analysis"
	InsightRecommendations = "recommendations"
	InsightWarnings        = "warnings"
	InsightPredictions     = "predictions"
	InsightScore           = "score"
)

// Insight is one dashboard card.
type Insight struct {
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Icon       string  `json:"icon"`
	Priority   string  `json:"priority"`
	Confidence float64 `json:"confidence"`
}

// Insights turns an analysis result into dashboard cards. Empty sections are skipped.
func Insights(r model.AnalysisResult) []Insight {
	var out []Insight

	confidence := func(fallback float64) float64 {
		if r.Score.Confidence != 0 {
			return r.Score.Confidence
		}
		return fallback
	}

	if r.Analysis != "" {
		out = append(out, Insight{
			Type: InsightAnalysis, Title: "AI Financial Analysis", Content: r.Analysis,
			Confidence: confidence(85), Icon: "fas fa-chart-line", Priority: "high",
		})
	}
	if r.Recommendations != "" {
		out = append(out, Insight{
			Type: InsightRecommendations, Title: "AI Recommendations", Content: r.Recommendations,
			Confidence: confidence(80), Icon: "fas fa-lightbulb", Priority: "high",
		})
	}
	if r.Warnings != "" && r.Warnings != NoWarnings {
		out = append(out, Insight{
			Type: InsightWarnings, Title: "Financial Warnings", Content: r.Warnings,
			Confidence: 90, Icon: "fas fa-exclamation-triangle", Priority: "high",
		})
	}
	if r.Predictions.Summary != "" {
		out = append(out, Insight{
			Type: InsightPredictions, Title: "Future Predictions", Content: r.Predictions.Summary,
			Confidence: confidence(75), Icon: "fas fa-crystal-ball", Priority: "medium",
		})
	}
	if health := r.Score.FinancialHealth; health != 0 {
		status, icon := HealthStatus(health)
		out = append(out, Insight{
			Type:       InsightScore,
			Title:      "Financial Health: " + status,
			Content:    fmt.Sprintf("Your financial health score is %.0f/100. %s", health, healthAdvice(health)),
			Confidence: 95,
			Icon:       icon,
			Priority:   "high",
		})
	}

	return out
}

// HealthStatus labels a 0-100 financial health score.
func HealthStatus(score float64) (status, icon string) {
	switch {
	case score >= 80:
		return "Excellent", "fas fa-heart"
	case score >= 60:
		return "Good", "fas fa-heart"
	case score >= 40:
		return "Fair", "fas fa-exclamation-circle"
	default:
		return "Poor", "fas fa-exclamation-triangle"
	}
}

func healthAdvice(score float64) string {
	switch {
	case score >= 80:
		return "Keep up the excellent work!"
	case score >= 60:
		return "You're doing well, but there's room for improvement."
	default:
		return "Consider implementing the recommendations above to improve your financial health."
	}
}

// BasicInsights builds cards straight from the figures, with no analysis result.
func BasicInsights(in NarrativeInput) []Insight {
	rate := in.Profile.SavingsRate

	verdict := "Consider increasing your savings rate."
	switch {
	case rate > 20:
		verdict = "Excellent financial discipline!"
	case rate > 10:
		verdict = "Good savings habits."
	}

	out := []Insight{
		{
			Type:       InsightAnalysis,
			Title:      "Transaction Analysis",
			Content:    fmt.Sprintf("You have %d transactions with a %.1f%% savings rate. %s", in.TransactionCount, rate, verdict),
			Confidence: 75,
			Icon:       "fas fa-chart-line",
			Priority:   "high",
		},
		{
			Type:       InsightRecommendations,
			Title:      "Recommendations",
			Content:    BasicRecommendations(in),
			Confidence: 70,
			Icon:       "fas fa-lightbulb",
			Priority:   "high",
		},
	}

	if warnings := BasicWarnings(in); warnings != NoWarnings {
		out = append(out, Insight{
			Type:       InsightWarnings,
			Title:      "Financial Warnings",
			Content:    warnings,
			Confidence: 85,
			Icon:       "fas fa-exclamation-triangle",
			Priority:   "high",
		})
	}

	return out
}
