package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/wealthease/internal/model"
)

// Fallback texts used when model output cannot be parsed.
const (
	FallbackAnalysis        = "Unable to parse AI response. Please try again."
	FallbackRecommendations = "Check your transaction data and try the analysis again."
	FallbackWarnings        = "AI analysis failed. Please verify your data."
	FallbackSummary         = "Unable to generate predictions"
)

// jsonObjectPattern is greedy: first '{' through last '}'.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

var requiredKeys = []string{"analysis", "recommendations", "predictions", "warnings", "score"}

var errNoJSON = errors.New("no JSON found in response")

// FallbackResult is returned whenever model output is unusable.
func FallbackResult() model.AnalysisResult {
	return model.AnalysisResult{
		Analysis:        FallbackAnalysis,
		Recommendations: FallbackRecommendations,
		Warnings:        FallbackWarnings,
		Predictions: model.Predictions{
			NextWeekBalance:  0,
			NextMonthBalance: 0,
			Trend:            model.TrendNeutral,
			Summary:          FallbackSummary,
		},
		Score: model.Score{
			FinancialHealth:    50,
			SpendingDiscipline: 50,
			SavingsRate:        50,
			Volatility:         0,
			Confidence:         0,
		},
	}
}

// ParseResponse extracts the analysis object embedded in raw model output.
// It reports false and returns FallbackResult when the text holds no usable object.
func ParseResponse(raw string) (model.AnalysisResult, bool) {
	obj, err := decodeEmbeddedObject(raw)
	if err == nil {
		err = checkRequired(obj)
	}
	if err != nil {
		slog.Debug("Falling back from unparseable AI response", "error", err)
		return FallbackResult(), false
	}

	return resultFromObject(obj), true
}

func decodeEmbeddedObject(raw string) (map[string]any, error) {
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return nil, errNoJSON
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(match), &obj); err != nil {
		return nil, fmt.Errorf("invalid JSON in response: %w", err)
	}
	if obj == nil {
		return nil, errNoJSON
	}
	return obj, nil
}

func checkRequired(obj map[string]any) error {
	for _, key := range requiredKeys {
		if !truthy(obj[key]) {
			return fmt.Errorf("missing required field: %s", key)
		}
	}
	return nil
}

// truthy treats null, false, zero and the empty string as absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func resultFromObject(obj map[string]any) model.AnalysisResult {
	result := model.AnalysisResult{
		Raw:             obj,
		Analysis:        text(obj["analysis"]),
		Recommendations: text(obj["recommendations"]),
		Warnings:        text(obj["warnings"]),
	}

	if p, ok := obj["predictions"].(map[string]any); ok {
		result.Predictions = model.Predictions{
			NextWeekBalance:  number(p["nextWeekBalance"]),
			NextMonthBalance: number(p["nextMonthBalance"]),
			Trend:            strings.ToLower(text(p["trend"])),
			Summary:          text(p["summary"]),
		}
	}

	if s, ok := obj["score"].(map[string]any); ok {
		result.Score = model.Score{
			FinancialHealth:    number(s["financialHealth"]),
			SpendingDiscipline: number(s["spendingDiscipline"]),
			SavingsRate:        number(s["savingsRate"]),
			Volatility:         number(s["volatility"]),
			Confidence:         number(s["confidence"]),
		}
	}

	return result
}

// text renders a decoded JSON value as display text. Lists of strings are joined.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return marshalText(v)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, " ")
	default:
		return marshalText(v)
	}
}

func marshalText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func number(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
