package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/wealthease/internal/model"
)

func TestParseResponse_EmbeddedObjectUnchanged(t *testing.T) {
	embedded := `{"analysis":"x","recommendations":"y","predictions":{},"warnings":"z","score":{}}`
	raw := "blah " + embedded + " blah"

	result, ok := ParseResponse(raw)
	require.True(t, ok)

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, embedded, string(out))

	assert.Equal(t, "x", result.Analysis)
	assert.Equal(t, "y", result.Recommendations)
	assert.Equal(t, "z", result.Warnings)
}

func TestParseResponse_TypedFields(t *testing.T) {
	raw := "Here is your analysis:\n```json\n" + validAnalysisJSON + "\n```"

	result, ok := ParseResponse(raw)
	require.True(t, ok)

	assert.Equal(t, "Solid month.", result.Analysis)
	assert.Equal(t, model.TrendBullish, result.Predictions.Trend)
	assert.InDelta(t, 2400, result.Predictions.NextWeekBalance, 1e-9)
	assert.InDelta(t, 82, result.Score.FinancialHealth, 1e-9)
	assert.InDelta(t, 88, result.Score.Confidence, 1e-9)
}

func TestParseResponse_Fallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no json", raw: "no json here"},
		{name: "empty", raw: ""},
		{name: "invalid json", raw: `{"analysis": "x",}`},
		{name: "missing score", raw: `{"analysis":"x","recommendations":"y","predictions":{},"warnings":"z"}`},
		{name: "empty string field", raw: `{"analysis":"","recommendations":"y","predictions":{},"warnings":"z","score":{}}`},
		{name: "null field", raw: `{"analysis":"x","recommendations":"y","predictions":null,"warnings":"z","score":{}}`},
		{name: "zero field", raw: `{"analysis":"x","recommendations":"y","predictions":{},"warnings":0,"score":{}}`},
		{name: "array top level", raw: `[{"analysis":"x"}]`},
		{name: "greedy match spans two objects", raw: `{"a":1} and {"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParseResponse(tt.raw)
			assert.False(t, ok)
			assert.Equal(t, FallbackResult(), result)
			assert.InDelta(t, 50, result.Score.FinancialHealth, 1e-9)
		})
	}
}

func TestFallbackResult(t *testing.T) {
	fb := FallbackResult()

	assert.Equal(t, FallbackAnalysis, fb.Analysis)
	assert.Equal(t, FallbackRecommendations, fb.Recommendations)
	assert.Equal(t, FallbackWarnings, fb.Warnings)
	assert.Equal(t, model.Predictions{Trend: model.TrendNeutral, Summary: FallbackSummary}, fb.Predictions)
	assert.Equal(t, model.Score{FinancialHealth: 50, SpendingDiscipline: 50, SavingsRate: 50}, fb.Score)
	assert.Nil(t, fb.Raw)

	out, err := json.Marshal(fb)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"analysis": "Unable to parse AI response. Please try again.",
		"recommendations": "Check your transaction data and try the analysis again.",
		"warnings": "AI analysis failed. Please verify your data.",
		"predictions": {"nextWeekBalance": 0, "nextMonthBalance": 0, "trend": "neutral", "summary": "Unable to generate predictions"},
		"score": {"financialHealth": 50, "spendingDiscipline": 50, "savingsRate": 50, "volatility": 0, "confidence": 0}
	}`, string(out))
}

func TestText(t *testing.T) {
	assert.Equal(t, "a b", text([]any{"a", "b"}))
	assert.Equal(t, `[1,"b"]`, text([]any{1.0, "b"}))
	assert.Equal(t, `{"k":"v"}`, text(map[string]any{"k": "v"}))
	assert.Equal(t, "", text(nil))
}

func TestNumber(t *testing.T) {
	assert.InDelta(t, 12.5, number(12.5), 1e-9)
	assert.InDelta(t, 12.5, number(" 12.5 "), 1e-9)
	assert.Zero(t, number("twelve"))
	assert.Zero(t, number(true))
}
