package model

import "encoding/json"

// Trend labels used in predictions.
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"
)

// Predictions holds balance forecasts.
type Predictions struct {
	Trend            string  `json:"trend"`
	Summary          string  `json:"summary"`
	NextWeekBalance  float64 `json:"nextWeekBalance"`
	NextMonthBalance float64 `json:"nextMonthBalance"`
}

// Score holds 0-100 indicators.
type Score struct {
	FinancialHealth    float64 `json:"financialHealth"`
	SpendingDiscipline float64 `json:"spendingDiscipline"`
	SavingsRate        float64 `json:"savingsRate"`
	Volatility         float64 `json:"volatility"`
	Confidence         float64 `json:"confidence"`
}

// AnalysisResult is built per analysis request and never persisted.
//
// Raw holds the object decoded from model output, when there is one. It is what
// gets serialized so that callers see the model's object unchanged.
type AnalysisResult struct {
	Raw             map[string]any `json:"-"`
	Analysis        string         `json:"analysis"`
	Recommendations string         `json:"recommendations"`
	Warnings        string         `json:"warnings"`
	Predictions     Predictions    `json:"predictions"`
	Score           Score          `json:"score"`
}

// MarshalJSON emits Raw when present and the typed fields otherwise.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return json.Marshal(r.Raw)
	}
	type plain AnalysisResult
	return json.Marshal(plain(r))
}

// ChatExtraction is a transaction extracted from a chatbot message.
// JSON keys follow the extraction prompt contract.
type ChatExtraction struct {
	Type          string        `json:"tipe"`
	Description   string        `json:"deskripsi"`
	Date          string        `json:"tanggal"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Amount        float64       `json:"jumlah"`
}

// TransactionType maps the extracted type onto the domain enum.
func (c ChatExtraction) TransactionType() TransactionType {
	switch c.Type {
	case "pemasukan", "income":
		return TypeIncome
	default:
		return TypeExpense
	}
}
