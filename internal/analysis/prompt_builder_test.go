package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/wealthease/internal/model"
)

func TestNewPromptBuilder(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)
	assert.Len(t, pb.templates, 2)
	assert.Contains(t, pb.templates, "analysis_prompt")
	assert.Contains(t, pb.templates, "extraction_prompt")
}

func TestBuildAnalysisPrompt(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	prompt, err := pb.BuildAnalysisPrompt(NewPromptData("", scenarioTransactions(), testNow))
	require.NoError(t, err)

	for _, want := range []string{
		"- Name: User",
		"- Current Balance: $2300.00",
		"- Monthly Income: $1500.00",
		"- Monthly Expenses: $350.00",
		"- Savings Rate: 76.7%",
		"RECENT TRANSACTIONS (Last 3):",
		"- 2024-03-01: INCOME $3000.00 (salary) - March salary",
		"- 2024-03-03: EXPENSE $200.00 (transport) - No description",
		"- Total Transactions: 3",
		"- Average Transaction: $1233.33",
		"- Income vs Expense Ratio: 23.3%",
		"- Largest Single Expense: $500.00",
		"- Most Frequent Category: food",
		"- Spending Pattern: Insufficient data",
		`"nextWeekBalance": estimated_balance_next_week`,
		`"financialHealth": score_out_of_100`,
	} {
		assert.Contains(t, prompt, want)
	}

	// Categories are listed largest first.
	assert.Less(t, strings.Index(prompt, "- food: $500.00"), strings.Index(prompt, "- transport: $200.00"))
}

func TestBuildAnalysisPrompt_RecentLimit(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	txns := make([]model.Transaction, 0, 40)
	for i := 0; i < 40; i++ {
		txns = append(txns, model.NewTransaction(day(1+i%28), model.TypeExpense, 10, "food", fmt.Sprintf("item-%02d", i)))
	}

	data := NewPromptData("Ana", txns, testNow)
	require.Len(t, data.Recent, RecentLimit)
	assert.Equal(t, "item-10", data.Recent[0].Description)
	assert.Equal(t, "item-39", data.Recent[RecentLimit-1].Description)

	prompt, err := pb.BuildAnalysisPrompt(data)
	require.NoError(t, err)
	assert.Contains(t, prompt, "RECENT TRANSACTIONS (Last 30):")
	assert.NotContains(t, prompt, "item-09")
	assert.Contains(t, prompt, "- Name: Ana")
}

func TestBuildAnalysisPrompt_SkipsInvalidAmounts(t *testing.T) {
	txns := scenarioTransactions()
	bad := model.NewTransaction(day(4), model.TypeExpense, 0, "food", "broken")
	bad.Amount = model.Amount{}
	txns = append(txns, bad)

	data := NewPromptData("", txns, testNow)
	assert.Len(t, data.Recent, 3)
}

func TestBuildAnalysisPrompt_Empty(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	prompt, err := pb.BuildAnalysisPrompt(NewPromptData("", nil, testNow))
	require.NoError(t, err)
	assert.Contains(t, prompt, "RECENT TRANSACTIONS (Last 0):")
	assert.Contains(t, prompt, "- Most Frequent Category: No data")
	assert.Contains(t, prompt, "- none")
}

func TestBuildExtractionPrompt(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	prompt, err := pb.BuildExtractionPrompt(testNow)
	require.NoError(t, err)

	assert.Contains(t, prompt, "use TODAY'S DATE: 2024-03-10 if not mentioned")
	assert.Contains(t, prompt, `"tipe": "pemasukan" or "pengeluaran"`)
	assert.Contains(t, prompt, "return empty JSON: {}")
	assert.NotContains(t, prompt, "{{")
}
