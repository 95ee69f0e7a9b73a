package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/wealthease/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     any
		name   string
		want   float64
		wantOK bool
	}{
		{name: "currency string", in: "$1,234.56", want: 1234.56, wantOK: true},
		{name: "number", in: 42.0, want: 42, wantOK: true},
		{name: "dollars suffix", in: "50 dollars", want: 50, wantOK: true},
		{name: "negative", in: "-$5", want: -5, wantOK: true},
		{name: "leading prefix only", in: "12.5.3", want: 12.5, wantOK: true},
		{name: "no digits", in: "lots", wantOK: false},
		{name: "empty", in: "", wantOK: false},
		{name: "missing", in: nil, wantOK: false},
		{name: "bool", in: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseExtraction(t *testing.T) {
	raw := `Sure! {"tipe": "pengeluaran", "deskripsi": "Bought coffee", "jumlah": "$1,234.56", "paymentMethod": "cash"}`

	ex, err := ParseExtraction(raw, testNow)
	require.NoError(t, err)

	assert.Equal(t, "pengeluaran", ex.Type)
	assert.Equal(t, "Bought coffee", ex.Description)
	assert.InDelta(t, 1234.56, ex.Amount, 1e-9)
	assert.Equal(t, "2024-03-10", ex.Date)
	assert.Equal(t, model.PaymentCash, ex.PaymentMethod)
	assert.Equal(t, model.TypeExpense, ex.TransactionType())
}

func TestParseExtraction_Defaults(t *testing.T) {
	ex, err := ParseExtraction(`{"tipe":"pemasukan","deskripsi":"got bonus","jumlah":100,"tanggal":"2024-02-01"}`, testNow)
	require.NoError(t, err)

	assert.Equal(t, "2024-02-01", ex.Date)
	assert.Equal(t, model.PaymentWallet, ex.PaymentMethod)
	assert.Equal(t, model.TypeIncome, ex.TransactionType())
}

func TestParseExtraction_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty object", raw: `{}`},
		{name: "no json", raw: `I could not understand that.`},
		{name: "missing type", raw: `{"deskripsi":"coffee","jumlah":5}`},
		{name: "missing description", raw: `{"tipe":"pengeluaran","jumlah":5}`},
		{name: "missing amount", raw: `{"tipe":"pengeluaran","deskripsi":"coffee"}`},
		{name: "non numeric amount", raw: `{"tipe":"pengeluaran","deskripsi":"coffee","jumlah":"five"}`},
		{name: "broken json", raw: `{"tipe":"pengeluaran",`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExtraction(tt.raw, testNow)
			assert.ErrorIs(t, err, ErrNoExtraction)
		})
	}
}

func TestChatReply(t *testing.T) {
	income := model.ChatExtraction{Type: "pemasukan", Description: "Received salary", Amount: 3500, Date: "2024-03-10"}
	assert.Equal(t, `✅ Income recorded: "Received salary" for $3,500.00 on 2024-03-10.`, ChatReply(income))

	expense := model.ChatExtraction{Type: "pengeluaran", Description: "Bought coffee", Amount: 5, Date: "2024-03-10"}
	assert.Equal(t, `✅ Expense recorded: "Bought coffee" for $5.00 on 2024-03-10.`, ChatReply(expense))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$0.00", FormatUSD(0))
	assert.Equal(t, "$1,234,567.89", FormatUSD(1234567.891))
	assert.Equal(t, "-$12.50", FormatUSD(-12.5))
}

func TestExtractionTransaction(t *testing.T) {
	ex := model.ChatExtraction{
		Type:          "pengeluaran",
		Description:   "Coffee with friends",
		Amount:        -5,
		Date:          "2024-03-09",
		PaymentMethod: model.PaymentCash,
	}

	txn, err := ExtractionTransaction(ex)
	require.NoError(t, err)

	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, model.TypeExpense, txn.Type)
	assert.InDelta(t, 5, txn.Amount.Magnitude(), 1e-9)
	assert.Equal(t, "food", txn.Category)
	assert.Equal(t, model.PaymentCash, txn.PaymentMethod)
	assert.Equal(t, day(9), txn.Date)

	ex.Date = "yesterday"
	_, err = ExtractionTransaction(ex)
	assert.Error(t, err)
}

func TestCategoryFromDescription(t *testing.T) {
	tests := []struct {
		desc string
		typ  model.TransactionType
		want string
	}{
		{"Monthly salary", model.TypeIncome, "salary"},
		{"Year-end bonus", model.TypeIncome, "bonus"},
		{"Dividend payout", model.TypeIncome, "investment"},
		{"Birthday gift", model.TypeIncome, "gift"},
		{"Sold bike", model.TypeIncome, "other income"},
		{"Bought coffee", model.TypeExpense, "food"},
		{"Uber home", model.TypeExpense, "transportation"},
		{"Internet bill", model.TypeExpense, "bills"},
		{"Paid rent", model.TypeExpense, "housing"},
		{"New shoes", model.TypeExpense, "shopping"},
		{"Doctor visit", model.TypeExpense, "healthcare"},
		{"Movie night", model.TypeExpense, "entertainment"},
		{"Misc", model.TypeExpense, "other"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryFromDescription(tt.desc, tt.typ))
		})
	}
}
