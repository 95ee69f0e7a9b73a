package analysis

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/wealthease/internal/model"
)

// ErrNoExtraction means the model output did not describe a transaction.
var ErrNoExtraction = errors.New("could not extract transaction data")

// ExtractionFailureMessage is shown to the user when ErrNoExtraction occurs.
const ExtractionFailureMessage = `Sorry, I couldn't extract transaction data from your message. Please provide clearer details (e.g., "Bought coffee $5" or "Received salary $3,500").`

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.-]+`)
	leadingNumber = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
	usd           = message.NewPrinter(language.English)
)

// ParseExtraction decodes the chatbot extraction object embedded in raw.
// String amounts are stripped of everything except digits, '.' and '-' before
// parsing; a missing date becomes now's date and a missing payment method becomes wallet.
func ParseExtraction(raw string, now time.Time) (model.ChatExtraction, error) {
	obj, err := decodeEmbeddedObject(raw)
	if err != nil {
		return model.ChatExtraction{}, fmt.Errorf("%w: %w", ErrNoExtraction, err)
	}

	tipe, _ := obj["tipe"].(string)
	desc, _ := obj["deskripsi"].(string)
	if strings.TrimSpace(tipe) == "" || strings.TrimSpace(desc) == "" {
		return model.ChatExtraction{}, fmt.Errorf("%w: missing type or description", ErrNoExtraction)
	}

	amount, ok := ParseAmount(obj["jumlah"])
	if !ok {
		return model.ChatExtraction{}, fmt.Errorf("%w: amount %v is not a number", ErrNoExtraction, obj["jumlah"])
	}

	date, _ := obj["tanggal"].(string)
	if strings.TrimSpace(date) == "" {
		date = now.UTC().Format(model.DateLayout)
	}

	method, _ := obj["paymentMethod"].(string)

	return model.ChatExtraction{
		Type:          strings.ToLower(strings.TrimSpace(tipe)),
		Description:   strings.TrimSpace(desc),
		Amount:        amount,
		Date:          date,
		PaymentMethod: model.NormalizePaymentMethod(method),
	}, nil
}

// ParseAmount converts a decoded JSON amount to a finite number.
// "$1,234.56" yields 1234.56.
func ParseAmount(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		cleaned := leadingNumber.FindString(nonNumeric.ReplaceAllString(t, ""))
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ChatReply is the confirmation text for a recorded extraction.
func ChatReply(ex model.ChatExtraction) string {
	kind := "Expense"
	if ex.TransactionType() == model.TypeIncome {
		kind = "Income"
	}
	return fmt.Sprintf("✅ %s recorded: \"%s\" for %s on %s.", kind, ex.Description, FormatUSD(ex.Amount), ex.Date)
}

// FormatUSD renders v as US currency with thousands separators.
func FormatUSD(v float64) string {
	if v < 0 {
		return "-$" + usd.Sprintf("%.2f", -v)
	}
	return "$" + usd.Sprintf("%.2f", v)
}

// ExtractionTransaction converts an extraction into a new transaction.
func ExtractionTransaction(ex model.ChatExtraction) (model.Transaction, error) {
	date, err := model.ParseDate(ex.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid extracted date %q: %w", ex.Date, err)
	}

	typ := ex.TransactionType()
	txn := model.NewTransaction(date, typ, math.Abs(ex.Amount), CategoryFromDescription(ex.Description, typ), ex.Description)
	txn.PaymentMethod = model.NormalizePaymentMethod(string(ex.PaymentMethod))
	return txn, nil
}
