// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	// TypeIncome marks money received.
	TypeIncome TransactionType = "income"
	// TypeExpense marks money spent.
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// PaymentMethod records where the money moved from or to.
type PaymentMethod string

const (
	// PaymentCash is physical money.
	PaymentCash PaymentMethod = "cash"
	// PaymentWallet covers digital wallets, cards and bank transfers.
	PaymentWallet PaymentMethod = "wallet"
)

// NormalizePaymentMethod maps free text onto a known payment method, defaulting to wallet.
func NormalizePaymentMethod(s string) PaymentMethod {
	if strings.EqualFold(strings.TrimSpace(s), string(PaymentCash)) {
		return PaymentCash
	}
	return PaymentWallet
}

// Amount is a transaction magnitude that remembers whether the source value was numeric.
// Non-numeric amounts are carried through with Valid=false so aggregations can skip them.
type Amount struct {
	Value float64
	Valid bool
}

// NewAmount returns a valid amount.
func NewAmount(v float64) Amount {
	return Amount{Value: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

// Magnitude returns the absolute value; the sign is carried by the transaction type.
func (a Amount) Magnitude() float64 {
	if !a.Valid {
		return 0
	}
	return math.Abs(a.Value)
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else decodes as invalid.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*a = NewAmount(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, parseErr := strconv.ParseFloat(strings.TrimSpace(s), 64); parseErr == nil {
			*a = NewAmount(v)
		}
	}
	return nil
}

// MarshalJSON writes invalid amounts as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

// Transaction is a single income or expense record.
type Transaction struct {
	Date          time.Time
	CreatedAt     time.Time
	ID            string
	UserID        string
	Category      string
	Description   string
	Type          TransactionType
	PaymentMethod PaymentMethod
	Amount        Amount
}

// NewTransaction creates a transaction with a fresh id and wallet as default payment method.
func NewTransaction(date time.Time, typ TransactionType, amount float64, category, description string) Transaction {
	return Transaction{
		ID:            uuid.NewString(),
		Date:          date,
		Type:          typ,
		Amount:        NewAmount(amount),
		Category:      category,
		Description:   description,
		PaymentMethod: PaymentWallet,
		CreatedAt:     time.Now().UTC(),
	}
}

// Countable reports whether the transaction participates in aggregations.
func (t Transaction) Countable() bool {
	return t.Amount.Valid && t.Type.Valid()
}

// Signed returns +magnitude for income and -magnitude for expenses.
func (t Transaction) Signed() float64 {
	switch {
	case !t.Countable():
		return 0
	case t.Type == TypeIncome:
		return t.Amount.Magnitude()
	default:
		return -t.Amount.Magnitude()
	}
}

// EnsureDefaults fills an id and payment method when missing.
func (t *Transaction) EnsureDefaults() {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.PaymentMethod == "" {
		t.PaymentMethod = PaymentWallet
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
}

type transactionJSON struct {
	ID            string          `json:"id,omitempty"`
	UserID        string          `json:"userId,omitempty"`
	Date          string          `json:"date"`
	Type          TransactionType `json:"type"`
	Amount        Amount          `json:"amount"`
	Category      string          `json:"category"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// MarshalJSON writes the date as a calendar date.
func (t Transaction) MarshalJSON() ([]byte, error) {
	w := transactionJSON{
		ID:            t.ID,
		UserID:        t.UserID,
		Type:          t.Type,
		Amount:        t.Amount,
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Description:   t.Description,
	}
	if !t.Date.IsZero() {
		w.Date = t.Date.Format(DateLayout)
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts calendar dates or RFC 3339 timestamps and defaults the payment method.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w transactionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	date, err := ParseDate(w.Date)
	if err != nil {
		return err
	}

	*t = Transaction{
		ID:            w.ID,
		UserID:        w.UserID,
		Date:          date,
		Type:          TransactionType(strings.ToLower(string(w.Type))),
		Amount:        w.Amount,
		Category:      w.Category,
		Description:   w.Description,
		PaymentMethod: NormalizePaymentMethod(string(w.PaymentMethod)),
	}
	return nil
}

// ParseDate parses a calendar date or RFC 3339 timestamp, truncated to the UTC day.
// An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Day(ts), nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
