package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/wealthease/internal/model"
)

const ofxHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
`

const checkingOFX = ofxHeader + `<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>021000021
<ACCTID>556677
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240301120000[0:GMT]
<TRNAMT>3000.00
<FITID>MAR-001
<NAME>ACME CORP PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240304120000[0:GMT]
<TRNAMT>-4.75
<FITID>MAR-002
<NAME>POS PURCHASE BLUE BOTTLE COFFEE
</STMTTRN>
<STMTTRN>
<TRNTYPE>ATM
<DTPOSTED>20240306120000[0:GMT]
<TRNAMT>-60.00
<FITID>MAR-003
<NAME>ATM WITHDRAWAL
</STMTTRN>
<STMTTRN>
<TRNTYPE>INT
<DTPOSTED>20240331120000[0:GMT]
<TRNAMT>1.12
<FITID>MAR-004
<NAME>INTEREST PAID
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2936.37
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const cardOFX = ofxHeader + `<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4000123412341234
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240309120000[0:GMT]
<TRNAMT>-82.40
<FITID>CC-9001
<NAME>03/08 SHELL OIL 5531
</STMTTRN>
<STMTTRN>
<TRNTYPE>SRVCHG
<DTPOSTED>20240315120000[0:GMT]
<TRNAMT>-5.00
<FITID>CC-9002
<NAME>LATE FEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-87.40
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFile_Checking(t *testing.T) {
	txns, err := NewParser().ParseFile(context.Background(), strings.NewReader(checkingOFX))
	require.NoError(t, err)
	require.Len(t, txns, 4)

	payroll := txns[0]
	assert.Equal(t, model.TypeIncome, payroll.Type)
	assert.InDelta(t, 3000.0, payroll.Amount.Value, 0.001)
	assert.True(t, payroll.Amount.Valid)
	assert.Equal(t, day(2024, time.March, 1), payroll.Date)
	assert.Equal(t, "ACME CORP PAYROLL", payroll.Description)
	assert.Equal(t, Uncategorized, payroll.Category)

	coffee := txns[1]
	assert.Equal(t, model.TypeExpense, coffee.Type)
	assert.InDelta(t, 4.75, coffee.Amount.Value, 0.001)
	assert.Equal(t, "BLUE BOTTLE COFFEE", coffee.Description)
	assert.Equal(t, model.PaymentWallet, coffee.PaymentMethod)

	atm := txns[2]
	assert.Equal(t, model.TypeExpense, atm.Type)
	assert.Equal(t, "cash", atm.Category)
	assert.Equal(t, model.PaymentCash, atm.PaymentMethod)

	interest := txns[3]
	assert.Equal(t, model.TypeIncome, interest.Type)
	assert.Equal(t, "interest", interest.Category)
	assert.Equal(t, day(2024, time.March, 31), interest.Date)
}

func TestParseFile_CreditCard(t *testing.T) {
	txns, err := NewParser().ParseFile(context.Background(), strings.NewReader(cardOFX))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "SHELL OIL 5531", txns[0].Description)
	assert.Equal(t, model.TypeExpense, txns[0].Type)
	assert.InDelta(t, 82.40, txns[0].Amount.Value, 0.001)

	assert.Equal(t, "fees", txns[1].Category)
}

func TestParseFile_Categorizer(t *testing.T) {
	var seen []model.TransactionType
	parser := NewParser().WithCategorizer(func(desc string, typ model.TransactionType) string {
		seen = append(seen, typ)
		if strings.Contains(desc, "COFFEE") {
			return "food"
		}
		return ""
	})

	txns, err := parser.ParseFile(context.Background(), strings.NewReader(checkingOFX))
	require.NoError(t, err)

	assert.Equal(t, Uncategorized, txns[0].Category)
	assert.Equal(t, "food", txns[1].Category)
	assert.Equal(t, "cash", txns[2].Category, "type-implied categories win")
	assert.Equal(t, []model.TransactionType{model.TypeIncome, model.TypeExpense}, seen)
}

func TestParseFile_DeterministicIDs(t *testing.T) {
	parser := NewParser()

	first, err := parser.ParseFile(context.Background(), strings.NewReader(checkingOFX))
	require.NoError(t, err)
	second, err := parser.ParseFile(context.Background(), strings.NewReader(checkingOFX))
	require.NoError(t, err)

	ids := make(map[string]bool)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		ids[first[i].ID] = true
	}
	assert.Len(t, ids, len(first))

	cards, err := parser.ParseFile(context.Background(), strings.NewReader(cardOFX))
	require.NoError(t, err)
	for _, tx := range cards {
		assert.False(t, ids[tx.ID])
	}
}

func TestParseFile_Errors(t *testing.T) {
	_, err := NewParser().ParseFile(context.Background(), strings.NewReader("not an ofx file"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse OFX file")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewParser().ParseFile(ctx, strings.NewReader(checkingOFX))
	require.ErrorIs(t, err, context.Canceled)
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n  <SEVERITY>Warn</SEVERITY>\n<STMTTRN\n<NAME>KEEP"
	out := preprocessOFX(in)

	assert.True(t, strings.HasPrefix(out, "<SEVERITY>WARN</SEVERITY>"))
	assert.Contains(t, out, "\n<STMTTRN>\n")
	assert.Contains(t, out, "<NAME>KEEP")
}

func TestExtractMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "strips POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "strips debit card prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"},
			expected: "WHOLE FOODS",
		},
		{
			name:     "strips posting date",
			tx:       ofxgo.Transaction{Name: "12/31 TARGET T-1234"},
			expected: "TARGET T-1234",
		},
		{
			name:     "trims whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
		{
			name:     "memo replaces generic name",
			tx:       ofxgo.Transaction{Name: "DEBIT", Memo: "CORNER BAKERY"},
			expected: "CORNER BAKERY",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "ACH DEBIT 55", Payee: &ofxgo.Payee{Name: "City Water"}},
			expected: "City Water",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractMerchantName(tt.tx))
		})
	}
}

func TestAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.Accounts(strings.NewReader(checkingOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"556677"}, accounts)

	accounts, err = parser.Accounts(strings.NewReader(cardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4000123412341234"}, accounts)
}
