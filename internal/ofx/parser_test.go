package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/nextax/nextax/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
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
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>THB
<BANKACCTFROM>
<BANKID>014
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240105120000[0:GMT]
<TRNAMT>15000.00
<FITID>2024010501
<NAME>ACH CREDIT CUSTOMER PAYMENT
<MEMO>Invoice 2024-001
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>POS PURCHASE 7-ELEVEN
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-8500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>OTHER
<DTPOSTED>20240126120000[0:GMT]
<TRNAMT>0.00
<FITID>2024012601
<NAME>BALANCE INQUIRY
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
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
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			stmt, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, stmt.Transactions, tt.expectedCount)
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	parser := NewParser()

	stmt, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 3)
	assert.Equal(t, []string{"1234567890"}, stmt.Accounts)
	assert.Equal(t, 1, stmt.Skipped, "zero-amount row is skipped")

	credit := stmt.Transactions[0]
	assert.Equal(t, model.TypeIncome, credit.Type)
	assert.True(t, credit.Amount.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, "CUSTOMER PAYMENT", credit.Description)
	assert.Equal(t, "Invoice 2024-001", credit.Notes)
	assert.Equal(t, "1234567890:2024010501", credit.ExternalID)
	assert.Equal(t, model.SourceOFX, credit.Source)
	assert.Equal(t, model.VATNone, credit.VATType)
	assert.Equal(t, "2024-01-05", credit.Date.Format(model.DateLayout))

	debit := stmt.Transactions[1]
	assert.Equal(t, model.TypeExpense, debit.Type)
	assert.True(t, debit.Amount.Equal(decimal.RequireFromString("25.5")), "amount %s", debit.Amount)
	assert.Equal(t, "7-ELEVEN", debit.Description)

	check := stmt.Transactions[2]
	assert.Equal(t, "CHECK #1234", check.Description)
	assert.Equal(t, "Check #1234", check.Notes)
	assert.True(t, check.Amount.Equal(decimal.NewFromInt(8500)))

	for _, txn := range stmt.Transactions {
		assert.NoError(t, txn.Validate())
	}
}

func TestParseCreditCardTransactions(t *testing.T) {
	parser := NewParser()

	stmt, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, []string{"4111111111111111"}, stmt.Accounts)

	tx1 := stmt.Transactions[0]
	assert.Equal(t, "4111111111111111:CC2024011001", tx1.ExternalID)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", tx1.Description)
	assert.Equal(t, model.TypeExpense, tx1.Type)
	assert.True(t, tx1.Amount.Equal(decimal.RequireFromString("45.99")))

	tx2 := stmt.Transactions[1]
	assert.Equal(t, "NETFLIX.COM", tx2.Description)
	assert.True(t, tx2.Amount.Equal(decimal.NewFromInt(15)))
}

func TestParseFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseFile(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractDescription(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE TOPS MARKET"},
			expected: "TOPS MARKET",
		},
		{
			name:     "keep clean name",
			tx:       ofxgo.Transaction{Name: "NETFLIX.COM"},
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  LAZADA  "},
			expected: "LAZADA",
		},
		{
			name:     "strip leading date",
			tx:       ofxgo.Transaction{Name: "01/15 GRAB FOOD"},
			expected: "GRAB FOOD",
		},
		{
			name:     "generic name falls back to memo",
			tx:       ofxgo.Transaction{Name: "TRANSFER", Memo: "Rent January"},
			expected: "Rent January",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "PAYMENT", Payee: &ofxgo.Payee{Name: "Landlord Co"}},
			expected: "Landlord Co",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.extractDescription(tt.tx))
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()
	out := parser.preprocessOFX("\n\n<SEVERITY>Warn</SEVERITY>\n<CODE\n")
	assert.Equal(t, "<SEVERITY>WARN</SEVERITY>\n<CODE>\n", out)
}
