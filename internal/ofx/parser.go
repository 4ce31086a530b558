// Package ofx reads OFX/QFX bank and credit card statements into transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/nextax/nextax/internal/model"
	"github.com/shopspring/decimal"
)

// amountPrecision is the number of decimal places kept from statement amounts.
const amountPrecision = 4

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line that are missing their closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	// A leading "MM/DD " date that some banks put in the description.
	leadingDateRegex = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// Statement is the parsed content of one OFX file.
type Statement struct {
	Transactions []model.Transaction
	Accounts     []string
	Skipped      int // zero-amount rows
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file. Credits become income and debits
// become expenses, with VAT left as none.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*Statement, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	seenAccounts := make(map[string]bool)
	addAccount := func(id string) {
		if id != "" && !seenAccounts[id] {
			seenAccounts[id] = true
			stmt.Accounts = append(stmt.Accounts, id)
		}
	}

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bank, ok := msg.(*ofxgo.StatementResponse)
		if !ok || bank.BankTranList == nil {
			continue
		}
		accountID := string(bank.BankAcctFrom.AcctID)
		addAccount(accountID)
		p.appendTransactions(stmt, bank.BankTranList.Transactions, accountID)
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		card, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || card.BankTranList == nil {
			continue
		}
		accountID := string(card.CCAcctFrom.AcctID)
		addAccount(accountID)
		p.appendTransactions(stmt, card.BankTranList.Transactions, accountID)
	}

	slog.Info("Parsed OFX file",
		"transactions", len(stmt.Transactions),
		"accounts", len(stmt.Accounts),
		"skipped", stmt.Skipped)

	return stmt, nil
}

func (p *Parser) appendTransactions(stmt *Statement, ofxTxns []ofxgo.Transaction, accountID string) {
	for _, ofxTx := range ofxTxns {
		txn, ok := p.convertTransaction(ofxTx, accountID)
		if !ok {
			stmt.Skipped++
			slog.Debug("Skipping zero-amount OFX transaction", "fitid", ofxTx.FiTID)
			continue
		}
		stmt.Transactions = append(stmt.Transactions, txn)
	}
}

// convertTransaction maps an OFX row onto a transaction. Rows with a zero
// amount cannot be stored and are reported as not ok.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (model.Transaction, bool) {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, amountPrecision)
	if amount.IsZero() {
		return model.Transaction{}, false
	}

	txnType := model.TypeIncome
	if amount.IsNegative() {
		txnType = model.TypeExpense
	}

	posted := ofxTx.DtPosted.Time
	txn := model.Transaction{
		Type:        txnType,
		Amount:      amount.Abs(),
		Date:        time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		VATType:     model.VATNone,
		Description: p.extractDescription(ofxTx),
		Source:      model.SourceOFX,
		ExternalID:  accountID + ":" + string(ofxTx.FiTID),
	}

	var notes []string
	if ofxTx.CheckNum != "" {
		notes = append(notes, "Check #"+string(ofxTx.CheckNum))
	}
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" && memo != txn.Description {
		notes = append(notes, memo)
	}
	txn.Notes = strings.Join(notes, "; ")

	return txn, true
}

// extractDescription prefers PAYEE, then NAME, then MEMO when NAME is generic.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"ACH CREDIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	upper := strings.ToUpper(name)
	for _, prefix := range prefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return leadingDateRegex.ReplaceAllString(name, "")
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "TRANSFER", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
