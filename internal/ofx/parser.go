// Package ofx converts OFX/QFX bank statements into ledger transactions.
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

	"github.com/tally-money/tally/internal/model"
)

// Parser reads OFX and QFX statement files.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger falls back to slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes formatting quirks banks ship in SGML-style exports:
// leading blank lines before the header, mixed-case SEVERITY values, and
// opening tags missing their closing bracket.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRe.ReplaceAllString(content, "$1>")
}

// ParseFile reads an OFX/QFX document and returns its transactions,
// combining bank and credit card statements. Statements that fail to
// convert are logged and skipped rather than failing the whole file.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX document: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX document: %w", err)
	}

	var transactions []model.Transaction
	statements := 0

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++
		for _, ofxTxn := range stmt.BankTranList.Transactions {
			transactions = append(transactions, p.convert(ofxTxn))
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++
		for _, ofxTxn := range stmt.BankTranList.Transactions {
			transactions = append(transactions, p.convert(ofxTxn))
		}
	}

	p.logger.Info("parsed OFX document",
		"statements", statements,
		"transactions", len(transactions))
	return transactions, nil
}

// convert maps one OFX transaction to the ledger model. The OFX sign
// convention (negative for debits) matches the ledger's, so the amount is
// carried through unchanged. The category is a best-effort hint from the
// transaction type into the default category set; callers may override it
// before inserting.
func (p *Parser) convert(ofxTxn ofxgo.Transaction) model.Transaction {
	amount, _ := ofxTxn.TrnAmt.Float64()

	txn := model.Transaction{
		Description: describe(ofxTxn),
		Amount:      amount,
		Date:        ofxTxn.DtPosted.Time.UTC().Truncate(24 * time.Hour),
		Category:    categoryHint(fmt.Sprintf("%v", ofxTxn.TrnType)),
	}
	return txn
}

// categoryHint maps an OFX transaction type onto the default category set.
func categoryHint(trnType string) string {
	switch trnType {
	case "INT", "DIRECTDEP":
		return "Salary"
	case "FEE", "SRVCHG":
		return "Utilities"
	default:
		return "Other"
	}
}

// describe extracts the cleanest available description: payee name first,
// then NAME, with MEMO as a fallback when NAME is too generic.
func describe(ofxTxn ofxgo.Transaction) string {
	if ofxTxn.Payee != nil && ofxTxn.Payee.Name != "" {
		return strings.TrimSpace(string(ofxTxn.Payee.Name))
	}

	name := strings.TrimSpace(string(ofxTxn.Name))
	if ofxTxn.Memo != "" && isGeneric(name) {
		name = strings.TrimSpace(string(ofxTxn.Memo))
	}

	return stripProcessorPrefix(name)
}

// processorPrefixes are boilerplate card processors prepend to the
// merchant name.
var processorPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

func stripProcessorPrefix(name string) string {
	upper := strings.ToUpper(name)
	for _, prefix := range processorPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	// Some banks lead with an MM/DD transaction date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGeneric(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
