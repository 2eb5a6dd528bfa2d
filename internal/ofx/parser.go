// Package ofx parses OFX/QFX bank statements into transactions that seed the
// categorization engine's training corpus.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/kashhq/kash/internal/model"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files exported by
// banks: mixed-case severity values and SGML-style tags missing their closing
// bracket.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns transactions.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			accountID := string(stmt.BankAcctFrom.AcctID)
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, p.convertTransaction(ofxTx, accountID))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			accountID := string(stmt.CCAcctFrom.AcctID)
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, p.convertTransaction(ofxTx, accountID))
			}
		}
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

// convertTransaction converts an OFX transaction to our model. OFX uses
// negative amounts for debits; we store absolute amounts and carry the flow
// direction in the transaction type.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()
	transactionType := model.TransactionTypeExpense
	if amount > 0 {
		transactionType = model.TransactionTypeIncome
	}
	if amount < 0 {
		amount = -amount
	}

	description := cleanDescription(string(ofxTx.Name), string(ofxTx.Memo))

	txn := model.Transaction{
		ID:                string(ofxTx.FiTID),
		Date:              ofxTx.DtPosted.Time,
		Description:       description,
		Amount:            amount,
		AccountID:         accountID,
		TransactionTypeID: transactionType,
	}
	txn.Hash = txn.GenerateHash()

	return txn
}

// cleanDescription picks the most informative of the NAME and MEMO fields and
// strips processor boilerplate.
func cleanDescription(name, memo string) string {
	description := strings.TrimSpace(name)
	if memo != "" && isGenericDescription(description) {
		description = strings.TrimSpace(memo)
	}

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	upper := strings.ToUpper(description)
	for _, prefix := range prefixes {
		if strings.HasPrefix(upper, prefix) {
			description = description[len(prefix):]
			break
		}
	}

	// Strip leading "MM/DD " date stamps.
	if len(description) > 5 && description[2] == '/' && description[5] == ' ' {
		description = strings.TrimSpace(description[6:])
	}

	return description
}

// isGenericDescription checks if a transaction name is too generic to be
// useful on its own.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
