package common

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account identifies a bank account in the target Fusion instance.
type Account struct {
	AccountID     string `json:"account_id"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankName      string `json:"bank_name"`
	Currency      string `json:"currency"`
	LegalEntity   string `json:"legal_entity,omitempty"`
	Active        bool   `json:"active"`
}

// Transaction is a single generated statement line. Amount is signed:
// positive for credits, negative for debits. Never mutated after creation.
type Transaction struct {
	Sequence    int             `json:"sequence"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
	Reference   string          `json:"ref,omitempty"`
}

// Statement is one generated statement record set for a single account.
type Statement struct {
	RunID          string          `json:"run_id,omitempty"`
	Account        Account         `json:"account"`
	StatementDate  time.Time       `json:"statement_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Transactions   []Transaction   `json:"transactions"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	Nett           decimal.Decimal `json:"nett"`
}
