// Package generator builds synthetic statement record sets: it resolves the
// requested opening/target balance pair into a balanced transaction sequence
// and assembles the statement a BAI2 file or an export is rendered from.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/bai2"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/balancer"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

// Options controls one statement generation run.
type Options struct {
	Count         int
	MinAmount     decimal.Decimal
	MaxAmount     decimal.Decimal
	StatementDate time.Time
}

// DefaultOptions mirrors the embedded application defaults.
func DefaultOptions() Options {
	return Options{
		Count:         10,
		MinAmount:     decimal.NewFromInt(100),
		MaxAmount:     decimal.NewFromInt(5000),
		StatementDate: time.Now(),
	}
}

// Request pairs one account with its resolved opening balance and the
// closing balance the generated transactions must drive it to.
type Request struct {
	Account common.Account
	Opening decimal.Decimal
	Target  decimal.Decimal
}

// BuildStatement produces one statement record set whose transactions sum
// exactly to target - opening.
func BuildStatement(req Request, opts Options, rng *rand.Rand) (common.Statement, error) {
	amounts, err := balancer.Balance(req.Opening, req.Target, opts.Count, opts.MinAmount, opts.MaxAmount, rng)
	if err != nil {
		return common.Statement{}, fmt.Errorf("account %s: %w", req.Account.AccountNumber, err)
	}

	stmt := common.Statement{
		Account:        req.Account,
		StatementDate:  opts.StatementDate,
		OpeningBalance: req.Opening,
		Transactions:   make([]common.Transaction, 0, len(amounts)),
	}

	balance := req.Opening
	for i, amount := range amounts {
		balance = balance.Add(amount)
		txType := "credit"
		if amount.IsNegative() {
			txType = "debit"
			stmt.TotalDebit = stmt.TotalDebit.Add(amount)
		} else {
			stmt.TotalCredit = stmt.TotalCredit.Add(amount)
		}
		stmt.Transactions = append(stmt.Transactions, common.Transaction{
			Sequence:    i + 1,
			Date:        opts.StatementDate.AddDate(0, 0, i-len(amounts)),
			Description: fmt.Sprintf("Demo %s transaction %03d", txType, i+1),
			Type:        txType,
			Amount:      amount,
			Balance:     balance,
			Reference:   fmt.Sprintf("TXN%04d", i+1),
		})
	}

	stmt.ClosingBalance = balance
	stmt.Nett = stmt.TotalCredit.Add(stmt.TotalDebit)
	return stmt, nil
}

// BuildFile assembles one BAI2 file covering every requested account. All
// statements share a single run ID.
func BuildFile(requests []Request, opts Options, rng *rand.Rand) (bai2.File, error) {
	runID := common.NewRunID()
	file := bai2.File{
		Created: opts.StatementDate,
		FileID:  "1",
	}

	for _, req := range requests {
		stmt, err := BuildStatement(req, opts, rng)
		if err != nil {
			return bai2.File{}, err
		}
		stmt.RunID = runID
		file.Statements = append(file.Statements, stmt)
	}

	return file, nil
}
