package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/balances"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/bai2"
)

// SaveResult tracks the outcome of persisting a run
type SaveResult struct {
	RunID     string
	Processed int
	Skipped   int
	Failed    int
	Errors    []string
}

// SaveOptions configures the save behavior
type SaveOptions struct {
	Force   bool // Force overwriting statements that already exist for the run
	Verbose bool // Enable verbose logging
}

// RunSummary is a row of the run listing
type RunSummary struct {
	ID               string    `json:"id"`
	StatementDate    time.Time `json:"statement_date"`
	AccountCount     int       `json:"account_count"`
	TransactionCount int       `json:"transaction_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// SaveRun persists a generated file: the run row, one statement per account,
// and their transactions. resolved carries the balance provenance per Fusion
// account id; statements without an entry save with empty provenance.
func (db *DB) SaveRun(ctx context.Context, file bai2.File, encoded string, resolved map[string]balances.Resolved, opts SaveOptions) (*SaveResult, error) {
	if len(file.Statements) == 0 {
		return nil, fmt.Errorf("run has no statements")
	}

	runID := file.Statements[0].RunID
	result := &SaveResult{RunID: runID}

	statementDate := file.Statements[0].StatementDate
	txCount := 0
	for _, stmt := range file.Statements {
		txCount += len(stmt.Transactions)
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO runs (id, statement_date, account_count, transaction_count, bai2_content)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET statement_date = EXCLUDED.statement_date,
		    account_count = EXCLUDED.account_count,
		    transaction_count = EXCLUDED.transaction_count,
		    bai2_content = EXCLUDED.bai2_content
	`, runID, statementDate, len(file.Statements), txCount, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	for _, stmt := range file.Statements {
		accountID, err := db.GetOrCreateAccount(ctx, stmt.Account)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("[%s]: account error: %v", stmt.Account.AccountNumber, err))
			continue
		}

		exists, existingID, err := db.StatementExists(ctx, runID, accountID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("[%s]: check error: %v", stmt.Account.AccountNumber, err))
			continue
		}

		if exists && !opts.Force {
			if opts.Verbose {
				log.Printf("SKIP [%s] (already saved for run %s)", stmt.Account.AccountNumber, runID)
			}
			result.Skipped++
			continue
		}

		if exists && opts.Force {
			if err := db.DeleteStatement(ctx, existingID); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("[%s]: delete error: %v", stmt.Account.AccountNumber, err))
				continue
			}
		}

		statementID, err := db.CreateStatement(ctx, runID, accountID, stmt, resolved[stmt.Account.AccountID])
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("[%s]: statement error: %v", stmt.Account.AccountNumber, err))
			continue
		}

		if err := db.CreateTransactions(ctx, statementID, stmt.Transactions); err != nil {
			// Rollback by deleting the statement
			_ = db.DeleteStatement(ctx, statementID)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("[%s]: transactions error: %v", stmt.Account.AccountNumber, err))
			continue
		}

		if opts.Verbose {
			log.Printf("OK   [%s] (%d transactions)", stmt.Account.AccountNumber, len(stmt.Transactions))
		}
		result.Processed++
	}

	return result, nil
}

// ListRuns returns run summaries, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, statement_date, account_count, transaction_count, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StatementDate, &r.AccountCount, &r.TransactionCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunContent returns the stored statement file for a run
func (db *DB) GetRunContent(ctx context.Context, runID string) (string, error) {
	var content string
	err := db.Pool.QueryRow(ctx, `
		SELECT bai2_content FROM runs WHERE id = $1
	`, runID).Scan(&content)
	if err != nil {
		return "", fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return content, nil
}
