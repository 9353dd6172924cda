package postgres

import (
	"context"
	"fmt"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/balances"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

// StatementExists checks if a statement already exists using natural key
func (db *DB) StatementExists(ctx context.Context, runID, accountID string) (bool, string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM statements
		WHERE run_id = $1 AND account_id = $2
	`, runID, accountID).Scan(&id)

	if err != nil {
		if err.Error() == "no rows in result set" {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to check statement: %w", err)
	}

	return true, id, nil
}

// CreateStatement inserts a new statement with its balance provenance
func (db *DB) CreateStatement(ctx context.Context, runID, accountID string, stmt common.Statement, resolved balances.Resolved) (string, error) {
	var id string

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO statements (
			run_id, account_id, statement_date,
			opening_balance, closing_balance,
			total_credit, total_debit, nett,
			balance_source, balance_strategy, discrepancy
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		runID, accountID, stmt.StatementDate,
		stmt.OpeningBalance, stmt.ClosingBalance,
		stmt.TotalCredit, stmt.TotalDebit, stmt.Nett,
		string(resolved.Source), resolved.Strategy, resolved.Discrepancy,
	).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to create statement: %w", err)
	}

	return id, nil
}

// DeleteStatement removes a statement and its transactions (cascade)
func (db *DB) DeleteStatement(ctx context.Context, statementID string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM statements WHERE id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	return nil
}
