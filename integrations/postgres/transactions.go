package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

// CreateTransactions bulk inserts transactions for a statement
func (db *DB) CreateTransactions(ctx context.Context, statementID string, transactions []common.Transaction) error {
	return db.CreateTransactionsIdempotent(ctx, statementID, transactions, false)
}

// CreateTransactionsIdempotent bulk inserts transactions for a statement with optional
// idempotent handling. When idempotent is true, duplicate transactions (by reference)
// are silently skipped using ON CONFLICT DO NOTHING, which makes re-saving the same
// run safe.
func (db *DB) CreateTransactionsIdempotent(ctx context.Context, statementID string, transactions []common.Transaction, idempotent bool) error {
	if len(transactions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tx := range transactions {
		// Relies on the unique index idx_transactions_unique_reference
		// (statement_id, reference) WHERE reference != ''
		var sql string
		if idempotent && tx.Reference != "" {
			sql = `
				INSERT INTO transactions (
					statement_id, sequence, date, description, type, amount, balance, reference
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (statement_id, reference) WHERE reference != '' DO NOTHING
			`
		} else {
			sql = `
				INSERT INTO transactions (
					statement_id, sequence, date, description, type, amount, balance, reference
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`
		}

		batch.Queue(sql,
			statementID, tx.Sequence, tx.Date, tx.Description,
			tx.Type, tx.Amount, tx.Balance, tx.Reference,
		)
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for range transactions {
		_, err := br.Exec()
		if err != nil {
			if idempotent {
				continue // Skip unique violations on re-saves
			}
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	return nil
}
