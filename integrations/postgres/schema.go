package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Bank accounts mirrored from the Fusion instance
CREATE TABLE IF NOT EXISTS accounts (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    fusion_account_id VARCHAR(50) NOT NULL,
    account_number VARCHAR(50) NOT NULL,
    account_name VARCHAR(255) NOT NULL,
    bank_name VARCHAR(255) DEFAULT '',
    currency VARCHAR(10) NOT NULL DEFAULT 'USD',
    legal_entity VARCHAR(255) DEFAULT '',
    active BOOLEAN DEFAULT true,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(fusion_account_id)
);

-- Generation runs, keyed by the run ULID shared across a run's artifacts
CREATE TABLE IF NOT EXISTS runs (
    id VARCHAR(26) PRIMARY KEY,
    statement_date DATE NOT NULL,
    account_count INTEGER NOT NULL,
    transaction_count INTEGER NOT NULL,
    bai2_content TEXT DEFAULT '',
    created_at TIMESTAMPTZ DEFAULT NOW()
);

-- Generated statements, one per account per run
CREATE TABLE IF NOT EXISTS statements (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    run_id VARCHAR(26) NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    statement_date DATE NOT NULL,
    opening_balance NUMERIC(18,2) NOT NULL,
    closing_balance NUMERIC(18,2) NOT NULL,
    total_credit NUMERIC(18,2) NOT NULL,
    total_debit NUMERIC(18,2) NOT NULL,
    nett NUMERIC(18,2) NOT NULL,
    balance_source VARCHAR(20) DEFAULT '',
    balance_strategy VARCHAR(30) DEFAULT '',
    discrepancy BOOLEAN DEFAULT false,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    -- Natural key for deduplication
    UNIQUE(run_id, account_id)
);

-- Generated transactions
CREATE TABLE IF NOT EXISTS transactions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    statement_id UUID NOT NULL REFERENCES statements(id) ON DELETE CASCADE,
    sequence INTEGER NOT NULL,
    date DATE NOT NULL,
    description TEXT NOT NULL,
    type VARCHAR(10) NOT NULL,
    amount NUMERIC(18,2) NOT NULL,
    balance NUMERIC(18,2) NOT NULL,
    reference VARCHAR(255) DEFAULT '',
    created_at TIMESTAMPTZ DEFAULT NOW(),

    -- Prevent duplicate transactions within a statement
    UNIQUE(statement_id, sequence)
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_statements_run_id ON statements(run_id);
CREATE INDEX IF NOT EXISTS idx_statements_account_id ON statements(account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_statement_id ON transactions(statement_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);

-- Unique index for idempotent re-saves of the same run
CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_unique_reference
ON transactions(statement_id, reference) WHERE reference != '';
`

// migrateDDL adds new columns to existing tables
const migrateDDL = `
-- Add bai2_content column if not exists
DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'runs' AND column_name = 'bai2_content') THEN
        ALTER TABLE runs ADD COLUMN bai2_content TEXT DEFAULT '';
    END IF;
END $$;

-- Add balance provenance columns if not exists
DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'statements' AND column_name = 'balance_source') THEN
        ALTER TABLE statements ADD COLUMN balance_source VARCHAR(20) DEFAULT '';
        ALTER TABLE statements ADD COLUMN balance_strategy VARCHAR(30) DEFAULT '';
        ALTER TABLE statements ADD COLUMN discrepancy BOOLEAN DEFAULT false;
    END IF;
END $$;
`

// EnsureSchema creates tables if they don't exist and runs migrations
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Run migrations for existing tables
	_, err = db.Pool.Exec(ctx, migrateDDL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
