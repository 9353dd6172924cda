package postgres

import (
	"context"
	"fmt"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

// GetOrCreateAccount finds an existing account by Fusion account id or creates
// a new one. Fields refresh on every run so the mirror tracks the instance.
func (db *DB) GetOrCreateAccount(ctx context.Context, account common.Account) (string, error) {
	var id string

	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM accounts WHERE fusion_account_id = $1
	`, account.AccountID).Scan(&id)

	if err == nil {
		_, err = db.Pool.Exec(ctx, `
			UPDATE accounts
			SET account_number = $1,
			    account_name = $2,
			    bank_name = $3,
			    currency = $4,
			    legal_entity = $5,
			    active = $6,
			    updated_at = NOW()
			WHERE id = $7
		`, account.AccountNumber, account.AccountName, account.BankName,
			account.Currency, account.LegalEntity, account.Active, id)
		if err != nil {
			return "", fmt.Errorf("failed to update account: %w", err)
		}
		return id, nil
	}

	err = db.Pool.QueryRow(ctx, `
		INSERT INTO accounts (fusion_account_id, account_number, account_name, bank_name, currency, legal_entity, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, account.AccountID, account.AccountNumber, account.AccountName,
		account.BankName, account.Currency, account.LegalEntity, account.Active).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}

	return id, nil
}
