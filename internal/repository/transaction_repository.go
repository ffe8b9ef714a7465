package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clearledger/server/internal/models"
)

// TransactionWriteRepository handles all state-mutating operations for
// transactions against the PostgreSQL write store.
type TransactionWriteRepository struct {
	db *sql.DB
}

func NewTransactionWriteRepository(db *sql.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

func (r *TransactionWriteRepository) Insert(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, ledger_id, user_id, amount, description, transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		transaction.ID, transaction.LedgerID, transaction.UserID,
		transaction.Amount, nullString(transaction.Description),
		transaction.TransactionDate, transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// Update applies a partial update: nil patch fields leave the stored column
// unchanged via COALESCE. created_at has no column in this statement, so it
// can never be overwritten here.
func (r *TransactionWriteRepository) Update(ctx context.Context, patch models.TransactionPatch) error {
	query := `
		UPDATE transactions SET
			ledger_id        = COALESCE($2, ledger_id),
			user_id          = COALESCE($3, user_id),
			amount           = COALESCE($4, amount),
			description      = COALESCE($5, description),
			transaction_date = COALESCE($6, transaction_date)
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		patch.ID,
		nullStringPtr(patch.LedgerID),
		nullStringPtr(patch.UserID),
		nullInt64Ptr(patch.Amount),
		nullStringPtr(patch.Description),
		nullTimePtr(patch.TransactionDate),
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction not found")
	}
	return nil
}

func (r *TransactionWriteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction not found")
	}
	return nil
}

func (r *TransactionWriteRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `
		SELECT id, ledger_id, user_id, amount, description, transaction_date, created_at
		FROM transactions
		WHERE id = $1
	`
	var transaction models.Transaction
	var description sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&transaction.ID, &transaction.LedgerID, &transaction.UserID,
		&transaction.Amount, &description,
		&transaction.TransactionDate, &transaction.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if description.Valid {
		transaction.Description = description.String
	}
	return &transaction, nil
}
