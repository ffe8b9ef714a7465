package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clearledger/server/internal/models"
)

// TransactionReadRepository serves the read-side projections: ledger pages
// joined with creator usernames, row counts and amount aggregates. Both the
// page and count queries filter on ledger_id alone, so totals stay consistent
// with the window.
type TransactionReadRepository struct {
	db *sql.DB
}

func NewTransactionReadRepository(db *sql.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// SelectPageByLedger returns one window of a ledger's transactions, joined
// with users for the creator's username. Rows are ordered by transaction_date
// descending, then id, so paging is deterministic.
func (r *TransactionReadRepository) SelectPageByLedger(ctx context.Context, ledgerID string, offset, limit int) ([]models.TransactionView, error) {
	query := `
		SELECT t.id, t.ledger_id, t.user_id, u.username, t.amount, t.description, t.transaction_date, t.created_at
		FROM transactions t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.ledger_id = $1
		ORDER BY t.transaction_date DESC, t.id
		OFFSET $2 LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, ledgerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var views []models.TransactionView
	for rows.Next() {
		var view models.TransactionView
		var username, description sql.NullString

		if err := rows.Scan(
			&view.ID, &view.LedgerID, &view.UserID, &username,
			&view.Amount, &description, &view.TransactionDate, &view.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if username.Valid {
			view.Username = username.String
		}
		if description.Valid {
			view.Description = description.String
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// CountByLedger counts every transaction in the ledger, independent of any
// page window.
func (r *TransactionReadRepository) CountByLedger(ctx context.Context, ledgerID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE ledger_id = $1`, ledgerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// SumByLedger returns the ledger's income (sum of positive amounts) and
// expense (sum of negative amounts), both in cents.
func (r *TransactionReadRepository) SumByLedger(ctx context.Context, ledgerID string) (income, expense int64, err error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0),
			COALESCE(SUM(amount) FILTER (WHERE amount < 0), 0)
		FROM transactions
		WHERE ledger_id = $1
	`
	if err := r.db.QueryRowContext(ctx, query, ledgerID).Scan(&income, &expense); err != nil {
		return 0, 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return income, expense, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64Ptr(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
