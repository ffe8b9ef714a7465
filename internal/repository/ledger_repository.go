package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/clearledger/server/internal/models"
	rediscache "github.com/clearledger/server/internal/redis"
)

const ledgerKeyPrefix = "ledger:"

// LedgerRepository answers ledger existence and write-permission lookups for
// the permission gate, and manages ledgers and memberships. Ledger records
// are cached in Redis for five minutes.
type LedgerRepository struct {
	db    *sql.DB
	cache *rediscache.Cache[models.Ledger]
}

func NewLedgerRepository(db *sql.DB, redisClient *goredis.Client) *LedgerRepository {
	return &LedgerRepository{
		db:    db,
		cache: rediscache.NewCache[models.Ledger](redisClient, 5*time.Minute),
	}
}

func (r *LedgerRepository) HasLedger(ctx context.Context, ledgerID string) (bool, error) {
	if _, ok := r.cache.Get(ctx, ledgerKeyPrefix+ledgerID); ok {
		return true, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledgers WHERE id = $1)`, ledgerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger existence: %w", err)
	}
	return exists, nil
}

func (r *LedgerRepository) CanWriteTransaction(ctx context.Context, userID, ledgerID string) (bool, error) {
	var canWrite bool
	err := r.db.QueryRowContext(ctx, `
		SELECT can_write
		FROM user_ledgers
		WHERE user_id = $1 AND ledger_id = $2
	`, userID, ledgerID).Scan(&canWrite)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check write permission: %w", err)
	}
	return canWrite, nil
}

func (r *LedgerRepository) IsMember(ctx context.Context, userID, ledgerID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_ledgers WHERE user_id = $1 AND ledger_id = $2)`,
		userID, ledgerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// Create inserts the ledger and its owner membership in one transaction.
func (r *LedgerRepository) Create(ctx context.Context, ledger *models.Ledger, ownerID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledgers (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`, ledger.ID, ledger.Name, nullString(ledger.Description), ledger.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_ledgers (user_id, ledger_id, role, can_write, joined_at)
		VALUES ($1, $2, 'owner', TRUE, $3)
	`, ownerID, ledger.ID, ledger.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ledger membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}

	r.cache.Set(ctx, ledgerKeyPrefix+ledger.ID, ledger)
	return nil
}

// Join adds userID to the ledger as a writing member.
func (r *LedgerRepository) Join(ctx context.Context, userID, ledgerID string, joinedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_ledgers (user_id, ledger_id, role, can_write, joined_at)
		VALUES ($1, $2, 'member', TRUE, $3)
		ON CONFLICT (user_id, ledger_id) DO NOTHING
	`, userID, ledgerID, joinedAt)
	if err != nil {
		return fmt.Errorf("failed to join ledger: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID string) ([]models.Ledger, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.name, l.description, l.created_at
		FROM ledgers l
		JOIN user_ledgers ul ON ul.ledger_id = l.id
		WHERE ul.user_id = $1
		ORDER BY ul.joined_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []models.Ledger
	for rows.Next() {
		var ledger models.Ledger
		var description sql.NullString
		if err := rows.Scan(&ledger.ID, &ledger.Name, &description, &ledger.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		if description.Valid {
			ledger.Description = description.String
		}
		ledgers = append(ledgers, ledger)
	}
	return ledgers, rows.Err()
}
