package query

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/clearledger/server/internal/cqrs"
	"github.com/clearledger/server/internal/models"
)

// LedgerReader lists a user's ledgers.
type LedgerReader interface {
	MembershipChecker
	ListByUser(ctx context.Context, userID string) ([]models.Ledger, error)
}

// AmountSummer aggregates a ledger's amounts in cents.
type AmountSummer interface {
	SumByLedger(ctx context.Context, ledgerID string) (income, expense int64, err error)
}

type LedgerQueryService struct {
	ledgers LedgerReader
	sums    AmountSummer
}

func NewLedgerQueryService(ledgers LedgerReader, sums AmountSummer) *LedgerQueryService {
	return &LedgerQueryService{ledgers: ledgers, sums: sums}
}

func (s *LedgerQueryService) ListLedgers(ctx context.Context, q cqrs.ListLedgersQuery) ([]models.Ledger, error) {
	return s.ledgers.ListByUser(ctx, q.UserID)
}

// GetLedgerStats returns income, expense and balance in display units.
// Stats require membership regardless of the listing policy.
func (s *LedgerQueryService) GetLedgerStats(ctx context.Context, q cqrs.LedgerStatsQuery) (*models.LedgerStats, error) {
	exists, err := s.ledgers.HasLedger(ctx, q.LedgerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("ledger not found")
	}
	member, err := s.ledgers.IsMember(ctx, q.UserID, q.LedgerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("forbidden")
	}

	income, expense, err := s.sums.SumByLedger(ctx, q.LedgerID)
	if err != nil {
		return nil, err
	}

	// Amounts are stored in cents; shift the exponent for display units.
	incomeDec := decimal.New(income, -2)
	expenseDec := decimal.New(expense, -2)
	return &models.LedgerStats{
		LedgerID: q.LedgerID,
		Income:   incomeDec,
		Expense:  expenseDec,
		Balance:  incomeDec.Add(expenseDec),
	}, nil
}
