package query

import (
	"context"
	"fmt"

	"github.com/clearledger/server/internal/cqrs"
	"github.com/clearledger/server/internal/models"
)

// TransactionReader is the read-side store for transaction projections.
type TransactionReader interface {
	SelectPageByLedger(ctx context.Context, ledgerID string, offset, limit int) ([]models.TransactionView, error)
	CountByLedger(ctx context.Context, ledgerID string) (int64, error)
}

// MembershipChecker answers ledger existence and membership lookups for the
// optional read gate.
type MembershipChecker interface {
	HasLedger(ctx context.Context, ledgerID string) (bool, error)
	IsMember(ctx context.Context, userID, ledgerID string) (bool, error)
}

// TransactionQueryService serves paginated ledger listings. With openListing
// set, any authenticated user may list any ledger; otherwise the caller must
// be a member.
type TransactionQueryService struct {
	reader      TransactionReader
	ledgers     MembershipChecker
	openListing bool
}

func NewTransactionQueryService(reader TransactionReader, ledgers MembershipChecker, openListing bool) *TransactionQueryService {
	return &TransactionQueryService{reader: reader, ledgers: ledgers, openListing: openListing}
}

// ListTransactions returns one page plus the total row count for the ledger.
// The count uses the same ledger filter as the page query, independent of the
// window, so a page past the end is empty but still reports the real total.
func (s *TransactionQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) (*models.TransactionPage, error) {
	if !s.openListing {
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
	}

	offset := (q.PageNum - 1) * q.PageSize
	records, err := s.reader.SelectPageByLedger(ctx, q.LedgerID, offset, q.PageSize)
	if err != nil {
		return nil, err
	}

	count, err := s.reader.CountByLedger(ctx, q.LedgerID)
	if err != nil {
		return nil, err
	}

	return &models.TransactionPage{
		Records:  records,
		TotalRow: count,
		PageNum:  q.PageNum,
		PageSize: q.PageSize,
	}, nil
}
