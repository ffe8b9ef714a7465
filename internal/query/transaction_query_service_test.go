package query

import (
	"context"
	"testing"

	"github.com/clearledger/server/internal/cqrs"
	"github.com/clearledger/server/internal/models"
)

// ---- fakes ----

type fakeReader struct {
	records    []models.TransactionView
	total      int64
	gotOffset  int
	gotLimit   int
	countCalls int
}

func (f *fakeReader) SelectPageByLedger(_ context.Context, _ string, offset, limit int) ([]models.TransactionView, error) {
	f.gotOffset = offset
	f.gotLimit = limit
	if offset >= len(f.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return f.records[offset:end], nil
}

func (f *fakeReader) CountByLedger(context.Context, string) (int64, error) {
	f.countCalls++
	return f.total, nil
}

type fakeMembership struct {
	ledgers map[string]bool
	members map[string]bool // key: userID|ledgerID
}

func (f *fakeMembership) HasLedger(_ context.Context, ledgerID string) (bool, error) {
	return f.ledgers[ledgerID], nil
}

func (f *fakeMembership) IsMember(_ context.Context, userID, ledgerID string) (bool, error) {
	return f.members[userID+"|"+ledgerID], nil
}

func viewsOf(n int) []models.TransactionView {
	views := make([]models.TransactionView, n)
	for i := range views {
		views[i] = models.TransactionView{ID: string(rune('a' + i)), LedgerID: "L1"}
	}
	return views
}

// ---- tests ----

func TestListTransactionsOffset(t *testing.T) {
	reader := &fakeReader{records: viewsOf(25), total: 25}
	svc := NewTransactionQueryService(reader, &fakeMembership{}, true)

	page, err := svc.ListTransactions(context.Background(), cqrs.ListTransactionsQuery{
		LedgerID: "L1", UserID: "U1", PageNum: 2, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.gotOffset != 20 {
		t.Errorf("expected offset 20 for page 2 size 10, got %d", reader.gotOffset)
	}
	if reader.gotLimit != 10 {
		t.Errorf("expected limit 10, got %d", reader.gotLimit)
	}
	if page.TotalRow != 25 {
		t.Errorf("expected totalRow 25, got %d", page.TotalRow)
	}
	if len(page.Records) != 5 {
		t.Errorf("expected 5 records on the last page, got %d", len(page.Records))
	}
}

func TestListTransactionsPastLastPage(t *testing.T) {
	reader := &fakeReader{records: viewsOf(3), total: 3}
	svc := NewTransactionQueryService(reader, &fakeMembership{}, true)

	page, err := svc.ListTransactions(context.Background(), cqrs.ListTransactionsQuery{
		LedgerID: "L1", UserID: "U1", PageNum: 5, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Records) != 0 {
		t.Errorf("expected empty page past the end, got %d records", len(page.Records))
	}
	if page.TotalRow != 3 {
		t.Errorf("total must be independent of the window, got %d", page.TotalRow)
	}
}

func TestListTransactionsOpenListingSkipsGate(t *testing.T) {
	reader := &fakeReader{records: viewsOf(1), total: 1}
	// Caller is not a member; with open listing the query still succeeds.
	membership := &fakeMembership{ledgers: map[string]bool{"L1": true}, members: map[string]bool{}}
	svc := NewTransactionQueryService(reader, membership, true)

	if _, err := svc.ListTransactions(context.Background(), cqrs.ListTransactionsQuery{
		LedgerID: "L1", UserID: "U2", PageNum: 1, PageSize: 10,
	}); err != nil {
		t.Fatalf("open listing must not gate reads: %v", err)
	}
}

func TestListTransactionsClosedListing(t *testing.T) {
	tests := []struct {
		name     string
		ledgerID string
		userID   string
		wantErr  string
	}{
		{name: "missing ledger", ledgerID: "L2", userID: "U1", wantErr: "ledger not found"},
		{name: "not a member", ledgerID: "L1", userID: "U2", wantErr: "forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{records: viewsOf(1), total: 1}
			membership := &fakeMembership{
				ledgers: map[string]bool{"L1": true},
				members: map[string]bool{"U1|L1": true},
			}
			svc := NewTransactionQueryService(reader, membership, false)
			_, err := svc.ListTransactions(context.Background(), cqrs.ListTransactionsQuery{
				LedgerID: tt.ledgerID, UserID: tt.userID, PageNum: 1, PageSize: 10,
			})
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestListTransactionsClosedListingMember(t *testing.T) {
	reader := &fakeReader{records: viewsOf(1), total: 1}
	membership := &fakeMembership{
		ledgers: map[string]bool{"L1": true},
		members: map[string]bool{"U1|L1": true},
	}
	svc := NewTransactionQueryService(reader, membership, false)

	page, err := svc.ListTransactions(context.Background(), cqrs.ListTransactionsQuery{
		LedgerID: "L1", UserID: "U1", PageNum: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalRow != 1 || len(page.Records) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
}
