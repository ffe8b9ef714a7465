package command

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/clearledger/server/internal/cqrs"
	"github.com/clearledger/server/internal/models"
)

// ---- fakes ----

type fakeGate struct {
	ledgers  map[string]bool
	writers  map[string]bool // key: userID|ledgerID
	hasCalls []string
	canCalls []string
}

func (f *fakeGate) HasLedger(_ context.Context, ledgerID string) (bool, error) {
	f.hasCalls = append(f.hasCalls, ledgerID)
	return f.ledgers[ledgerID], nil
}

func (f *fakeGate) CanWriteTransaction(_ context.Context, userID, ledgerID string) (bool, error) {
	f.canCalls = append(f.canCalls, userID+"|"+ledgerID)
	return f.writers[userID+"|"+ledgerID], nil
}

type fakeWriter struct {
	inserted []*models.Transaction
	updated  []models.TransactionPatch
	deleted  []string
	rows     map[string]*models.Transaction
}

func (f *fakeWriter) Insert(_ context.Context, t *models.Transaction) error {
	f.inserted = append(f.inserted, t)
	return nil
}

func (f *fakeWriter) Update(_ context.Context, p models.TransactionPatch) error {
	if f.rows != nil {
		if _, ok := f.rows[p.ID]; !ok {
			return fmt.Errorf("transaction not found")
		}
	}
	f.updated = append(f.updated, p)
	return nil
}

func (f *fakeWriter) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeWriter) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	if row, ok := f.rows[id]; ok {
		return row, nil
	}
	return nil, fmt.Errorf("transaction not found")
}

type fakeIDGen struct {
	n int
}

func (f *fakeIDGen) NextID(context.Context) (string, error) {
	f.n++
	return fmt.Sprintf("tx%04d", f.n), nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, any) error { return nil }

const testDateFormat = "2006-01-02 15:04:05"

func newTestService(gate *fakeGate, writer *fakeWriter) *TransactionCommandService {
	return NewTransactionCommandService(writer, gate, &fakeIDGen{}, nopPublisher{}, testDateFormat)
}

func openGate() *fakeGate {
	return &fakeGate{
		ledgers: map[string]bool{"L1": true},
		writers: map[string]bool{"U1|L1": true},
	}
}

func createCmd() cqrs.CreateTransactionCommand {
	return cqrs.CreateTransactionCommand{
		LedgerID:        "L1",
		UserID:          "U1",
		Username:        "alice",
		Amount:          -450,
		Description:     "coffee",
		TransactionDate: "2024-01-15 10:00:00",
	}
}

// ---- tests ----

func TestCreateTransactionMissingLedger(t *testing.T) {
	// The user has no permission either; not-found must win because ledger
	// existence is checked first.
	gate := &fakeGate{ledgers: map[string]bool{}, writers: map[string]bool{}}
	writer := &fakeWriter{}
	svc := newTestService(gate, writer)

	cmd := createCmd()
	cmd.LedgerID = "L2"
	_, err := svc.CreateTransaction(context.Background(), cmd)
	if err == nil || err.Error() != "ledger not found" {
		t.Fatalf("expected ledger not found, got %v", err)
	}
	if len(gate.canCalls) != 0 {
		t.Errorf("permission checked before existence result was honoured")
	}
	if len(writer.inserted) != 0 {
		t.Errorf("row persisted despite failed gate")
	}
}

func TestCreateTransactionForbidden(t *testing.T) {
	gate := &fakeGate{
		ledgers: map[string]bool{"L1": true},
		writers: map[string]bool{"U1|L1": true},
	}
	writer := &fakeWriter{}
	svc := newTestService(gate, writer)

	cmd := createCmd()
	cmd.UserID = "U2"
	_, err := svc.CreateTransaction(context.Background(), cmd)
	if err == nil || err.Error() != "forbidden" {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(writer.inserted) != 0 {
		t.Errorf("row persisted despite failed gate")
	}
}

func TestCreateTransactionSuccess(t *testing.T) {
	gate := openGate()
	writer := &fakeWriter{}
	svc := newTestService(gate, writer)

	start := time.Now().UTC()
	view, err := svc.CreateTransaction(context.Background(), createCmd())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.ID == "" {
		t.Errorf("expected a generated id")
	}
	if view.Username != "alice" {
		t.Errorf("expected username alice, got %q", view.Username)
	}
	if view.Description != "coffee" || view.Amount != -450 {
		t.Errorf("view does not reflect the request: %+v", view)
	}
	wantDate := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if !view.TransactionDate.Equal(wantDate) {
		t.Errorf("expected transactionDate %v, got %v", wantDate, view.TransactionDate)
	}

	if len(writer.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(writer.inserted))
	}
	row := writer.inserted[0]
	if row.UserID != "U1" || row.LedgerID != "L1" {
		t.Errorf("ownership fields wrong on persisted row: %+v", row)
	}
	if row.CreatedAt.Before(start) {
		t.Errorf("createdAt %v is before call start %v", row.CreatedAt, start)
	}
}

func TestCreateTransactionUniqueIDs(t *testing.T) {
	gate := openGate()
	writer := &fakeWriter{}
	svc := newTestService(gate, writer)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		view, err := svc.CreateTransaction(context.Background(), createCmd())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[view.ID] {
			t.Fatalf("duplicate id %q", view.ID)
		}
		seen[view.ID] = true
	}
}

func TestCreateTransactionBadDate(t *testing.T) {
	gate := openGate()
	writer := &fakeWriter{}
	svc := newTestService(gate, writer)

	cmd := createCmd()
	cmd.TransactionDate = "15/01/2024"
	_, err := svc.CreateTransaction(context.Background(), cmd)
	if err == nil || err.Error() != "invalid transaction date" {
		t.Fatalf("expected invalid transaction date, got %v", err)
	}
	if len(writer.inserted) != 0 {
		t.Errorf("row persisted despite parse failure")
	}
}

func TestUpdateTransactionPartialPatch(t *testing.T) {
	gate := openGate()
	writer := &fakeWriter{rows: map[string]*models.Transaction{"tx0001": {ID: "tx0001", LedgerID: "L1"}}}
	svc := newTestService(gate, writer)

	// Description omitted: the patch must carry nil so the stored value is
	// left untouched.
	_, err := svc.UpdateTransaction(context.Background(), cqrs.UpdateTransactionCommand{
		ID:              "tx0001",
		LedgerID:        "L1",
		UserID:          "U1",
		Username:        "alice",
		TransactionDate: "2024-01-15 10:00:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.updated) != 1 {
		t.Fatalf("expected 1 update, got %d", len(writer.updated))
	}
	patch := writer.updated[0]
	if patch.Description != nil {
		t.Errorf("omitted description must stay nil in the patch, got %q", *patch.Description)
	}
	if patch.Amount != nil {
		t.Errorf("omitted amount must stay nil in the patch")
	}
	if patch.UserID == nil || *patch.UserID != "U1" {
		t.Errorf("caller's user id not asserted onto the patch")
	}
	if patch.TransactionDate == nil {
		t.Errorf("transaction date missing from the patch")
	}
}

func TestUpdateTransactionSetsProvidedFields(t *testing.T) {
	gate := openGate()
	writer := &fakeWriter{rows: map[string]*models.Transaction{"tx0001": {ID: "tx0001", LedgerID: "L1"}}}
	svc := newTestService(gate, writer)

	description := "groceries"
	amount := int64(-1250)
	view, err := svc.UpdateTransaction(context.Background(), cqrs.UpdateTransactionCommand{
		ID:              "tx0001",
		LedgerID:        "L1",
		UserID:          "U1",
		Username:        "alice",
		Amount:          &amount,
		Description:     &description,
		TransactionDate: "2024-02-01 09:30:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	patch := writer.updated[0]
	if patch.Description == nil || *patch.Description != "groceries" {
		t.Errorf("provided description not carried in the patch")
	}
	if view.Description != "groceries" || view.Amount != -1250 {
		t.Errorf("view does not reflect the patch intent: %+v", view)
	}
	if view.Username != "alice" {
		t.Errorf("expected caller's username on the view, got %q", view.Username)
	}
}

func TestUpdateTransactionMissingRow(t *testing.T) {
	gate := openGate()
	writer := &fakeWriter{rows: map[string]*models.Transaction{}}
	svc := newTestService(gate, writer)

	_, err := svc.UpdateTransaction(context.Background(), cqrs.UpdateTransactionCommand{
		ID:              "tx9999",
		LedgerID:        "L1",
		UserID:          "U1",
		TransactionDate: "2024-01-15 10:00:00",
	})
	if err == nil || err.Error() != "transaction not found" {
		t.Fatalf("expected transaction not found, got %v", err)
	}
}

func TestUpdateTransactionGateFailures(t *testing.T) {
	tests := []struct {
		name    string
		gate    *fakeGate
		wantErr string
	}{
		{
			name:    "missing ledger",
			gate:    &fakeGate{ledgers: map[string]bool{}, writers: map[string]bool{}},
			wantErr: "ledger not found",
		},
		{
			name:    "no write permission",
			gate:    &fakeGate{ledgers: map[string]bool{"L1": true}, writers: map[string]bool{}},
			wantErr: "forbidden",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &fakeWriter{}
			svc := newTestService(tt.gate, writer)
			_, err := svc.UpdateTransaction(context.Background(), cqrs.UpdateTransactionCommand{
				ID:              "tx0001",
				LedgerID:        "L1",
				UserID:          "U1",
				TransactionDate: "2024-01-15 10:00:00",
			})
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
			if len(writer.updated) != 0 {
				t.Errorf("row patched despite failed gate")
			}
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	gate := openGate()
	writer := &fakeWriter{rows: map[string]*models.Transaction{
		"tx0001": {ID: "tx0001", LedgerID: "L1", UserID: "U1"},
	}}
	svc := newTestService(gate, writer)

	err := svc.DeleteTransaction(context.Background(), cqrs.DeleteTransactionCommand{ID: "tx0001", UserID: "U1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(writer.deleted) != 1 || writer.deleted[0] != "tx0001" {
		t.Errorf("expected tx0001 deleted, got %v", writer.deleted)
	}
	if len(gate.hasCalls) != 1 || gate.hasCalls[0] != "L1" {
		t.Errorf("gate not run against the row's ledger: %v", gate.hasCalls)
	}
}

func TestDeleteTransactionMissingRow(t *testing.T) {
	svc := newTestService(openGate(), &fakeWriter{rows: map[string]*models.Transaction{}})

	err := svc.DeleteTransaction(context.Background(), cqrs.DeleteTransactionCommand{ID: "tx9999", UserID: "U1"})
	if err == nil || err.Error() != "transaction not found" {
		t.Fatalf("expected transaction not found, got %v", err)
	}
}
