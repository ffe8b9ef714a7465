package command

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/clearledger/server/internal/cqrs"
	"github.com/clearledger/server/internal/events"
	"github.com/clearledger/server/internal/models"
)

// LedgerGate answers the two lookups behind the permission gate.
type LedgerGate interface {
	HasLedger(ctx context.Context, ledgerID string) (bool, error)
	CanWriteTransaction(ctx context.Context, userID, ledgerID string) (bool, error)
}

// TransactionWriter is the write-side store for transactions.
type TransactionWriter interface {
	Insert(ctx context.Context, transaction *models.Transaction) error
	Update(ctx context.Context, patch models.TransactionPatch) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
}

// IDGenerator produces globally unique transaction ids.
type IDGenerator interface {
	NextID(ctx context.Context) (string, error)
}

// EventPublisher appends domain events to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// TransactionCommandService orchestrates transaction writes: permission gate
// first, then id generation and date parsing, then a single store call.
type TransactionCommandService struct {
	writer     TransactionWriter
	ledgers    LedgerGate
	ids        IDGenerator
	publisher  EventPublisher
	dateFormat string
}

func NewTransactionCommandService(
	writer TransactionWriter,
	ledgers LedgerGate,
	ids IDGenerator,
	publisher EventPublisher,
	dateFormat string,
) *TransactionCommandService {
	return &TransactionCommandService{
		writer:     writer,
		ledgers:    ledgers,
		ids:        ids,
		publisher:  publisher,
		dateFormat: dateFormat,
	}
}

// preValidate confirms the ledger exists before checking write permission, so
// a missing ledger always reports not-found rather than forbidden.
func (s *TransactionCommandService) preValidate(ctx context.Context, userID, ledgerID string) error {
	exists, err := s.ledgers.HasLedger(ctx, ledgerID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("ledger not found")
	}

	canWrite, err := s.ledgers.CanWriteTransaction(ctx, userID, ledgerID)
	if err != nil {
		return err
	}
	if !canWrite {
		return fmt.Errorf("forbidden")
	}
	return nil
}

func (s *TransactionCommandService) CreateTransaction(ctx context.Context, cmd cqrs.CreateTransactionCommand) (*models.TransactionView, error) {
	if err := s.preValidate(ctx, cmd.UserID, cmd.LedgerID); err != nil {
		return nil, err
	}

	id, err := s.ids.NextID(ctx)
	if err != nil {
		return nil, err
	}

	transactionDate, err := time.Parse(s.dateFormat, cmd.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction date")
	}

	transaction := &models.Transaction{
		ID:              id,
		LedgerID:        cmd.LedgerID,
		UserID:          cmd.UserID,
		Amount:          cmd.Amount,
		Description:     cmd.Description,
		TransactionDate: transactionDate,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.writer.Insert(ctx, transaction); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		TransactionID: transaction.ID,
		LedgerID:      transaction.LedgerID,
		UserID:        transaction.UserID,
		Amount:        transaction.Amount,
	}); err != nil {
		log.Printf("Failed to publish transaction.created event: %v", err)
	}

	return transactionToView(transaction, cmd.Username), nil
}

// UpdateTransaction patches the named row. The caller's user id is asserted
// onto the row; created_at is absent from the patch by construction. The
// returned view reflects the submitted patch, not a re-read of the row.
func (s *TransactionCommandService) UpdateTransaction(ctx context.Context, cmd cqrs.UpdateTransactionCommand) (*models.TransactionView, error) {
	if err := s.preValidate(ctx, cmd.UserID, cmd.LedgerID); err != nil {
		return nil, err
	}

	transactionDate, err := time.Parse(s.dateFormat, cmd.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction date")
	}

	patch := models.TransactionPatch{
		ID:              cmd.ID,
		LedgerID:        &cmd.LedgerID,
		UserID:          &cmd.UserID,
		Amount:          cmd.Amount,
		Description:     cmd.Description,
		TransactionDate: &transactionDate,
	}
	if err := s.writer.Update(ctx, patch); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionUpdated, events.TransactionUpdatedEvent{
		TransactionID: cmd.ID,
		LedgerID:      cmd.LedgerID,
		UserID:        cmd.UserID,
	}); err != nil {
		log.Printf("Failed to publish transaction.updated event: %v", err)
	}

	view := &models.TransactionView{
		ID:              cmd.ID,
		LedgerID:        cmd.LedgerID,
		UserID:          cmd.UserID,
		Username:        cmd.Username,
		TransactionDate: transactionDate,
	}
	if cmd.Amount != nil {
		view.Amount = *cmd.Amount
	}
	if cmd.Description != nil {
		view.Description = *cmd.Description
	}
	return view, nil
}

// DeleteTransaction removes a row after gating against the row's own ledger.
func (s *TransactionCommandService) DeleteTransaction(ctx context.Context, cmd cqrs.DeleteTransactionCommand) error {
	transaction, err := s.writer.GetByID(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if err := s.preValidate(ctx, cmd.UserID, transaction.LedgerID); err != nil {
		return err
	}
	if err := s.writer.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionDeleted, events.TransactionDeletedEvent{
		TransactionID: cmd.ID,
		LedgerID:      transaction.LedgerID,
		UserID:        cmd.UserID,
	}); err != nil {
		log.Printf("Failed to publish transaction.deleted event: %v", err)
	}
	return nil
}

// transactionToView projects the in-memory record with the caller's username,
// avoiding a re-read from storage.
func transactionToView(t *models.Transaction, username string) *models.TransactionView {
	return &models.TransactionView{
		ID:              t.ID,
		LedgerID:        t.LedgerID,
		UserID:          t.UserID,
		Username:        username,
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionDate: t.TransactionDate,
		CreatedAt:       t.CreatedAt,
	}
}
