package command

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/clearledger/server/internal/cqrs"
	"github.com/clearledger/server/internal/events"
	"github.com/clearledger/server/internal/models"
)

// LedgerWriter is the write-side store for ledgers and memberships.
type LedgerWriter interface {
	LedgerGate
	Create(ctx context.Context, ledger *models.Ledger, ownerID string) error
	Join(ctx context.Context, userID, ledgerID string, joinedAt time.Time) error
}

type LedgerCommandService struct {
	ledgers   LedgerWriter
	publisher EventPublisher
}

func NewLedgerCommandService(ledgers LedgerWriter, publisher EventPublisher) *LedgerCommandService {
	return &LedgerCommandService{ledgers: ledgers, publisher: publisher}
}

func (s *LedgerCommandService) CreateLedger(ctx context.Context, cmd cqrs.CreateLedgerCommand) (*models.Ledger, error) {
	ledger := &models.Ledger{
		ID:          uuid.NewString(),
		Name:        cmd.Name,
		Description: cmd.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.ledgers.Create(ctx, ledger, cmd.UserID); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.LedgerEventsStream, events.LedgerCreated, events.LedgerCreatedEvent{
		LedgerID: ledger.ID,
		UserID:   cmd.UserID,
		Name:     ledger.Name,
	}); err != nil {
		log.Printf("Failed to publish ledger.created event: %v", err)
	}
	return ledger, nil
}

func (s *LedgerCommandService) JoinLedger(ctx context.Context, cmd cqrs.JoinLedgerCommand) error {
	exists, err := s.ledgers.HasLedger(ctx, cmd.LedgerID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("ledger not found")
	}

	if err := s.ledgers.Join(ctx, cmd.UserID, cmd.LedgerID, time.Now().UTC()); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, events.LedgerEventsStream, events.LedgerJoined, events.LedgerJoinedEvent{
		LedgerID: cmd.LedgerID,
		UserID:   cmd.UserID,
	}); err != nil {
		log.Printf("Failed to publish ledger.joined event: %v", err)
	}
	return nil
}
