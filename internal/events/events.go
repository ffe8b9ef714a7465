package events

import "time"

// Event types
const (
	UserRegistered = "user.registered"

	LedgerCreated = "ledger.created"
	LedgerJoined  = "ledger.joined"

	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
)

// Stream names
const (
	UserEventsStream        = "user.events"
	LedgerEventsStream      = "ledger.events"
	TransactionEventsStream = "transaction.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type UserRegisteredEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LedgerCreatedEvent struct {
	LedgerID string `json:"ledgerId"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
}

type LedgerJoinedEvent struct {
	LedgerID string `json:"ledgerId"`
	UserID   string `json:"userId"`
}

type TransactionCreatedEvent struct {
	TransactionID string `json:"transactionId"`
	LedgerID      string `json:"ledgerId"`
	UserID        string `json:"userId"`
	Amount        int64  `json:"amount"`
}

type TransactionUpdatedEvent struct {
	TransactionID string `json:"transactionId"`
	LedgerID      string `json:"ledgerId"`
	UserID        string `json:"userId"`
}

type TransactionDeletedEvent struct {
	TransactionID string `json:"transactionId"`
	LedgerID      string `json:"ledgerId"`
	UserID        string `json:"userId"`
}
