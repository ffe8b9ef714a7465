package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdTimestamp"`
}

// CurrentUser is the authenticated caller's identity, resolved from the JWT
// by the auth middleware and passed explicitly into every service operation.
type CurrentUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Ledger struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdTimestamp"`
}

// UserLedger links a user to a ledger they may act on. CanWrite gates
// transaction writes; Role distinguishes the creator from joined members.
type UserLedger struct {
	UserID   string    `json:"userId"`
	LedgerID string    `json:"ledgerId"`
	Role     string    `json:"role"`
	CanWrite bool      `json:"canWrite"`
	JoinedAt time.Time `json:"joinedTimestamp"`
}

// Transaction is the write-side record. Amount is in cents. CreatedAt is
// stamped once at creation and never carried in update payloads.
type Transaction struct {
	ID              string    `json:"id"`
	LedgerID        string    `json:"ledgerId"`
	UserID          string    `json:"userId"`
	Amount          int64     `json:"amount"`
	Description     string    `json:"description,omitempty"`
	TransactionDate time.Time `json:"transactionDate"`
	CreatedAt       time.Time `json:"-"`
}

// TransactionPatch is an explicit partial update: a nil field leaves the
// stored column unchanged, a non-nil field overwrites it. CreatedAt has no
// slot here so an update can never touch it.
type TransactionPatch struct {
	ID              string
	LedgerID        *string
	UserID          *string
	Amount          *int64
	Description     *string
	TransactionDate *time.Time
}
