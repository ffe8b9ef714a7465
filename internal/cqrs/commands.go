package cqrs

type RegisterUserCommand struct {
	Username string
	Email    string
	Password string
}

type LoginCommand struct {
	Username string
	Password string
}

type CreateLedgerCommand struct {
	UserID      string
	Name        string
	Description string
}

type JoinLedgerCommand struct {
	UserID   string
	LedgerID string
}

// CreateTransactionCommand carries the caller's identity explicitly; there is
// no ambient user context anywhere below the HTTP layer.
type CreateTransactionCommand struct {
	LedgerID        string
	UserID          string
	Username        string
	Amount          int64
	Description     string
	TransactionDate string
}

// UpdateTransactionCommand patches an existing transaction. Nil Amount or
// Description means "leave the stored value unchanged".
type UpdateTransactionCommand struct {
	ID              string
	LedgerID        string
	UserID          string
	Username        string
	Amount          *int64
	Description     *string
	TransactionDate string
}

type DeleteTransactionCommand struct {
	ID     string
	UserID string
}
