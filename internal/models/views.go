package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionView is the read-optimised projection of a transaction,
// denormalised with the creator's username at query time.
// CreatedAt is populated for internal use but never serialised to the API.
type TransactionView struct {
	ID              string    `json:"id"`
	LedgerID        string    `json:"ledgerId"`
	UserID          string    `json:"userId"`
	Username        string    `json:"username"`
	Amount          int64     `json:"amount"`
	Description     string    `json:"description,omitempty"`
	TransactionDate time.Time `json:"transactionDate"`
	CreatedAt       time.Time `json:"-"`
}

// TransactionPage is one window of a ledger's transactions. TotalRow counts
// every row matching the ledger filter, independent of the page window.
type TransactionPage struct {
	Records  []TransactionView `json:"records"`
	TotalRow int64             `json:"totalRow"`
	PageNum  int               `json:"pageNum"`
	PageSize int               `json:"pageSize"`
}

// LedgerStats summarises a ledger in display units rather than cents.
type LedgerStats struct {
	LedgerID string          `json:"ledgerId"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Balance  decimal.Decimal `json:"balance"`
}
