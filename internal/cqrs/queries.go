package cqrs

// ListLedgersQuery fetches all ledgers the user belongs to.
type ListLedgersQuery struct {
	UserID string
}

// LedgerStatsQuery summarises one ledger's income, expense and balance.
type LedgerStatsQuery struct {
	LedgerID string
	UserID   string
}

// ListTransactionsQuery fetches one page of a ledger's transactions.
// PageNum is 1-based.
type ListTransactionsQuery struct {
	LedgerID string
	UserID   string
	PageNum  int
	PageSize int
}
