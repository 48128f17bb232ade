package domain

import "time"

// JournalEntry is a transfer between two chart-of-accounts entries. It is not
// persisted locally; the aggregate validates it and delegates it to the ledger
// backend, which is the system of record for journal entries.
type JournalEntry struct {
	RequestedID       string    `json:"requestedID"`
	OwnerID           string    `json:"ownerID"`
	CurrencyCode      string    `json:"currencyCode"`
	Amount            string    `json:"amount"` // decimal string, canonical form
	CreditedAccountID string    `json:"creditedAccountID"`
	DebitedAccountID  string    `json:"debitedAccountID"`
	Timestamp         time.Time `json:"timestamp"`
	Pending           bool      `json:"pending"`
}
