package dto

import (
	"time"

	"github.com/orsa-labs/coa_ledger/internal/core/domain"
)

// CreateJournalEntryRequest defines one item of a batch journal-entry
// creation. The entry is a pass-through to the ledger backend; it is never
// persisted locally.
type CreateJournalEntryRequest struct {
	RequestedID       *string   `json:"requestedID"` // Optional, use pointer for nullability
	OwnerID           string    `json:"ownerID" binding:"required"`
	CurrencyCode      string    `json:"currencyCode" binding:"required,uppercase,len=3"`
	Amount            string    `json:"amount" binding:"required"`
	CreditedAccountID string    `json:"creditedAccountID" binding:"required"`
	DebitedAccountID  string    `json:"debitedAccountID" binding:"required"`
	Timestamp         time.Time `json:"timestamp"`
	Pending           bool      `json:"pending"`
}

// CreateJournalEntriesResponse wraps the ids of the created entries.
type CreateJournalEntriesResponse struct {
	IDs []string `json:"ids"`
}

// JournalEntryResponse defines the data returned for one journal entry.
type JournalEntryResponse struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"ownerID"`
	CurrencyCode      string    `json:"currencyCode"`
	Amount            string    `json:"amount"`
	CreditedAccountID string    `json:"creditedAccountID"`
	DebitedAccountID  string    `json:"debitedAccountID"`
	Timestamp         time.Time `json:"timestamp"`
	Pending           bool      `json:"pending"`
}

// ToListJournalEntryResponse converts domain journal entries to DTOs.
func ToListJournalEntryResponse(entries []domain.JournalEntry) []JournalEntryResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i, entry := range entries {
		res[i] = JournalEntryResponse{
			ID:                entry.RequestedID,
			OwnerID:           entry.OwnerID,
			CurrencyCode:      entry.CurrencyCode,
			Amount:            entry.Amount,
			CreditedAccountID: entry.CreditedAccountID,
			DebitedAccountID:  entry.DebitedAccountID,
			Timestamp:         entry.Timestamp,
			Pending:           entry.Pending,
		}
	}
	return res
}
