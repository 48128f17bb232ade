// Package ledger defines the contract between the aggregate and the pluggable
// ledger backends. The aggregate holds only the Adapter interface; the
// concrete backend is selected once at startup.
package ledger

import (
	"context"
	"time"
)

// AccountRequestItem is one account of a batch create, already validated by
// the aggregate.
type AccountRequestItem struct {
	RequestedID  string
	OwnerID      string
	Type         string
	CurrencyCode string
}

// JournalEntryRequestItem is one transfer of a batch create, already
// validated by the aggregate.
type JournalEntryRequestItem struct {
	RequestedID       string
	OwnerID           string
	CurrencyCode      string
	Amount            string // canonical decimal string
	CreditedAccountID string
	DebitedAccountID  string
	Timestamp         time.Time
	Pending           bool
}

// CreatedItem associates a requested id with the id the backend attributed.
// Association is by RequestedID, never by slice position.
type CreatedItem struct {
	RequestedID  string
	AttributedID string
}

// AccountBalances carries the balances the backend reports for one account.
// Posted and pending, debit and credit sides are reported separately and are
// never netted by the adapter.
type AccountBalances struct {
	ID                        string
	PostedDebitBalance        string
	PendingDebitBalance       string
	PostedCreditBalance       string
	PendingCreditBalance      string
	TimestampLastJournalEntry int64 // unix nanoseconds, zero when no entry exists
}

// JournalEntryRecord is one journal entry as reported by the backend.
type JournalEntryRecord struct {
	ID                string
	OwnerID           string
	CurrencyCode      string
	Amount            string
	CreditedAccountID string
	DebitedAccountID  string
	Timestamp         int64 // unix nanoseconds
	Pending           bool
}

// Adapter is the single contract both ledger backends satisfy.
//
// Error policy: a transport failure or a non-empty backend errors array is
// logged and re-wrapped as apperrors.ErrLedger; adapters never retry and never
// suppress partial failures of a batch. Lifecycle operations are optional; an
// unimplemented one returns apperrors.ErrNotSupported.
type Adapter interface {
	CreateAccounts(ctx context.Context, items []AccountRequestItem) ([]CreatedItem, error)
	CreateJournalEntries(ctx context.Context, items []JournalEntryRequestItem) ([]CreatedItem, error)

	// GetAccountsByIDs renders balances with the decimals hint, keyed by
	// account id.
	GetAccountsByIDs(ctx context.Context, ids []string, decimalsHint map[string]uint) ([]AccountBalances, error)
	GetJournalEntriesByAccountID(ctx context.Context, accountID string, decimals uint) ([]JournalEntryRecord, error)

	DeleteAccountsByIDs(ctx context.Context, ids []string) error
	DeactivateAccountsByIDs(ctx context.Context, ids []string) error
	ReactivateAccountsByIDs(ctx context.Context, ids []string) error

	// Close releases the long-lived backend connection.
	Close() error
}
