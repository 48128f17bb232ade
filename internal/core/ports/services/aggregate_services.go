package services

import (
	"context"

	"github.com/orsa-labs/coa_ledger/internal/core/domain"
	"github.com/orsa-labs/coa_ledger/internal/dto"
)

// CoaWriterSvc defines the mutating operations of the aggregate.
type CoaWriterSvc interface {
	// CreateAccounts validates and creates a batch of accounts through the
	// ledger backend, then persists the chart-of-accounts snapshots.
	CreateAccounts(ctx context.Context, requests []dto.CreateAccountRequest) ([]dto.CreatedAccount, error)

	// CreateJournalEntries validates and delegates a batch of transfers to the
	// ledger backend. Nothing is persisted locally.
	CreateJournalEntries(ctx context.Context, requests []dto.CreateJournalEntryRequest) ([]string, error)

	// DeactivateAccountsByIDs moves ACTIVE accounts to INACTIVE.
	DeactivateAccountsByIDs(ctx context.Context, ids []string) error

	// ReactivateAccountsByIDs moves INACTIVE accounts back to ACTIVE.
	ReactivateAccountsByIDs(ctx context.Context, ids []string) error

	// DeleteAccountsByIDs moves ACTIVE accounts to the terminal DELETED state.
	DeleteAccountsByIDs(ctx context.Context, ids []string) error
}

// CoaReaderSvc defines the read operations of the aggregate.
type CoaReaderSvc interface {
	// GetCoaAccountsByIDs returns only the accounts found; missing ids are
	// silently omitted, never an error.
	GetCoaAccountsByIDs(ctx context.Context, ids []string) ([]domain.CoaAccount, error)

	// GetCoaAccountsByOwnerID returns all accounts belonging to an owner.
	GetCoaAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.CoaAccount, error)

	// GetCoaAccountsByTypes is unauthenticated at this layer by design; it
	// serves trusted internal collaborators such as the control-plane sync.
	GetCoaAccountsByTypes(ctx context.Context, types []domain.AccountType) ([]domain.CoaAccount, error)

	// GetCoaActiveCurrencies returns the current currency snapshot.
	GetCoaActiveCurrencies() []domain.Currency

	// GetAccountsByIDs merges chart-of-accounts metadata with the balances
	// reported by the ledger backend.
	GetAccountsByIDs(ctx context.Context, ids []string) ([]domain.AccountWithBalances, error)

	// GetJournalEntriesByAccountID returns the entries referencing the account
	// as either credited or debited party.
	GetJournalEntriesByAccountID(ctx context.Context, accountID string) ([]domain.JournalEntry, error)
}

// CoaSvcFacade combines all aggregate interfaces plus change-listener
// registration. At most one handler is registered; it is invoked
// asynchronously after successful account creation and its failure never
// propagates to the triggering call.
type CoaSvcFacade interface {
	CoaReaderSvc
	CoaWriterSvc

	SetAccountsChangedHandler(fn func([]domain.CoaAccount))
}
