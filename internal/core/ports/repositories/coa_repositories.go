package repositories

import (
	"context"

	"github.com/orsa-labs/coa_ledger/internal/core/domain"
)

// CoaAccountReader defines read operations for chart-of-accounts data.
type CoaAccountReader interface {
	// AccountsExistByInternalIDs reports whether every id in the input is
	// already present. It is a coarse duplicate gate, not per-item reporting.
	AccountsExistByInternalIDs(ctx context.Context, ids []string) (bool, error)

	// GetAccounts retrieves the accounts found for the given ids; unmatched
	// ids are silently omitted.
	GetAccounts(ctx context.Context, ids []string) ([]domain.CoaAccount, error)

	// GetAccountsByOwnerID retrieves all accounts belonging to an owner.
	GetAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.CoaAccount, error)

	// GetAccountsByTypes retrieves all accounts of the given types.
	GetAccountsByTypes(ctx context.Context, types []domain.AccountType) ([]domain.CoaAccount, error)
}

// CoaAccountWriter defines write operations for chart-of-accounts data.
type CoaAccountWriter interface {
	// StoreAccounts persists a batch of new accounts. A duplicate id surfaces
	// as apperrors.ErrDuplicate.
	StoreAccounts(ctx context.Context, accounts []domain.CoaAccount) error

	// UpdateAccountStatesByInternalIDs moves the given accounts to a new
	// lifecycle state.
	UpdateAccountStatesByInternalIDs(ctx context.Context, ids []string, state domain.AccountState) error
}

// CoaAccountStoreFacade combines all chart-of-accounts store interfaces.
// This is a facade for clients that need access to all operations.
type CoaAccountStoreFacade interface {
	CoaAccountReader
	CoaAccountWriter
}

// CoaAccountDurableRepository is the authoritative persistence behind the
// cache-aside store. The cache layer consults it on misses and for every
// secondary-key query.
type CoaAccountDurableRepository interface {
	InsertAccounts(ctx context.Context, accounts []domain.CoaAccount) error
	CountAccountsByIDs(ctx context.Context, ids []string) (int, error)
	FindAccountsByIDs(ctx context.Context, ids []string) ([]domain.CoaAccount, error)
	FindAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.CoaAccount, error)
	FindAccountsByTypes(ctx context.Context, types []domain.AccountType) ([]domain.CoaAccount, error)
	UpdateAccountStates(ctx context.Context, ids []string, state domain.AccountState) ([]domain.CoaAccount, error)
}
