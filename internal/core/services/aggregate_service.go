package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	"github.com/orsa-labs/coa_ledger/internal/core/domain"
	"github.com/orsa-labs/coa_ledger/internal/core/ports/ledger"
	portsrepo "github.com/orsa-labs/coa_ledger/internal/core/ports/repositories"
	portssvc "github.com/orsa-labs/coa_ledger/internal/core/ports/services"
	"github.com/orsa-labs/coa_ledger/internal/dto"
	"github.com/orsa-labs/coa_ledger/internal/utils/money"
)

// Privilege identifiers the aggregate requires from the authorization
// collaborator.
const (
	PrivilegeCreateAccounts       = "COA_CREATE_ACCOUNTS"
	PrivilegeCreateJournalEntries = "COA_CREATE_JOURNAL_ENTRIES"
	PrivilegeViewAccounts         = "COA_VIEW_ACCOUNTS"
	PrivilegeViewJournalEntries   = "COA_VIEW_JOURNAL_ENTRIES"
)

// CoaService is the aggregate: the sole writer of chart-of-accounts records
// and the only component with business-rule knowledge. It is stateless per
// call; the currency snapshot and the change handler are the only in-process
// state, both swapped atomically or guarded.
type CoaService struct {
	BaseService
	store          portsrepo.CoaAccountStoreFacade
	backend        ledger.Adapter
	currencySource portssvc.CurrencySource

	currencies atomic.Pointer[[]domain.Currency]

	handlerMu       sync.Mutex
	accountsChanged func([]domain.CoaAccount)
}

// NewCoaService wires the aggregate with its collaborators and subscribes to
// currency hot reloads. The snapshot is replaced whole on reload so readers
// never observe a half-updated list.
func NewCoaService(
	store portsrepo.CoaAccountStoreFacade,
	backend ledger.Adapter,
	authorizer portssvc.PrivilegeAuthorizer,
	currencySource portssvc.CurrencySource,
) *CoaService {
	s := &CoaService{
		BaseService:    BaseService{Authorizer: authorizer},
		store:          store,
		backend:        backend,
		currencySource: currencySource,
	}
	s.reloadCurrencies()
	currencySource.Subscribe(s.reloadCurrencies)
	return s
}

// Ensure CoaService implements the full aggregate facade.
var _ portssvc.CoaSvcFacade = (*CoaService)(nil)

func (s *CoaService) reloadCurrencies() {
	snapshot := s.currencySource.GetCurrencies()
	s.currencies.Store(&snapshot)
}

func (s *CoaService) currencyByCode(code string) (domain.Currency, bool) {
	for _, currency := range *s.currencies.Load() {
		if currency.Code == code {
			return currency, true
		}
	}
	return domain.Currency{}, false
}

// SetAccountsChangedHandler registers the single change handler invoked after
// successful account creation. Registration replaces any previous handler.
func (s *CoaService) SetAccountsChangedHandler(fn func([]domain.CoaAccount)) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	s.accountsChanged = fn
}

// notifyAccountsChanged fires the registered handler without blocking the
// caller. A panicking handler is logged and never fails the triggering write.
func (s *CoaService) notifyAccountsChanged(ctx context.Context, accounts []domain.CoaAccount) {
	s.handlerMu.Lock()
	handler := s.accountsChanged
	s.handlerMu.Unlock()
	if handler == nil || len(accounts) == 0 {
		return
	}

	logger := s.GetLogger(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Accounts-changed handler panicked", slog.Any("panic", r))
			}
		}()
		handler(accounts)
	}()
}

// CreateAccounts validates the whole batch, creates it through the ledger
// backend in one call, persists the resulting chart-of-accounts snapshots and
// notifies the change handler. A backend failure leaves the store untouched;
// a backend returning fewer items than requested persists what was created
// and reports partial completion.
func (s *CoaService) CreateAccounts(ctx context.Context, requests []dto.CreateAccountRequest) ([]dto.CreatedAccount, error) {
	if err := s.Authorize(ctx, PrivilegeCreateAccounts); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return []dto.CreatedAccount{}, nil
	}

	// Single bulk duplicate gate over the caller-supplied ids. The store's
	// uniqueness constraint remains the final arbiter for races.
	requestedIDs := make([]string, 0, len(requests))
	for _, req := range requests {
		if req.RequestedID != nil && *req.RequestedID != "" {
			requestedIDs = append(requestedIDs, *req.RequestedID)
		}
	}
	if len(requestedIDs) > 0 {
		exists, err := s.store.AccountsExistByInternalIDs(ctx, requestedIDs)
		if err != nil {
			s.LogError(ctx, err, "Failed to check for existing accounts")
			return nil, fmt.Errorf("failed to check for existing accounts: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: requested account ids already exist", apperrors.ErrDuplicate)
		}
	}

	// Validate everything before any side effect; one invalid request fails
	// the entire batch.
	resolved := make([]domain.Currency, len(requests))
	for i, req := range requests {
		if req.OwnerID == "" {
			return nil, fmt.Errorf("%w: ownerID is required", apperrors.ErrValidation)
		}
		if !domain.ValidAccountType(req.Type) {
			return nil, fmt.Errorf("%w: unsupported account type %q", apperrors.ErrValidation, req.Type)
		}
		currency, ok := s.currencyByCode(req.CurrencyCode)
		if !ok {
			return nil, fmt.Errorf("%w: currency %q is not in the active currency list", apperrors.ErrNotFound, req.CurrencyCode)
		}
		resolved[i] = currency
	}

	items := make([]ledger.AccountRequestItem, len(requests))
	byRequestedID := make(map[string]int, len(requests))
	for i, req := range requests {
		id := uuid.NewString()
		if req.RequestedID != nil && *req.RequestedID != "" {
			id = *req.RequestedID
		}
		items[i] = ledger.AccountRequestItem{
			RequestedID:  id,
			OwnerID:      req.OwnerID,
			Type:         string(req.Type),
			CurrencyCode: req.CurrencyCode,
		}
		byRequestedID[id] = i
	}

	created, err := s.backend.CreateAccounts(ctx, items)
	if err != nil {
		s.LogError(ctx, err, "Ledger backend rejected account creation")
		return nil, err
	}

	// Association is by requested id, never by slice position.
	now := time.Now().UTC()
	accounts := make([]domain.CoaAccount, 0, len(created))
	results := make([]dto.CreatedAccount, 0, len(created))
	for _, item := range created {
		idx, ok := byRequestedID[item.RequestedID]
		if !ok {
			s.LogError(ctx, apperrors.ErrLedger, "Backend attributed an id no request asked for",
				slog.String("requested_id", item.RequestedID))
			continue
		}
		req := requests[idx]
		accounts = append(accounts, domain.CoaAccount{
			ID:               item.RequestedID,
			LedgerAccountID:  item.AttributedID,
			OwnerID:          req.OwnerID,
			State:            domain.AccountStateActive,
			Type:             req.Type,
			CurrencyCode:     req.CurrencyCode,
			CurrencyDecimals: resolved[idx].Decimals,
			AuditFields:      domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		})
		results = append(results, dto.CreatedAccount{
			RequestedID:  item.RequestedID,
			AttributedID: item.AttributedID,
		})
	}

	if len(accounts) > 0 {
		if err := s.store.StoreAccounts(ctx, accounts); err != nil {
			s.LogError(ctx, err, "Failed to persist created accounts")
			return nil, err
		}
	}

	s.notifyAccountsChanged(ctx, accounts)

	if len(results) < len(requests) {
		s.LogError(ctx, apperrors.ErrPartialCreation, "Backend created fewer accounts than requested",
			slog.Int("requested", len(requests)), slog.Int("created", len(results)))
		return results, fmt.Errorf("%w: backend created %d of %d accounts", apperrors.ErrPartialCreation, len(results), len(requests))
	}
	return results, nil
}

// CreateJournalEntries validates the whole batch and delegates it to the
// ledger backend. Entries are never persisted locally; the backend is the
// system of record.
func (s *CoaService) CreateJournalEntries(ctx context.Context, requests []dto.CreateJournalEntryRequest) ([]string, error) {
	if err := s.Authorize(ctx, PrivilegeCreateJournalEntries); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return []string{}, nil
	}

	// Resolve every referenced account in one store read.
	idSet := make(map[string]struct{}, len(requests)*2)
	for _, req := range requests {
		idSet[req.CreditedAccountID] = struct{}{}
		idSet[req.DebitedAccountID] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	accounts, err := s.store.GetAccounts(ctx, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts referenced by journal entries")
		return nil, fmt.Errorf("failed to load referenced accounts: %w", err)
	}
	byID := make(map[string]domain.CoaAccount, len(accounts))
	for _, account := range accounts {
		byID[account.ID] = account
	}

	items := make([]ledger.JournalEntryRequestItem, len(requests))
	requestedIDs := make([]string, len(requests))
	for i, req := range requests {
		if req.OwnerID == "" {
			return nil, fmt.Errorf("%w: ownerID is required", apperrors.ErrValidation)
		}
		currency, ok := s.currencyByCode(req.CurrencyCode)
		if !ok {
			return nil, fmt.Errorf("%w: currency %q is not in the active currency list", apperrors.ErrNotFound, req.CurrencyCode)
		}
		if req.CreditedAccountID == req.DebitedAccountID {
			return nil, fmt.Errorf("%w: credited and debited account must differ", apperrors.ErrValidation)
		}
		credited, ok := byID[req.CreditedAccountID]
		if !ok {
			return nil, fmt.Errorf("%w: credited account %s does not exist", apperrors.ErrNotFound, req.CreditedAccountID)
		}
		debited, ok := byID[req.DebitedAccountID]
		if !ok {
			return nil, fmt.Errorf("%w: debited account %s does not exist", apperrors.ErrNotFound, req.DebitedAccountID)
		}
		if credited.State != domain.AccountStateActive || debited.State != domain.AccountStateActive {
			return nil, fmt.Errorf("%w: both accounts must be ACTIVE", apperrors.ErrValidation)
		}
		if credited.CurrencyCode != req.CurrencyCode || debited.CurrencyCode != req.CurrencyCode {
			return nil, fmt.Errorf("%w: both accounts must share currency %s", apperrors.ErrValidation, req.CurrencyCode)
		}
		fixed, err := money.ToFixed(req.Amount, currency.Decimals)
		if err != nil {
			return nil, err
		}
		if fixed == 0 {
			return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
		}

		id := uuid.NewString()
		if req.RequestedID != nil && *req.RequestedID != "" {
			id = *req.RequestedID
		}
		timestamp := req.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}
		requestedIDs[i] = id
		items[i] = ledger.JournalEntryRequestItem{
			RequestedID:       id,
			OwnerID:           req.OwnerID,
			CurrencyCode:      req.CurrencyCode,
			Amount:            req.Amount,
			CreditedAccountID: credited.LedgerAccountID,
			DebitedAccountID:  debited.LedgerAccountID,
			Timestamp:         timestamp,
			Pending:           req.Pending,
		}
	}

	created, err := s.backend.CreateJournalEntries(ctx, items)
	if err != nil {
		s.LogError(ctx, err, "Ledger backend rejected journal entry creation")
		return nil, err
	}

	createdSet := make(map[string]struct{}, len(created))
	for _, item := range created {
		createdSet[item.RequestedID] = struct{}{}
	}
	results := make([]string, 0, len(created))
	for _, id := range requestedIDs {
		if _, ok := createdSet[id]; ok {
			results = append(results, id)
		}
	}

	if len(results) < len(requests) {
		s.LogError(ctx, apperrors.ErrPartialCreation, "Backend created fewer journal entries than requested",
			slog.Int("requested", len(requests)), slog.Int("created", len(results)))
		return results, fmt.Errorf("%w: backend created %d of %d journal entries", apperrors.ErrPartialCreation, len(results), len(requests))
	}
	return results, nil
}

// GetCoaAccountsByIDs returns only the accounts found; missing ids are
// silently omitted.
func (s *CoaService) GetCoaAccountsByIDs(ctx context.Context, ids []string) ([]domain.CoaAccount, error) {
	if err := s.Authorize(ctx, PrivilegeViewAccounts); err != nil {
		return nil, err
	}
	return s.store.GetAccounts(ctx, ids)
}

// GetCoaAccountsByOwnerID returns all accounts belonging to an owner.
func (s *CoaService) GetCoaAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.CoaAccount, error) {
	if err := s.Authorize(ctx, PrivilegeViewAccounts); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: ownerID is required", apperrors.ErrValidation)
	}
	return s.store.GetAccountsByOwnerID(ctx, ownerID)
}

// GetCoaAccountsByTypes is unauthenticated at this layer; trusted internal
// collaborators enforce their own boundary.
func (s *CoaService) GetCoaAccountsByTypes(ctx context.Context, types []domain.AccountType) ([]domain.CoaAccount, error) {
	for _, t := range types {
		if !domain.ValidAccountType(t) {
			return nil, fmt.Errorf("%w: unsupported account type %q", apperrors.ErrValidation, t)
		}
	}
	return s.store.GetAccountsByTypes(ctx, types)
}

// GetCoaActiveCurrencies returns the current currency snapshot.
func (s *CoaService) GetCoaActiveCurrencies() []domain.Currency {
	return *s.currencies.Load()
}

// GetAccountsByIDs merges chart-of-accounts metadata with the balances the
// ledger backend reports. Balances are decimal strings and never pre-netted.
func (s *CoaService) GetAccountsByIDs(ctx context.Context, ids []string) ([]domain.AccountWithBalances, error) {
	if err := s.Authorize(ctx, PrivilegeViewAccounts); err != nil {
		return nil, err
	}

	accounts, err := s.store.GetAccounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return []domain.AccountWithBalances{}, nil
	}

	ledgerIDs := make([]string, len(accounts))
	decimalsHint := make(map[string]uint, len(accounts))
	byLedgerID := make(map[string]domain.CoaAccount, len(accounts))
	for i, account := range accounts {
		ledgerIDs[i] = account.LedgerAccountID
		decimalsHint[account.LedgerAccountID] = account.CurrencyDecimals
		byLedgerID[account.LedgerAccountID] = account
	}

	balances, err := s.backend.GetAccountsByIDs(ctx, ledgerIDs, decimalsHint)
	if err != nil {
		s.LogError(ctx, err, "Ledger backend balance lookup failed")
		return nil, err
	}

	results := make([]domain.AccountWithBalances, 0, len(balances))
	for _, balance := range balances {
		account, ok := byLedgerID[balance.ID]
		if !ok {
			s.LogDebug(ctx, "Backend returned balances for an unknown account",
				slog.String("ledger_account_id", balance.ID))
			continue
		}
		results = append(results, domain.AccountWithBalances{
			CoaAccount:                account,
			PostedDebitBalance:        balance.PostedDebitBalance,
			PendingDebitBalance:       balance.PendingDebitBalance,
			PostedCreditBalance:       balance.PostedCreditBalance,
			PendingCreditBalance:      balance.PendingCreditBalance,
			TimestampLastJournalEntry: balance.TimestampLastJournalEntry,
		})
	}
	return results, nil
}

// GetJournalEntriesByAccountID returns the entries referencing the account as
// either credited or debited party.
func (s *CoaService) GetJournalEntriesByAccountID(ctx context.Context, accountID string) ([]domain.JournalEntry, error) {
	if err := s.Authorize(ctx, PrivilegeViewJournalEntries); err != nil {
		return nil, err
	}

	accounts, err := s.store.GetAccounts(ctx, []string{accountID})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: account %s does not exist", apperrors.ErrNotFound, accountID)
	}
	account := accounts[0]

	records, err := s.backend.GetJournalEntriesByAccountID(ctx, account.LedgerAccountID, account.CurrencyDecimals)
	if err != nil {
		s.LogError(ctx, err, "Ledger backend journal entry lookup failed")
		return nil, err
	}

	entries := make([]domain.JournalEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, domain.JournalEntry{
			RequestedID:       record.ID,
			OwnerID:           record.OwnerID,
			CurrencyCode:      record.CurrencyCode,
			Amount:            record.Amount,
			CreditedAccountID: record.CreditedAccountID,
			DebitedAccountID:  record.DebitedAccountID,
			Timestamp:         time.Unix(0, record.Timestamp).UTC(),
			Pending:           record.Pending,
		})
	}
	return entries, nil
}

// DeactivateAccountsByIDs moves ACTIVE accounts to INACTIVE.
func (s *CoaService) DeactivateAccountsByIDs(ctx context.Context, ids []string) error {
	return s.transitionAccounts(ctx, ids, domain.AccountStateInactive, s.backend.DeactivateAccountsByIDs)
}

// ReactivateAccountsByIDs moves INACTIVE accounts back to ACTIVE.
func (s *CoaService) ReactivateAccountsByIDs(ctx context.Context, ids []string) error {
	return s.transitionAccounts(ctx, ids, domain.AccountStateActive, s.backend.ReactivateAccountsByIDs)
}

// DeleteAccountsByIDs moves ACTIVE accounts to the terminal DELETED state.
// The record stays in the durable store; DELETED is a soft state.
func (s *CoaService) DeleteAccountsByIDs(ctx context.Context, ids []string) error {
	return s.transitionAccounts(ctx, ids, domain.AccountStateDeleted, s.backend.DeleteAccountsByIDs)
}

// transitionAccounts enforces the lifecycle state machine, forwards the
// transition to the backend when it supports lifecycle operations, and updates
// the local state. Local state is independent of any state the backend keeps.
func (s *CoaService) transitionAccounts(ctx context.Context, ids []string, target domain.AccountState, backendOp func(context.Context, []string) error) error {
	if err := s.Authorize(ctx, PrivilegeCreateAccounts); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	accounts, err := s.store.GetAccounts(ctx, ids)
	if err != nil {
		return err
	}
	if len(accounts) < len(ids) {
		return fmt.Errorf("%w: some accounts do not exist", apperrors.ErrNotFound)
	}

	ledgerIDs := make([]string, len(accounts))
	for i, account := range accounts {
		if !account.CanTransitionTo(target) {
			return fmt.Errorf("%w: account %s cannot move from %s to %s", apperrors.ErrValidation, account.ID, account.State, target)
		}
		ledgerIDs[i] = account.LedgerAccountID
	}

	if err := backendOp(ctx, ledgerIDs); err != nil {
		if !errors.Is(err, apperrors.ErrNotSupported) {
			s.LogError(ctx, err, "Ledger backend lifecycle operation failed", slog.String("target_state", string(target)))
			return err
		}
		s.LogDebug(ctx, "Backend has no lifecycle support, updating local state only",
			slog.String("target_state", string(target)))
	}

	return s.store.UpdateAccountStatesByInternalIDs(ctx, ids, target)
}
