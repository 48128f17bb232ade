package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	"github.com/orsa-labs/coa_ledger/internal/core/domain"
	"github.com/orsa-labs/coa_ledger/internal/core/ports/ledger"
	"github.com/orsa-labs/coa_ledger/internal/core/services"
	"github.com/orsa-labs/coa_ledger/internal/dto"
	"github.com/orsa-labs/coa_ledger/internal/middleware"
)

// MockCoaStore is a mock type for the CoaAccountStoreFacade interface
type MockCoaStore struct {
	mock.Mock
}

func (m *MockCoaStore) AccountsExistByInternalIDs(ctx context.Context, ids []string) (bool, error) {
	args := m.Called(ctx, ids)
	return args.Bool(0), args.Error(1)
}

func (m *MockCoaStore) GetAccounts(ctx context.Context, ids []string) ([]domain.CoaAccount, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CoaAccount), args.Error(1)
}

func (m *MockCoaStore) GetAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.CoaAccount, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CoaAccount), args.Error(1)
}

func (m *MockCoaStore) GetAccountsByTypes(ctx context.Context, types []domain.AccountType) ([]domain.CoaAccount, error) {
	args := m.Called(ctx, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CoaAccount), args.Error(1)
}

func (m *MockCoaStore) StoreAccounts(ctx context.Context, accounts []domain.CoaAccount) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

func (m *MockCoaStore) UpdateAccountStatesByInternalIDs(ctx context.Context, ids []string, state domain.AccountState) error {
	args := m.Called(ctx, ids, state)
	return args.Error(0)
}

// MockLedgerAdapter is a mock type for the ledger Adapter interface
type MockLedgerAdapter struct {
	mock.Mock
}

func (m *MockLedgerAdapter) CreateAccounts(ctx context.Context, items []ledger.AccountRequestItem) ([]ledger.CreatedItem, error) {
	args := m.Called(ctx, items)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func([]ledger.AccountRequestItem) []ledger.CreatedItem:
		// lets a test derive the response from the submitted batch
		return v(items), args.Error(1)
	default:
		return v.([]ledger.CreatedItem), args.Error(1)
	}
}

func (m *MockLedgerAdapter) CreateJournalEntries(ctx context.Context, items []ledger.JournalEntryRequestItem) ([]ledger.CreatedItem, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.CreatedItem), args.Error(1)
}

func (m *MockLedgerAdapter) GetAccountsByIDs(ctx context.Context, ids []string, decimalsHint map[string]uint) ([]ledger.AccountBalances, error) {
	args := m.Called(ctx, ids, decimalsHint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.AccountBalances), args.Error(1)
}

func (m *MockLedgerAdapter) GetJournalEntriesByAccountID(ctx context.Context, accountID string, decimals uint) ([]ledger.JournalEntryRecord, error) {
	args := m.Called(ctx, accountID, decimals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.JournalEntryRecord), args.Error(1)
}

func (m *MockLedgerAdapter) DeleteAccountsByIDs(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockLedgerAdapter) DeactivateAccountsByIDs(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockLedgerAdapter) ReactivateAccountsByIDs(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockLedgerAdapter) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockAuthorizer is a mock type for the PrivilegeAuthorizer interface
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) RoleHasPrivilege(ctx context.Context, roleID string, privilegeID string) (bool, error) {
	args := m.Called(ctx, roleID, privilegeID)
	return args.Bool(0), args.Error(1)
}

// stubCurrencySource serves a fixed currency list and records subscribers.
type stubCurrencySource struct {
	currencies  []domain.Currency
	subscribers []func()
}

func (s *stubCurrencySource) GetCurrencies() []domain.Currency { return s.currencies }
func (s *stubCurrencySource) Subscribe(fn func())              { s.subscribers = append(s.subscribers, fn) }

// --- Test Suite Setup ---

type CoaServiceTestSuite struct {
	suite.Suite
	mockStore      *MockCoaStore
	mockBackend    *MockLedgerAdapter
	mockAuthorizer *MockAuthorizer
	currencySource *stubCurrencySource
	service        *services.CoaService
	ctx            context.Context
}

func (suite *CoaServiceTestSuite) SetupTest() {
	suite.mockStore = new(MockCoaStore)
	suite.mockBackend = new(MockLedgerAdapter)
	suite.mockAuthorizer = new(MockAuthorizer)
	suite.currencySource = &stubCurrencySource{currencies: []domain.Currency{
		{Code: "EUR", NumericCode: 978, Decimals: 2},
		{Code: "USD", NumericCode: 840, Decimals: 2},
		{Code: "JPY", NumericCode: 392, Decimals: 0},
	}}
	suite.service = services.NewCoaService(suite.mockStore, suite.mockBackend, suite.mockAuthorizer, suite.currencySource)
	suite.ctx = middleware.WithCaller(context.Background(), middleware.Caller{
		Subject: "svc-payments",
		RoleIDs: []string{"role-ops"},
	})
}

func (suite *CoaServiceTestSuite) grantAll() {
	suite.mockAuthorizer.On("RoleHasPrivilege", mock.Anything, "role-ops", mock.Anything).Return(true, nil)
}

func strPtr(s string) *string { return &s }

func activeAccount(id, owner, currency string, decimals uint) domain.CoaAccount {
	return domain.CoaAccount{
		ID:               id,
		LedgerAccountID:  "ledger-" + id,
		OwnerID:          owner,
		State:            domain.AccountStateActive,
		Type:             domain.Position,
		CurrencyCode:     currency,
		CurrencyDecimals: decimals,
	}
}

// --- CreateAccounts ---

func (suite *CoaServiceTestSuite) TestCreateAccounts_Success() {
	suite.grantAll()
	req := dto.CreateAccountRequest{
		RequestedID:  strPtr("acc-a"),
		OwnerID:      "u1",
		Type:         domain.Position,
		CurrencyCode: "EUR",
	}

	suite.mockStore.On("AccountsExistByInternalIDs", mock.Anything, []string{"acc-a"}).Return(false, nil)
	suite.mockBackend.On("CreateAccounts", mock.Anything, mock.MatchedBy(func(items []ledger.AccountRequestItem) bool {
		return len(items) == 1 && items[0].RequestedID == "acc-a" && items[0].CurrencyCode == "EUR"
	})).Return([]ledger.CreatedItem{{RequestedID: "acc-a", AttributedID: "ledger-acc-a"}}, nil)

	var stored []domain.CoaAccount
	suite.mockStore.On("StoreAccounts", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).([]domain.CoaAccount)
	}).Return(nil)

	results, err := suite.service.CreateAccounts(suite.ctx, []dto.CreateAccountRequest{req})

	require.NoError(suite.T(), err)
	require.Len(suite.T(), results, 1)
	assert.Equal(suite.T(), "acc-a", results[0].RequestedID)
	assert.Equal(suite.T(), "ledger-acc-a", results[0].AttributedID)

	require.Len(suite.T(), stored, 1)
	assert.Equal(suite.T(), "acc-a", stored[0].ID)
	assert.Equal(suite.T(), "ledger-acc-a", stored[0].LedgerAccountID)
	assert.Equal(suite.T(), domain.AccountStateActive, stored[0].State)
	assert.Equal(suite.T(), uint(2), stored[0].CurrencyDecimals)
}

func (suite *CoaServiceTestSuite) TestCreateAccounts_GeneratesMissingRequestedID() {
	suite.grantAll()
	req := dto.CreateAccountRequest{OwnerID: "u1", Type: domain.Liquidity, CurrencyCode: "USD"}

	suite.mockBackend.On("CreateAccounts", mock.Anything, mock.MatchedBy(func(items []ledger.AccountRequestItem) bool {
		if len(items) != 1 {
			return false
		}
		_, err := uuid.Parse(items[0].RequestedID)
		return err == nil
	})).Return(func(items []ledger.AccountRequestItem) []ledger.CreatedItem {
		return []ledger.CreatedItem{{RequestedID: items[0].RequestedID, AttributedID: items[0].RequestedID}}
	}, nil)
	suite.mockStore.On("StoreAccounts", mock.Anything, mock.Anything).Return(nil)

	results, err := suite.service.CreateAccounts(suite.ctx, []dto.CreateAccountRequest{req})

	require.NoError(suite.T(), err)
	require.Len(suite.T(), results, 1)
	assert.NotEmpty(suite.T(), results[0].RequestedID)
	// no caller-supplied ids, so the duplicate gate is skipped
	suite.mockStore.AssertNotCalled(suite.T(), "AccountsExistByInternalIDs", mock.Anything, mock.Anything)
}

func (suite *CoaServiceTestSuite) TestCreateAccounts_Forbidden() {
	suite.mockAuthorizer.On("RoleHasPrivilege", mock.Anything, "role-ops", services.PrivilegeCreateAccounts).Return(false, nil)

	req := dto.CreateAccountRequest{OwnerID: "u1", Type: domain.Position, CurrencyCode: "EUR"}
	_, err := suite.service.CreateAccounts(suite.ctx, []dto.CreateAccountRequest{req})

	assert.ErrorIs(suite.T(), err, apperrors.ErrForbidden)
	suite.mockStore.AssertNotCalled(suite.T(), "AccountsExistByInternalIDs", mock.Anything, mock.Anything)
	suite.mockBackend.AssertNotCalled(suite.T(), "CreateAccounts", mock.Anything, mock.Anything)
	suite.mockStore.AssertNotCalled(suite.T(), "StoreAccounts", mock.Anything, mock.Anything)
}

func (suite *CoaServiceTestSuite) TestCreateAccounts_NoCallerInContext() {
	req := dto.CreateAccountRequest{OwnerID: "u1", Type: domain.Position, CurrencyCode: "EUR"}
	_, err := suite.service.CreateAccounts(context.Background(), []dto.CreateAccountRequest{req})

	assert.ErrorIs(suite.T(), err, apperrors.ErrUnauthorized)
}

func (suite *CoaServiceTestSuite) TestCreateAccounts_UnknownCurrency() {
	suite.grantAll()
	req := dto.CreateAccountRequest{OwnerID: "u1", Type: domain.Position, CurrencyCode: "ZZZ"}

	_, err := suite.service.CreateAccounts(suite.ctx, []dto.CreateAccountRequest{req})

	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	suite.mockBackend.AssertNotCalled(suite.T(), "CreateAccounts", mock.Anything, mock.Anything)
	suite.mockStore.AssertNotCalled(suite.T(), "StoreAccounts", mock.Anything, mock.Anything)
}

func (suite *CoaServiceTestSuite) TestCreateAccounts_DuplicateRequestedID() {
	suite.grantAll()
	req := dto.CreateAccountRequest{RequestedID: strPtr("acc-a"), OwnerID: "u1", Type: domain.Position, CurrencyCode: "EUR"}

	suite.mockStore.On("AccountsExistByInternalIDs", mock.Anything, []string{"acc-a"}).Return(true, nil)

	_, err := suite.service.CreateAccounts(suite.ctx, []dto.CreateAccountRequest{req})

	assert.ErrorIs(suite.T(), err, apperrors.ErrDuplicate)
	suite.mockBackend.AssertNotCalled(suite.T(), "CreateAccounts", mock.Anything, mock.Anything)
}

func (suite *CoaServiceTestSuite) TestCreateAccounts_BackendFailureLeavesStoreUntouched() {
	suite.grantAll()
	req := dto.CreateAccountRequest{RequestedID: strPtr("acc-a"), OwnerID: "u1", Type: domain.Position, CurrencyCode: "EUR"}

	suite.mockStore.On("AccountsExistByInternalIDs", mock.Anything, mock.Anything).Return(false, nil)
	suite.mockBackend.On("CreateAccounts", mock.Anything, mock.Anything).Return(nil, apperrors.ErrLedger)

	_, err := suite.service.CreateAccounts(suite.ctx, []dto.CreateAccountRequest{req})

	assert.ErrorIs(suite.T(), err, apperrors.ErrLedger)
	suite.mockStore.AssertNotCalled(suite.T(), "StoreAccounts", mock.Anything, mock.Anything)
}

func (suite *CoaServiceTestSuite) TestCreateAccounts_PartialCompletion() {
	suite.grantAll()
	requests := []dto.CreateAccountRequest{
		{RequestedID: strPtr("acc-a"), OwnerID: "u1", Type: domain.Position, CurrencyCode: "EUR"},
		{RequestedID: strPtr("acc-b"), OwnerID: "u1", Type: domain.Position, CurrencyCode: "EUR"},
	}

	suite.mockStore.On("AccountsExistByInternalIDs", mock.Anything, []string{"acc-a", "acc-b"}).Return(false, nil)
	suite.mockBackend.On("CreateAccounts", mock.Anything, mock.Anything).
		Return([]ledger.CreatedItem{{RequestedID: "acc-b", AttributedID: "ledger-acc-b"}}, nil)

	var stored []domain.CoaAccount
	suite.mockStore.On("StoreAccounts", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).([]domain.CoaAccount)
	}).Return(nil)

	results, err := suite.service.CreateAccounts(suite.ctx, requests)

	// the partial result is persisted first, then the error is raised
	assert.ErrorIs(suite.T(), err, apperrors.ErrPartialCreation)
	require.Len(suite.T(), results, 1)
	assert.Equal(suite.T(), "acc-b", results[0].RequestedID)
	require.Len(suite.T(), stored, 1)
	assert.Equal(suite.T(), "acc-b", stored[0].ID)
}

func (suite *CoaServiceTestSuite) TestCreateAccounts_ChangeHandlerInvokedAsync() {
	suite.grantAll()
	notified := make(chan []domain.CoaAccount, 1)
	suite.service.SetAccountsChangedHandler(func(accounts []domain.CoaAccount) {
		notified <- accounts
	})

	req := dto.CreateAccountRequest{RequestedID: strPtr("acc-a"), OwnerID: "u1", Type: domain.Position, CurrencyCode: "EUR"}
	suite.mockStore.On("AccountsExistByInternalIDs", mock.Anything, mock.Anything).Return(false, nil)
	suite.mockBackend.On("CreateAccounts", mock.Anything, mock.Anything).
		Return([]ledger.CreatedItem{{RequestedID: "acc-a", AttributedID: "ledger-acc-a"}}, nil)
	suite.mockStore.On("StoreAccounts", mock.Anything, mock.Anything).Return(nil)

	_, err := suite.service.CreateAccounts(suite.ctx, []dto.CreateAccountRequest{req})
	require.NoError(suite.T(), err)

	select {
	case accounts := <-notified:
		require.Len(suite.T(), accounts, 1)
		assert.Equal(suite.T(), "acc-a", accounts[0].ID)
	case <-time.After(time.Second):
		suite.T().Fatal("change handler was not invoked")
	}
}

// --- CreateJournalEntries ---

func (suite *CoaServiceTestSuite) TestCreateJournalEntries_Success() {
	suite.grantAll()
	credited := activeAccount("acc-a", "u1", "EUR", 2)
	debited := activeAccount("acc-b", "u2", "EUR", 2)
	suite.mockStore.On("GetAccounts", mock.Anything, mock.MatchedBy(func(ids []string) bool {
		return len(ids) == 2
	})).Return([]domain.CoaAccount{credited, debited}, nil)

	suite.mockBackend.On("CreateJournalEntries", mock.Anything, mock.MatchedBy(func(items []ledger.JournalEntryRequestItem) bool {
		// backend sees ledger-side account ids, never CoA ids
		return len(items) == 1 &&
			items[0].RequestedID == "je-1" &&
			items[0].CreditedAccountID == "ledger-acc-a" &&
			items[0].DebitedAccountID == "ledger-acc-b"
	})).Return([]ledger.CreatedItem{{RequestedID: "je-1", AttributedID: "ledger-je-1"}}, nil)

	req := dto.CreateJournalEntryRequest{
		RequestedID:       strPtr("je-1"),
		OwnerID:           "u1",
		CurrencyCode:      "EUR",
		Amount:            "100.5",
		CreditedAccountID: "acc-a",
		DebitedAccountID:  "acc-b",
	}
	ids, err := suite.service.CreateJournalEntries(suite.ctx, []dto.CreateJournalEntryRequest{req})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"je-1"}, ids)
}

func (suite *CoaServiceTestSuite) TestCreateJournalEntries_SelfTransfer() {
	suite.grantAll()
	account := activeAccount("acc-a", "u1", "EUR", 2)
	suite.mockStore.On("GetAccounts", mock.Anything, []string{"acc-a"}).Return([]domain.CoaAccount{account}, nil)

	req := dto.CreateJournalEntryRequest{
		OwnerID:           "u1",
		CurrencyCode:      "EUR",
		Amount:            "1",
		CreditedAccountID: "acc-a",
		DebitedAccountID:  "acc-a",
	}
	_, err := suite.service.CreateJournalEntries(suite.ctx, []dto.CreateJournalEntryRequest{req})

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockBackend.AssertNotCalled(suite.T(), "CreateJournalEntries", mock.Anything, mock.Anything)
}

func (suite *CoaServiceTestSuite) TestCreateJournalEntries_InactiveAccount() {
	suite.grantAll()
	credited := activeAccount("acc-a", "u1", "EUR", 2)
	debited := activeAccount("acc-b", "u2", "EUR", 2)
	debited.State = domain.AccountStateInactive
	suite.mockStore.On("GetAccounts", mock.Anything, mock.Anything).Return([]domain.CoaAccount{credited, debited}, nil)

	req := dto.CreateJournalEntryRequest{
		OwnerID:           "u1",
		CurrencyCode:      "EUR",
		Amount:            "1",
		CreditedAccountID: "acc-a",
		DebitedAccountID:  "acc-b",
	}
	_, err := suite.service.CreateJournalEntries(suite.ctx, []dto.CreateJournalEntryRequest{req})

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockBackend.AssertNotCalled(suite.T(), "CreateJournalEntries", mock.Anything, mock.Anything)
}

func (suite *CoaServiceTestSuite) TestCreateJournalEntries_CurrencyMismatch() {
	suite.grantAll()
	credited := activeAccount("acc-a", "u1", "EUR", 2)
	debited := activeAccount("acc-b", "u2", "USD", 2)
	suite.mockStore.On("GetAccounts", mock.Anything, mock.Anything).Return([]domain.CoaAccount{credited, debited}, nil)

	req := dto.CreateJournalEntryRequest{
		OwnerID:           "u1",
		CurrencyCode:      "EUR",
		Amount:            "1",
		CreditedAccountID: "acc-a",
		DebitedAccountID:  "acc-b",
	}
	_, err := suite.service.CreateJournalEntries(suite.ctx, []dto.CreateJournalEntryRequest{req})

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *CoaServiceTestSuite) TestCreateJournalEntries_NonCanonicalAmount() {
	suite.grantAll()
	credited := activeAccount("acc-a", "u1", "EUR", 2)
	debited := activeAccount("acc-b", "u2", "EUR", 2)
	suite.mockStore.On("GetAccounts", mock.Anything, mock.Anything).Return([]domain.CoaAccount{credited, debited}, nil)

	req := dto.CreateJournalEntryRequest{
		OwnerID:           "u1",
		CurrencyCode:      "EUR",
		Amount:            "100.00", // redundant zero fraction
		CreditedAccountID: "acc-a",
		DebitedAccountID:  "acc-b",
	}
	_, err := suite.service.CreateJournalEntries(suite.ctx, []dto.CreateJournalEntryRequest{req})

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockBackend.AssertNotCalled(suite.T(), "CreateJournalEntries", mock.Anything, mock.Anything)
}

// --- Reads ---

func (suite *CoaServiceTestSuite) TestGetCoaAccountsByIDs_EmptySubset() {
	suite.grantAll()
	suite.mockStore.On("GetAccounts", mock.Anything, []string{"missing"}).Return([]domain.CoaAccount{}, nil)

	accounts, err := suite.service.GetCoaAccountsByIDs(suite.ctx, []string{"missing"})

	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), accounts)
}

func (suite *CoaServiceTestSuite) TestGetCoaAccountsByTypes_Unauthenticated() {
	account := activeAccount("acc-a", "u1", "EUR", 2)
	suite.mockStore.On("GetAccountsByTypes", mock.Anything, []domain.AccountType{domain.Position}).
		Return([]domain.CoaAccount{account}, nil)

	// no caller in context: this operation stays open to trusted internal callers
	accounts, err := suite.service.GetCoaAccountsByTypes(context.Background(), []domain.AccountType{domain.Position})

	require.NoError(suite.T(), err)
	require.Len(suite.T(), accounts, 1)
	suite.mockAuthorizer.AssertNotCalled(suite.T(), "RoleHasPrivilege", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CoaServiceTestSuite) TestGetAccountsByIDs_MergesBalances() {
	suite.grantAll()
	account := activeAccount("acc-a", "u1", "EUR", 2)
	suite.mockStore.On("GetAccounts", mock.Anything, []string{"acc-a"}).Return([]domain.CoaAccount{account}, nil)
	suite.mockBackend.On("GetAccountsByIDs", mock.Anything, []string{"ledger-acc-a"}, map[string]uint{"ledger-acc-a": 2}).
		Return([]ledger.AccountBalances{{
			ID:                        "ledger-acc-a",
			PostedDebitBalance:        "10.5",
			PendingDebitBalance:       "0",
			PostedCreditBalance:       "99.99",
			PendingCreditBalance:      "0.01",
			TimestampLastJournalEntry: 1700000000000000000,
		}}, nil)

	results, err := suite.service.GetAccountsByIDs(suite.ctx, []string{"acc-a"})

	require.NoError(suite.T(), err)
	require.Len(suite.T(), results, 1)
	assert.Equal(suite.T(), "acc-a", results[0].ID)
	assert.Equal(suite.T(), "10.5", results[0].PostedDebitBalance)
	assert.Equal(suite.T(), "99.99", results[0].PostedCreditBalance)
	assert.Equal(suite.T(), int64(1700000000000000000), results[0].TimestampLastJournalEntry)
}

func (suite *CoaServiceTestSuite) TestGetCoaActiveCurrencies_HotReload() {
	initial := suite.service.GetCoaActiveCurrencies()
	require.Len(suite.T(), initial, 3)

	suite.currencySource.currencies = []domain.Currency{{Code: "GBP", NumericCode: 826, Decimals: 2}}
	require.Len(suite.T(), suite.currencySource.subscribers, 1)
	suite.currencySource.subscribers[0]()

	reloaded := suite.service.GetCoaActiveCurrencies()
	require.Len(suite.T(), reloaded, 1)
	assert.Equal(suite.T(), "GBP", reloaded[0].Code)
}

// --- Lifecycle ---

func (suite *CoaServiceTestSuite) TestDeactivateAccounts_BackendWithoutLifecycleSupport() {
	suite.grantAll()
	account := activeAccount("acc-a", "u1", "EUR", 2)
	suite.mockStore.On("GetAccounts", mock.Anything, []string{"acc-a"}).Return([]domain.CoaAccount{account}, nil)
	suite.mockBackend.On("DeactivateAccountsByIDs", mock.Anything, []string{"ledger-acc-a"}).Return(apperrors.ErrNotSupported)
	suite.mockStore.On("UpdateAccountStatesByInternalIDs", mock.Anything, []string{"acc-a"}, domain.AccountStateInactive).Return(nil)

	err := suite.service.DeactivateAccountsByIDs(suite.ctx, []string{"acc-a"})

	require.NoError(suite.T(), err)
	suite.mockStore.AssertCalled(suite.T(), "UpdateAccountStatesByInternalIDs", mock.Anything, []string{"acc-a"}, domain.AccountStateInactive)
}

func (suite *CoaServiceTestSuite) TestReactivateAccounts_InvalidTransitionFromDeleted() {
	suite.grantAll()
	account := activeAccount("acc-a", "u1", "EUR", 2)
	account.State = domain.AccountStateDeleted
	suite.mockStore.On("GetAccounts", mock.Anything, []string{"acc-a"}).Return([]domain.CoaAccount{account}, nil)

	err := suite.service.ReactivateAccountsByIDs(suite.ctx, []string{"acc-a"})

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockBackend.AssertNotCalled(suite.T(), "ReactivateAccountsByIDs", mock.Anything, mock.Anything)
	suite.mockStore.AssertNotCalled(suite.T(), "UpdateAccountStatesByInternalIDs", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CoaServiceTestSuite) TestDeleteAccounts_MissingAccount() {
	suite.grantAll()
	suite.mockStore.On("GetAccounts", mock.Anything, []string{"acc-a", "ghost"}).
		Return([]domain.CoaAccount{activeAccount("acc-a", "u1", "EUR", 2)}, nil)

	err := suite.service.DeleteAccountsByIDs(suite.ctx, []string{"acc-a", "ghost"})

	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *CoaServiceTestSuite) TestAuthorizerErrorPropagates() {
	suite.mockAuthorizer.On("RoleHasPrivilege", mock.Anything, "role-ops", services.PrivilegeViewAccounts).
		Return(false, errors.New("authz unavailable"))

	_, err := suite.service.GetCoaAccountsByIDs(suite.ctx, []string{"acc-a"})

	require.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, apperrors.ErrForbidden)
}

func TestCoaServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CoaServiceTestSuite))
}
