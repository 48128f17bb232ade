package dto

import (
	"time"

	"github.com/orsa-labs/coa_ledger/internal/core/domain"
)

// CreateAccountRequest defines one item of a batch account creation.
// RequestedID is optional; a missing id is attributed by the aggregate.
type CreateAccountRequest struct {
	RequestedID  *string            `json:"requestedID"` // Optional, use pointer for nullability
	OwnerID      string             `json:"ownerID" binding:"required"`
	Type         domain.AccountType `json:"type" binding:"required,oneof=POSITION LIQUIDITY SETTLEMENT HUB_RECONCILIATION"`
	CurrencyCode string             `json:"currencyCode" binding:"required,uppercase,len=3"`
}

// CreatedAccount associates the id the caller asked for with the id the
// ledger backend attributed. Callers only ever see CoA-scoped identifiers.
type CreatedAccount struct {
	RequestedID  string `json:"requestedID"`
	AttributedID string `json:"attributedID"`
}

// AccountIDsRequest carries the target ids of a lifecycle operation.
type AccountIDsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// CoaAccountResponse defines the data returned for a chart-of-accounts entry.
// Mirrors domain.CoaAccount.
type CoaAccountResponse struct {
	ID               string              `json:"id"`
	LedgerAccountID  string              `json:"ledgerAccountID"`
	OwnerID          string              `json:"ownerID"`
	State            domain.AccountState `json:"state"`
	Type             domain.AccountType  `json:"type"`
	CurrencyCode     string              `json:"currencyCode"`
	CurrencyDecimals uint                `json:"currencyDecimals"`
	CreatedAt        time.Time           `json:"createdAt"`
	LastUpdatedAt    time.Time           `json:"lastUpdatedAt"`
}

// ToCoaAccountResponse converts a domain.CoaAccount to CoaAccountResponse DTO.
func ToCoaAccountResponse(acc *domain.CoaAccount) CoaAccountResponse {
	return CoaAccountResponse{
		ID:               acc.ID,
		LedgerAccountID:  acc.LedgerAccountID,
		OwnerID:          acc.OwnerID,
		State:            acc.State,
		Type:             acc.Type,
		CurrencyCode:     acc.CurrencyCode,
		CurrencyDecimals: acc.CurrencyDecimals,
		CreatedAt:        acc.CreatedAt,
		LastUpdatedAt:    acc.LastUpdatedAt,
	}
}

// ToListCoaAccountResponse converts a slice of domain.CoaAccount to a slice of DTOs.
func ToListCoaAccountResponse(accounts []domain.CoaAccount) []CoaAccountResponse {
	res := make([]CoaAccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToCoaAccountResponse(&acc) // Reuse the single converter
	}
	return res
}

// AccountWithBalancesResponse joins the chart-of-accounts entry with the
// balances the ledger backend reports. Balances are decimal strings, never
// pre-netted.
type AccountWithBalancesResponse struct {
	CoaAccountResponse
	PostedDebitBalance        string `json:"postedDebitBalance"`
	PendingDebitBalance       string `json:"pendingDebitBalance"`
	PostedCreditBalance       string `json:"postedCreditBalance"`
	PendingCreditBalance      string `json:"pendingCreditBalance"`
	TimestampLastJournalEntry int64  `json:"timestampLastJournalEntry"`
}

// ToListAccountWithBalancesResponse converts merged balance records to DTOs.
func ToListAccountWithBalancesResponse(accounts []domain.AccountWithBalances) []AccountWithBalancesResponse {
	res := make([]AccountWithBalancesResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = AccountWithBalancesResponse{
			CoaAccountResponse:        ToCoaAccountResponse(&acc.CoaAccount),
			PostedDebitBalance:        acc.PostedDebitBalance,
			PendingDebitBalance:       acc.PendingDebitBalance,
			PostedCreditBalance:       acc.PostedCreditBalance,
			PendingCreditBalance:      acc.PendingCreditBalance,
			TimestampLastJournalEntry: acc.TimestampLastJournalEntry,
		}
	}
	return res
}
