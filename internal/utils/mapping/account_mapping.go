package mapping

import (
	"github.com/orsa-labs/coa_ledger/internal/core/domain"
	"github.com/orsa-labs/coa_ledger/internal/models"
)

// ToModelCoaAccount converts a domain.CoaAccount for DB storage.
func ToModelCoaAccount(d domain.CoaAccount) models.CoaAccount {
	return models.CoaAccount{
		ID:               d.ID,
		LedgerAccountID:  d.LedgerAccountID,
		OwnerID:          d.OwnerID,
		State:            string(d.State),
		Type:             string(d.Type),
		CurrencyCode:     d.CurrencyCode,
		CurrencyDecimals: int(d.CurrencyDecimals),
		CreatedAt:        d.CreatedAt,
		LastUpdatedAt:    d.LastUpdatedAt,
	}
}

// ToDomainCoaAccount converts a models.CoaAccount from the DB.
func ToDomainCoaAccount(m models.CoaAccount) domain.CoaAccount {
	return domain.CoaAccount{
		ID:               m.ID,
		LedgerAccountID:  m.LedgerAccountID,
		OwnerID:          m.OwnerID,
		State:            domain.AccountState(m.State),
		Type:             domain.AccountType(m.Type),
		CurrencyCode:     m.CurrencyCode,
		CurrencyDecimals: uint(m.CurrencyDecimals),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

// ToDomainCoaAccountSlice converts a slice of models.CoaAccount.
func ToDomainCoaAccountSlice(ms []models.CoaAccount) []domain.CoaAccount {
	ds := make([]domain.CoaAccount, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCoaAccount(m)
	}
	return ds
}
