package binledger

import (
	"fmt"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	"github.com/orsa-labs/coa_ledger/internal/core/domain"
)

// The binary protocol has no notion of domain account types or currency
// codes: account types travel as small integer chart-of-accounts codes and
// currencies as ledger numbers. Both tables are fixed; unknown values are
// rejected before anything reaches the wire.

var accountTypeCodes = map[domain.AccountType]uint16{
	domain.Position:          1,
	domain.Liquidity:         2,
	domain.Settlement:        3,
	domain.HubReconciliation: 4,
}

var accountTypesByCode = func() map[uint16]domain.AccountType {
	m := make(map[uint16]domain.AccountType, len(accountTypeCodes))
	for t, c := range accountTypeCodes {
		m[c] = t
	}
	return m
}()

// journalEntryCode is the single transfer code this deployment uses.
const journalEntryCode uint16 = 1

// Account flags are derived purely from the account type, never supplied by
// the caller.
const (
	// flagDebitsMustNotExceedCredits forbids the account's debit balance from
	// exceeding its credit balance. Set on control-type accounts.
	flagDebitsMustNotExceedCredits uint16 = 1 << 0
)

// Transfer flags.
const (
	flagPending uint16 = 1 << 0
)

func chartOfAccountsCode(t domain.AccountType) (uint16, error) {
	code, ok := accountTypeCodes[t]
	if !ok {
		return 0, fmt.Errorf("%w: account type %q has no chart-of-accounts code", apperrors.ErrValidation, t)
	}
	return code, nil
}

func accountFlags(t domain.AccountType) uint16 {
	if t == domain.HubReconciliation {
		return flagDebitsMustNotExceedCredits
	}
	return 0
}
