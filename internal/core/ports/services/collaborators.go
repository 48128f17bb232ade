package services

import (
	"context"

	"github.com/orsa-labs/coa_ledger/internal/core/domain"
)

// PrivilegeAuthorizer is the external authorization collaborator. The
// aggregate walks the caller's role ids and short-circuits on the first role
// granting the required privilege.
type PrivilegeAuthorizer interface {
	RoleHasPrivilege(ctx context.Context, roleID string, privilegeID string) (bool, error)
}

// CurrencySource is the process-wide currency configuration collaborator.
// Subscribe registers a callback fired whenever the underlying list is hot
// reloaded; subscribers re-fetch their snapshot through GetCurrencies.
type CurrencySource interface {
	GetCurrencies() []domain.Currency
	Subscribe(fn func())
}

// BearerTokenSource supplies the credential the RPC ledger backend attaches
// to every outbound call. Tokens expire, so the backend asks again before
// each logical operation.
type BearerTokenSource interface {
	BearerToken(ctx context.Context) (string, error)
}
