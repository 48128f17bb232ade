package domain

// AccountType classifies a chart-of-accounts entry. The type is immutable
// after creation and drives the code mapping of the binary ledger backend.
type AccountType string

const (
	Position          AccountType = "POSITION"
	Liquidity         AccountType = "LIQUIDITY"
	Settlement        AccountType = "SETTLEMENT"
	HubReconciliation AccountType = "HUB_RECONCILIATION"
)

// ValidAccountType reports whether t is one of the supported account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case Position, Liquidity, Settlement, HubReconciliation:
		return true
	}
	return false
}

// AccountState is the local lifecycle state of a chart-of-accounts entry.
// It is independent of any state the ledger backend keeps for the account.
type AccountState string

const (
	AccountStateActive   AccountState = "ACTIVE"
	AccountStateInactive AccountState = "INACTIVE"
	AccountStateDeleted  AccountState = "DELETED"
)

// CoaAccount is the unit of chart-of-accounts metadata. It maps the
// caller-visible account identity to the identity attributed by the ledger
// backend; the two may differ.
type CoaAccount struct {
	ID               string       `json:"id"`              // caller-visible, equals the requested id or a generated one
	LedgerAccountID  string       `json:"ledgerAccountID"` // identifier attributed by the ledger backend
	OwnerID          string       `json:"ownerID"`
	State            AccountState `json:"state"`
	Type             AccountType  `json:"type"`
	CurrencyCode     string       `json:"currencyCode"`
	CurrencyDecimals uint         `json:"currencyDecimals"` // snapshotted from the currency list at creation
	AuditFields
}

// CanTransitionTo reports whether the account may move to the target state.
// Allowed transitions are ACTIVE<->INACTIVE and ACTIVE->DELETED; DELETED is
// terminal.
func (a CoaAccount) CanTransitionTo(target AccountState) bool {
	switch a.State {
	case AccountStateActive:
		return target == AccountStateInactive || target == AccountStateDeleted
	case AccountStateInactive:
		return target == AccountStateActive
	}
	return false
}

// AccountWithBalances joins local chart-of-accounts metadata with the balances
// reported by the ledger backend. Balances are decimal strings and are never
// pre-netted.
type AccountWithBalances struct {
	CoaAccount
	PostedDebitBalance        string `json:"postedDebitBalance"`
	PendingDebitBalance       string `json:"pendingDebitBalance"`
	PostedCreditBalance       string `json:"postedCreditBalance"`
	PendingCreditBalance      string `json:"pendingCreditBalance"`
	TimestampLastJournalEntry int64  `json:"timestampLastJournalEntry"`
}
