package grpcledger

// Wire messages of the general-purpose ledger service. Optional fields are
// pointers; absence is rejected at the boundary instead of being papered over
// at use sites.

type accountItem struct {
	RequestedID  string `json:"requestedId"`
	OwnerID      string `json:"ownerId"`
	Type         string `json:"type"`
	CurrencyCode string `json:"currencyCode"`
}

type createAccountsRequest struct {
	Accounts []accountItem `json:"accounts"`
}

type createdItem struct {
	RequestedID  *string `json:"requestedId"`
	AttributedID *string `json:"attributedId"`
}

type createAccountsResponse struct {
	Accounts []createdItem `json:"accounts"`
	Errors   []string      `json:"errors"`
}

type journalEntryItem struct {
	RequestedID       string `json:"requestedId"`
	OwnerID           string `json:"ownerId"`
	CurrencyCode      string `json:"currencyCode"`
	Amount            string `json:"amount"`
	CreditedAccountID string `json:"creditedAccountId"`
	DebitedAccountID  string `json:"debitedAccountId"`
	Timestamp         int64  `json:"timestamp"`
	Pending           bool   `json:"pending"`
}

type createJournalEntriesRequest struct {
	JournalEntries []journalEntryItem `json:"journalEntries"`
}

type createJournalEntriesResponse struct {
	JournalEntries []createdItem `json:"journalEntries"`
	Errors         []string      `json:"errors"`
}

type getAccountsByIDsRequest struct {
	IDs []string `json:"ids"`
}

type accountBalancesItem struct {
	ID                        *string `json:"id"`
	PostedDebitBalance        *string `json:"postedDebitBalance"`
	PendingDebitBalance       *string `json:"pendingDebitBalance"`
	PostedCreditBalance       *string `json:"postedCreditBalance"`
	PendingCreditBalance      *string `json:"pendingCreditBalance"`
	TimestampLastJournalEntry int64   `json:"timestampLastJournalEntry"`
}

type getAccountsByIDsResponse struct {
	Accounts []accountBalancesItem `json:"accounts"`
	Errors   []string              `json:"errors"`
}

type getJournalEntriesByAccountIDRequest struct {
	AccountID string `json:"accountId"`
}

type journalEntryRecordItem struct {
	ID                *string `json:"id"`
	OwnerID           string  `json:"ownerId"`
	CurrencyCode      string  `json:"currencyCode"`
	Amount            *string `json:"amount"`
	CreditedAccountID string  `json:"creditedAccountId"`
	DebitedAccountID  string  `json:"debitedAccountId"`
	Timestamp         int64   `json:"timestamp"`
	Pending           bool    `json:"pending"`
}

type getJournalEntriesByAccountIDResponse struct {
	JournalEntries []journalEntryRecordItem `json:"journalEntries"`
	Errors         []string                 `json:"errors"`
}

type accountIDsRequest struct {
	IDs []string `json:"ids"`
}

type accountIDsResponse struct {
	Errors []string `json:"errors"`
}
