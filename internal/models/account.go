package models

import "time"

// CoaAccount is the database representation of a chart-of-accounts entry.
type CoaAccount struct {
	ID               string    `db:"id"`
	LedgerAccountID  string    `db:"ledger_account_id"`
	OwnerID          string    `db:"owner_id"`
	State            string    `db:"state"`
	Type             string    `db:"type"`
	CurrencyCode     string    `db:"currency_code"`
	CurrencyDecimals int       `db:"currency_decimals"`
	CreatedAt        time.Time `db:"created_at"`
	LastUpdatedAt    time.Time `db:"last_updated_at"`
}
