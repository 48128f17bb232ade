package domain

// Currency describes one entry of the active currency list. The list is
// sourced from the currency configuration collaborator and is immutable
// during a request; a hot reload replaces the whole snapshot.
type Currency struct {
	Code        string `json:"code"`        // ISO-4217-like alphabetic code, e.g. "EUR"
	NumericCode uint32 `json:"numericCode"` // numeric code, doubles as the binary backend's ledger number
	Decimals    uint   `json:"decimals"`
}
