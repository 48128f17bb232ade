package dto

import "github.com/orsa-labs/coa_ledger/internal/core/domain"

// CurrencyResponse defines the data returned for an active currency.
type CurrencyResponse struct {
	Code        string `json:"code"`
	NumericCode uint32 `json:"numericCode"`
	Decimals    uint   `json:"decimals"`
}

// ToListCurrencyResponse converts a currency snapshot to response DTOs.
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i, curr := range currencies {
		res[i] = CurrencyResponse{
			Code:        curr.Code,
			NumericCode: curr.NumericCode,
			Decimals:    curr.Decimals,
		}
	}
	return res
}
