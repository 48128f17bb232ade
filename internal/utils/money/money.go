// Package money converts between caller-facing decimal-string amounts and the
// fixed-point integer representation the ledger backends operate on.
//
// Only the canonical form of an amount is accepted: an integer part with no
// sign and no superfluous leading zeros, optionally followed by a fraction of
// at most the currency's configured decimals whose last digit is non-zero.
// "100" and "100.5" are canonical for two decimals; "100.00" and "100.50"
// are not.
package money

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ToFixed parses a canonical decimal string into its fixed-point value for
// the given number of decimals.
func ToFixed(amount string, decimals uint) (uint64, error) {
	if err := validateCanonical(amount, decimals); err != nil {
		return 0, err
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		// validateCanonical only admits strings decimal can parse
		return 0, fmt.Errorf("%w: invalid amount %q", apperrors.ErrValidation, amount)
	}

	scaled := dec.Shift(int32(decimals)).BigInt()
	if !scaled.IsUint64() {
		return 0, fmt.Errorf("%w: amount %q overflows at %d decimals", apperrors.ErrValidation, amount, decimals)
	}
	return scaled.Uint64(), nil
}

// FromFixed renders a fixed-point value as a canonical decimal string.
func FromFixed(value uint64, decimals uint) string {
	dec := decimal.NewFromBigInt(new(big.Int).SetUint64(value), -int32(decimals))
	s := dec.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func validateCanonical(amount string, decimals uint) error {
	intPart, fracPart, hasFrac := strings.Cut(amount, ".")

	if !digitsOnly(intPart) {
		return fmt.Errorf("%w: amount %q is not a non-negative decimal", apperrors.ErrValidation, amount)
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return fmt.Errorf("%w: amount %q has superfluous leading zeros", apperrors.ErrValidation, amount)
	}

	if !hasFrac {
		return nil
	}
	if !digitsOnly(fracPart) {
		return fmt.Errorf("%w: amount %q has a malformed fraction", apperrors.ErrValidation, amount)
	}
	if uint(len(fracPart)) > decimals {
		return fmt.Errorf("%w: amount %q exceeds %d decimals", apperrors.ErrValidation, amount, decimals)
	}
	// A fraction that ends in zero (including an all-zero fraction such as
	// ".00") is a redundant spelling of a shorter canonical amount.
	if fracPart[len(fracPart)-1] == '0' {
		return fmt.Errorf("%w: amount %q has a redundant trailing zero fraction", apperrors.ErrValidation, amount)
	}
	return nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
