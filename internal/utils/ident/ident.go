// Package ident converts caller-facing string identifiers to the 128-bit
// integers the binary ledger backend requires, and back. The conversion is a
// bijection over canonical identifiers: FromUint128 always yields the
// canonical form, and ToUint128 of a canonical form restores the same bits.
package ident

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
)

// ToUint128 derives the 128-bit backend identifier from a caller-facing id.
// UUID-shaped identifiers map onto their raw bytes; bare hex strings are
// zero-padded on the left to 128 bits.
func ToUint128(id string) ([16]byte, error) {
	if u, err := uuid.Parse(id); err == nil {
		return u, nil
	}

	cleaned := strings.ToLower(id)
	if cleaned == "" || len(cleaned) > 32 {
		return [16]byte{}, fmt.Errorf("%w: identifier %q is not convertible to 128 bits", apperrors.ErrValidation, id)
	}

	padded := strings.Repeat("0", 32-len(cleaned)) + cleaned
	raw, err := hex.DecodeString(padded)
	if err != nil {
		return [16]byte{}, fmt.Errorf("%w: identifier %q is not convertible to 128 bits", apperrors.ErrValidation, id)
	}

	var out [16]byte
	copy(out[:], raw)
	return out, nil
}

// FromUint128 returns the canonical caller-facing form of a 128-bit backend
// identifier.
func FromUint128(value [16]byte) string {
	return uuid.UUID(value).String()
}
