package ident_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	"github.com/orsa-labs/coa_ledger/internal/utils/ident"
)

func TestRoundTripFromString(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := uuid.NewString()

		raw, err := ident.ToUint128(id)
		require.NoError(t, err)

		assert.Equal(t, id, ident.FromUint128(raw))
	}
}

func TestRoundTripFromBits(t *testing.T) {
	values := [][16]byte{
		{},
		{0: 0x01},
		{15: 0xff},
		{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01},
	}

	for _, v := range values {
		back, err := ident.ToUint128(ident.FromUint128(v))
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}
}

func TestBareHexIsZeroPadded(t *testing.T) {
	raw, err := ident.ToUint128("ff")
	require.NoError(t, err)

	var want [16]byte
	want[15] = 0xff
	assert.Equal(t, want, raw)
}

func TestRejectsUnconvertibleIdentifiers(t *testing.T) {
	for _, id := range []string{"", "not-hex!", "zz", "0123456789abcdef0123456789abcdef00"} {
		_, err := ident.ToUint128(id)
		require.Error(t, err, "id %q", id)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "id %q", id)
	}
}
