package binledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orsa-labs/coa_ledger/internal/core/domain"
)

func TestAccountRecordRoundTrip(t *testing.T) {
	in := accountRecord{
		ID:     [16]byte{0xde, 0xad, 0xbe, 0xef, 15: 0x01},
		Ledger: 978,
		Code:   4,
		Flags:  flagDebitsMustNotExceedCredits,
	}

	encoded := appendAccountRecord(nil, in)
	require.Len(t, encoded, accountRecordLen)

	out, err := decodeAccountRecord(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAccountStateRecordRoundTrip(t *testing.T) {
	in := accountStateRecord{
		ID:             [16]byte{0x42},
		Ledger:         840,
		Code:           1,
		Flags:          0,
		DebitsPosted:   10050,
		DebitsPending:  5,
		CreditsPosted:  99999,
		CreditsPending: 1,
		Timestamp:      1700000000000000000,
	}

	encoded := appendAccountStateRecord(nil, in)
	require.Len(t, encoded, accountStateRecordLen)

	out, err := decodeAccountStateRecord(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTransferRecordRoundTrip(t *testing.T) {
	in := transferRecord{
		ID:              [16]byte{0x01},
		DebitAccountID:  [16]byte{0x02},
		CreditAccountID: [16]byte{0x03},
		Amount:          10055,
		Ledger:          978,
		Code:            journalEntryCode,
		Flags:           flagPending,
		Timestamp:       1700000000000000000,
	}

	encoded := appendTransferRecord(nil, in)
	require.Len(t, encoded, transferRecordLen)

	out, err := decodeTransferRecord(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCreateResultRoundTrip(t *testing.T) {
	in := createResult{Index: 7, Result: resultExists}

	encoded := appendCreateResult(nil, in)
	require.Len(t, encoded, createResultLen)

	out, err := decodeCreateResult(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestResponseHeaderRejectsBadMagic(t *testing.T) {
	encoded := appendRequestHeader(nil, opPing, 0, 0)
	encoded[0] = 0xFF

	_, err := decodeResponseHeader(encoded)
	require.Error(t, err)
}

func TestDecodeRejectsTruncatedRecords(t *testing.T) {
	_, err := decodeAccountRecord(make([]byte, accountRecordLen-1))
	assert.Error(t, err)
	_, err = decodeAccountStateRecord(make([]byte, accountStateRecordLen-1))
	assert.Error(t, err)
	_, err = decodeTransferRecord(make([]byte, transferRecordLen-1))
	assert.Error(t, err)
	_, err = decodeCreateResult(make([]byte, createResultLen-1))
	assert.Error(t, err)
}

func TestChartOfAccountsCodes(t *testing.T) {
	for _, accountType := range []domain.AccountType{domain.Position, domain.Liquidity, domain.Settlement, domain.HubReconciliation} {
		code, err := chartOfAccountsCode(accountType)
		require.NoError(t, err)
		assert.Equal(t, accountType, accountTypesByCode[code])
	}

	_, err := chartOfAccountsCode(domain.AccountType("SAVINGS"))
	assert.Error(t, err)
}

func TestAccountFlagsDerivedFromTypeOnly(t *testing.T) {
	// The control-type account forbids debits exceeding credits; no other
	// type carries protocol flags.
	assert.Equal(t, flagDebitsMustNotExceedCredits, accountFlags(domain.HubReconciliation))
	assert.Zero(t, accountFlags(domain.Position))
	assert.Zero(t, accountFlags(domain.Liquidity))
	assert.Zero(t, accountFlags(domain.Settlement))
}
