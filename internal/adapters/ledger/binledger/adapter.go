// Package binledger implements the ledger adapter contract against the
// high-throughput binary ledger protocol: 128-bit identifiers, account types
// as chart-of-accounts codes, currencies as ledger numbers, amounts as
// fixed-point integers.
package binledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	"github.com/orsa-labs/coa_ledger/internal/core/domain"
	"github.com/orsa-labs/coa_ledger/internal/core/ports/ledger"
	portssvc "github.com/orsa-labs/coa_ledger/internal/core/ports/services"
	"github.com/orsa-labs/coa_ledger/internal/utils/ident"
	"github.com/orsa-labs/coa_ledger/internal/utils/money"
)

// Adapter speaks the binary ledger protocol over a single shared client.
type Adapter struct {
	client     *Client
	currencies portssvc.CurrencySource
}

// NewAdapter connects to the binary ledger and validates connectivity before
// returning.
func NewAdapter(addr string, connectTimeout time.Duration, currencies portssvc.CurrencySource) (*Adapter, error) {
	client, err := NewClient(addr, connectTimeout)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client, currencies: currencies}, nil
}

// Ensure Adapter implements the ledger adapter contract.
var _ ledger.Adapter = (*Adapter)(nil)

// CreateAccounts maps the batch onto account records and submits it in one
// round trip. Any failed item fails the whole call.
func (a *Adapter) CreateAccounts(ctx context.Context, items []ledger.AccountRequestItem) ([]ledger.CreatedItem, error) {
	payload := make([]byte, 0, len(items)*accountRecordLen)
	created := make([]ledger.CreatedItem, 0, len(items))

	for _, item := range items {
		id, err := ident.ToUint128(item.RequestedID)
		if err != nil {
			return nil, err
		}
		currency, err := a.currencyByCode(item.CurrencyCode)
		if err != nil {
			return nil, err
		}
		code, err := chartOfAccountsCode(domain.AccountType(item.Type))
		if err != nil {
			return nil, err
		}

		payload = appendAccountRecord(payload, accountRecord{
			ID:     id,
			Ledger: currency.NumericCode,
			Code:   code,
			Flags:  accountFlags(domain.AccountType(item.Type)),
		})
		created = append(created, ledger.CreatedItem{
			RequestedID:  item.RequestedID,
			AttributedID: ident.FromUint128(id),
		})
	}

	header, respPayload, err := a.roundTrip(ctx, opCreateAccounts, uint32(len(items)), payload)
	if err != nil {
		return nil, err
	}
	if err := a.checkCreateResults(ctx, header, respPayload, "account"); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateJournalEntries maps the batch onto transfer records and submits it in
// one round trip.
func (a *Adapter) CreateJournalEntries(ctx context.Context, items []ledger.JournalEntryRequestItem) ([]ledger.CreatedItem, error) {
	payload := make([]byte, 0, len(items)*transferRecordLen)
	created := make([]ledger.CreatedItem, 0, len(items))

	for _, item := range items {
		id, err := ident.ToUint128(item.RequestedID)
		if err != nil {
			return nil, err
		}
		debited, err := ident.ToUint128(item.DebitedAccountID)
		if err != nil {
			return nil, err
		}
		credited, err := ident.ToUint128(item.CreditedAccountID)
		if err != nil {
			return nil, err
		}
		currency, err := a.currencyByCode(item.CurrencyCode)
		if err != nil {
			return nil, err
		}
		amount, err := money.ToFixed(item.Amount, currency.Decimals)
		if err != nil {
			return nil, err
		}

		var flags uint16
		if item.Pending {
			flags |= flagPending
		}

		payload = appendTransferRecord(payload, transferRecord{
			ID:              id,
			DebitAccountID:  debited,
			CreditAccountID: credited,
			Amount:          amount,
			Ledger:          currency.NumericCode,
			Code:            journalEntryCode,
			Flags:           flags,
			Timestamp:       uint64(item.Timestamp.UnixNano()),
		})
		created = append(created, ledger.CreatedItem{
			RequestedID:  item.RequestedID,
			AttributedID: ident.FromUint128(id),
		})
	}

	header, respPayload, err := a.roundTrip(ctx, opCreateTransfers, uint32(len(items)), payload)
	if err != nil {
		return nil, err
	}
	if err := a.checkCreateResults(ctx, header, respPayload, "journal entry"); err != nil {
		return nil, err
	}
	return created, nil
}

// GetAccountsByIDs looks the accounts up and renders balances with the
// decimals hint, falling back to the ledger number when an id has no hint.
func (a *Adapter) GetAccountsByIDs(ctx context.Context, ids []string, decimalsHint map[string]uint) ([]ledger.AccountBalances, error) {
	payload := make([]byte, 0, len(ids)*idLen)
	for _, id := range ids {
		raw, err := ident.ToUint128(id)
		if err != nil {
			return nil, err
		}
		payload = append(payload, raw[:]...)
	}

	header, respPayload, err := a.roundTrip(ctx, opLookupAccounts, uint32(len(ids)), payload)
	if err != nil {
		return nil, err
	}
	if int(header.Count)*accountStateRecordLen != len(respPayload) {
		return nil, fmt.Errorf("%w: response payload does not match record count", apperrors.ErrLedger)
	}

	balances := make([]ledger.AccountBalances, 0, header.Count)
	for i := uint32(0); i < header.Count; i++ {
		record, err := decodeAccountStateRecord(respPayload[i*accountStateRecordLen:])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrLedger, err.Error())
		}

		idStr := ident.FromUint128(record.ID)
		decimals, ok := decimalsHint[idStr]
		if !ok {
			currency, err := a.currencyByLedger(record.Ledger)
			if err != nil {
				return nil, err
			}
			decimals = currency.Decimals
		}

		balances = append(balances, ledger.AccountBalances{
			ID:                        idStr,
			PostedDebitBalance:        money.FromFixed(record.DebitsPosted, decimals),
			PendingDebitBalance:       money.FromFixed(record.DebitsPending, decimals),
			PostedCreditBalance:       money.FromFixed(record.CreditsPosted, decimals),
			PendingCreditBalance:      money.FromFixed(record.CreditsPending, decimals),
			TimestampLastJournalEntry: int64(record.Timestamp),
		})
	}
	return balances, nil
}

// GetJournalEntriesByAccountID returns every transfer referencing the account
// as either party.
func (a *Adapter) GetJournalEntriesByAccountID(ctx context.Context, accountID string, decimals uint) ([]ledger.JournalEntryRecord, error) {
	raw, err := ident.ToUint128(accountID)
	if err != nil {
		return nil, err
	}

	header, respPayload, err := a.roundTrip(ctx, opLookupTransfers, 1, raw[:])
	if err != nil {
		return nil, err
	}
	if int(header.Count)*transferRecordLen != len(respPayload) {
		return nil, fmt.Errorf("%w: response payload does not match record count", apperrors.ErrLedger)
	}

	entries := make([]ledger.JournalEntryRecord, 0, header.Count)
	for i := uint32(0); i < header.Count; i++ {
		record, err := decodeTransferRecord(respPayload[i*transferRecordLen:])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrLedger, err.Error())
		}

		currencyCode := ""
		if currency, err := a.currencyByLedger(record.Ledger); err == nil {
			currencyCode = currency.Code
		}

		entries = append(entries, ledger.JournalEntryRecord{
			ID:                ident.FromUint128(record.ID),
			CurrencyCode:      currencyCode,
			Amount:            money.FromFixed(record.Amount, decimals),
			CreditedAccountID: ident.FromUint128(record.CreditAccountID),
			DebitedAccountID:  ident.FromUint128(record.DebitAccountID),
			Timestamp:         int64(record.Timestamp),
			Pending:           record.Flags&flagPending != 0,
		})
	}
	return entries, nil
}

// The binary protocol has no account lifecycle operations; the local
// chart-of-accounts state is the only lifecycle this backend knows about.

func (a *Adapter) DeleteAccountsByIDs(ctx context.Context, ids []string) error {
	return apperrors.ErrNotSupported
}

func (a *Adapter) DeactivateAccountsByIDs(ctx context.Context, ids []string) error {
	return apperrors.ErrNotSupported
}

func (a *Adapter) ReactivateAccountsByIDs(ctx context.Context, ids []string) error {
	return apperrors.ErrNotSupported
}

// Close releases the shared backend connection.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// roundTrip performs one exchange and normalizes transport and backend-level
// failures into apperrors.ErrLedger.
func (a *Adapter) roundTrip(ctx context.Context, op uint8, count uint32, payload []byte) (responseHeader, []byte, error) {
	header, respPayload, err := a.client.roundTrip(ctx, op, count, payload)
	if err != nil {
		slog.ErrorContext(ctx, "Binary ledger call failed", slog.Int("op", int(op)), slog.String("error", err.Error()))
		return responseHeader{}, nil, fmt.Errorf("%w: %s", apperrors.ErrLedger, err.Error())
	}
	if header.Status != statusOK {
		msg := string(respPayload)
		slog.ErrorContext(ctx, "Binary ledger rejected request", slog.Int("op", int(op)), slog.String("message", msg))
		return responseHeader{}, nil, fmt.Errorf("%w: %s", apperrors.ErrLedger, msg)
	}
	return header, respPayload, nil
}

// checkCreateResults fails the whole call when the backend reports any failed
// item of a create batch.
func (a *Adapter) checkCreateResults(ctx context.Context, header responseHeader, payload []byte, kind string) error {
	if int(header.Count)*createResultLen != len(payload) {
		return fmt.Errorf("%w: response payload does not match result count", apperrors.ErrLedger)
	}
	for i := uint32(0); i < header.Count; i++ {
		result, err := decodeCreateResult(payload[i*createResultLen:])
		if err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrLedger, err.Error())
		}
		slog.ErrorContext(ctx, "Binary ledger rejected batch item",
			slog.String("kind", kind),
			slog.Int("index", int(result.Index)),
			slog.Int("result", int(result.Result)))
		if result.Result == resultExists {
			return fmt.Errorf("%w: %s at index %d already exists", apperrors.ErrDuplicate, kind, result.Index)
		}
		return fmt.Errorf("%w: %s at index %d rejected with result %d", apperrors.ErrLedger, kind, result.Index, result.Result)
	}
	return nil
}

func (a *Adapter) currencyByCode(code string) (domain.Currency, error) {
	for _, currency := range a.currencies.GetCurrencies() {
		if currency.Code == code {
			return currency, nil
		}
	}
	return domain.Currency{}, fmt.Errorf("%w: currency %q has no ledger number", apperrors.ErrValidation, code)
}

func (a *Adapter) currencyByLedger(n uint32) (domain.Currency, error) {
	for _, currency := range a.currencies.GetCurrencies() {
		if currency.NumericCode == n {
			return currency, nil
		}
	}
	return domain.Currency{}, fmt.Errorf("%w: ledger number %d maps to no active currency", apperrors.ErrValidation, n)
}
