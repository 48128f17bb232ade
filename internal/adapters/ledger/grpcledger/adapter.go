// Package grpcledger implements the ledger adapter contract against a
// general-purpose ledger service reachable over gRPC. Every outbound call
// carries a bearer credential refreshed from the token source, because the
// credentials expire between calls.
package grpcledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	"github.com/orsa-labs/coa_ledger/internal/core/ports/ledger"
	portssvc "github.com/orsa-labs/coa_ledger/internal/core/ports/services"
)

const servicePath = "/orsalabs.ledger.v1.GeneralLedger/"

// Adapter holds the single long-lived client connection to the RPC ledger.
type Adapter struct {
	conn           *grpc.ClientConn
	tokens         portssvc.BearerTokenSource
	connectTimeout time.Duration
}

// NewAdapter creates the shared client connection. The connection itself is
// lazy; each call waits for transport readiness bounded by the connect
// timeout instead of failing immediately.
func NewAdapter(target string, connectTimeout time.Duration, tokens portssvc.BearerTokenSource) (*Adapter, error) {
	if target == "" {
		return nil, fmt.Errorf("rpc ledger target is required")
	}
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(codecName),
			grpc.WaitForReady(true),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rpc ledger client for %s: %w", target, err)
	}

	return &Adapter{conn: conn, tokens: tokens, connectTimeout: connectTimeout}, nil
}

// Ensure Adapter implements the ledger adapter contract.
var _ ledger.Adapter = (*Adapter)(nil)

func (a *Adapter) CreateAccounts(ctx context.Context, items []ledger.AccountRequestItem) ([]ledger.CreatedItem, error) {
	req := createAccountsRequest{Accounts: make([]accountItem, len(items))}
	for i, item := range items {
		req.Accounts[i] = accountItem{
			RequestedID:  item.RequestedID,
			OwnerID:      item.OwnerID,
			Type:         item.Type,
			CurrencyCode: item.CurrencyCode,
		}
	}

	var resp createAccountsResponse
	if err := a.invoke(ctx, "CreateAccounts", &req, &resp); err != nil {
		return nil, err
	}
	if err := a.backendErrors(ctx, "CreateAccounts", resp.Errors); err != nil {
		return nil, err
	}
	return mapCreatedItems(resp.Accounts)
}

func (a *Adapter) CreateJournalEntries(ctx context.Context, items []ledger.JournalEntryRequestItem) ([]ledger.CreatedItem, error) {
	req := createJournalEntriesRequest{JournalEntries: make([]journalEntryItem, len(items))}
	for i, item := range items {
		req.JournalEntries[i] = journalEntryItem{
			RequestedID:       item.RequestedID,
			OwnerID:           item.OwnerID,
			CurrencyCode:      item.CurrencyCode,
			Amount:            item.Amount,
			CreditedAccountID: item.CreditedAccountID,
			DebitedAccountID:  item.DebitedAccountID,
			Timestamp:         item.Timestamp.UnixNano(),
			Pending:           item.Pending,
		}
	}

	var resp createJournalEntriesResponse
	if err := a.invoke(ctx, "CreateJournalEntries", &req, &resp); err != nil {
		return nil, err
	}
	if err := a.backendErrors(ctx, "CreateJournalEntries", resp.Errors); err != nil {
		return nil, err
	}
	return mapCreatedItems(resp.JournalEntries)
}

func (a *Adapter) GetAccountsByIDs(ctx context.Context, ids []string, decimalsHint map[string]uint) ([]ledger.AccountBalances, error) {
	req := getAccountsByIDsRequest{IDs: ids}

	var resp getAccountsByIDsResponse
	if err := a.invoke(ctx, "GetAccountsByIds", &req, &resp); err != nil {
		return nil, err
	}
	if err := a.backendErrors(ctx, "GetAccountsByIds", resp.Errors); err != nil {
		return nil, err
	}

	balances := make([]ledger.AccountBalances, 0, len(resp.Accounts))
	for _, item := range resp.Accounts {
		if item.ID == nil || item.PostedDebitBalance == nil || item.PendingDebitBalance == nil ||
			item.PostedCreditBalance == nil || item.PendingCreditBalance == nil {
			return nil, fmt.Errorf("%w: backend returned an account with missing fields", apperrors.ErrLedger)
		}
		balances = append(balances, ledger.AccountBalances{
			ID:                        *item.ID,
			PostedDebitBalance:        *item.PostedDebitBalance,
			PendingDebitBalance:       *item.PendingDebitBalance,
			PostedCreditBalance:       *item.PostedCreditBalance,
			PendingCreditBalance:      *item.PendingCreditBalance,
			TimestampLastJournalEntry: item.TimestampLastJournalEntry,
		})
	}
	return balances, nil
}

func (a *Adapter) GetJournalEntriesByAccountID(ctx context.Context, accountID string, decimals uint) ([]ledger.JournalEntryRecord, error) {
	req := getJournalEntriesByAccountIDRequest{AccountID: accountID}

	var resp getJournalEntriesByAccountIDResponse
	if err := a.invoke(ctx, "GetJournalEntriesByAccountId", &req, &resp); err != nil {
		return nil, err
	}
	if err := a.backendErrors(ctx, "GetJournalEntriesByAccountId", resp.Errors); err != nil {
		return nil, err
	}

	entries := make([]ledger.JournalEntryRecord, 0, len(resp.JournalEntries))
	for _, item := range resp.JournalEntries {
		if item.ID == nil || item.Amount == nil {
			return nil, fmt.Errorf("%w: backend returned a journal entry with missing fields", apperrors.ErrLedger)
		}
		entries = append(entries, ledger.JournalEntryRecord{
			ID:                *item.ID,
			OwnerID:           item.OwnerID,
			CurrencyCode:      item.CurrencyCode,
			Amount:            *item.Amount,
			CreditedAccountID: item.CreditedAccountID,
			DebitedAccountID:  item.DebitedAccountID,
			Timestamp:         item.Timestamp,
			Pending:           item.Pending,
		})
	}
	return entries, nil
}

func (a *Adapter) DeleteAccountsByIDs(ctx context.Context, ids []string) error {
	return a.accountIDsCall(ctx, "DeleteAccountsByIds", ids)
}

func (a *Adapter) DeactivateAccountsByIDs(ctx context.Context, ids []string) error {
	return a.accountIDsCall(ctx, "DeactivateAccountsByIds", ids)
}

func (a *Adapter) ReactivateAccountsByIDs(ctx context.Context, ids []string) error {
	return a.accountIDsCall(ctx, "ReactivateAccountsByIds", ids)
}

// Close releases the shared client connection.
func (a *Adapter) Close() error {
	return a.conn.Close()
}

func (a *Adapter) accountIDsCall(ctx context.Context, method string, ids []string) error {
	req := accountIDsRequest{IDs: ids}
	var resp accountIDsResponse
	if err := a.invoke(ctx, method, &req, &resp); err != nil {
		return err
	}
	return a.backendErrors(ctx, method, resp.Errors)
}

// invoke refreshes the bearer credential, bounds the wait for transport
// readiness, and performs one unary call. Transport failures are logged and
// re-wrapped; the adapter never retries.
func (a *Adapter) invoke(ctx context.Context, method string, req, resp any) error {
	token, err := a.tokens.BearerToken(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to obtain ledger credential", slog.String("method", method), slog.String("error", err.Error()))
		return fmt.Errorf("%w: credential refresh failed: %s", apperrors.ErrLedger, err.Error())
	}
	callCtx := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)

	if _, ok := callCtx.Deadline(); !ok {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, a.connectTimeout)
		defer cancel()
	}

	if err := a.conn.Invoke(callCtx, servicePath+method, req, resp); err != nil {
		slog.ErrorContext(ctx, "RPC ledger call failed", slog.String("method", method), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s", apperrors.ErrLedger, err.Error())
	}
	return nil
}

// backendErrors converts a non-empty errors array into a single failed call;
// partial successes are never suppressed.
func (a *Adapter) backendErrors(ctx context.Context, method string, errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	slog.ErrorContext(ctx, "RPC ledger reported errors", slog.String("method", method), slog.Int("count", len(errs)))
	return fmt.Errorf("%w: %s", apperrors.ErrLedger, strings.Join(errs, "; "))
}

func mapCreatedItems(items []createdItem) ([]ledger.CreatedItem, error) {
	created := make([]ledger.CreatedItem, 0, len(items))
	for _, item := range items {
		if item.RequestedID == nil || item.AttributedID == nil {
			return nil, fmt.Errorf("%w: backend returned an item without identifiers", apperrors.ErrLedger)
		}
		created = append(created, ledger.CreatedItem{
			RequestedID:  *item.RequestedID,
			AttributedID: *item.AttributedID,
		})
	}
	return created, nil
}
