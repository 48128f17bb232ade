// Package coastore implements the chart-of-accounts store as a cache-aside
// repository: a Redis key lookup cache in front of the durable PostgreSQL
// store. The durable store is authoritative; the cache is a performance
// optimization only and entries are refreshed exclusively through this
// store's own read and write paths. A durable-store mutation that bypasses
// StoreAccounts leaves the cache stale; that is a documented limitation, not
// a bug this layer tries to fix.
package coastore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/orsa-labs/coa_ledger/internal/core/domain"
	portsrepo "github.com/orsa-labs/coa_ledger/internal/core/ports/repositories"
)

const accountKeyPrefix = "coa:account:v1:"

// CachedCoaStore is the cache-aside chart-of-accounts store.
type CachedCoaStore struct {
	cache   *redis.Client
	durable portsrepo.CoaAccountDurableRepository
}

// NewCachedCoaStore creates the store over a shared Redis client and the
// durable repository.
func NewCachedCoaStore(cache *redis.Client, durable portsrepo.CoaAccountDurableRepository) *CachedCoaStore {
	return &CachedCoaStore{cache: cache, durable: durable}
}

// Ensure CachedCoaStore implements the store facade.
var _ portsrepo.CoaAccountStoreFacade = (*CachedCoaStore)(nil)

func accountKey(id string) string {
	return accountKeyPrefix + id
}

// AccountsExistByInternalIDs reports true only if every id in the input is
// found. The durable store is consulted directly: the check is a duplicate
// gate and must not trust cache completeness.
func (s *CachedCoaStore) AccountsExistByInternalIDs(ctx context.Context, ids []string) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}

	count, err := s.durable.CountAccountsByIDs(ctx, ids)
	if err != nil {
		return false, fmt.Errorf("failed existence check: %w", err)
	}
	return count == len(ids), nil
}

// StoreAccounts writes the batch to the cache first, then inserts it into the
// durable store. A duplicate-key failure on the durable insert propagates as
// apperrors.ErrDuplicate; it indicates a race the aggregate's existence check
// did not catch.
func (s *CachedCoaStore) StoreAccounts(ctx context.Context, accounts []domain.CoaAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	s.warmCache(ctx, accounts)

	if err := s.durable.InsertAccounts(ctx, accounts); err != nil {
		return err
	}
	return nil
}

// GetAccounts looks every id up in the cache, fetches the misses from the
// durable store in one bulk query, warms the cache with everything fetched,
// and returns the union. Unmatched ids are silently omitted; no particular
// order is guaranteed.
func (s *CachedCoaStore) GetAccounts(ctx context.Context, ids []string) ([]domain.CoaAccount, error) {
	if len(ids) == 0 {
		return []domain.CoaAccount{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountKey(id)
	}

	found := make([]domain.CoaAccount, 0, len(ids))
	missing := make([]string, 0, len(ids))

	values, err := s.cache.MGet(ctx, keys...).Result()
	if err != nil {
		// A cache outage degrades to a full durable read.
		slog.WarnContext(ctx, "Cache lookup failed, falling back to durable store", "error", err.Error())
		missing = ids
	} else {
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var acc domain.CoaAccount
			if err := json.Unmarshal([]byte(raw), &acc); err != nil {
				slog.WarnContext(ctx, "Discarding undecodable cache entry", "key", keys[i], "error", err.Error())
				missing = append(missing, ids[i])
				continue
			}
			found = append(found, acc)
		}
	}

	if len(missing) == 0 {
		return found, nil
	}

	fetched, err := s.durable.FindAccountsByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts from durable store: %w", err)
	}
	s.warmCache(ctx, fetched)

	return append(found, fetched...), nil
}

// GetAccountsByOwnerID queries the durable store by owner and opportunistically
// warms the cache with every record returned.
func (s *CachedCoaStore) GetAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.CoaAccount, error) {
	return s.queryAndWarm(ctx, func(ctx context.Context) ([]domain.CoaAccount, error) {
		return s.durable.FindAccountsByOwnerID(ctx, ownerID)
	})
}

// GetAccountsByTypes queries the durable store by account type and
// opportunistically warms the cache with every record returned.
func (s *CachedCoaStore) GetAccountsByTypes(ctx context.Context, types []domain.AccountType) ([]domain.CoaAccount, error) {
	return s.queryAndWarm(ctx, func(ctx context.Context) ([]domain.CoaAccount, error) {
		return s.durable.FindAccountsByTypes(ctx, types)
	})
}

// UpdateAccountStatesByInternalIDs moves the accounts to a new lifecycle state
// in the durable store and refreshes the cache through the shared write path.
func (s *CachedCoaStore) UpdateAccountStatesByInternalIDs(ctx context.Context, ids []string, state domain.AccountState) error {
	updated, err := s.durable.UpdateAccountStates(ctx, ids, state)
	if err != nil {
		return fmt.Errorf("failed to update account states: %w", err)
	}
	s.warmCache(ctx, updated)
	return nil
}

// queryAndWarm is the single read-through helper every secondary-key query
// delegates to, so the miss/backfill logic is not re-implemented per method.
func (s *CachedCoaStore) queryAndWarm(ctx context.Context, query func(ctx context.Context) ([]domain.CoaAccount, error)) ([]domain.CoaAccount, error) {
	accounts, err := query(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts from durable store: %w", err)
	}
	s.warmCache(ctx, accounts)
	if accounts == nil {
		return []domain.CoaAccount{}, nil
	}
	return accounts, nil
}

// warmCache best-effort writes the accounts into the cache. Entries carry no
// expiry; consistency is this store's responsibility, not time-based.
func (s *CachedCoaStore) warmCache(ctx context.Context, accounts []domain.CoaAccount) {
	if len(accounts) == 0 {
		return
	}

	pipe := s.cache.Pipeline()
	for _, acc := range accounts {
		payload, err := json.Marshal(acc)
		if err != nil {
			slog.WarnContext(ctx, "Failed to encode account for cache", "account_id", acc.ID, "error", err.Error())
			continue
		}
		pipe.Set(ctx, accountKey(acc.ID), payload, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to warm account cache", "error", err.Error())
	}
}
