package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	"github.com/orsa-labs/coa_ledger/internal/core/domain"
	portsrepo "github.com/orsa-labs/coa_ledger/internal/core/ports/repositories"
	"github.com/orsa-labs/coa_ledger/internal/models"
	"github.com/orsa-labs/coa_ledger/internal/utils/mapping"
)

// PgxCoaAccountRepository is the durable, authoritative store behind the
// cache-aside layer. Accounts are never physically deleted; DELETED is a soft
// state.
type PgxCoaAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPgxCoaAccountRepository creates a new repository for chart-of-accounts data.
func NewPgxCoaAccountRepository(pool *pgxpool.Pool) portsrepo.CoaAccountDurableRepository {
	return &PgxCoaAccountRepository{pool: pool}
}

// Ensure PgxCoaAccountRepository implements the durable repository port.
var _ portsrepo.CoaAccountDurableRepository = (*PgxCoaAccountRepository)(nil)

const accountColumns = `id, ledger_account_id, owner_id, state, type, currency_code, currency_decimals, created_at, last_updated_at`

// InsertAccounts persists a batch of new accounts in one pgx batch. A unique
// violation on any row surfaces as apperrors.ErrDuplicate since it indicates a
// race the aggregate's existence check did not catch.
func (r *PgxCoaAccountRepository) InsertAccounts(ctx context.Context, accounts []domain.CoaAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	query := `
		INSERT INTO coa_accounts (id, ledger_account_id, owner_id, state, type, currency_code, currency_decimals, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	batch := &pgx.Batch{}
	for _, acc := range accounts {
		m := mapping.ToModelCoaAccount(acc)
		batch.Queue(query,
			m.ID,
			m.LedgerAccountID,
			m.OwnerID,
			m.State,
			m.Type,
			m.CurrencyCode,
			m.CurrencyDecimals,
			m.CreatedAt,
			m.LastUpdatedAt,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
				batchErr = fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, accounts[i].ID)
			} else {
				batchErr = fmt.Errorf("failed to insert account %s: %w", accounts[i].ID, err)
			}
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close account insert batch: %w", err)
	}
	return batchErr
}

// CountAccountsByIDs returns how many of the given ids exist.
func (r *PgxCoaAccountRepository) CountAccountsByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coa_accounts WHERE id = ANY($1);`, ids).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts by IDs: %w", err)
	}
	return count, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs. Ids that match
// nothing are simply absent from the result.
func (r *PgxCoaAccountRepository) FindAccountsByIDs(ctx context.Context, ids []string) ([]domain.CoaAccount, error) {
	if len(ids) == 0 {
		return []domain.CoaAccount{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM coa_accounts WHERE id = ANY($1);`
	return r.queryAccounts(ctx, query, ids)
}

// FindAccountsByOwnerID retrieves all accounts belonging to an owner.
func (r *PgxCoaAccountRepository) FindAccountsByOwnerID(ctx context.Context, ownerID string) ([]domain.CoaAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM coa_accounts WHERE owner_id = $1;`
	return r.queryAccounts(ctx, query, ownerID)
}

// FindAccountsByTypes retrieves all accounts of the given types.
func (r *PgxCoaAccountRepository) FindAccountsByTypes(ctx context.Context, types []domain.AccountType) ([]domain.CoaAccount, error) {
	if len(types) == 0 {
		return []domain.CoaAccount{}, nil
	}
	typeStrings := make([]string, len(types))
	for i, t := range types {
		typeStrings[i] = string(t)
	}
	query := `SELECT ` + accountColumns + ` FROM coa_accounts WHERE type = ANY($1);`
	return r.queryAccounts(ctx, query, typeStrings)
}

// UpdateAccountStates moves the given accounts to a new lifecycle state and
// returns the updated rows.
func (r *PgxCoaAccountRepository) UpdateAccountStates(ctx context.Context, ids []string, state domain.AccountState) ([]domain.CoaAccount, error) {
	if len(ids) == 0 {
		return []domain.CoaAccount{}, nil
	}

	query := `
		UPDATE coa_accounts
		SET state = $2, last_updated_at = NOW()
		WHERE id = ANY($1)
		RETURNING ` + accountColumns + `;
	`

	rows, err := r.pool.Query(ctx, query, ids, string(state))
	if err != nil {
		return nil, fmt.Errorf("failed to update account states: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func (r *PgxCoaAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.CoaAccount, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]domain.CoaAccount, error) {
	modelAccounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CoaAccount, error) {
		var m models.CoaAccount
		err := row.Scan(
			&m.ID,
			&m.LedgerAccountID,
			&m.OwnerID,
			&m.State,
			&m.Type,
			&m.CurrencyCode,
			&m.CurrencyDecimals,
			&m.CreatedAt,
			&m.LastUpdatedAt,
		)
		return m, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.CoaAccount{}, nil
		}
		return nil, fmt.Errorf("failed to scan account rows: %w", err)
	}

	return mapping.ToDomainCoaAccountSlice(modelAccounts), nil
}
