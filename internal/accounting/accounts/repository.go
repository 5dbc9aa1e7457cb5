package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartershq/quarters/internal/platform/db"
	"github.com/quartershq/quarters/internal/accounting/shared"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	Insert(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, account Account) (Account, error)
	Get(ctx context.Context, orgID uuid.UUID, id int64) (Account, error)
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Account, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Insert(ctx context.Context, account Account) (Account, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO accounts (org_id, parent_id, code, name, type)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at, updated_at`,
		account.OrgID, account.ParentID, account.Code, account.Name, account.Type)
	if err := row.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return Account{}, shared.ErrDuplicateAccountCode
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) Update(ctx context.Context, account Account) (Account, error) {
	row := r.pool.QueryRow(ctx, `UPDATE accounts SET parent_id=$3, name=$4, updated_at=NOW()
WHERE id=$1 AND org_id=$2 RETURNING updated_at`,
		account.ID, account.OrgID, account.ParentID, account.Name)
	if err := row.Scan(&account.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) Get(ctx context.Context, orgID uuid.UUID, id int64) (Account, error) {
	var account Account
	err := r.pool.QueryRow(ctx, `SELECT id, org_id, parent_id, code, name, type, created_at, updated_at
FROM accounts WHERE id=$1 AND org_id=$2`, id, orgID).
		Scan(&account.ID, &account.OrgID, &account.ParentID, &account.Code, &account.Name, &account.Type, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Account, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, org_id, parent_id, code, name, type, created_at, updated_at
FROM accounts WHERE org_id=$1 ORDER BY code ASC LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var account Account
		if err := rows.Scan(&account.ID, &account.OrgID, &account.ParentID, &account.Code, &account.Name, &account.Type, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account)
	}
	return accounts, total, rows.Err()
}
