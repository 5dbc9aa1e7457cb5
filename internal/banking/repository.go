package banking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartershq/quarters/internal/platform/db"
)

// recentTransactionLimit is the fixed page size on account detail reads.
const recentTransactionLimit = 100

// Repository encapsulates DB operations for bank accounts and transactions.
type Repository interface {
	InsertAccount(ctx context.Context, account BankAccount) (BankAccount, error)
	GetAccount(ctx context.Context, orgID uuid.UUID, id int64) (BankAccount, error)
	ListAccounts(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]BankAccount, int, error)
	// RecentTransactions returns the newest rows for an account, capped at
	// recentTransactionLimit.
	RecentTransactions(ctx context.Context, accountID int64) ([]BankTransaction, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	InsertTransactions(ctx context.Context, accountID int64, batchID uuid.UUID, rows []TransactionImportRow) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `id, org_id, name, account_number, routing_number, type, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (BankAccount, error) {
	var a BankAccount
	err := row.Scan(&a.ID, &a.OrgID, &a.Name, &a.AccountNumber, &a.RoutingNumber,
		&a.Type, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) InsertAccount(ctx context.Context, account BankAccount) (BankAccount, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO bank_accounts (org_id, name, account_number, routing_number, type, is_active)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING `+accountColumns,
		account.OrgID, account.Name, account.AccountNumber, account.RoutingNumber, account.Type, account.IsActive)
	return scanAccount(row)
}

func (r *repository) GetAccount(ctx context.Context, orgID uuid.UUID, id int64) (BankAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE id=$1 AND org_id=$2`, id, orgID)
	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return BankAccount{}, ErrBankAccountNotFound
	}
	return account, err
}

func (r *repository) ListAccounts(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]BankAccount, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bank_accounts WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM bank_accounts
WHERE org_id=$1 ORDER BY name ASC, id ASC LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var accounts []BankAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account)
	}
	return accounts, total, rows.Err()
}

func (r *repository) RecentTransactions(ctx context.Context, accountID int64) ([]BankTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, bank_account_id, import_batch_id, date, description, amount, balance, reference, created_at
FROM bank_transactions WHERE bank_account_id=$1 ORDER BY date DESC, id DESC LIMIT $2`, accountID, recentTransactionLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txns []BankTransaction
	for rows.Next() {
		var t BankTransaction
		if err := rows.Scan(&t.ID, &t.BankAccountID, &t.ImportBatchID, &t.Date, &t.Description,
			&t.Amount, &t.Balance, &t.Reference, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertTransactions(ctx context.Context, accountID int64, batchID uuid.UUID, rows []TransactionImportRow) (int, error) {
	inserted := 0
	for _, row := range rows {
		if _, err := r.tx.Exec(ctx, `INSERT INTO bank_transactions (bank_account_id, import_batch_id, date, description, amount, balance, reference)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, accountID, batchID, row.Date, row.Description, row.Amount, row.Balance, row.Reference); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
