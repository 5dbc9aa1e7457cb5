package payouts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartershq/quarters/internal/platform/db"
)

// Repository encapsulates DB operations for owner statements and payout
// batches.
type Repository interface {
	InsertStatement(ctx context.Context, stmt OwnerStatement) (OwnerStatement, error)
	GetStatement(ctx context.Context, orgID uuid.UUID, id int64) (OwnerStatement, error)
	// GetStatementsByIDs returns only the statements that resolve within
	// the organization; missing ids are simply absent from the result.
	GetStatementsByIDs(ctx context.Context, orgID uuid.UUID, ids []int64) ([]OwnerStatement, error)
	ListStatements(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]OwnerStatement, int, error)
	GetBatch(ctx context.Context, orgID uuid.UUID, id int64) (PayoutBatch, error)
	ListBatches(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]PayoutBatch, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	InsertBatch(ctx context.Context, batch PayoutBatch) (PayoutBatch, error)
	LinkStatement(ctx context.Context, batchID, statementID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const stmtColumns = `id, org_id, contact_id, property_id, period_start, period_end, total_income, total_expenses, net_amount, status, created_at, updated_at`

func scanStatement(row pgx.Row) (OwnerStatement, error) {
	var s OwnerStatement
	err := row.Scan(&s.ID, &s.OrgID, &s.ContactID, &s.PropertyID, &s.PeriodStart, &s.PeriodEnd,
		&s.TotalIncome, &s.TotalExpenses, &s.NetAmount, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *repository) InsertStatement(ctx context.Context, stmt OwnerStatement) (OwnerStatement, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO owner_statements (org_id, contact_id, property_id, period_start, period_end, total_income, total_expenses, net_amount, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING `+stmtColumns,
		stmt.OrgID, stmt.ContactID, stmt.PropertyID, stmt.PeriodStart, stmt.PeriodEnd,
		stmt.TotalIncome, stmt.TotalExpenses, stmt.NetAmount, stmt.Status)
	return scanStatement(row)
}

func (r *repository) GetStatement(ctx context.Context, orgID uuid.UUID, id int64) (OwnerStatement, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+stmtColumns+` FROM owner_statements WHERE id=$1 AND org_id=$2`, id, orgID)
	stmt, err := scanStatement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return OwnerStatement{}, ErrStatementNotFound
	}
	return stmt, err
}

func (r *repository) GetStatementsByIDs(ctx context.Context, orgID uuid.UUID, ids []int64) ([]OwnerStatement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+stmtColumns+` FROM owner_statements
WHERE org_id=$1 AND id = ANY($2) ORDER BY id ASC`, orgID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stmts []OwnerStatement
	for rows.Next() {
		stmt, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, rows.Err()
}

func (r *repository) ListStatements(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]OwnerStatement, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM owner_statements WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+stmtColumns+` FROM owner_statements
WHERE org_id=$1 ORDER BY period_end DESC, id DESC LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var stmts []OwnerStatement
	for rows.Next() {
		stmt, err := scanStatement(rows)
		if err != nil {
			return nil, 0, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, total, rows.Err()
}

func (r *repository) GetBatch(ctx context.Context, orgID uuid.UUID, id int64) (PayoutBatch, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, org_id, name, total_amount, status, created_at
FROM payout_batches WHERE id=$1 AND org_id=$2`, id, orgID)
	var batch PayoutBatch
	err := row.Scan(&batch.ID, &batch.OrgID, &batch.Name, &batch.TotalAmount, &batch.Status, &batch.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PayoutBatch{}, ErrBatchNotFound
		}
		return PayoutBatch{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+prefixedStmtColumns("s")+`
FROM owner_statements s JOIN payout_batch_statements pbs ON pbs.statement_id = s.id
WHERE pbs.batch_id=$1 ORDER BY s.id ASC`, id)
	if err != nil {
		return PayoutBatch{}, err
	}
	defer rows.Close()
	for rows.Next() {
		stmt, err := scanStatement(rows)
		if err != nil {
			return PayoutBatch{}, err
		}
		batch.Statements = append(batch.Statements, stmt)
	}
	return batch, rows.Err()
}

func (r *repository) ListBatches(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]PayoutBatch, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payout_batches WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, org_id, name, total_amount, status, created_at
FROM payout_batches WHERE org_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var batches []PayoutBatch
	for rows.Next() {
		var batch PayoutBatch
		if err := rows.Scan(&batch.ID, &batch.OrgID, &batch.Name, &batch.TotalAmount, &batch.Status, &batch.CreatedAt); err != nil {
			return nil, 0, err
		}
		batches = append(batches, batch)
	}
	return batches, total, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertBatch(ctx context.Context, batch PayoutBatch) (PayoutBatch, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO payout_batches (org_id, name, total_amount, status)
VALUES ($1,$2,$3,$4) RETURNING id, created_at`, batch.OrgID, batch.Name, batch.TotalAmount, batch.Status)
	if err := row.Scan(&batch.ID, &batch.CreatedAt); err != nil {
		return PayoutBatch{}, err
	}
	return batch, nil
}

func (r *txRepository) LinkStatement(ctx context.Context, batchID, statementID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO payout_batch_statements (batch_id, statement_id) VALUES ($1,$2)`, batchID, statementID)
	return err
}

func prefixedStmtColumns(alias string) string {
	return alias + ".id, " + alias + ".org_id, " + alias + ".contact_id, " + alias + ".property_id, " +
		alias + ".period_start, " + alias + ".period_end, " + alias + ".total_income, " +
		alias + ".total_expenses, " + alias + ".net_amount, " + alias + ".status, " +
		alias + ".created_at, " + alias + ".updated_at"
}
