package reconciliation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository encapsulates DB operations for reconciliations.
type Repository interface {
	Insert(ctx context.Context, rec Reconciliation) (Reconciliation, error)
	GetWithLines(ctx context.Context, orgID uuid.UUID, id int64) (Reconciliation, error)
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Reconciliation, int, error)
	InsertLine(ctx context.Context, reconciliationID int64, line Line) (Line, error)
	// MarkCompleted flips a draft reconciliation to completed in a single
	// conditional update. It reports ErrAlreadyCompleted when the record
	// exists but is no longer draft.
	MarkCompleted(ctx context.Context, orgID uuid.UUID, id int64, at time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const recColumns = `id, org_id, bank_account_id, statement_date, statement_balance, status, completed_at, created_at, updated_at`

func scanRec(row pgx.Row) (Reconciliation, error) {
	var rec Reconciliation
	err := row.Scan(&rec.ID, &rec.OrgID, &rec.BankAccountID, &rec.StatementDate, &rec.StatementBalance,
		&rec.Status, &rec.CompletedAt, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

func (r *repository) Insert(ctx context.Context, rec Reconciliation) (Reconciliation, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO reconciliations (org_id, bank_account_id, statement_date, statement_balance, status)
VALUES ($1,$2,$3,$4,$5) RETURNING `+recColumns,
		rec.OrgID, rec.BankAccountID, rec.StatementDate, rec.StatementBalance, rec.Status)
	return scanRec(row)
}

func (r *repository) GetWithLines(ctx context.Context, orgID uuid.UUID, id int64) (Reconciliation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recColumns+` FROM reconciliations WHERE id=$1 AND org_id=$2`, id, orgID)
	rec, err := scanRec(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reconciliation{}, ErrNotFound
		}
		return Reconciliation{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, reconciliation_id, bank_transaction_id, journal_line_id, amount, description, created_at
FROM reconciliation_lines WHERE reconciliation_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return Reconciliation{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.ReconciliationID, &line.BankTransactionID, &line.JournalLineID,
			&line.Amount, &line.Description, &line.CreatedAt); err != nil {
			return Reconciliation{}, err
		}
		rec.Lines = append(rec.Lines, line)
	}
	return rec, rows.Err()
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Reconciliation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reconciliations WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+recColumns+` FROM reconciliations
WHERE org_id=$1 ORDER BY statement_date DESC, id DESC LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var recs []Reconciliation
	for rows.Next() {
		rec, err := scanRec(rows)
		if err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	return recs, total, rows.Err()
}

func (r *repository) InsertLine(ctx context.Context, reconciliationID int64, line Line) (Line, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO reconciliation_lines (reconciliation_id, bank_transaction_id, journal_line_id, amount, description)
VALUES ($1,$2,$3,$4,$5) RETURNING id, reconciliation_id, bank_transaction_id, journal_line_id, amount, description, created_at`,
		reconciliationID, line.BankTransactionID, line.JournalLineID, line.Amount, line.Description)
	var inserted Line
	err := row.Scan(&inserted.ID, &inserted.ReconciliationID, &inserted.BankTransactionID, &inserted.JournalLineID,
		&inserted.Amount, &inserted.Description, &inserted.CreatedAt)
	return inserted, err
}

func (r *repository) MarkCompleted(ctx context.Context, orgID uuid.UUID, id int64, at time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE reconciliations SET status=$3, completed_at=$4, updated_at=NOW()
WHERE id=$1 AND org_id=$2 AND status=$5`, id, orgID, StatusCompleted, at, StatusDraft)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var status Status
	err = r.pool.QueryRow(ctx, `SELECT status FROM reconciliations WHERE id=$1 AND org_id=$2`, id, orgID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return ErrAlreadyCompleted
}
