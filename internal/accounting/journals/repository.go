package journals

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartershq/quarters/internal/accounting/accounts"
	"github.com/quartershq/quarters/internal/accounting/shared"
	"github.com/quartershq/quarters/internal/platform/db"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Journal, int, error)
	GetWithLines(ctx context.Context, orgID uuid.UUID, id int64) (Journal, error)
	// MarkPosted flips a draft journal to posted in a single conditional
	// update. It reports shared.ErrJournalAlreadyPosted when the journal
	// exists but is no longer draft, so concurrent posters cannot both win.
	MarkPosted(ctx context.Context, orgID uuid.UUID, id int64) error
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	InsertJournal(ctx context.Context, orgID uuid.UUID, in CreateJournalRequest) (Journal, error)
	InsertLines(ctx context.Context, journalID int64, lines []JournalLineRequest) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Journal, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM journals WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, org_id, number, date, description, status, created_at, updated_at
FROM journals WHERE org_id=$1 ORDER BY date DESC, id DESC LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var journals []Journal
	for rows.Next() {
		var j Journal
		if err := rows.Scan(&j.ID, &j.OrgID, &j.Number, &j.Date, &j.Description, &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, 0, err
		}
		journals = append(journals, j)
	}
	return journals, total, rows.Err()
}

func (r *repository) GetWithLines(ctx context.Context, orgID uuid.UUID, id int64) (Journal, error) {
	var j Journal
	err := r.pool.QueryRow(ctx, `SELECT id, org_id, number, date, description, status, created_at, updated_at
FROM journals WHERE id=$1 AND org_id=$2`, id, orgID).
		Scan(&j.ID, &j.OrgID, &j.Number, &j.Date, &j.Description, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Journal{}, shared.ErrJournalNotFound
		}
		return Journal{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT l.id, l.journal_id, l.account_id, l.debit, l.credit, l.description,
a.id, a.org_id, a.parent_id, a.code, a.name, a.type, a.created_at, a.updated_at
FROM journal_lines l JOIN accounts a ON a.id = l.account_id
WHERE l.journal_id=$1 ORDER BY l.id ASC`, id)
	if err != nil {
		return Journal{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line JournalLine
		var account accounts.Account
		if err := rows.Scan(&line.ID, &line.JournalID, &line.AccountID, &line.Debit, &line.Credit, &line.Description,
			&account.ID, &account.OrgID, &account.ParentID, &account.Code, &account.Name, &account.Type, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return Journal{}, err
		}
		line.Account = &account
		j.Lines = append(j.Lines, line)
	}
	return j, rows.Err()
}

func (r *repository) MarkPosted(ctx context.Context, orgID uuid.UUID, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE journals SET status=$3, updated_at=NOW()
WHERE id=$1 AND org_id=$2 AND status=$4`, id, orgID, JournalStatusPosted, JournalStatusDraft)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var status JournalStatus
	err = r.pool.QueryRow(ctx, `SELECT status FROM journals WHERE id=$1 AND org_id=$2`, id, orgID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrJournalNotFound
		}
		return err
	}
	return shared.ErrJournalAlreadyPosted
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertJournal(ctx context.Context, orgID uuid.UUID, in CreateJournalRequest) (Journal, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journals (org_id, number, date, description, status)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at, updated_at`,
		orgID, in.Number, in.Date, in.Description, JournalStatusDraft)
	journal := Journal{
		OrgID:       orgID,
		Number:      in.Number,
		Date:        in.Date,
		Description: in.Description,
		Status:      JournalStatusDraft,
	}
	if err := row.Scan(&journal.ID, &journal.CreatedAt, &journal.UpdatedAt); err != nil {
		return Journal{}, err
	}
	return journal, nil
}

func (r *txRepository) InsertLines(ctx context.Context, journalID int64, lines []JournalLineRequest) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (journal_id, account_id, debit, credit, description)
VALUES ($1,$2,$3,$4,$5)`, journalID, line.AccountID, line.Debit, line.Credit, line.Description); err != nil {
			return err
		}
	}
	return nil
}
