package bills

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartershq/quarters/internal/accounting/shared"
)

// Repository encapsulates DB operations for AP bills.
type Repository interface {
	Insert(ctx context.Context, bill Bill) (Bill, error)
	Update(ctx context.Context, bill Bill) (Bill, error)
	Get(ctx context.Context, orgID uuid.UUID, id int64) (Bill, error)
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Bill, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const billColumns = `id, org_id, vendor_id, invoice_number, amount, due_date, status, approved_by, approved_at, created_at, updated_at`

func scanBill(row pgx.Row) (Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.OrgID, &b.VendorID, &b.InvoiceNumber, &b.Amount, &b.DueDate,
		&b.Status, &b.ApprovedBy, &b.ApprovedAt, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *repository) Insert(ctx context.Context, bill Bill) (Bill, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO ap_bills (org_id, vendor_id, invoice_number, amount, due_date, status)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING `+billColumns,
		bill.OrgID, bill.VendorID, bill.InvoiceNumber, bill.Amount, bill.DueDate, bill.Status)
	return scanBill(row)
}

func (r *repository) Update(ctx context.Context, bill Bill) (Bill, error) {
	row := r.pool.QueryRow(ctx, `UPDATE ap_bills SET vendor_id=$3, amount=$4, due_date=$5, status=$6,
approved_by=$7, approved_at=$8, updated_at=NOW()
WHERE id=$1 AND org_id=$2 RETURNING `+billColumns,
		bill.ID, bill.OrgID, bill.VendorID, bill.Amount, bill.DueDate, bill.Status, bill.ApprovedBy, bill.ApprovedAt)
	updated, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, shared.ErrBillNotFound
	}
	return updated, err
}

func (r *repository) Get(ctx context.Context, orgID uuid.UUID, id int64) (Bill, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM ap_bills WHERE id=$1 AND org_id=$2`, id, orgID)
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, shared.ErrBillNotFound
	}
	return bill, err
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Bill, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ap_bills WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+billColumns+` FROM ap_bills
WHERE org_id=$1 ORDER BY due_date ASC, id ASC LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var bills []Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		bills = append(bills, bill)
	}
	return bills, total, rows.Err()
}
