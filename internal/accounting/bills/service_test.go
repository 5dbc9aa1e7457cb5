package bills

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quartershq/quarters/internal/accounting/shared"
)

type fakeBillRepo struct {
	bills  map[int64]Bill
	nextID int64
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: map[int64]Bill{}, nextID: 1}
}

func (f *fakeBillRepo) Insert(_ context.Context, bill Bill) (Bill, error) {
	bill.ID = f.nextID
	bill.CreatedAt = time.Now()
	bill.UpdatedAt = bill.CreatedAt
	f.nextID++
	f.bills[bill.ID] = bill
	return bill, nil
}

func (f *fakeBillRepo) Update(_ context.Context, bill Bill) (Bill, error) {
	existing, ok := f.bills[bill.ID]
	if !ok || existing.OrgID != bill.OrgID {
		return Bill{}, shared.ErrBillNotFound
	}
	bill.UpdatedAt = time.Now()
	f.bills[bill.ID] = bill
	return bill, nil
}

func (f *fakeBillRepo) Get(_ context.Context, orgID uuid.UUID, id int64) (Bill, error) {
	bill, ok := f.bills[id]
	if !ok || bill.OrgID != orgID {
		return Bill{}, shared.ErrBillNotFound
	}
	return bill, nil
}

func (f *fakeBillRepo) List(_ context.Context, orgID uuid.UUID, limit, offset int) ([]Bill, int, error) {
	var all []Bill
	for _, bill := range f.bills {
		if bill.OrgID == orgID {
			all = append(all, bill)
		}
	}
	return all, len(all), nil
}

func TestCreateBillStartsPending(t *testing.T) {
	svc := NewService(newFakeBillRepo(), nil)

	bill, err := svc.Create(context.Background(), uuid.New(), CreateBillRequest{
		InvoiceNumber: "INV-2026-044",
		Amount:        1250.00,
		DueDate:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, BillStatusPending, bill.Status)
	require.Nil(t, bill.ApprovedAt)
	require.Nil(t, bill.ApprovedBy)
}

func TestApproveBillStampsTimestamp(t *testing.T) {
	svc := NewService(newFakeBillRepo(), nil)
	approvedAt := time.Date(2026, 3, 20, 9, 30, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return approvedAt })
	orgID := uuid.New()

	bill, err := svc.Create(context.Background(), orgID, CreateBillRequest{
		InvoiceNumber: "INV-2026-045",
		Amount:        480.25,
		DueDate:       time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	status := "approved"
	approver := int64(7)
	updated, err := svc.Update(context.Background(), orgID, bill.ID, UpdateBillRequest{
		Status:     &status,
		ApprovedBy: &approver,
	})
	require.NoError(t, err)
	require.Equal(t, BillStatusApproved, updated.Status)
	require.NotNil(t, updated.ApprovedAt)
	require.True(t, updated.ApprovedAt.Equal(approvedAt))
	require.Equal(t, approver, *updated.ApprovedBy)
}

func TestApprovedAtNeverCleared(t *testing.T) {
	svc := NewService(newFakeBillRepo(), nil)
	orgID := uuid.New()

	bill, err := svc.Create(context.Background(), orgID, CreateBillRequest{
		InvoiceNumber: "INV-2026-046",
		Amount:        99.99,
		DueDate:       time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	approved := "approved"
	first, err := svc.Update(context.Background(), orgID, bill.ID, UpdateBillRequest{Status: &approved})
	require.NoError(t, err)
	require.NotNil(t, first.ApprovedAt)
	stamped := *first.ApprovedAt

	// Moving away from approved keeps the original stamp.
	pending := "pending"
	reverted, err := svc.Update(context.Background(), orgID, bill.ID, UpdateBillRequest{Status: &pending})
	require.NoError(t, err)
	require.Equal(t, BillStatusPending, reverted.Status)
	require.NotNil(t, reverted.ApprovedAt)
	require.True(t, reverted.ApprovedAt.Equal(stamped))

	// Re-approving does not overwrite the first stamp either.
	again, err := svc.Update(context.Background(), orgID, bill.ID, UpdateBillRequest{Status: &approved})
	require.NoError(t, err)
	require.True(t, again.ApprovedAt.Equal(stamped))
}

func TestUpdateBillRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newFakeBillRepo(), nil)
	orgID := uuid.New()

	bill, err := svc.Create(context.Background(), orgID, CreateBillRequest{
		InvoiceNumber: "INV-2026-047",
		Amount:        10,
		DueDate:       time.Now(),
	})
	require.NoError(t, err)

	status := "voided"
	_, err = svc.Update(context.Background(), orgID, bill.ID, UpdateBillRequest{Status: &status})
	require.ErrorIs(t, err, shared.ErrInvalidBillStatus)
}

func TestBillOrgScopeIsolation(t *testing.T) {
	svc := NewService(newFakeBillRepo(), nil)
	orgA := uuid.New()
	orgB := uuid.New()

	bill, err := svc.Create(context.Background(), orgA, CreateBillRequest{
		InvoiceNumber: "INV-2026-048",
		Amount:        55,
		DueDate:       time.Now(),
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), orgB, bill.ID)
	require.ErrorIs(t, err, shared.ErrBillNotFound)

	amount := 60.0
	_, err = svc.Update(context.Background(), orgB, bill.ID, UpdateBillRequest{Amount: &amount})
	require.ErrorIs(t, err, shared.ErrBillNotFound)
}
