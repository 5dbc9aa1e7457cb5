package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quartershq/quarters/internal/banking"
)

type fakeReconRepo struct {
	recs       map[int64]*Reconciliation
	nextID     int64
	nextLineID int64
}

func newFakeReconRepo() *fakeReconRepo {
	return &fakeReconRepo{recs: map[int64]*Reconciliation{}, nextID: 1, nextLineID: 1}
}

func (f *fakeReconRepo) Insert(_ context.Context, rec Reconciliation) (Reconciliation, error) {
	rec.ID = f.nextID
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.nextID++
	stored := rec
	f.recs[rec.ID] = &stored
	return rec, nil
}

func (f *fakeReconRepo) GetWithLines(_ context.Context, orgID uuid.UUID, id int64) (Reconciliation, error) {
	rec, ok := f.recs[id]
	if !ok || rec.OrgID != orgID {
		return Reconciliation{}, ErrNotFound
	}
	return *rec, nil
}

func (f *fakeReconRepo) List(_ context.Context, orgID uuid.UUID, limit, offset int) ([]Reconciliation, int, error) {
	var all []Reconciliation
	for _, rec := range f.recs {
		if rec.OrgID == orgID {
			all = append(all, *rec)
		}
	}
	return all, len(all), nil
}

func (f *fakeReconRepo) InsertLine(_ context.Context, reconciliationID int64, line Line) (Line, error) {
	rec, ok := f.recs[reconciliationID]
	if !ok {
		return Line{}, ErrNotFound
	}
	line.ID = f.nextLineID
	line.ReconciliationID = reconciliationID
	line.CreatedAt = time.Now()
	f.nextLineID++
	rec.Lines = append(rec.Lines, line)
	return line, nil
}

func (f *fakeReconRepo) MarkCompleted(_ context.Context, orgID uuid.UUID, id int64, at time.Time) error {
	rec, ok := f.recs[id]
	if !ok || rec.OrgID != orgID {
		return ErrNotFound
	}
	if rec.Status != StatusDraft {
		return ErrAlreadyCompleted
	}
	rec.Status = StatusCompleted
	rec.CompletedAt = &at
	return nil
}

type fakeGuard struct {
	accounts map[int64]uuid.UUID
}

func (g *fakeGuard) AccountExists(_ context.Context, orgID uuid.UUID, accountID int64) error {
	owner, ok := g.accounts[accountID]
	if !ok || owner != orgID {
		return banking.ErrBankAccountNotFound
	}
	return nil
}

type countingMetrics struct {
	completed int
}

func (m *countingMetrics) ReconciliationCompleted() { m.completed++ }

func TestCreateReconciliationRequiresBankAccount(t *testing.T) {
	orgID := uuid.New()
	guard := &fakeGuard{accounts: map[int64]uuid.UUID{1: orgID}}
	svc := NewService(newFakeReconRepo(), guard, nil, nil)

	_, err := svc.Create(context.Background(), orgID, CreateReconciliationRequest{
		BankAccountID: 99,
		StatementDate: time.Now(),
	})
	require.ErrorIs(t, err, banking.ErrBankAccountNotFound)

	// An account owned by a different org is equally invisible.
	_, err = svc.Create(context.Background(), uuid.New(), CreateReconciliationRequest{
		BankAccountID: 1,
		StatementDate: time.Now(),
	})
	require.ErrorIs(t, err, banking.ErrBankAccountNotFound)

	rec, err := svc.Create(context.Background(), orgID, CreateReconciliationRequest{
		BankAccountID:    1,
		StatementDate:    time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		StatementBalance: 1500.00,
	})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, rec.Status)
	require.Empty(t, rec.Lines)
}

func TestCompleteReconciliationReportsDifference(t *testing.T) {
	orgID := uuid.New()
	guard := &fakeGuard{accounts: map[int64]uuid.UUID{1: orgID}}
	metrics := &countingMetrics{}
	svc := NewService(newFakeReconRepo(), guard, nil, metrics)
	completedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return completedAt })

	rec, err := svc.Create(context.Background(), orgID, CreateReconciliationRequest{
		BankAccountID:    1,
		StatementDate:    time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		StatementBalance: 1000.00,
	})
	require.NoError(t, err)

	txID := int64(10)
	_, err = svc.AddLine(context.Background(), orgID, rec.ID, AddLineRequest{BankTransactionID: &txID, Amount: 600})
	require.NoError(t, err)
	jlID := int64(20)
	_, err = svc.AddLine(context.Background(), orgID, rec.ID, AddLineRequest{JournalLineID: &jlID, Amount: 300})
	require.NoError(t, err)

	summary, err := svc.Complete(context.Background(), orgID, rec.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, summary.Status)
	require.NotNil(t, summary.CompletedAt)
	require.True(t, summary.CompletedAt.Equal(completedAt))
	require.InDelta(t, 900.00, summary.MatchedTotal, 0.001)
	// The gap is reported, never enforced.
	require.InDelta(t, 100.00, summary.Difference, 0.001)
	require.Equal(t, 1, metrics.completed)
}

func TestCompleteReconciliationIsTerminal(t *testing.T) {
	orgID := uuid.New()
	guard := &fakeGuard{accounts: map[int64]uuid.UUID{1: orgID}}
	svc := NewService(newFakeReconRepo(), guard, nil, nil)

	rec, err := svc.Create(context.Background(), orgID, CreateReconciliationRequest{
		BankAccountID: 1,
		StatementDate: time.Now(),
	})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), orgID, rec.ID)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), orgID, rec.ID)
	require.ErrorIs(t, err, ErrAlreadyCompleted)

	got, err := svc.Get(context.Background(), orgID, rec.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)
}

func TestAddLineAfterCompletionStillAppends(t *testing.T) {
	orgID := uuid.New()
	guard := &fakeGuard{accounts: map[int64]uuid.UUID{1: orgID}}
	svc := NewService(newFakeReconRepo(), guard, nil, nil)

	rec, err := svc.Create(context.Background(), orgID, CreateReconciliationRequest{
		BankAccountID: 1,
		StatementDate: time.Now(),
	})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), orgID, rec.ID)
	require.NoError(t, err)

	// Completion does not freeze the line set. Current behavior permits
	// late appends; this test pins that down.
	line, err := svc.AddLine(context.Background(), orgID, rec.ID, AddLineRequest{Amount: 42.00, Description: "late match"})
	require.NoError(t, err)
	require.Equal(t, rec.ID, line.ReconciliationID)
}

func TestAddLineUnknownReconciliation(t *testing.T) {
	svc := NewService(newFakeReconRepo(), nil, nil, nil)

	_, err := svc.AddLine(context.Background(), uuid.New(), 404, AddLineRequest{Amount: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReconciliationScopeIsolation(t *testing.T) {
	orgA := uuid.New()
	guard := &fakeGuard{accounts: map[int64]uuid.UUID{1: orgA}}
	svc := NewService(newFakeReconRepo(), guard, nil, nil)

	rec, err := svc.Create(context.Background(), orgA, CreateReconciliationRequest{
		BankAccountID: 1,
		StatementDate: time.Now(),
	})
	require.NoError(t, err)

	orgB := uuid.New()
	_, err = svc.Get(context.Background(), orgB, rec.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Complete(context.Background(), orgB, rec.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
