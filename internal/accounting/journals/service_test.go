package journals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quartershq/quarters/internal/accounting/accounts"
	"github.com/quartershq/quarters/internal/accounting/shared"
	internalShared "github.com/quartershq/quarters/internal/shared"
)

type fakeJournalRepo struct {
	journals map[int64]*Journal
	nextID   int64
}

func newFakeJournalRepo() *fakeJournalRepo {
	return &fakeJournalRepo{journals: map[int64]*Journal{}, nextID: 1}
}

func (f *fakeJournalRepo) List(_ context.Context, orgID uuid.UUID, limit, offset int) ([]Journal, int, error) {
	var all []Journal
	for _, j := range f.journals {
		if j.OrgID == orgID {
			all = append(all, *j)
		}
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeJournalRepo) GetWithLines(_ context.Context, orgID uuid.UUID, id int64) (Journal, error) {
	j, ok := f.journals[id]
	if !ok || j.OrgID != orgID {
		return Journal{}, shared.ErrJournalNotFound
	}
	return *j, nil
}

func (f *fakeJournalRepo) MarkPosted(_ context.Context, orgID uuid.UUID, id int64) error {
	j, ok := f.journals[id]
	if !ok || j.OrgID != orgID {
		return shared.ErrJournalNotFound
	}
	if j.Status != JournalStatusDraft {
		return shared.ErrJournalAlreadyPosted
	}
	j.Status = JournalStatusPosted
	return nil
}

func (f *fakeJournalRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	staged := &fakeTxRepo{repo: f}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	for _, j := range staged.inserted {
		f.journals[j.ID] = j
	}
	return nil
}

type fakeTxRepo struct {
	repo     *fakeJournalRepo
	inserted []*Journal
}

func (t *fakeTxRepo) InsertJournal(_ context.Context, orgID uuid.UUID, in CreateJournalRequest) (Journal, error) {
	j := &Journal{
		ID:          t.repo.nextID,
		OrgID:       orgID,
		Number:      in.Number,
		Date:        in.Date,
		Description: in.Description,
		Status:      JournalStatusDraft,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	t.repo.nextID++
	t.inserted = append(t.inserted, j)
	return *j, nil
}

func (t *fakeTxRepo) InsertLines(_ context.Context, journalID int64, lines []JournalLineRequest) error {
	for _, staged := range t.inserted {
		if staged.ID != journalID {
			continue
		}
		for idx, line := range lines {
			staged.Lines = append(staged.Lines, JournalLine{
				ID:          int64(idx + 1),
				JournalID:   journalID,
				AccountID:   line.AccountID,
				Debit:       line.Debit,
				Credit:      line.Credit,
				Description: line.Description,
			})
		}
	}
	return nil
}

type recordingAudit struct {
	logs []internalShared.AuditLog
}

func (a *recordingAudit) Record(_ context.Context, log internalShared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type countingMetrics struct {
	posted int
}

func (m *countingMetrics) JournalPosted() { m.posted++ }

func TestCreateJournalRejectsUnbalanced(t *testing.T) {
	repo := newFakeJournalRepo()
	svc := NewService(repo, nil, nil)
	orgID := uuid.New()

	_, err := svc.Create(context.Background(), orgID, CreateJournalRequest{
		Number: "JE-001",
		Date:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []JournalLineRequest{
			{AccountID: 1, Debit: 500},
			{AccountID: 2, Credit: 499.50},
		},
	})
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Empty(t, repo.journals, "unbalanced journal must not persist")
}

func TestCreateJournalToleratesRoundingDrift(t *testing.T) {
	repo := newFakeJournalRepo()
	svc := NewService(repo, nil, nil)
	orgID := uuid.New()

	journal, err := svc.Create(context.Background(), orgID, CreateJournalRequest{
		Number: "JE-002",
		Date:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []JournalLineRequest{
			{AccountID: 1, Debit: 100.005},
			{AccountID: 2, Credit: 100.00},
		},
	})
	require.NoError(t, err)
	require.Equal(t, JournalStatusDraft, journal.Status)
}

func TestCreateJournalRequiresLines(t *testing.T) {
	repo := newFakeJournalRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), uuid.New(), CreateJournalRequest{
		Number: "JE-003",
		Date:   time.Now(),
	})
	require.ErrorIs(t, err, shared.ErrTooFewLines)
}

func TestPostJournalLifecycle(t *testing.T) {
	repo := newFakeJournalRepo()
	audit := &recordingAudit{}
	metrics := &countingMetrics{}
	svc := NewService(repo, audit, metrics)
	orgID := uuid.New()

	cash := accounts.Account{ID: 1, OrgID: orgID, Code: "1000", Name: "Cash", Type: accounts.TypeAsset}
	rent := accounts.Account{ID: 2, OrgID: orgID, Code: "4000", Name: "Rental Income", Type: accounts.TypeIncome}

	journal, err := svc.Create(context.Background(), orgID, CreateJournalRequest{
		Number:      "JE-100",
		Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "March rent receipt",
		Lines: []JournalLineRequest{
			{AccountID: cash.ID, Debit: 500},
			{AccountID: rent.ID, Credit: 500},
		},
	})
	require.NoError(t, err)
	require.Equal(t, JournalStatusDraft, journal.Status)
	require.Len(t, journal.Lines, 2)

	posted, err := svc.Post(context.Background(), orgID, journal.ID)
	require.NoError(t, err)
	require.Equal(t, JournalStatusPosted, posted.Status)
	require.Equal(t, 1, metrics.posted)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "journal.post", audit.logs[0].Action)

	// The transition is one-way; a second attempt must fail and leave the
	// journal posted.
	_, err = svc.Post(context.Background(), orgID, journal.ID)
	require.ErrorIs(t, err, shared.ErrJournalAlreadyPosted)
	require.Equal(t, 1, metrics.posted)

	got, err := svc.Get(context.Background(), orgID, journal.ID)
	require.NoError(t, err)
	require.Equal(t, JournalStatusPosted, got.Status)
}

func TestPostJournalUnknownID(t *testing.T) {
	repo := newFakeJournalRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Post(context.Background(), uuid.New(), 404)
	require.ErrorIs(t, err, shared.ErrJournalNotFound)
}

func TestJournalOrgScopeIsolation(t *testing.T) {
	repo := newFakeJournalRepo()
	svc := NewService(repo, nil, nil)
	orgA := uuid.New()
	orgB := uuid.New()

	journal, err := svc.Create(context.Background(), orgA, CreateJournalRequest{
		Number: "JE-200",
		Date:   time.Now(),
		Lines: []JournalLineRequest{
			{AccountID: 1, Debit: 75},
			{AccountID: 2, Credit: 75},
		},
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), orgB, journal.ID)
	require.ErrorIs(t, err, shared.ErrJournalNotFound)

	_, err = svc.Post(context.Background(), orgB, journal.ID)
	require.ErrorIs(t, err, shared.ErrJournalNotFound)

	got, err := svc.Get(context.Background(), orgA, journal.ID)
	require.NoError(t, err)
	require.Equal(t, JournalStatusDraft, got.Status)
}
