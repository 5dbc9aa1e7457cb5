package journals

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/quartershq/quarters/internal/accounting/shared"
	internalShared "github.com/quartershq/quarters/internal/shared"
)

// AuditPort records ledger mutations in the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// MetricsPort increments ledger counters.
type MetricsPort interface {
	JournalPosted()
}

// Service exposes journal engine operations.
type Service struct {
	repo    Repository
	audit   AuditPort
	metrics MetricsPort
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, audit AuditPort, metrics MetricsPort) *Service {
	return &Service{repo: repo, audit: audit, metrics: metrics, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// List returns journals for the organization, newest first.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Journal, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, orgID, limit, offset)
}

// Create validates the balance invariant and persists the journal together
// with its lines in one transaction. The journal starts as draft.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, input CreateJournalRequest) (Journal, error) {
	if err := input.Validate(); err != nil {
		return Journal{}, err
	}
	var journalID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertJournal(ctx, orgID, input)
		if err != nil {
			return err
		}
		journalID = inserted.ID
		return tx.InsertLines(ctx, inserted.ID, input.Lines)
	})
	if err != nil {
		return Journal{}, err
	}
	return s.repo.GetWithLines(ctx, orgID, journalID)
}

// Get fetches a journal with account-expanded lines within the organization
// scope.
func (s *Service) Get(ctx context.Context, orgID uuid.UUID, id int64) (Journal, error) {
	return s.repo.GetWithLines(ctx, orgID, id)
}

// Post transitions a draft journal to posted. The transition is a single
// conditional update, so a second poster observes the already-posted state
// instead of racing the first. Stored lines are re-checked against the
// balance invariant before the flip in case they were edited out-of-band.
func (s *Service) Post(ctx context.Context, orgID uuid.UUID, id int64) (Journal, error) {
	journal, err := s.repo.GetWithLines(ctx, orgID, id)
	if err != nil {
		return Journal{}, err
	}
	if journal.Status == JournalStatusPosted {
		return Journal{}, shared.ErrJournalAlreadyPosted
	}
	var debit, credit float64
	for _, line := range journal.Lines {
		debit += line.Debit
		credit += line.Credit
	}
	if math.Abs(debit-credit) > shared.BalanceTolerance {
		return Journal{}, shared.ErrUnbalanced
	}
	if err := s.repo.MarkPosted(ctx, orgID, id); err != nil {
		return Journal{}, err
	}
	journal.Status = JournalStatusPosted
	if s.metrics != nil {
		s.metrics.JournalPosted()
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			OrgID:    orgID,
			Action:   "journal.post",
			Entity:   "journal",
			EntityID: fmt.Sprintf("%d", journal.ID),
			Meta: map[string]any{
				"number": journal.Number,
			},
			At: s.now(),
		})
	}
	return journal, nil
}
