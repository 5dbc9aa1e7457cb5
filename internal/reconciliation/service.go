package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	internalShared "github.com/quartershq/quarters/internal/shared"
)

// BankAccountGuard verifies that a bank account exists within an
// organization before a reconciliation is started against it.
type BankAccountGuard interface {
	AccountExists(ctx context.Context, orgID uuid.UUID, accountID int64) error
}

// AuditPort records reconciliation mutations in the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// MetricsPort increments reconciliation counters.
type MetricsPort interface {
	ReconciliationCompleted()
}

// Service exposes reconciliation operations.
type Service struct {
	repo    Repository
	guard   BankAccountGuard
	audit   AuditPort
	metrics MetricsPort
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, guard BankAccountGuard, audit AuditPort, metrics MetricsPort) *Service {
	return &Service{repo: repo, guard: guard, audit: audit, metrics: metrics, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create starts a draft reconciliation for a bank statement.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req CreateReconciliationRequest) (Reconciliation, error) {
	if s.guard != nil {
		if err := s.guard.AccountExists(ctx, orgID, req.BankAccountID); err != nil {
			return Reconciliation{}, err
		}
	}
	return s.repo.Insert(ctx, Reconciliation{
		OrgID:            orgID,
		BankAccountID:    req.BankAccountID,
		StatementDate:    req.StatementDate,
		StatementBalance: req.StatementBalance,
		Status:           StatusDraft,
	})
}

// Get fetches a reconciliation with its lines within the organization scope.
func (s *Service) Get(ctx context.Context, orgID uuid.UUID, id int64) (Reconciliation, error) {
	return s.repo.GetWithLines(ctx, orgID, id)
}

// List returns reconciliations for the organization, newest statement first.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Reconciliation, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, orgID, limit, offset)
}

// AddLine appends a matched pair to a reconciliation. The referenced bank
// transaction and journal line are taken as given; completion status does
// not block the append.
func (s *Service) AddLine(ctx context.Context, orgID uuid.UUID, id int64, req AddLineRequest) (Line, error) {
	rec, err := s.repo.GetWithLines(ctx, orgID, id)
	if err != nil {
		return Line{}, err
	}
	return s.repo.InsertLine(ctx, rec.ID, Line{
		ReconciliationID:  rec.ID,
		BankTransactionID: req.BankTransactionID,
		JournalLineID:     req.JournalLineID,
		Amount:            req.Amount,
		Description:       req.Description,
	})
}

// Complete transitions a draft reconciliation to completed via a single
// conditional update, then reports the matched arithmetic. The difference
// between matched total and statement balance is returned but never
// enforced; proving the statement balances is left to the caller.
func (s *Service) Complete(ctx context.Context, orgID uuid.UUID, id int64) (Summary, error) {
	completedAt := s.now()
	if err := s.repo.MarkCompleted(ctx, orgID, id, completedAt); err != nil {
		return Summary{}, err
	}
	rec, err := s.repo.GetWithLines(ctx, orgID, id)
	if err != nil {
		return Summary{}, err
	}
	var matched float64
	for _, line := range rec.Lines {
		matched += line.Amount
	}
	summary := Summary{
		Reconciliation: rec,
		MatchedTotal:   matched,
		Difference:     rec.StatementBalance - matched,
	}
	if s.metrics != nil {
		s.metrics.ReconciliationCompleted()
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			OrgID:    orgID,
			Action:   "reconciliation.complete",
			Entity:   "reconciliation",
			EntityID: fmt.Sprintf("%d", rec.ID),
			Meta: map[string]any{
				"matched_total":     summary.MatchedTotal,
				"statement_balance": rec.StatementBalance,
				"difference":        summary.Difference,
			},
			At: completedAt,
		})
	}
	return summary, nil
}
