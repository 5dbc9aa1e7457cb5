package payouts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	internalShared "github.com/quartershq/quarters/internal/shared"
)

// AuditPort records payout mutations in the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service exposes owner statement and payout batch operations.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateStatement records caller-supplied period totals. The net amount is
// stored as given; no arithmetic links it to income minus expenses.
func (s *Service) CreateStatement(ctx context.Context, orgID uuid.UUID, req CreateStatementRequest) (OwnerStatement, error) {
	return s.repo.InsertStatement(ctx, OwnerStatement{
		OrgID:         orgID,
		ContactID:     req.ContactID,
		PropertyID:    req.PropertyID,
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		TotalIncome:   req.TotalIncome,
		TotalExpenses: req.TotalExpenses,
		NetAmount:     req.NetAmount,
		Status:        StatementStatusDraft,
	})
}

// GetStatement fetches a statement within the organization scope.
func (s *Service) GetStatement(ctx context.Context, orgID uuid.UUID, id int64) (OwnerStatement, error) {
	return s.repo.GetStatement(ctx, orgID, id)
}

// ListStatements returns statements for the organization, newest period
// first.
func (s *Service) ListStatements(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]OwnerStatement, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListStatements(ctx, orgID, limit, offset)
}

// CreateBatch groups the referenced statements into one payout. Every
// requested id must resolve within the organization; a single unresolved id
// fails the whole request and nothing is persisted. The batch total is the
// sum of the resolved statements' net amounts at this moment.
func (s *Service) CreateBatch(ctx context.Context, orgID uuid.UUID, req CreateBatchRequest) (PayoutBatch, error) {
	ids := dedupe(req.StatementIDs)
	stmts, err := s.repo.GetStatementsByIDs(ctx, orgID, ids)
	if err != nil {
		return PayoutBatch{}, err
	}
	if len(stmts) != len(ids) {
		return PayoutBatch{}, ErrUnresolvedStatement
	}
	var total float64
	for _, stmt := range stmts {
		total += stmt.NetAmount
	}
	var batch PayoutBatch
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertBatch(ctx, PayoutBatch{
			OrgID:       orgID,
			Name:        req.Name,
			TotalAmount: total,
			Status:      BatchStatusDraft,
		})
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			if err := tx.LinkStatement(ctx, inserted.ID, stmt.ID); err != nil {
				return err
			}
		}
		batch = inserted
		return nil
	})
	if err != nil {
		return PayoutBatch{}, err
	}
	batch.Statements = stmts
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			OrgID:    orgID,
			Action:   "payout_batch.create",
			Entity:   "payout_batch",
			EntityID: fmt.Sprintf("%d", batch.ID),
			Meta: map[string]any{
				"total_amount": batch.TotalAmount,
				"statements":   len(stmts),
			},
			At: s.now(),
		})
	}
	return batch, nil
}

// GetBatch fetches a batch with its member statements.
func (s *Service) GetBatch(ctx context.Context, orgID uuid.UUID, id int64) (PayoutBatch, error) {
	return s.repo.GetBatch(ctx, orgID, id)
}

// ListBatches returns payout batches for the organization, newest first.
func (s *Service) ListBatches(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]PayoutBatch, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListBatches(ctx, orgID, limit, offset)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
