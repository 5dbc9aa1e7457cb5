package bills

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quartershq/quarters/internal/accounting/shared"
	internalShared "github.com/quartershq/quarters/internal/shared"
)

// AuditPort records bill mutations in the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service exposes AP bill operations.
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

// Create records a vendor invoice. Bills always start pending.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req CreateBillRequest) (Bill, error) {
	return s.repo.Insert(ctx, Bill{
		OrgID:         orgID,
		VendorID:      req.VendorID,
		InvoiceNumber: req.InvoiceNumber,
		Amount:        req.Amount,
		DueDate:       req.DueDate,
		Status:        BillStatusPending,
	})
}

// Update applies the supplied fields to a bill. The approval timestamp is
// stamped exactly when the status moves to approved and is never cleared
// afterwards, even if the status moves away again.
func (s *Service) Update(ctx context.Context, orgID uuid.UUID, id int64, req UpdateBillRequest) (Bill, error) {
	bill, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return Bill{}, err
	}
	if req.VendorID != nil {
		bill.VendorID = req.VendorID
	}
	if req.Amount != nil {
		bill.Amount = *req.Amount
	}
	if req.DueDate != nil {
		bill.DueDate = *req.DueDate
	}
	approving := false
	if req.Status != nil {
		status := BillStatus(strings.ToUpper(*req.Status))
		if !status.Valid() {
			return Bill{}, shared.ErrInvalidBillStatus
		}
		if status == BillStatusApproved && bill.Status != BillStatusApproved {
			approving = true
		}
		bill.Status = status
	}
	if req.ApprovedBy != nil {
		bill.ApprovedBy = req.ApprovedBy
	}
	if approving && bill.ApprovedAt == nil {
		at := s.now()
		bill.ApprovedAt = &at
	}
	updated, err := s.repo.Update(ctx, bill)
	if err != nil {
		return Bill{}, err
	}
	if approving && s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			OrgID:    orgID,
			Action:   "bill.approve",
			Entity:   "ap_bill",
			EntityID: fmt.Sprintf("%d", updated.ID),
			Meta: map[string]any{
				"invoice_number": updated.InvoiceNumber,
				"amount":         updated.Amount,
			},
			At: s.now(),
		})
	}
	return updated, nil
}

// Get fetches a single bill within the organization scope.
func (s *Service) Get(ctx context.Context, orgID uuid.UUID, id int64) (Bill, error) {
	return s.repo.Get(ctx, orgID, id)
}

// List returns bills for the organization ordered by due date.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Bill, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, orgID, limit, offset)
}
