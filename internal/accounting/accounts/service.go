package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quartershq/quarters/internal/accounting/shared"
)

// Service exposes chart-of-accounts operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create adds a new account to the organization's chart.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req CreateAccountRequest) (Account, error) {
	accountType := AccountType(req.Type)
	if !accountType.Valid() {
		return Account{}, shared.ErrInvalidAccountType
	}
	if req.ParentID != nil {
		if _, err := s.repo.Get(ctx, orgID, *req.ParentID); err != nil {
			return Account{}, err
		}
	}
	return s.repo.Insert(ctx, Account{
		OrgID:    orgID,
		ParentID: req.ParentID,
		Code:     req.Code,
		Name:     req.Name,
		Type:     accountType,
	})
}

// Update modifies an account in place. Accounts are never deleted.
func (s *Service) Update(ctx context.Context, orgID uuid.UUID, id int64, req UpdateAccountRequest) (Account, error) {
	account, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return Account{}, err
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.ParentID != nil {
		if _, err := s.repo.Get(ctx, orgID, *req.ParentID); err != nil {
			return Account{}, err
		}
		account.ParentID = req.ParentID
	}
	return s.repo.Update(ctx, account)
}

// Get fetches a single account within the organization scope.
func (s *Service) Get(ctx context.Context, orgID uuid.UUID, id int64) (Account, error) {
	return s.repo.Get(ctx, orgID, id)
}

// List returns accounts for the organization ordered by code.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Account, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, orgID, limit, offset)
}
