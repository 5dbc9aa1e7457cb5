package banking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	internalShared "github.com/quartershq/quarters/internal/shared"
)

// AuditPort records banking mutations in the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// IdempotencyPort deduplicates import batches by caller-supplied key.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service exposes bank account and transaction import operations.
type Service struct {
	repo        Repository
	cache       *Cache
	audit       AuditPort
	idempotency IdempotencyPort
	now         func() time.Time
}

// NewService constructs a Service. cache and idempotency may be nil, in which
// case reads go straight to storage and imports are never deduplicated.
func NewService(repo Repository, cache *Cache, audit AuditPort, idempotency IdempotencyPort) *Service {
	return &Service{repo: repo, cache: cache, audit: audit, idempotency: idempotency, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateAccount registers a bank account for the organization.
func (s *Service) CreateAccount(ctx context.Context, orgID uuid.UUID, req CreateBankAccountRequest) (BankAccount, error) {
	accountType := BankAccountType(strings.ToLower(req.Type))
	if !accountType.Valid() {
		return BankAccount{}, ErrInvalidAccountType
	}
	return s.repo.InsertAccount(ctx, BankAccount{
		OrgID:         orgID,
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		RoutingNumber: req.RoutingNumber,
		Type:          accountType,
		IsActive:      true,
	})
}

// GetAccount returns the account plus its 100 most recent transactions. The
// detail payload is served through the version-bumped cache when one is
// configured.
func (s *Service) GetAccount(ctx context.Context, orgID uuid.UUID, id int64) (BankAccountDetail, error) {
	load := func(ctx context.Context) (interface{}, error) {
		account, err := s.repo.GetAccount(ctx, orgID, id)
		if err != nil {
			return nil, err
		}
		txns, err := s.repo.RecentTransactions(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		if txns == nil {
			txns = []BankTransaction{}
		}
		return BankAccountDetail{BankAccount: account, Transactions: txns}, nil
	}
	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return BankAccountDetail{}, err
		}
		return value.(BankAccountDetail), nil
	}
	key, err := s.cache.BuildKey(ctx, keyAccountDetail(orgID.String(), id))
	if err != nil {
		return BankAccountDetail{}, err
	}
	var detail BankAccountDetail
	if err := s.cache.FetchJSON(ctx, key, &detail, load); err != nil {
		return BankAccountDetail{}, err
	}
	return detail, nil
}

// AccountExists reports whether the account is visible to the organization.
// Other modules use this to guard references into banking.
func (s *Service) AccountExists(ctx context.Context, orgID uuid.UUID, accountID int64) error {
	_, err := s.repo.GetAccount(ctx, orgID, accountID)
	return err
}

// ListAccounts returns bank accounts for the organization ordered by name.
func (s *Service) ListAccounts(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]BankAccount, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAccounts(ctx, orgID, limit, offset)
}

// Import appends a batch of statement rows to an account. There is no
// row-level duplicate detection; re-importing the same rows creates duplicate
// transactions. Callers that need idempotency supply a key, which rejects the
// whole batch on replay.
func (s *Service) Import(ctx context.Context, orgID uuid.UUID, accountID int64, idempotencyKey string, req ImportTransactionsRequest) (ImportResult, error) {
	account, err := s.repo.GetAccount(ctx, orgID, accountID)
	if err != nil {
		return ImportResult{}, err
	}
	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, "banking.import"); err != nil {
			if errors.Is(err, internalShared.ErrIdempotencyConflict) {
				return ImportResult{}, ErrDuplicateImport
			}
			return ImportResult{}, err
		}
	}
	batchID := uuid.New()
	var imported int
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		n, err := tx.InsertTransactions(ctx, account.ID, batchID, req.Transactions)
		imported = n
		return err
	})
	if err != nil {
		if idempotencyKey != "" && s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, idempotencyKey)
		}
		return ImportResult{}, err
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			OrgID:    orgID,
			Action:   "banking.import",
			Entity:   "bank_account",
			EntityID: fmt.Sprintf("%d", account.ID),
			Meta: map[string]any{
				"import_batch_id": batchID.String(),
				"rows":            imported,
			},
			At: s.now(),
		})
	}
	return ImportResult{ImportBatchID: batchID, Imported: imported}, nil
}
