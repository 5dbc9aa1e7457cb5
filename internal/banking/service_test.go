package banking

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	internalShared "github.com/quartershq/quarters/internal/shared"
)

type fakeBankRepo struct {
	accounts map[int64]BankAccount
	txns     map[int64][]BankTransaction
	nextID   int64
	nextTxID int64
}

func newFakeBankRepo() *fakeBankRepo {
	return &fakeBankRepo{
		accounts: map[int64]BankAccount{},
		txns:     map[int64][]BankTransaction{},
		nextID:   1,
		nextTxID: 1,
	}
}

func (f *fakeBankRepo) InsertAccount(_ context.Context, account BankAccount) (BankAccount, error) {
	account.ID = f.nextID
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	f.nextID++
	f.accounts[account.ID] = account
	return account, nil
}

func (f *fakeBankRepo) GetAccount(_ context.Context, orgID uuid.UUID, id int64) (BankAccount, error) {
	account, ok := f.accounts[id]
	if !ok || account.OrgID != orgID {
		return BankAccount{}, ErrBankAccountNotFound
	}
	return account, nil
}

func (f *fakeBankRepo) ListAccounts(_ context.Context, orgID uuid.UUID, limit, offset int) ([]BankAccount, int, error) {
	var all []BankAccount
	for _, account := range f.accounts {
		if account.OrgID == orgID {
			all = append(all, account)
		}
	}
	return all, len(all), nil
}

func (f *fakeBankRepo) RecentTransactions(_ context.Context, accountID int64) ([]BankTransaction, error) {
	txns := append([]BankTransaction(nil), f.txns[accountID]...)
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.After(txns[j].Date)
		}
		return txns[i].ID > txns[j].ID
	})
	if len(txns) > recentTransactionLimit {
		txns = txns[:recentTransactionLimit]
	}
	return txns, nil
}

func (f *fakeBankRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &fakeBankTxRepo{repo: f})
}

type fakeBankTxRepo struct {
	repo *fakeBankRepo
}

func (t *fakeBankTxRepo) InsertTransactions(_ context.Context, accountID int64, batchID uuid.UUID, rows []TransactionImportRow) (int, error) {
	for _, row := range rows {
		t.repo.txns[accountID] = append(t.repo.txns[accountID], BankTransaction{
			ID:            t.repo.nextTxID,
			BankAccountID: accountID,
			ImportBatchID: batchID,
			Date:          row.Date,
			Description:   row.Description,
			Amount:        row.Amount,
			Balance:       row.Balance,
			Reference:     row.Reference,
			CreatedAt:     time.Now(),
		})
		t.repo.nextTxID++
	}
	return len(rows), nil
}

type fakeIdempotency struct {
	keys map[string]bool
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: map[string]bool{}}
}

func (f *fakeIdempotency) CheckAndInsert(_ context.Context, key, module string) error {
	full := module + ":" + key
	if f.keys[full] {
		return internalShared.ErrIdempotencyConflict
	}
	f.keys[full] = true
	return nil
}

func (f *fakeIdempotency) Delete(_ context.Context, key string) error {
	delete(f.keys, "banking.import:"+key)
	return nil
}

func seedAccount(t *testing.T, svc *Service, orgID uuid.UUID) BankAccount {
	t.Helper()
	account, err := svc.CreateAccount(context.Background(), orgID, CreateBankAccountRequest{
		Name:          "Operating",
		AccountNumber: "100200300",
		Type:          "checking",
	})
	require.NoError(t, err)
	return account
}

func importRows(n int) []TransactionImportRow {
	rows := make([]TransactionImportRow, 0, n)
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		rows = append(rows, TransactionImportRow{
			Date:        base.AddDate(0, 0, i),
			Description: "statement row",
			Amount:      float64(10 + i),
		})
	}
	return rows
}

func TestImportUnknownAccount(t *testing.T) {
	repo := newFakeBankRepo()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.Import(context.Background(), uuid.New(), 42, "", ImportTransactionsRequest{
		Transactions: importRows(2),
	})
	require.ErrorIs(t, err, ErrBankAccountNotFound)
	require.Empty(t, repo.txns)
}

func TestImportAppendsWithoutDedup(t *testing.T) {
	repo := newFakeBankRepo()
	svc := NewService(repo, nil, nil, nil)
	orgID := uuid.New()
	account := seedAccount(t, svc, orgID)

	first, err := svc.Import(context.Background(), orgID, account.ID, "", ImportTransactionsRequest{Transactions: importRows(2)})
	require.NoError(t, err)
	require.Equal(t, 2, first.Imported)

	// Replaying the same rows without a key simply appends duplicates.
	second, err := svc.Import(context.Background(), orgID, account.ID, "", ImportTransactionsRequest{Transactions: importRows(2)})
	require.NoError(t, err)
	require.Equal(t, 2, second.Imported)
	require.NotEqual(t, first.ImportBatchID, second.ImportBatchID)
	require.Len(t, repo.txns[account.ID], 4)
}

func TestImportIdempotencyKeyRejectsReplay(t *testing.T) {
	repo := newFakeBankRepo()
	svc := NewService(repo, nil, nil, newFakeIdempotency())
	orgID := uuid.New()
	account := seedAccount(t, svc, orgID)

	_, err := svc.Import(context.Background(), orgID, account.ID, "batch-2026-02", ImportTransactionsRequest{Transactions: importRows(3)})
	require.NoError(t, err)

	_, err = svc.Import(context.Background(), orgID, account.ID, "batch-2026-02", ImportTransactionsRequest{Transactions: importRows(3)})
	require.ErrorIs(t, err, ErrDuplicateImport)
	require.Len(t, repo.txns[account.ID], 3)
}

func TestGetAccountCapsRecentTransactions(t *testing.T) {
	repo := newFakeBankRepo()
	svc := NewService(repo, nil, nil, nil)
	orgID := uuid.New()
	account := seedAccount(t, svc, orgID)

	_, err := svc.Import(context.Background(), orgID, account.ID, "", ImportTransactionsRequest{Transactions: importRows(120)})
	require.NoError(t, err)

	detail, err := svc.GetAccount(context.Background(), orgID, account.ID)
	require.NoError(t, err)
	require.Len(t, detail.Transactions, 100)
	// Newest first.
	require.True(t, detail.Transactions[0].Date.After(detail.Transactions[99].Date))
}

func TestGetAccountScopeIsolation(t *testing.T) {
	repo := newFakeBankRepo()
	svc := NewService(repo, nil, nil, nil)
	account := seedAccount(t, svc, uuid.New())

	_, err := svc.GetAccount(context.Background(), uuid.New(), account.ID)
	require.ErrorIs(t, err, ErrBankAccountNotFound)
}

func TestCreateAccountRejectsUnknownType(t *testing.T) {
	svc := NewService(newFakeBankRepo(), nil, nil, nil)

	_, err := svc.CreateAccount(context.Background(), uuid.New(), CreateBankAccountRequest{
		Name:          "Vault",
		AccountNumber: "999",
		Type:          "crypto",
	})
	require.ErrorIs(t, err, ErrInvalidAccountType)
}

func TestGetAccountCacheInvalidatedByImport(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeBankRepo()
	svc := NewService(repo, NewCache(client, time.Minute), nil, nil)
	orgID := uuid.New()
	account := seedAccount(t, svc, orgID)

	_, err := svc.Import(context.Background(), orgID, account.ID, "", ImportTransactionsRequest{Transactions: importRows(1)})
	require.NoError(t, err)

	detail, err := svc.GetAccount(context.Background(), orgID, account.ID)
	require.NoError(t, err)
	require.Len(t, detail.Transactions, 1)

	// A second read with unchanged data comes from the cache.
	repo.txns[account.ID] = nil
	cached, err := svc.GetAccount(context.Background(), orgID, account.ID)
	require.NoError(t, err)
	require.Len(t, cached.Transactions, 1)

	// Imports bump the version, so the next read sees fresh rows.
	_, err = svc.Import(context.Background(), orgID, account.ID, "", ImportTransactionsRequest{Transactions: importRows(2)})
	require.NoError(t, err)

	fresh, err := svc.GetAccount(context.Background(), orgID, account.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Transactions, 2)
}

func TestCacheVersionBumpChangesKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, keyAccountDetail("org", 1))
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.BuildKey(ctx, keyAccountDetail("org", 1))
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestFetchJSONRequiresLoader(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	var out string
	err := cache.FetchJSON(context.Background(), "k", &out, nil)
	require.Error(t, err)
	require.False(t, errors.Is(err, redis.Nil))
}
