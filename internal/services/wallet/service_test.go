package wallet

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
)

type fakeWalletRepo struct {
	mu      sync.Mutex
	nextID  uint
	wallets map[uint]*models.Wallet
	journal []*models.Transaction
	lockLog []uint
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{nextID: 1, wallets: map[uint]*models.Wallet{}}
}

func (r *fakeWalletRepo) add(userID uint, currency string, balance string) *models.Wallet {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := &models.Wallet{
		ID:       r.nextID,
		UserID:   userID,
		Currency: currency,
		Balance:  decimal.RequireFromString(balance),
	}
	r.wallets[w.ID] = w
	r.nextID++
	return w
}

func (r *fakeWalletRepo) Create(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == wallet.UserID && w.Currency == wallet.Currency {
			return domain.ErrDuplicateCurrency
		}
	}
	wallet.ID = r.nextID
	r.nextID++
	cp := *wallet
	r.wallets[cp.ID] = &cp
	return nil
}

func (r *fakeWalletRepo) GetByID(id uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWalletRepo) GetByIDForUpdate(id uint) (*models.Wallet, error) {
	r.mu.Lock()
	r.lockLog = append(r.lockLog, id)
	r.mu.Unlock()
	return r.GetByID(id)
}

func (r *fakeWalletRepo) GetByUserAndCurrency(userID uint, currency string) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == userID && w.Currency == currency {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domain.ErrWalletNotFound
}

func (r *fakeWalletRepo) ListByUser(userID uint) ([]*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) UpdateBalance(walletID uint, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.Balance = balance
	return nil
}

func (r *fakeWalletRepo) CreateJournalEntry(entry *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uint(len(r.journal) + 1)
	cp := *entry
	r.journal = append(r.journal, &cp)
	return nil
}

func (r *fakeWalletRepo) JournalByWallet(walletID uint, limit, offset int) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, e := range r.journal {
		if e.WalletID == walletID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) JournalByReference(reference string) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, e := range r.journal {
		if e.Reference == reference {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newLedger(t *testing.T) (Service, *fakeWalletRepo, *repositories.UnitOfWork) {
	t.Helper()
	repo := newFakeWalletRepo()
	return NewService(NoopCache{}, NoopMetricsCollector{}), repo, &repositories.UnitOfWork{Wallets: repo}
}

func TestCreateRejectsDuplicateCurrency(t *testing.T) {
	svc, _, uow := newLedger(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, uow, 1, "EGP")
	require.NoError(t, err)
	_, err = svc.Create(ctx, uow, 1, "EGP")
	assert.ErrorIs(t, err, domain.ErrDuplicateCurrency)

	_, err = svc.Create(ctx, uow, 1, "USD")
	assert.NoError(t, err, "different currency for the same user is fine")
	_, err = svc.Create(ctx, uow, 2, "EGP")
	assert.NoError(t, err, "same currency for a different user is fine")
}

func TestCreateRejectsBadCurrency(t *testing.T) {
	svc, _, uow := newLedger(t)
	for _, code := range []string{"", "E", "egp", "EGPX", "12A"} {
		_, err := svc.Create(context.Background(), uow, 1, code)
		assert.ErrorIs(t, err, domain.ErrInvalidCurrency, code)
	}
}

func TestDebitWritesSignedJournalEntry(t *testing.T) {
	svc, repo, uow := newLedger(t)
	w := repo.add(1, "EGP", "100.00")

	tx, err := svc.Debit(context.Background(), uow, w.ID, decimal.RequireFromString("40"), Entry{
		Type:      models.TransactionTypeTransfer,
		Reference: "ref-1",
	})
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-40")))
	assert.Equal(t, models.TransactionStatusSuccess, tx.Status)
	assert.Equal(t, "EGP", tx.Currency)

	got, err := repo.GetByID(w.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("60")))
}

func TestDebitInsufficientBalanceLeavesNoTrace(t *testing.T) {
	svc, repo, uow := newLedger(t)
	w := repo.add(1, "EGP", "30.00")

	_, err := svc.Debit(context.Background(), uow, w.ID, decimal.RequireFromString("30.01"), Entry{
		Type:      models.TransactionTypeTransfer,
		Reference: "ref-1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	got, _ := repo.GetByID(w.ID)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("30.00")))
	assert.Empty(t, repo.journal)
}

func TestDebitExactBalanceSucceeds(t *testing.T) {
	svc, repo, uow := newLedger(t)
	w := repo.add(1, "EGP", "30.00")

	_, err := svc.Debit(context.Background(), uow, w.ID, decimal.RequireFromString("30.00"), Entry{
		Type:      models.TransactionTypeTransfer,
		Reference: "ref-1",
	})
	require.NoError(t, err)
	got, _ := repo.GetByID(w.ID)
	assert.True(t, got.Balance.IsZero())
}

func TestAmountValidation(t *testing.T) {
	svc, repo, uow := newLedger(t)
	w := repo.add(1, "EGP", "100.00")
	ctx := context.Background()

	for _, raw := range []string{"0", "-5", "1.005"} {
		amt := decimal.RequireFromString(raw)
		_, err := svc.Debit(ctx, uow, w.ID, amt, Entry{Type: models.TransactionTypeTransfer, Reference: "r"})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "debit %s", raw)
		_, err = svc.Credit(ctx, uow, w.ID, amt, Entry{Type: models.TransactionTypeTransfer, Reference: "r"})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "credit %s", raw)
	}
}

func TestCreditAppendsPositiveEntry(t *testing.T) {
	svc, repo, uow := newLedger(t)
	w := repo.add(1, "USD", "0")

	tx, err := svc.Credit(context.Background(), uow, w.ID, decimal.RequireFromString("12.34"), Entry{
		Type:      models.TransactionTypeDeposit,
		Reference: "dep-1",
	})
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("12.34")))

	got, _ := repo.GetByID(w.ID)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("12.34")))
}

func TestLockPairLocksAscending(t *testing.T) {
	svc, repo, uow := newLedger(t)
	a := repo.add(1, "EGP", "10")
	b := repo.add(2, "EGP", "10")

	// request in descending order, locks must still go ascending
	first, second, err := svc.LockPair(uow, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, first.ID)
	assert.Equal(t, a.ID, second.ID)
	assert.Equal(t, []uint{a.ID, b.ID}, repo.lockLog)
}

func TestLockPairRejectsSameWallet(t *testing.T) {
	svc, repo, uow := newLedger(t)
	w := repo.add(1, "EGP", "10")
	_, _, err := svc.LockPair(uow, w.ID, w.ID)
	assert.ErrorIs(t, err, domain.ErrSelfOperation)
}

func TestJournalReplaysToBalance(t *testing.T) {
	svc, repo, uow := newLedger(t)
	w := repo.add(1, "EGP", "100.00")
	ctx := context.Background()

	_, err := svc.Debit(ctx, uow, w.ID, decimal.RequireFromString("25.50"), Entry{Type: models.TransactionTypeBill, Reference: "b1"})
	require.NoError(t, err)
	_, err = svc.Credit(ctx, uow, w.ID, decimal.RequireFromString("10"), Entry{Type: models.TransactionTypeDeposit, Reference: "d1"})
	require.NoError(t, err)

	entries, err := svc.Journal(ctx, uow, w.ID, 50, 0)
	require.NoError(t, err)

	sum := decimal.RequireFromString("100.00")
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	got, _ := repo.GetByID(w.ID)
	assert.True(t, sum.Equal(got.Balance), "journal must replay to the balance")
}
