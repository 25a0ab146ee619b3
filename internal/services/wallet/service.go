// Package wallet implements the ledger: every balance change in the system
// goes through Debit or Credit here, inside a transaction the caller owns,
// against a row the caller has locked through this package. Each change
// appends a signed journal entry, so the journal replays to the balance.
package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
	"mahfaza/internal/validation"
)

// Service is the wallet ledger.
type Service interface {
	// Create opens a wallet for (user, currency) with a zero balance.
	Create(ctx context.Context, uow *repositories.UnitOfWork, userID uint, currency string) (*models.Wallet, error)

	// Get returns a wallet by ID, cache-first.
	Get(ctx context.Context, uow *repositories.UnitOfWork, id uint) (*models.Wallet, error)

	GetForUserAndCurrency(ctx context.Context, uow *repositories.UnitOfWork, userID uint, currency string) (*models.Wallet, error)
	ListForUser(ctx context.Context, uow *repositories.UnitOfWork, userID uint) ([]*models.Wallet, error)

	// Lock takes a row lock on one wallet for the life of uow's transaction.
	Lock(uow *repositories.UnitOfWork, id uint) (*models.Wallet, error)

	// LockPair locks two wallets in ascending ID order so concurrent
	// operations over the same pair cannot deadlock.
	LockPair(uow *repositories.UnitOfWork, a, b uint) (*models.Wallet, *models.Wallet, error)

	// Debit subtracts amount from a wallet the caller has locked and
	// appends a negative journal entry. Fails without writing anything if
	// the balance does not cover the amount.
	Debit(ctx context.Context, uow *repositories.UnitOfWork, walletID uint, amount decimal.Decimal, entry Entry) (*models.Transaction, error)

	// Credit adds amount to a locked wallet and appends a positive entry.
	Credit(ctx context.Context, uow *repositories.UnitOfWork, walletID uint, amount decimal.Decimal, entry Entry) (*models.Transaction, error)

	// Invalidate drops cached copies of the given wallets. Call after
	// commit, never inside the transaction.
	Invalidate(ctx context.Context, walletIDs ...uint)

	Journal(ctx context.Context, uow *repositories.UnitOfWork, walletID uint, limit, offset int) ([]*models.Transaction, error)
	JournalByReference(ctx context.Context, uow *repositories.UnitOfWork, reference string) ([]*models.Transaction, error)
}

type service struct {
	cache   CacheOperator
	metrics MetricsCollector
}

// NewService creates the ledger service.
func NewService(cache CacheOperator, metrics MetricsCollector) Service {
	if cache == nil {
		cache = NoopCache{}
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{cache: cache, metrics: metrics}
}

func (s *service) Create(ctx context.Context, uow *repositories.UnitOfWork, userID uint, currency string) (*models.Wallet, error) {
	if err := validation.Currency(currency); err != nil {
		return nil, err
	}
	wallet := &models.Wallet{
		UserID:   userID,
		Currency: currency,
		Balance:  decimal.Zero,
	}
	if err := uow.Wallets.Create(wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *service) Get(ctx context.Context, uow *repositories.UnitOfWork, id uint) (*models.Wallet, error) {
	if cached, err := s.cache.GetWallet(ctx, id); err == nil && cached != nil {
		return cached, nil
	}
	wallet, err := uow.Wallets.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetWallet(ctx, wallet); err != nil {
		s.metrics.RecordError("cache_set", "wallet")
	}
	return wallet, nil
}

func (s *service) GetForUserAndCurrency(ctx context.Context, uow *repositories.UnitOfWork, userID uint, currency string) (*models.Wallet, error) {
	return uow.Wallets.GetByUserAndCurrency(userID, currency)
}

func (s *service) ListForUser(ctx context.Context, uow *repositories.UnitOfWork, userID uint) ([]*models.Wallet, error) {
	return uow.Wallets.ListByUser(userID)
}

func (s *service) Lock(uow *repositories.UnitOfWork, id uint) (*models.Wallet, error) {
	return uow.Wallets.GetByIDForUpdate(id)
}

func (s *service) LockPair(uow *repositories.UnitOfWork, a, b uint) (*models.Wallet, *models.Wallet, error) {
	if a == b {
		return nil, nil, domain.ErrSelfOperation
	}
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	w1, err := uow.Wallets.GetByIDForUpdate(first)
	if err != nil {
		return nil, nil, err
	}
	w2, err := uow.Wallets.GetByIDForUpdate(second)
	if err != nil {
		return nil, nil, err
	}
	if first == a {
		return w1, w2, nil
	}
	return w2, w1, nil
}

func (s *service) Debit(ctx context.Context, uow *repositories.UnitOfWork, walletID uint, amount decimal.Decimal, entry Entry) (*models.Transaction, error) {
	if err := validation.Amount(amount); err != nil {
		s.metrics.RecordError("debit", "invalid_amount")
		return nil, err
	}

	wallet, err := uow.Wallets.GetByIDForUpdate(walletID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(amount) {
		s.metrics.RecordError("debit", "insufficient_balance")
		return nil, domain.ErrInsufficientBalance
	}

	if err := uow.Wallets.UpdateBalance(walletID, wallet.Balance.Sub(amount)); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		WalletID:    walletID,
		Type:        entry.Type,
		Amount:      amount.Neg(),
		Currency:    wallet.Currency,
		Status:      models.TransactionStatusSuccess,
		Description: entry.Description,
		Reference:   entry.Reference,
		Metadata:    entry.Metadata,
	}
	if err := uow.Wallets.CreateJournalEntry(tx); err != nil {
		return nil, err
	}

	s.metrics.RecordTransaction(entry.Type, amount)
	return tx, nil
}

func (s *service) Credit(ctx context.Context, uow *repositories.UnitOfWork, walletID uint, amount decimal.Decimal, entry Entry) (*models.Transaction, error) {
	if err := validation.Amount(amount); err != nil {
		s.metrics.RecordError("credit", "invalid_amount")
		return nil, err
	}

	wallet, err := uow.Wallets.GetByIDForUpdate(walletID)
	if err != nil {
		return nil, err
	}

	if err := uow.Wallets.UpdateBalance(walletID, wallet.Balance.Add(amount)); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		WalletID:    walletID,
		Type:        entry.Type,
		Amount:      amount,
		Currency:    wallet.Currency,
		Status:      models.TransactionStatusSuccess,
		Description: entry.Description,
		Reference:   entry.Reference,
		Metadata:    entry.Metadata,
	}
	if err := uow.Wallets.CreateJournalEntry(tx); err != nil {
		return nil, err
	}

	s.metrics.RecordTransaction(entry.Type, amount)
	return tx, nil
}

func (s *service) Invalidate(ctx context.Context, walletIDs ...uint) {
	if len(walletIDs) == 0 {
		return
	}
	if err := s.cache.InvalidateWallet(ctx, walletIDs...); err != nil {
		s.metrics.RecordError("cache_invalidate", "wallet")
	}
}

func (s *service) Journal(ctx context.Context, uow *repositories.UnitOfWork, walletID uint, limit, offset int) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uow.Wallets.JournalByWallet(walletID, limit, offset)
}

func (s *service) JournalByReference(ctx context.Context, uow *repositories.UnitOfWork, reference string) ([]*models.Transaction, error) {
	return uow.Wallets.JournalByReference(reference)
}
