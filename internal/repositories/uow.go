package repositories

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork bundles every repository bound to one database handle. Inside
// Manager.WithinTransaction all repositories share a single transaction, so
// the set of writes an operation performs commits or aborts as a whole.
type UnitOfWork struct {
	Users         UserRepository
	Wallets       WalletRepository
	Otps          OtpRepository
	Transfers     TransferRepository
	Rates         ExchangeRateRepository
	Exchanges     ExchangeRepository
	Billers       BillerRepository
	BillPayments  BillPaymentRepository
	Requests      MoneyRequestRepository
	Bank          BankRepository
	Notifications NotificationRepository
}

// NewUnitOfWork binds all repositories to db.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{
		Users:         NewUserRepository(db),
		Wallets:       NewWalletRepository(db),
		Otps:          NewOtpRepository(db),
		Transfers:     NewTransferRepository(db),
		Rates:         NewExchangeRateRepository(db),
		Exchanges:     NewExchangeRepository(db),
		Billers:       NewBillerRepository(db),
		BillPayments:  NewBillPaymentRepository(db),
		Requests:      NewMoneyRequestRepository(db),
		Bank:          NewBankRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// Manager owns the transaction boundary for the money-movement services.
type Manager interface {
	// Repos returns a unit of work bound to the base connection for
	// consistent reads outside any transaction.
	Repos() *UnitOfWork

	// WithinTransaction runs fn inside one database transaction and retries
	// the whole closure a bounded number of times on serialization or
	// deadlock errors. Any error from fn rolls every write back.
	WithinTransaction(ctx context.Context, fn func(uow *UnitOfWork) error) error
}

type manager struct {
	db *gorm.DB
}

// NewManager creates a transaction manager over db.
func NewManager(db *gorm.DB) Manager {
	if db == nil {
		panic("db is required")
	}
	return &manager{db: db}
}

func (m *manager) Repos() *UnitOfWork {
	return NewUnitOfWork(m.db)
}

func (m *manager) WithinTransaction(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	return withRetry(ctx, defaultRetryAttempts, func() error {
		return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(NewUnitOfWork(tx))
		})
	})
}
