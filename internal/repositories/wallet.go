package repositories

import (
	"github.com/shopspring/decimal"

	"mahfaza/internal/models"
)

// WalletRepository defines the wallet and journal persistence operations
// used by the ledger. Balance writes go through UpdateBalance only; the
// ForUpdate variants take a row lock that is held until the surrounding
// transaction ends.
type WalletRepository interface {
	Create(wallet *models.Wallet) error
	GetByID(id uint) (*models.Wallet, error)
	GetByIDForUpdate(id uint) (*models.Wallet, error)
	GetByUserAndCurrency(userID uint, currency string) (*models.Wallet, error)
	ListByUser(userID uint) ([]*models.Wallet, error)
	UpdateBalance(walletID uint, balance decimal.Decimal) error

	// Journal operations. Entries are append-only.
	CreateJournalEntry(entry *models.Transaction) error
	JournalByWallet(walletID uint, limit, offset int) ([]*models.Transaction, error)
	JournalByReference(reference string) ([]*models.Transaction, error)
}
