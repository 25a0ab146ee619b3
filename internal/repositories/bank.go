package repositories

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
)

// BankRepository persists simulated bank accounts and bank-side movements.
type BankRepository interface {
	CreateAccount(account *models.BankAccount) error
	GetAccountByUser(userID uint) (*models.BankAccount, error)
	GetAccountByUserForUpdate(userID uint) (*models.BankAccount, error)
	UpdateAccountBalance(accountID uint, balance decimal.Decimal) error
	CreateTransaction(tx *models.BankTransaction) error
}

type bankRepository struct {
	db *gorm.DB
}

// NewBankRepository creates a bank repository bound to db.
func NewBankRepository(db *gorm.DB) BankRepository {
	return &bankRepository{db: db}
}

func (r *bankRepository) CreateAccount(account *models.BankAccount) error {
	if err := r.db.Create(account).Error; err != nil {
		return fmt.Errorf("failed to create bank account: %w", err)
	}
	return nil
}

func (r *bankRepository) GetAccountByUser(userID uint) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	return &account, nil
}

func (r *bankRepository) GetAccountByUserForUpdate(userID uint) (*models.BankAccount, error) {
	var account models.BankAccount
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock bank account: %w", err)
	}
	return &account, nil
}

func (r *bankRepository) UpdateAccountBalance(accountID uint, balance decimal.Decimal) error {
	result := r.db.Model(&models.BankAccount{}).Where("id = ?", accountID).Update("balance", balance)
	if result.Error != nil {
		return fmt.Errorf("failed to update bank balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrBankAccountNotFound
	}
	return nil
}

func (r *bankRepository) CreateTransaction(tx *models.BankTransaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create bank transaction: %w", err)
	}
	return nil
}
