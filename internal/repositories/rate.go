package repositories

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mahfaza/internal/models"
)

// ExchangeRateRepository stores locally cached conversion rates.
type ExchangeRateRepository interface {
	GetRate(from, to string) (*models.ExchangeRate, error)
	Upsert(from, to string, rate decimal.Decimal) error
}

// ExchangeRepository persists currency exchange audit records.
type ExchangeRepository interface {
	Create(exchange *models.CurrencyExchange) error
	ListByUser(userID uint, limit, offset int) ([]*models.CurrencyExchange, error)
}

type exchangeRateRepository struct {
	db *gorm.DB
}

// NewExchangeRateRepository creates a rate repository bound to db.
func NewExchangeRateRepository(db *gorm.DB) ExchangeRateRepository {
	return &exchangeRateRepository{db: db}
}

func (r *exchangeRateRepository) GetRate(from, to string) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	err := r.db.Where("from_currency = ? AND to_currency = ?", from, to).First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get rate: %w", err)
	}
	return &rate, nil
}

func (r *exchangeRateRepository) Upsert(from, to string, rate decimal.Decimal) error {
	row := models.ExchangeRate{FromCurrency: from, ToCurrency: to, Rate: rate}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_currency"}, {Name: "to_currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert rate: %w", err)
	}
	return nil
}

type exchangeRepository struct {
	db *gorm.DB
}

// NewExchangeRepository creates an exchange record repository bound to db.
func NewExchangeRepository(db *gorm.DB) ExchangeRepository {
	return &exchangeRepository{db: db}
}

func (r *exchangeRepository) Create(exchange *models.CurrencyExchange) error {
	if err := r.db.Create(exchange).Error; err != nil {
		return fmt.Errorf("failed to create exchange record: %w", err)
	}
	return nil
}

func (r *exchangeRepository) ListByUser(userID uint, limit, offset int) ([]*models.CurrencyExchange, error) {
	var exchanges []*models.CurrencyExchange
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&exchanges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return exchanges, nil
}
