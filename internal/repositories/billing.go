package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
)

// BillerRepository reads the biller catalog.
type BillerRepository interface {
	GetByID(id uint) (*models.Biller, error)
	ListActive() ([]*models.Biller, error)
	Create(biller *models.Biller) error
}

// BillPaymentRepository persists bill payment records.
type BillPaymentRepository interface {
	Create(payment *models.BillPayment) error
	ListByUser(userID uint, limit, offset int) ([]*models.BillPayment, error)
}

type billerRepository struct {
	db *gorm.DB
}

// NewBillerRepository creates a biller repository bound to db.
func NewBillerRepository(db *gorm.DB) BillerRepository {
	return &billerRepository{db: db}
}

func (r *billerRepository) GetByID(id uint) (*models.Biller, error) {
	var biller models.Biller
	if err := r.db.First(&biller, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBillerUnavailable
		}
		return nil, fmt.Errorf("failed to get biller: %w", err)
	}
	return &biller, nil
}

func (r *billerRepository) ListActive() ([]*models.Biller, error) {
	var billers []*models.Biller
	if err := r.db.Where("is_active = true").Order("name").Find(&billers).Error; err != nil {
		return nil, fmt.Errorf("failed to list billers: %w", err)
	}
	return billers, nil
}

func (r *billerRepository) Create(biller *models.Biller) error {
	if err := r.db.Create(biller).Error; err != nil {
		return fmt.Errorf("failed to create biller: %w", err)
	}
	return nil
}

type billPaymentRepository struct {
	db *gorm.DB
}

// NewBillPaymentRepository creates a bill payment repository bound to db.
func NewBillPaymentRepository(db *gorm.DB) BillPaymentRepository {
	return &billPaymentRepository{db: db}
}

func (r *billPaymentRepository) Create(payment *models.BillPayment) error {
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create bill payment: %w", err)
	}
	return nil
}

func (r *billPaymentRepository) ListByUser(userID uint, limit, offset int) ([]*models.BillPayment, error) {
	var payments []*models.BillPayment
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bill payments: %w", err)
	}
	return payments, nil
}
