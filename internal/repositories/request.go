package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
)

// MoneyRequestRepository persists peer money requests. GetByIDForUpdate
// locks the row so concurrent settlement attempts serialize on it.
type MoneyRequestRepository interface {
	Create(request *models.MoneyRequest) error
	GetByID(id uint) (*models.MoneyRequest, error)
	GetByIDForUpdate(id uint) (*models.MoneyRequest, error)
	Update(request *models.MoneyRequest) error
	ListSent(userID uint) ([]*models.MoneyRequest, error)
	ListReceived(userID uint) ([]*models.MoneyRequest, error)
}

type moneyRequestRepository struct {
	db *gorm.DB
}

// NewMoneyRequestRepository creates a money request repository bound to db.
func NewMoneyRequestRepository(db *gorm.DB) MoneyRequestRepository {
	return &moneyRequestRepository{db: db}
}

func (r *moneyRequestRepository) Create(request *models.MoneyRequest) error {
	if err := r.db.Create(request).Error; err != nil {
		return fmt.Errorf("failed to create money request: %w", err)
	}
	return nil
}

func (r *moneyRequestRepository) GetByID(id uint) (*models.MoneyRequest, error) {
	var request models.MoneyRequest
	if err := r.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get money request: %w", err)
	}
	return &request, nil
}

func (r *moneyRequestRepository) GetByIDForUpdate(id uint) (*models.MoneyRequest, error) {
	var request models.MoneyRequest
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&request, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to lock money request: %w", err)
	}
	return &request, nil
}

func (r *moneyRequestRepository) Update(request *models.MoneyRequest) error {
	if err := r.db.Save(request).Error; err != nil {
		return fmt.Errorf("failed to update money request: %w", err)
	}
	return nil
}

func (r *moneyRequestRepository) ListSent(userID uint) ([]*models.MoneyRequest, error) {
	var requests []*models.MoneyRequest
	err := r.db.Where("from_user_id = ?", userID).Order("created_at DESC").Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sent requests: %w", err)
	}
	return requests, nil
}

func (r *moneyRequestRepository) ListReceived(userID uint) ([]*models.MoneyRequest, error) {
	var requests []*models.MoneyRequest
	err := r.db.Where("to_user_id = ?", userID).Order("created_at DESC").Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list received requests: %w", err)
	}
	return requests, nil
}
