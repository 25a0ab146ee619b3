package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"mahfaza/internal/models"
)

// TransferRepository persists transfer records.
type TransferRepository interface {
	Create(transfer *models.Transfer) error
	ListByWallet(walletID uint, limit, offset int) ([]*models.Transfer, error)
}

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a transfer repository bound to db.
func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(transfer *models.Transfer) error {
	if err := r.db.Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *transferRepository) ListByWallet(walletID uint, limit, offset int) ([]*models.Transfer, error) {
	var transfers []*models.Transfer
	err := r.db.Where("sender_wallet_id = ? OR receiver_wallet_id = ?", walletID, walletID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}
