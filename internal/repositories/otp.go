package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mahfaza/internal/models"
)

// OtpRepository persists one-time passcodes. A "valid" code is unused,
// unexpired, and matches (user, code, purpose) exactly.
type OtpRepository interface {
	Create(otp *models.OtpCode) error
	GetValid(userID uint, code, purpose string, now time.Time) (*models.OtpCode, error)
	MarkUsed(id uint) error
	InvalidateActive(userID uint, purpose string) error
	DeleteExpired(before time.Time) error
}

type otpRepository struct {
	db *gorm.DB
}

// NewOtpRepository creates an OTP repository bound to db.
func NewOtpRepository(db *gorm.DB) OtpRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(otp *models.OtpCode) error {
	if err := r.db.Create(otp).Error; err != nil {
		return fmt.Errorf("failed to create otp: %w", err)
	}
	return nil
}

func (r *otpRepository) GetValid(userID uint, code, purpose string, now time.Time) (*models.OtpCode, error) {
	var otp models.OtpCode
	err := r.db.Where(
		"user_id = ? AND code = ? AND purpose = ? AND is_used = false AND expires_at > ?",
		userID, code, purpose, now,
	).First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to look up otp: %w", err)
	}
	return &otp, nil
}

func (r *otpRepository) MarkUsed(id uint) error {
	err := r.db.Model(&models.OtpCode{}).Where("id = ?", id).Update("is_used", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark otp used: %w", err)
	}
	return nil
}

func (r *otpRepository) InvalidateActive(userID uint, purpose string) error {
	err := r.db.Model(&models.OtpCode{}).
		Where("user_id = ? AND purpose = ? AND is_used = false", userID, purpose).
		Update("is_used", true).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate otps: %w", err)
	}
	return nil
}

func (r *otpRepository) DeleteExpired(before time.Time) error {
	err := r.db.Where("expires_at < ?", before).Delete(&models.OtpCode{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete expired otps: %w", err)
	}
	return nil
}
