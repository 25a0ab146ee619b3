package models

import "time"

// OTP purposes
const (
	OtpPurposeLogin    = "login"
	OtpPurposeTransfer = "transfer"
)

// OtpCode is a single-use, time-limited numeric code authorizing a sensitive
// operation for one user and one purpose.
type OtpCode struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"index:idx_otp_user_purpose;not null"`
	Code      string `gorm:"size:10;not null"`
	Purpose   string `gorm:"index:idx_otp_user_purpose;not null"`
	ExpiresAt time.Time
	IsUsed    bool `gorm:"default:false"`
	CreatedAt time.Time
}
