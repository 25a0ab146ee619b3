package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Biller is a payee for bill payments (electricity, water, mobile, ...).
type Biller struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Category  string `gorm:"not null"`
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
}

// BillPayment records one bill payment and links to its journal entry
// through Reference.
type BillPayment struct {
	ID        uint            `gorm:"primarykey"`
	UserID    uint            `gorm:"index;not null"`
	WalletID  uint            `gorm:"not null"`
	BillerID  uint            `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency  string          `gorm:"size:3;not null"`
	Status    string          `gorm:"not null"`
	Reference string          `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}
