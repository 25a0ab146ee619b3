package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is the simulated external bank balance backing wallet
// deposits and withdrawals. One account per user, provisioned at
// registration.
type BankAccount struct {
	ID            uint            `gorm:"primarykey"`
	UserID        uint            `gorm:"uniqueIndex;not null"`
	AccountNumber string          `gorm:"uniqueIndex;size:16;not null"`
	Balance       decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BankTransaction records one bank-side movement (deposit into the wallet
// or withdrawal back to the bank account).
type BankTransaction struct {
	ID        uint            `gorm:"primarykey"`
	UserID    uint            `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Type      string          `gorm:"not null"`
	Status    string          `gorm:"not null"`
	Reference string          `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}
