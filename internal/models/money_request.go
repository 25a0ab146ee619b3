package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money request statuses. A request leaves Pending exactly once; any
// settlement attempt on a non-pending request is rejected.
const (
	MoneyRequestStatusPending  = "pending"
	MoneyRequestStatusAccepted = "accepted"
	MoneyRequestStatusRejected = "rejected"
)

// MoneyRequest asks another user (ToUserID) to pay the requester
// (FromUserID) an amount in a given currency.
type MoneyRequest struct {
	ID         uint            `gorm:"primarykey"`
	FromUserID uint            `gorm:"index;not null"`
	ToUserID   uint            `gorm:"index;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency   string          `gorm:"size:3;not null"`
	Status     string          `gorm:"not null;default:'pending'"`
	Reference  string          `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
