package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a locally cached conversion rate refreshed from the
// external rate provider.
type ExchangeRate struct {
	ID           uint            `gorm:"primarykey"`
	FromCurrency string          `gorm:"uniqueIndex:idx_rate_pair;size:3;not null"`
	ToCurrency   string          `gorm:"uniqueIndex:idx_rate_pair;size:3;not null"`
	Rate         decimal.Decimal `gorm:"type:numeric(18,6);not null"`
	UpdatedAt    time.Time
}

// CurrencyExchange records a self-exchange between two wallets of the same
// user, with the rate and fee applied, for audit.
type CurrencyExchange struct {
	ID           uint            `gorm:"primarykey"`
	UserID       uint            `gorm:"index;not null"`
	FromWalletID uint            `gorm:"not null"`
	ToWalletID   uint            `gorm:"not null"`
	FromAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	FromCurrency string          `gorm:"size:3;not null"`
	ToAmount     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	ToCurrency   string          `gorm:"size:3;not null"`
	Rate         decimal.Decimal `gorm:"type:numeric(18,6);not null"`
	Fee          decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Status       string          `gorm:"not null"`
	Reference    string          `gorm:"uniqueIndex;not null"`
	CreatedAt    time.Time
}
