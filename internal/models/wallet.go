package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency every user gets a wallet for at registration.
const DefaultCurrency = "EGP"

// Wallet is a balance container keyed by (user, currency). The balance is
// mutated only through the ledger service; the (UserID, Currency) pair is
// unique so a user can hold at most one wallet per currency.
type Wallet struct {
	ID           uint            `gorm:"primarykey"`
	UserID       uint            `gorm:"uniqueIndex:idx_wallet_user_currency;not null"`
	Currency     string          `gorm:"uniqueIndex:idx_wallet_user_currency;size:3;not null"`
	Balance      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	DailyLimit   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:10000"`
	MonthlyLimit decimal.Decimal `gorm:"type:numeric(18,2);not null;default:50000"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
