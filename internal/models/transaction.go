package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal entry types
const (
	TransactionTypeTransfer = "transfer"
	TransactionTypeExchange = "exchange"
	TransactionTypeBill     = "bill"
	TransactionTypeDeposit  = "deposit"
	TransactionTypeWithdraw = "withdraw"
)

// Journal entry statuses
const (
	TransactionStatusPending = "pending"
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
)

// Transaction is an append-only journal entry recorded against a wallet.
// Amount is signed: debits are negative, credits positive. The two entries
// produced by a two-wallet operation share a Reference. Entries are never
// mutated after creation except the Pending -> Success/Failed transition.
type Transaction struct {
	ID          uint            `gorm:"primarykey"`
	WalletID    uint            `gorm:"index;not null"`
	Type        string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency    string          `gorm:"size:3;not null"`
	Status      string          `gorm:"not null;default:'pending'"`
	Description string
	Reference   string `gorm:"index;not null"`
	Metadata    JSON   `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
