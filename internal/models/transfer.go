package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer records the business intent of a peer-to-peer transfer. The two
// journal entries it produced carry the same Reference.
type Transfer struct {
	ID               uint            `gorm:"primarykey"`
	SenderWalletID   uint            `gorm:"index;not null"`
	ReceiverWalletID uint            `gorm:"index;not null"`
	Amount           decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency         string          `gorm:"size:3;not null"`
	Status           string          `gorm:"not null"`
	Reference        string          `gorm:"uniqueIndex;not null"`
	Description      string
	CreatedAt        time.Time
}
