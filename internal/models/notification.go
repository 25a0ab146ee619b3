package models

import "time"

// Notification categories
const (
	NotificationCategoryTransaction = "transaction"
	NotificationCategorySecurity    = "security"
)

// Notification is a fire-and-forget record of a user-visible event. It is
// written after the surrounding operation commits and never participates in
// the atomicity guarantee.
type Notification struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Body      string `gorm:"not null"`
	Category  string `gorm:"not null"`
	IsRead    bool   `gorm:"default:false"`
	CreatedAt time.Time
}
