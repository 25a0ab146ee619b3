// Package notification emits user-visible event records. Emission always
// happens after the operation that triggered it has committed; a failed
// write is logged and dropped, never surfaced to the caller, so money
// movement can never fail because a notification did.
package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
)

// Service records and lists notifications.
type Service interface {
	// Notify writes one notification. Errors are swallowed after logging.
	Notify(ctx context.Context, userID uint, category, title, body string)

	// NotifyTransaction formats a money-movement notification.
	NotifyTransaction(ctx context.Context, userID uint, title string, amount decimal.Decimal, currency string)

	List(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID uint) error
}

type service struct {
	txm repositories.Manager
}

// NewService creates the notification service.
func NewService(txm repositories.Manager) Service {
	if txm == nil {
		panic("transaction manager is required")
	}
	return &service{txm: txm}
}

func (s *service) Notify(ctx context.Context, userID uint, category, title, body string) {
	n := &models.Notification{
		UserID:   userID,
		Title:    title,
		Body:     body,
		Category: category,
	}
	if err := s.txm.Repos().Notifications.Create(n); err != nil {
		log.Printf("notification dropped for user %d: %v", userID, err)
	}
}

func (s *service) NotifyTransaction(ctx context.Context, userID uint, title string, amount decimal.Decimal, currency string) {
	body := fmt.Sprintf("%s %s %s", title, amount.StringFixed(2), currency)
	s.Notify(ctx, userID, models.NotificationCategoryTransaction, title, body)
}

func (s *service) List(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.txm.Repos().Notifications.ListByUser(userID, limit, offset)
}

func (s *service) MarkRead(ctx context.Context, id, userID uint) error {
	return s.txm.Repos().Notifications.MarkRead(id, userID)
}
