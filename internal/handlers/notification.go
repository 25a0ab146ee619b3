package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/services/notification"
	"mahfaza/internal/utils/response"
)

type NotificationHandler struct {
	notificationService notification.Service
}

func NewNotificationHandler(notificationService notification.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	notifications, err := h.notificationService.List(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "notifications", notifications)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid notification id")
	}

	if err := h.notificationService.MarkRead(c.Context(), uint(id), claims.UserID); err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "notification read", nil)
}
