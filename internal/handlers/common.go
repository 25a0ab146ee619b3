// Package handlers exposes the HTTP surface. Handlers parse and delegate;
// every business decision lives in the services.
package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/utils/response"
)

func extractClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return amount, nil
}

// respondError maps a business error to its HTTP status. Unknown errors
// become 500 without leaking internals.
func respondError(c *fiber.Ctx, err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return c.Status(statusFor(de)).JSON(fiber.Map{
			"error": de.Message,
			"code":  de.Code,
		})
	}

	log.Printf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return response.ServerError(c, "internal server error")
}

func statusFor(de *domain.DomainError) int {
	switch de {
	case domain.ErrWalletNotFound,
		domain.ErrUserNotFound,
		domain.ErrRequestNotFound,
		domain.ErrBankAccountNotFound:
		return fiber.StatusNotFound
	case domain.ErrDuplicateCurrency,
		domain.ErrAlreadyProcessed:
		return fiber.StatusConflict
	case domain.ErrUnauthorized:
		return fiber.StatusForbidden
	case domain.ErrUserSuspended:
		return fiber.StatusForbidden
	case domain.ErrConflict:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadRequest
	}
}
