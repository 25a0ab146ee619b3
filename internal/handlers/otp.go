package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
	"mahfaza/internal/services/otp"
	"mahfaza/internal/utils/response"
)

type OtpHandler struct {
	txm  repositories.Manager
	otps otp.Service
}

func NewOtpHandler(txm repositories.Manager, otps otp.Service) *OtpHandler {
	return &OtpHandler{txm: txm, otps: otps}
}

// Request issues a transfer OTP for the authenticated user. The code is
// delivered out of band; this simulation logs it.
func (h *OtpHandler) Request(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var code *models.OtpCode
	err = h.txm.WithinTransaction(c.Context(), func(uow *repositories.UnitOfWork) error {
		var err error
		code, err = h.otps.Issue(c.Context(), uow, claims.UserID, models.OtpPurposeTransfer)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Printf("transfer otp for user %d: %s", claims.UserID, code.Code)
	return response.Success(c, "otp sent", fiber.Map{
		"expires_at": code.ExpiresAt,
	})
}
