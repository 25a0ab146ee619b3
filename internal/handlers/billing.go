package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/services/billing"
	"mahfaza/internal/utils/response"
)

type BillingHandler struct {
	billingService billing.Service
}

func NewBillingHandler(billingService billing.Service) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

func (h *BillingHandler) ListBillers(c *fiber.Ctx) error {
	billers, err := h.billingService.ListBillers(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "billers", billers)
}

func (h *BillingHandler) PayBill(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		WalletID uint   `json:"wallet_id"`
		BillerID uint   `json:"biller_id"`
		Amount   string `json:"amount"`
		OtpCode  string `json:"otp_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	amount, err := parseAmount(input.Amount)
	if err != nil {
		return respondError(c, err)
	}

	payment, err := h.billingService.PayBill(c.Context(), claims.UserID, billing.PayBillInput{
		WalletID: input.WalletID,
		BillerID: input.BillerID,
		Amount:   amount,
		OtpCode:  input.OtpCode,
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "bill paid", payment)
}

func (h *BillingHandler) History(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	payments, err := h.billingService.History(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "payments", payments)
}
