package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/services/transfer"
	"mahfaza/internal/utils/response"
)

type TransferHandler struct {
	transferService transfer.Service
}

func NewTransferHandler(transferService transfer.Service) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

func (h *TransferHandler) SendMoney(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		WalletID    uint   `json:"wallet_id"`
		Receiver    string `json:"receiver"`
		Amount      string `json:"amount"`
		Description string `json:"description"`
		OtpCode     string `json:"otp_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	amount, err := parseAmount(input.Amount)
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.transferService.SendMoney(c.Context(), claims.UserID, transfer.SendMoneyInput{
		SenderWalletID: input.WalletID,
		Receiver:       input.Receiver,
		Amount:         amount,
		Description:    input.Description,
		OtpCode:        input.OtpCode,
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "transfer completed", result)
}

func (h *TransferHandler) History(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return response.BadRequest(c, "invalid wallet id")
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	transfers, err := h.transferService.History(c.Context(), claims.UserID, uint(walletID), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "transfers", transfers)
}
