package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/services/bank"
	"mahfaza/internal/utils/response"
)

type BankHandler struct {
	bankService bank.Service
}

func NewBankHandler(bankService bank.Service) *BankHandler {
	return &BankHandler{bankService: bankService}
}

type bankMoveInput struct {
	WalletID uint   `json:"wallet_id"`
	Amount   string `json:"amount"`
}

func (h *BankHandler) Deposit(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input bankMoveInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return respondError(c, err)
	}

	record, err := h.bankService.Deposit(c.Context(), claims.UserID, input.WalletID, amount)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "deposit completed", record)
}

func (h *BankHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input bankMoveInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return respondError(c, err)
	}

	record, err := h.bankService.Withdraw(c.Context(), claims.UserID, input.WalletID, amount)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "withdrawal completed", record)
}

func (h *BankHandler) GetAccount(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	account, err := h.bankService.GetAccount(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "bank account", account)
}
