package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/services/exchange"
	"mahfaza/internal/utils/response"
)

type ExchangeHandler struct {
	exchangeService exchange.Service
}

func NewExchangeHandler(exchangeService exchange.Service) *ExchangeHandler {
	return &ExchangeHandler{exchangeService: exchangeService}
}

func (h *ExchangeHandler) Exchange(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		FromWalletID uint   `json:"from_wallet_id"`
		ToWalletID   uint   `json:"to_wallet_id"`
		Amount       string `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	amount, err := parseAmount(input.Amount)
	if err != nil {
		return respondError(c, err)
	}

	record, err := h.exchangeService.Exchange(c.Context(), claims.UserID, exchange.ExchangeInput{
		FromWalletID: input.FromWalletID,
		ToWalletID:   input.ToWalletID,
		Amount:       amount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "exchange completed", record)
}

func (h *ExchangeHandler) GetRate(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")

	rate, err := h.exchangeService.GetRate(c.Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "rate", fiber.Map{
		"from": from,
		"to":   to,
		"rate": rate,
	})
}

func (h *ExchangeHandler) History(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	records, err := h.exchangeService.History(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "exchanges", records)
}
