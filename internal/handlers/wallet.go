package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/repositories"
	"mahfaza/internal/services/wallet"
	"mahfaza/internal/utils/response"
)

type WalletHandler struct {
	txm    repositories.Manager
	ledger wallet.Service
}

func NewWalletHandler(txm repositories.Manager, ledger wallet.Service) *WalletHandler {
	return &WalletHandler{txm: txm, ledger: ledger}
}

func (h *WalletHandler) Create(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	w, err := h.ledger.Create(c.Context(), h.txm.Repos(), claims.UserID, input.Currency)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "wallet created",
		"data":    w,
	})
}

func (h *WalletHandler) List(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	wallets, err := h.ledger.ListForUser(c.Context(), h.txm.Repos(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "wallets", wallets)
}

func (h *WalletHandler) Get(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid wallet id")
	}

	w, err := h.ledger.Get(c.Context(), h.txm.Repos(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	if w.UserID != claims.UserID {
		return response.Error(c, fiber.StatusNotFound, "wallet not found")
	}
	return response.Success(c, "wallet", w)
}

func (h *WalletHandler) Journal(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid wallet id")
	}

	w, err := h.ledger.Get(c.Context(), h.txm.Repos(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	if w.UserID != claims.UserID {
		return response.Error(c, fiber.StatusNotFound, "wallet not found")
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	entries, err := h.ledger.Journal(c.Context(), h.txm.Repos(), w.ID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "journal", entries)
}
