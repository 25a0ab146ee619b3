package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/services/request"
	"mahfaza/internal/utils/response"
)

type RequestHandler struct {
	requestService request.Service
}

func NewRequestHandler(requestService request.Service) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) Create(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Payer    string `json:"payer"`
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return respondError(c, err)
	}

	req, err := h.requestService.Create(c.Context(), claims.UserID, request.CreateInput{
		Payer:    input.Payer,
		Amount:   amount,
		Currency: input.Currency,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "request created",
		"data":    req,
	})
}

func (h *RequestHandler) Accept(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid request id")
	}

	var input struct {
		OtpCode string `json:"otp_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	req, err := h.requestService.Accept(c.Context(), claims.UserID, uint(id), input.OtpCode)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "request accepted", req)
}

func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid request id")
	}

	req, err := h.requestService.Reject(c.Context(), claims.UserID, uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "request rejected", req)
}

func (h *RequestHandler) ListSent(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	requests, err := h.requestService.ListSent(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "sent requests", requests)
}

func (h *RequestHandler) ListReceived(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	requests, err := h.requestService.ListReceived(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "received requests", requests)
}
