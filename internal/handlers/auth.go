package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/repositories"
	"mahfaza/internal/services/auth"
	"mahfaza/internal/services/user"
	"mahfaza/internal/utils/response"
)

type AuthHandler struct {
	authService auth.Service
	userService user.Service
}

func NewAuthHandler(authService auth.Service, userService user.Service) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	result, err := h.userService.Register(c.Context(), user.RegisterInput{
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
		FullName: input.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEmailTaken):
			return response.Error(c, fiber.StatusConflict, "email already registered")
		case errors.Is(err, repositories.ErrPhoneTaken):
			return response.Error(c, fiber.StatusConflict, "phone number already registered")
		case errors.Is(err, user.ErrWeakPassword):
			return response.BadRequest(c, err.Error())
		}
		return respondError(c, err)
	}

	result.User.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "registration successful",
		"data": fiber.Map{
			"user":         result.User,
			"wallet":       result.Wallet,
			"bank_account": result.Account,
		},
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	u, code, err := h.authService.Login(c.Context(), input.Identifier, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Error(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return respondError(c, err)
	}

	// the code itself goes out of band; in this simulation it is logged
	log.Printf("login otp for user %d: %s", u.ID, code.Code)

	return response.Success(c, "otp sent", fiber.Map{
		"user_id":    u.ID,
		"expires_at": code.ExpiresAt,
	})
}

func (h *AuthHandler) VerifyOtp(c *fiber.Ctx) error {
	var input struct {
		UserID uint   `json:"user_id"`
		Code   string `json:"code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	pair, err := h.authService.VerifyOtp(c.Context(), input.UserID, input.Code)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "login successful", fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	pair, err := h.authService.RefreshTokens(c.Context(), input.RefreshToken)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "invalid refresh token")
	}
	return response.Success(c, "tokens refreshed", fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	if err := h.authService.Logout(c.Context(), claims.UserID); err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "logged out", nil)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	claims, err := extractClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	profile, err := h.userService.GetProfile(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "profile", profile)
}
