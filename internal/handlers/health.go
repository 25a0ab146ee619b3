package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/repositories"
)

// HealthCheck reports database and cache connectivity.
func HealthCheck(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}
	code := fiber.StatusOK

	sqlDB, err := repositories.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		status["database"] = "down"
		status["status"] = "degraded"
		code = fiber.StatusServiceUnavailable
	} else {
		status["database"] = "up"
	}

	if repositories.CacheService != nil {
		if err := repositories.CacheService.HealthCheck(c.Context()); err != nil {
			status["cache"] = "down"
		} else {
			status["cache"] = "up"
		}
	} else {
		status["cache"] = "disabled"
	}

	return c.Status(code).JSON(status)
}
