// Package main is the API server entry point.
package main

import (
	"context"
	"crypto/rand"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"mahfaza/internal/config"
	"mahfaza/internal/repositories"
	"mahfaza/internal/routes"
	"mahfaza/internal/services/otp"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	startOtpCleanup()

	corsOrigins := config.GetEnv("CORS_ORIGINS", "*")
	if config.IsProduction() && corsOrigins == "*" {
		log.Fatal("CORS_ORIGINS must be set in production")
	}

	app := fiber.New(fiber.Config{
		AppName:               "mahfaza",
		DisableStartupMessage: config.IsProduction(),
		ReadTimeout:           config.GetDurationEnv("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:          config.GetDurationEnv("HTTP_WRITE_TIMEOUT", 10*time.Second),
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// brute-force protection on the credential endpoints
	authLimiter := limiter.New(limiter.Config{
		Max:        config.GetIntEnv("AUTH_RATE_LIMIT", 10),
		Expiration: time.Minute,
	})
	app.Use("/api/login", authLimiter)
	app.Use("/api/register", authLimiter)

	routes.SetupRoutes(app)

	port := config.GetEnv("PORT", "8080")
	log.Printf("listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// startOtpCleanup sweeps expired passcode rows on an interval. Expired
// codes never validate, so the sweep only reclaims storage.
func startOtpCleanup() {
	txm := repositories.NewManager(repositories.DB)
	otps := otp.NewService(rand.Reader, 0)
	interval := config.GetDurationEnv("OTP_CLEANUP_INTERVAL", time.Hour)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := otps.PurgeExpired(context.Background(), txm.Repos()); err != nil {
				log.Printf("otp cleanup: %v", err)
			}
		}
	}()
}
