// Package routes wires services to their HTTP routes.
package routes

import (
	"crypto/rand"
	"time"

	"github.com/gofiber/fiber/v2"

	"mahfaza/internal/config"
	"mahfaza/internal/handlers"
	"mahfaza/internal/middleware"
	"mahfaza/internal/repositories"
	"mahfaza/internal/services/auth"
	"mahfaza/internal/services/bank"
	"mahfaza/internal/services/billing"
	"mahfaza/internal/services/exchange"
	"mahfaza/internal/services/notification"
	"mahfaza/internal/services/otp"
	"mahfaza/internal/services/request"
	"mahfaza/internal/services/transfer"
	"mahfaza/internal/services/user"
	"mahfaza/internal/services/wallet"
)

// SetupRoutes builds the service graph and registers every route.
func SetupRoutes(app *fiber.App) {
	txm := repositories.NewManager(repositories.DB)

	var ledgerCache wallet.CacheOperator = wallet.NoopCache{}
	var rateCache exchange.RateCache = exchange.NoopRateCache{}
	if repositories.CacheService != nil {
		ledgerCache = repositories.CacheService
		rateCache = repositories.CacheService
	}

	otpTTL := config.GetDurationEnv("OTP_TTL", 5*time.Minute)
	otpService := otp.NewService(rand.Reader, otpTTL)
	ledger := wallet.NewService(ledgerCache, wallet.NoopMetricsCollector{})
	notifier := notification.NewService(txm)

	rateSource := exchange.NewAPIRateSource(config.GetEnv("RATE_API_URL", ""))
	exchangeService := exchange.NewService(txm, ledger, rateSource, rateCache, exchange.Config{
		FeeBps:  int64(config.GetIntEnv("EXCHANGE_FEE_BPS", 50)),
		RateTTL: config.GetDurationEnv("RATE_TTL", 15*time.Minute),
	})

	bankService := bank.NewService(txm, ledger, rand.Reader, notifier)
	transferService := transfer.NewService(txm, ledger, otpService, notifier)
	billingService := billing.NewService(txm, ledger, otpService, notifier)
	requestService := request.NewService(txm, ledger, otpService, notifier)
	userService := user.NewService(txm, ledger, bankService)
	authService := auth.NewService(txm, otpService)

	authHandler := handlers.NewAuthHandler(authService, userService)
	otpHandler := handlers.NewOtpHandler(txm, otpService)
	walletHandler := handlers.NewWalletHandler(txm, ledger)
	transferHandler := handlers.NewTransferHandler(transferService)
	exchangeHandler := handlers.NewExchangeHandler(exchangeService)
	billingHandler := handlers.NewBillingHandler(billingService)
	bankHandler := handlers.NewBankHandler(bankService)
	requestHandler := handlers.NewRequestHandler(requestService)
	notificationHandler := handlers.NewNotificationHandler(notifier)

	authMiddleware := middleware.NewAuthMiddleware(txm.Repos().Users)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/login/verify", authHandler.VerifyOtp)
	api.Post("/refresh", authHandler.Refresh)

	authorized := api.Group("", authMiddleware.Handler)
	authorized.Post("/logout", authHandler.Logout)
	authorized.Get("/profile", authHandler.Profile)

	authorized.Post("/otp", otpHandler.Request)

	authorized.Post("/wallets", walletHandler.Create)
	authorized.Get("/wallets", walletHandler.List)
	authorized.Get("/wallets/:id", walletHandler.Get)
	authorized.Get("/wallets/:id/journal", walletHandler.Journal)
	authorized.Get("/wallets/:id/transfers", transferHandler.History)

	authorized.Post("/transfers", transferHandler.SendMoney)

	authorized.Post("/exchange", exchangeHandler.Exchange)
	authorized.Get("/exchange/rate", exchangeHandler.GetRate)
	authorized.Get("/exchange/history", exchangeHandler.History)

	authorized.Get("/billers", billingHandler.ListBillers)
	authorized.Post("/bills/pay", billingHandler.PayBill)
	authorized.Get("/bills/history", billingHandler.History)

	authorized.Get("/bank/account", bankHandler.GetAccount)
	authorized.Post("/bank/deposit", bankHandler.Deposit)
	authorized.Post("/bank/withdraw", bankHandler.Withdraw)

	authorized.Post("/requests", requestHandler.Create)
	authorized.Get("/requests/sent", requestHandler.ListSent)
	authorized.Get("/requests/received", requestHandler.ListReceived)
	authorized.Post("/requests/:id/accept", requestHandler.Accept)
	authorized.Post("/requests/:id/reject", requestHandler.Reject)

	authorized.Get("/notifications", notificationHandler.List)
	authorized.Post("/notifications/:id/read", notificationHandler.MarkRead)
}
