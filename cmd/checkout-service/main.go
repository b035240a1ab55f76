package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farmcart/checkout-service/internal/api/handlers"
	"github.com/farmcart/checkout-service/internal/api/middleware"
	"github.com/farmcart/checkout-service/internal/config"
	"github.com/farmcart/checkout-service/internal/health"
	"github.com/farmcart/checkout-service/internal/metrics"
	repository "github.com/farmcart/checkout-service/internal/repositories"
	"github.com/farmcart/checkout-service/internal/services"
	"github.com/farmcart/checkout-service/pkg/orders"
	"github.com/farmcart/checkout-service/pkg/payments"
	"github.com/farmcart/checkout-service/pkg/sendgrid"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Settlement journal (Postgres)
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	if err := repos.Migrate(); err != nil {
		slog.Error("❌ Error migrating the settlement journal schema", "error", err.Error())
		os.Exit(1)
	}

	// Session store (Redis)
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	jwtKey := []byte(cfg.Security.JWTKey)
	paymentsClient := payments.NewClient(cfg.PaymentAPI.BaseURL, cfg.PaymentAPI.CallbackBaseURL, cfg.PaymentAPI.Timeout)
	ordersClient := orders.NewClient(cfg.OrderAPI.BaseURL, cfg.OrderAPI.Timeout)
	emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	cartRepo := repository.NewCartRepository()
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Checkout.SessionTTL)
	settlementRepo := repository.NewSettlementRepository(repos.DB)

	cartService := services.NewCartService(logger, cartRepo)
	sessionService := services.NewSessionService(logger, sessionRepo)
	orderService := services.NewOrderService(logger, ordersClient)
	checkoutService := services.NewCheckoutService(
		logger,
		cartService,
		paymentsClient,
		ordersClient,
		settlementRepo,
		emailService,
		cfg.SendGrid.OpsEmail,
		cfg.Checkout.AllowPartialSubmit,
	)

	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, sessionService)
	callbackHandler := handlers.NewCallbackHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("POST /api/v1/cart/items/decrease", authMiddleware.Authenticate(cartHandler.DecreaseItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{key}", authMiddleware.Authenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart", authMiddleware.Authenticate(cartHandler.ClearCart()))
	routerMux.HandleFunc("POST /api/v1/checkout", authMiddleware.Authenticate(checkoutHandler.Begin()))
	routerMux.HandleFunc("GET /api/v1/checkout/{nonce}", authMiddleware.Authenticate(checkoutHandler.Snapshot()))
	routerMux.HandleFunc("POST /api/v1/checkout/{nonce}/pay/external", authMiddleware.Authenticate(checkoutHandler.StartExternalPayment()))
	routerMux.HandleFunc("POST /api/v1/checkout/{nonce}/pay/manual", authMiddleware.Authenticate(checkoutHandler.SubmitManual()))
	routerMux.HandleFunc("DELETE /api/v1/checkout/{nonce}", authMiddleware.Authenticate(checkoutHandler.Abandon()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.History()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.Detail()))
	routerMux.HandleFunc("POST /api/v1/orders/{id}/cancel", authMiddleware.Authenticate(orderHandler.Cancel()))
	routerMux.HandleFunc("POST /api/v1/logout", authMiddleware.Authenticate(sessionHandler.Logout()))

	// Public: the payment provider redirects the buyer's browser here.
	routerMux.HandleFunc("GET /payment/callback/{result}", callbackHandler.PaymentCallback())

	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", health.Handler(healthHandler))

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {

		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

}
