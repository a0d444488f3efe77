package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aaravmahajanofficial/storefront/docs"
	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/events"
	"github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/telemetry"
	"github.com/aaravmahajanofficial/storefront/pkg/paypal"
	"github.com/aaravmahajanofficial/storefront/pkg/sendGrid"
	"github.com/aaravmahajanofficial/storefront/pkg/stripe"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Storefront API server.
//
//	@title						Storefront API
//	@version					1.0
//	@description				Checkout backend: catalogue, cart, orders and payment reconciliation.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	if err := repos.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		slog.Error("❌ Error running migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	productCache := cache.NewRedisCache(redisClient, cfg.Cache)
	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg.RateConfig)

	// Payment providers
	gateways := map[models.PaymentProvider]service.PaymentGateway{
		models.ProviderStripe: stripe.NewStripeClient(cfg.Stripe),
	}

	var pinger health.Pinger
	if cfg.PayPal.ClientID != "" {
		paypalClient, err := paypal.NewClient(cfg.PayPal)
		if err != nil {
			slog.Error("❌ Error creating the paypal client", slog.String("error", err.Error()))
			os.Exit(1)
		}

		gateways[models.ProviderPayPal] = paypalClient
		pinger = paypalClient
	} else {
		slog.Warn("PayPal credentials not configured, PayPal payments are disabled")
	}

	emailService := sendGrid.NewEmailService(cfg.SendGrid)

	// Services
	productService := service.NewProductService(repos.Product, productCache)
	cartService := service.NewCartService(repos.Cart, repos.Product, cfg.Cart)
	userService := service.NewUserService(repos.User, rateLimiter, cartService, cfg.Security)
	orderService := service.NewOrderService(repos.Order, repos.Cart, repos.User, repos.Outbox, repos.Transactor)
	paymentService := service.NewPaymentService(repos.Order, repos.Product, repos.Outbox, repos.Transactor, gateways, productCache, emailService)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(orderService, paymentService, userService, productService)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{PayPal: pinger})
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Outbox relay
	if len(cfg.Kafka.Brokers) > 0 {
		poller := events.NewOutboxPoller(repos.Outbox, events.NewKafkaWriter(cfg.Kafka), cfg.Kafka)
		go poller.Run(ctx)
		slog.Info("Outbox poller started", slog.String("topic", cfg.Kafka.Topic))
	} else {
		slog.Warn("No kafka brokers configured, order events stay in the outbox")
	}

	admin := func(h http.Handler) http.HandlerFunc {
		return authMiddleware.Authenticate(middleware.RequireAdmin(h))
	}

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))
	routerMux.HandleFunc("PUT /api/v1/users/profile", authMiddleware.Authenticate(userHandler.UpdateProfile()))
	routerMux.HandleFunc("PUT /api/v1/users/address", authMiddleware.Authenticate(userHandler.UpdateAddress()))
	routerMux.HandleFunc("PUT /api/v1/users/payment-method", authMiddleware.Authenticate(userHandler.UpdatePaymentMethod()))
	routerMux.HandleFunc("GET /api/v1/products/latest", productHandler.GetLatestProducts())
	routerMux.HandleFunc("GET /api/v1/products/{slug}", productHandler.GetProduct())
	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.OptionalAuthenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.OptionalAuthenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{productId}", authMiddleware.OptionalAuthenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(orderHandler.CreateOrder()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.HandleFunc("POST /api/v1/orders/{id}/payments", authMiddleware.Authenticate(paymentHandler.InitiatePayment()))
	routerMux.HandleFunc("POST /api/v1/orders/{id}/payments/capture", authMiddleware.Authenticate(paymentHandler.ConfirmPayment()))
	routerMux.HandleFunc("GET /api/v1/admin/summary", admin(adminHandler.GetSummary()))
	routerMux.HandleFunc("GET /api/v1/admin/orders", admin(adminHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/admin/users", admin(adminHandler.ListUsers()))
	routerMux.HandleFunc("PUT /api/v1/admin/orders/{id}/pay", admin(adminHandler.MarkOrderPaid()))
	routerMux.HandleFunc("PUT /api/v1/admin/orders/{id}/deliver", admin(adminHandler.MarkOrderDelivered()))
	routerMux.HandleFunc("DELETE /api/v1/admin/orders/{id}", admin(adminHandler.DeleteOrder()))
	routerMux.HandleFunc("GET /api/v1/admin/products", admin(adminHandler.ListProducts()))
	routerMux.HandleFunc("DELETE /api/v1/admin/products/{id}", admin(adminHandler.DeleteProduct()))
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Middleware chaining, outermost first: tracing, metrics, logging, session cookie
	var handler http.Handler = metrics.RecordPattern(routerMux)
	handler = middleware.SessionCart(handler)
	handler = middleware.Logging(handler)
	handler = metrics.Middleware(handler)
	handler = otelhttp.NewHandler(handler, "storefront")

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr), slog.String("env", cfg.Env))

	go func() { // Starts the HTTP server in a new goroutine so it doesn't block the main thread.

		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Failed to flush traces", slog.String("error", err.Error()))
	}
}
