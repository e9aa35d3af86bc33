package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"qr-restaurant-backend/config"
	"qr-restaurant-backend/controllers"
	"qr-restaurant-backend/database"
	"qr-restaurant-backend/kafka"
	"qr-restaurant-backend/logger"
	"qr-restaurant-backend/middleware"
	"qr-restaurant-backend/repository"
	"qr-restaurant-backend/routes"
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.Initialize(cfg.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	db, err := database.Connect(cfg.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Redis, Kafka, and S3 are optional; the services degrade to
	// cache-less, event-less, upload-less operation when absent.
	var menuCache *services.MenuCache
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, menu cache disabled", zap.Error(err))
		} else {
			menuCache = services.NewMenuCache(redisClient, log)
		}
	}

	var events *kafka.OrderEventProducer
	if cfg.KafkaBrokers != "" {
		events = kafka.NewOrderEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderEventsTopic)
		defer events.Close()
	}

	var presigner *services.S3Presigner
	if cfg.S3Bucket != "" {
		presigner, err = services.NewS3Presigner(context.Background(), cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			log.Warn("S3 unavailable, image uploads disabled", zap.Error(err))
			presigner = nil
		}
	}

	var provider services.PaymentProvider
	var verifier services.WebhookVerifier
	if cfg.StripeConfigured() {
		provider = services.NewStripeProvider(cfg.StripeSecretKey)
		if cfg.StripeWebhookKey != "" {
			verifier = services.NewStripeWebhookVerifier(cfg.StripeWebhookKey)
		} else {
			log.Warn("STRIPE_WEBHOOK_SECRET not set, webhooks will be acknowledged unprocessed")
		}
	} else {
		provider = services.NewDemoProvider()
		log.Info("Stripe not configured, running payments in demo mode")
	}

	orderRepo := repository.NewGormOrderRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	menuRepo := repository.NewGormMenuRepository(db)
	tableRepo := repository.NewGormTableRepository(db)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret)
	authService := services.NewAuthService(userRepo, tokens, log)
	userService := services.NewUserService(userRepo, log)
	customerService := services.NewCustomerService(customerRepo, tableRepo, tokens, log)
	orderService := services.NewOrderService(orderRepo, events, log)
	paymentService := services.NewPaymentService(orderRepo, provider, verifier, cfg.CurrencyDefault, events, log)
	menuService := services.NewMenuService(menuRepo, menuCache, presigner, log)
	tableService := services.NewTableService(tableRepo, cfg.FrontendURL, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger(log))

	limiter := middleware.NewRateLimiter(20, 40)
	routes.Register(router, routes.Controllers{
		Auth:     controllers.NewAuthController(authService, log),
		User:     controllers.NewUserController(userService, log),
		Customer: controllers.NewCustomerController(customerService, log),
		Order:    controllers.NewOrderController(orderService, log),
		Payment:  controllers.NewPaymentController(paymentService, log),
		Menu:     controllers.NewMenuController(menuService, log),
		Table:    controllers.NewTableController(tableService, log),
	}, tokens, limiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
