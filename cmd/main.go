package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tsennguyen/gofoody/internal/cache"
	h "github.com/tsennguyen/gofoody/internal/http"
	"github.com/tsennguyen/gofoody/internal/publisher"
	"github.com/tsennguyen/gofoody/internal/repository"
	"github.com/tsennguyen/gofoody/internal/service"
)

type Config struct {
	HTTPPort        string
	DBHost          string
	DBPort          int
	DBUser          string
	DBPassword      string
	DBName          string
	MigrationsPath  string
	RedisAddr       string
	KafkaBrokers    []string
	KafkaTopic      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnvInt("DB_PORT", 5432),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "gofoody"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "internal/repository/migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "orders.placed"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := loadConfig()

	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.NewRepository(creds)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	summaryCache := cache.NewRedisCache(redisClient)

	cartService := service.NewCartService(repo, repo, summaryCache)
	checkoutService := service.NewCheckoutService(repo, repo, repo, repo, repo, summaryCache)
	orderService := service.NewOrderService(repo)

	cartHandler := h.NewCartHandler(cartService)
	checkoutHandler := h.NewCheckoutHandler(checkoutService)
	ordersHandler := h.NewOrdersHandler(orderService)

	pollerCtx, stopPoller := context.WithCancel(context.Background())
	poller := publisher.NewOutboxPoller(repo, cfg.KafkaTopic, cfg.KafkaBrokers...)
	go poller.Run(pollerCtx)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.IdentityMiddleware)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := repo.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{itemID}", cartHandler.UpdateItem)
			r.Delete("/items/{itemID}", cartHandler.RemoveItem)
		})

		r.Get("/shipping-methods", checkoutHandler.GetShippingMethods)
		r.Get("/payment-methods", checkoutHandler.GetPaymentMethods)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/checkout", checkoutHandler.Checkout)
			r.Get("/my", ordersHandler.GetMyOrders)
			r.Get("/my/{orderCode}", ordersHandler.GetMyOrderDetail)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.AdminOnly)
			r.Get("/orders", ordersHandler.AdminListOrders)
			r.Get("/orders/stats", ordersHandler.AdminGetStats)
			r.Get("/orders/{orderID}", ordersHandler.AdminGetOrder)
			r.Put("/orders/{orderID}/status", ordersHandler.AdminUpdateStatus)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	stopPoller()
	if err := poller.Close(); err != nil {
		slog.Error("failed to close kafka writer", "error", err)
	}
}
