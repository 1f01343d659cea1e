package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-storefront/internal/config"
	"ms-storefront/internal/inventory"
	"ms-storefront/internal/kafka"
	"ms-storefront/internal/logger"
	"ms-storefront/internal/order"
	order_db "ms-storefront/internal/order/db"
	"ms-storefront/internal/order/order_api"
	rediswrap "ms-storefront/internal/order/redis"
)

// Standalone payment-webhook process. Serves only the Stripe endpoint so
// the receiver can be scaled and restarted independently of the storefront
// API.
func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	defer appLogger.Close()

	// --- PostgreSQL Setup ---
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("❌ Failed to connect to Postgres: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	// --- Redis Setup ---
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	log.Println("🔗 Connecting to Redis...")

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}

	var producer order.KafkaPublisher
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
	}

	var guard order.EventGuard
	if cfg.Webhook.Dedupe {
		guard = rediswrap.NewEventGuard(redisClient, cfg.Webhook.DedupeTTL)
	}

	order.InitStripe(cfg.Stripe.SecretKey)

	log.Println("📦 Initializing webhook receiver...")
	// Cart and catalog lookups are checkout-time dependencies; the webhook
	// path never touches them.
	service := order.NewOrderService(
		&order_db.DB{Bun: bunDB},
		&inventory.DB{Bun: bunDB},
		nil,
		nil,
		producer,
		guard,
		appLogger,
		cfg.Stripe.WebhookSecret,
	)
	handler := &order_api.Handler{OrderService: service, Logger: appLogger}

	r := chi.NewRouter()
	r.Post("/api/webhooks/stripe", handler.StripeWebhook)

	server := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Webhook receiver running on %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
