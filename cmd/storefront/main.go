package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sherinaayu/prototype-ecommerce/internal/auth"
	"github.com/sherinaayu/prototype-ecommerce/internal/cart"
	"github.com/sherinaayu/prototype-ecommerce/internal/catalog"
	"github.com/sherinaayu/prototype-ecommerce/internal/domain"
	"github.com/sherinaayu/prototype-ecommerce/internal/events"
	h "github.com/sherinaayu/prototype-ecommerce/internal/http"
	"github.com/sherinaayu/prototype-ecommerce/internal/order"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	OrdersBackend   string // "mongo" or "memory"
	MongoURI        string
	MongoDBName     string
	CatalogDBPath   string
	MigrationsPath  string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		OrdersBackend:   getEnv("ORDERS_BACKEND", "mongo"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		CatalogDBPath:   getEnv("CATALOG_DB_PATH", "catalog.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
		KafkaBrokers:    splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
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

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Durable cart storage
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	cartStore := cart.NewStore(cart.NewRedisStorage(redisClient))
	cartStore.Subscribe(func(userUID string, c domain.Cart) {
		log.Printf("cart for user %s now holds %d entries", userUID, c.Len())
	})

	// Order store
	var repo order.OrderRepository
	switch cfg.OrdersBackend {
	case "memory":
		repo = order.NewMemoryRepository()
		log.Printf("Using in-memory order store")
	default:
		db, err := order.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer db.Client().Disconnect(ctx)
		repo = order.NewMongoRepository(db)
		log.Printf("Connected to MongoDB at %s", cfg.MongoURI)
	}

	// Catalog
	products, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer products.Close()
	if err := products.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}

	// Seller decision consumer and order-placed publisher
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()

	var publisher order.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewPublisher(cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		consumer := events.NewDecisionConsumer(repo, cfg.KafkaBrokers...)
		defer consumer.Close()
		go consumer.Run(consumerCtx)
		log.Printf("Kafka wired at %v", cfg.KafkaBrokers)
	} else {
		log.Printf("KAFKA_BROKERS not set, seller decisions disabled")
	}

	submitter := order.NewSubmitter(cartStore, repo, publisher)
	feed := order.NewFeed(repo)

	sessions := auth.NewSessionStore()

	cartHandler := h.NewCartHandler(cartStore, products, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(submitter, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(repo, feed, cfg.RequestTimeout)
	productsHandler := h.NewProductsHandler(products, cfg.RequestTimeout)
	authHandler := h.NewAuthHandler(sessions)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(h.AuthMiddleware(sessions))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Get("/products", productsHandler.List)
		r.Post("/checkout", checkoutHandler.Checkout)
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/stream", ordersHandler.StreamOrders)
		})
		r.Post("/auth/signout", authHandler.SignOut)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: otelhttp.NewHandler(r, "storefront"),
	}

	go func() {
		log.Printf("Storefront listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down storefront...")
	stopConsumer()
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	log.Println("Storefront stopped")
}
