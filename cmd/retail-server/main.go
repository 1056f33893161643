package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/avolkov/go_retail/internal/cache"
	"github.com/avolkov/go_retail/internal/cart"
	"github.com/avolkov/go_retail/internal/catalog"
	"github.com/avolkov/go_retail/internal/checkout"
	"github.com/avolkov/go_retail/internal/domain"
	"github.com/avolkov/go_retail/internal/httpapi"
	"github.com/avolkov/go_retail/internal/order"
	"github.com/avolkov/go_retail/internal/payment"
	"github.com/avolkov/go_retail/internal/publisher"
	"github.com/avolkov/go_retail/internal/repository"
	"github.com/avolkov/go_retail/pkg/metrics"
)

type Config struct {
	HTTPPort string

	// empty addresses disable the corresponding backend and fall back to
	// the in-process implementation
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDBName   string
	PostgresHost  string
	PostgresPort  int
	PostgresUser  string
	PostgresPass  string
	PostgresDB    string
	MigrationsDir string
	KafkaBrokers  string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		log.Fatalf("invalid POSTGRES_PORT: %v", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDBName:     getEnv("MONGO_DB_NAME", "retaildb"),
		PostgresHost:    getEnv("POSTGRES_HOST", ""),
		PostgresPort:    pgPort,
		PostgresUser:    getEnv("POSTGRES_USER", "postgres"),
		PostgresPass:    getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:      getEnv("POSTGRES_DB", "retaildb"),
		MigrationsDir:   getEnv("MIGRATIONS_DIR", "internal/repository/migrations"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
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

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	cat := catalog.NewMemoryStore()
	persister := setupCatalog(ctx, cfg, cat)

	cartCache := setupCache(ctx, cfg)
	carts := cart.NewService(cart.NewMemoryRepository(), cat, cartCache)

	payments := payment.NewEngine(payment.LogDispatcher{})
	orders := order.NewEngine()

	store := setupStore(cfg)
	defer store.Close()
	seedCustomers(ctx, store)

	var events checkout.EventPublisher
	if cfg.KafkaBrokers != "" {
		kafkaEvents := publisher.NewOrderEvents(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaEvents.Close()
		events = kafkaEvents
		log.Printf("Publishing order events to %s", cfg.KafkaBrokers)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)
	serverMetrics := metrics.NewServerMetrics(registry)

	service := checkout.NewService(carts, cat, persister, payments, orders, store, events, checkoutMetrics)

	router := httpapi.NewRouter(httpapi.Handlers{
		Cart:     httpapi.NewCartHandler(carts, cfg.RequestTimeout),
		Catalog:  httpapi.NewCatalogHandler(cat),
		Checkout: httpapi.NewCheckoutHandler(service, cfg.RequestTimeout),
		Orders:   httpapi.NewOrdersHandler(service, store, cfg.RequestTimeout),
	}, serverMetrics, metrics.Handler(registry), cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "retail-server"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Retail server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	// park the final catalog state so the next start resumes from it
	if persister != nil {
		if err := persister.Save(ctx, cat.Snapshot()); err != nil {
			log.Printf("failed to persist catalog on shutdown: %v", err)
		}
	}

	log.Println("server exited")
}

// setupCatalog fills the in-memory catalog either from MongoDB or, when no
// URI is configured, with the demo inventory.
func setupCatalog(ctx context.Context, cfg *Config, cat *catalog.MemoryStore) catalog.Persister {
	if cfg.MongoURI == "" {
		seedCatalog(cat)
		log.Println("No MONGO_URI configured, catalog seeded with demo inventory")
		return nil
	}

	db, err := catalog.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	persister := catalog.NewMongoPersister(db)

	products, err := persister.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load catalog from MongoDB: %v", err)
	}
	if len(products) == 0 {
		seedCatalog(cat)
		log.Println("Empty catalog collection, seeded demo inventory")
		return persister
	}

	for _, p := range products {
		cat.Upsert(p)
	}
	log.Printf("Loaded %d products from MongoDB", len(products))
	return persister
}

func seedCatalog(cat *catalog.MemoryStore) {
	cat.Upsert(domain.Product{ID: 1, Name: "ThinkBook 14", Kind: domain.KindLaptop, UnitCost: 520, Price: 749.99, Stock: 10})
	cat.Upsert(domain.Product{ID: 2, Name: "MX Vertical", Kind: domain.KindMouse, UnitCost: 38, Price: 89.99, Stock: 40})
	cat.Upsert(domain.Product{ID: 3, Name: "USB-C Dock", Kind: domain.KindAccessory, UnitCost: 61, Price: 129.99, Stock: 25})
}

// seedCustomers bootstraps the demo accounts the mock auth layer hands
// out. Existing records are left alone so order history survives restarts.
func seedCustomers(ctx context.Context, store repository.Store) {
	demo := []*domain.Customer{
		{ID: "cust-1", Name: "Ada Lovelace", Contact: "ada@example.com", Role: domain.RoleCustomer, Address: "1 Analytical Way", CreatedAt: time.Now()},
		{ID: "cust-2", Name: "Grace Hopper", Contact: "grace@example.com", Role: domain.RoleCustomer, Address: "7 Harbor St", CreatedAt: time.Now()},
		{ID: "admin-1", Name: "Store Admin", Contact: "admin@example.com", Role: domain.RoleAdmin, Address: "HQ", CreatedAt: time.Now()},
	}

	for _, c := range demo {
		if _, err := store.GetCustomerByID(ctx, c.ID); err == nil {
			continue
		}
		if err := store.SaveCustomer(ctx, c); err != nil {
			log.Fatalf("Failed to seed customer %s: %v", c.ID, err)
		}
	}
	log.Printf("Demo customers available: cust-1, cust-2, admin-1")
}

func setupCache(ctx context.Context, cfg *Config) cache.CartCache {
	if cfg.RedisAddr == "" {
		log.Println("No REDIS_ADDR configured, cart cache disabled")
		return cache.Noop{}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Connected to Redis at %s", cfg.RedisAddr)
	return cache.NewRedisCache(redisClient)
}

func setupStore(cfg *Config) repository.Store {
	if cfg.PostgresHost == "" {
		log.Println("No POSTGRES_HOST configured, using in-memory store")
		return repository.NewMemoryStore()
	}

	cred := &repository.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPass,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsDir,
	}
	repo, err := repository.NewRepository(cred)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	if err := repo.RunMigrations(cred); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Connected to PostgreSQL at %s:%d", cfg.PostgresHost, cfg.PostgresPort)
	return repo
}
