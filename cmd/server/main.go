package main

import (
	"context"   // Context for Redis operations and shutdown
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Process signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging

	"ledger_service/internal/api"    // API handlers and router
	"ledger_service/internal/auth"   // Authentication service
	"ledger_service/internal/config" // Configuration
	"ledger_service/internal/db"     // Database connection
	"ledger_service/internal/events" // Ledger event stream
	"ledger_service/internal/ledger" // Payment processing and cached reads
	"ledger_service/internal/store"  // Repositories
	"ledger_service/internal/utils"  // Token signer
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	log := setupLogger(cfg)    // Setup logger

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Connect to the database
	gdb, err := db.Open(cfg, log)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	rdb := connectRedis(cfg, log) // Optional Redis client

	signer, err := utils.NewTokenSigner(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to create token signer: %v", err)
	}

	users := store.NewUserRepository(gdb)
	publisher := events.NewPublisher(rdb)
	queries := ledger.NewQueries(store.NewAccountRepository(gdb), store.NewTransactionRepository(gdb), rdb)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.NewRouter(api.Deps{
		Auth:           auth.NewService(users, signer),
		Users:          users,
		Accounts:       queries,
		Transactions:   queries,
		Payments:       ledger.NewProcessor(gdb, cfg.TransactionSecret, rdb, publisher),
		Events:         publisher,
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		log.Fatalf("failed to set up router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.AppPort).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server exited")
}

// setupLogger configures the standard logrus logger from the configuration
func setupLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.IsProd {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// connectRedis returns a client when Redis is configured and reachable, nil otherwise.
// Without Redis the service skips caching and event publishing.
func connectRedis(cfg *config.Config, log *logrus.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, running without cache and event stream")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unreachable, running without cache and event stream")
		_ = client.Close()
		return nil
	}
	return client
}
