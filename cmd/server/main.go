package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paper-trading-go/internal/config"
	"paper-trading-go/internal/database"
	"paper-trading-go/internal/logger"
	"paper-trading-go/internal/store"
	"paper-trading-go/internal/trading"
	"paper-trading-go/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Pick the account store: database-backed when a DSN is configured,
	// in-memory practice mode otherwise.
	var accounts store.AccountStore
	if cfg.Database.DSN != "" {
		db, err := database.NewDatabase(cfg.Database.DSN)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		accounts = store.NewGormStore(db)
		log.Info("Database connection successful and schema migrated.")
	} else {
		accounts = store.NewMemoryStore()
		log.Warn("No database DSN configured, running with in-memory accounts (practice mode)")
	}

	// Initialize the Yahoo Finance quote client
	quotes := yahoo.NewQuoteClient(&cfg.Yahoo, log.Named("yahoo"))

	initialBalance := decimal.NewFromFloat(cfg.Trading.InitialBalance)
	service := trading.NewService(log.Named("trading"), accounts, quotes, initialBalance)

	// Setup HTTP server
	mux := http.NewServeMux()
	apiHandler := NewAPIHandler(log.Named("api"), service)
	apiHandler.Register(mux)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	go func() {
		log.Info("Starting web server", zap.String("address", addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	log.Info("Server has been shut down.")
}
