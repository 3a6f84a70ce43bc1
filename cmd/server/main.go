package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradepilot/config"
	"tradepilot/internal/adapters/binanceclient"
	"tradepilot/internal/adapters/httpserver"
	"tradepilot/internal/adapters/logger"
	"tradepilot/internal/adapters/sqlite"
	"tradepilot/internal/app"
	"tradepilot/internal/ledger"
	"tradepilot/internal/metrics"
	"tradepilot/internal/pricing"
	tradesignal "tradepilot/internal/signal"
)

// main runs the trading service behind an HTTP API until SIGINT or SIGTERM.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	ctx := context.Background()

	var collab app.Collaborators
	if cfg.LiveConfigured() {
		client, err := binanceclient.New(binanceclient.Config{
			APIKey:     cfg.APIKey,
			SecretKey:  cfg.SecretKey,
			UseTestnet: cfg.IsTestnet,
			Logger:     appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
			log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
		}
		collab.Market = client
		collab.Orders = client
		collab.Accounts = client
	}

	journal, err := sqlite.NewJournal(sqlite.Config{DSN: cfg.JournalDSN, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trade journal")
		log.Fatalf("FATAL: Failed to initialize trade journal: %v", err)
	}
	defer journal.Close()
	collab.Journal = journal

	oracle, err := pricing.New(pricing.Config{Market: collab.Market, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize price oracle: %v", err)
	}
	book, err := ledger.New(cfg.QuoteAsset, cfg.StartingBalance)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize portfolio ledger: %v", err)
	}
	signals, err := tradesignal.New(tradesignal.Config{
		BuyMomentum:  cfg.SignalBuyMomentum,
		SellMomentum: cfg.SignalSellMomentum,
		SpreadRatio:  cfg.SignalSpreadRatio,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize signal engine: %v", err)
	}

	svc, err := app.NewTradingService(app.Config{
		DefaultMode:       cfg.DefaultMode,
		DefaultSymbol:     cfg.DefaultSymbol,
		DefaultAmount:     cfg.DefaultAmount,
		AccountRef:        cfg.AccountRef,
		OrderBookDepth:    cfg.OrderBookDepth,
		MarketDataTimeout: cfg.MarketDataTimeout,
	}, appLogger, oracle, book, signals, collab)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trading service")
		log.Fatalf("FATAL: Failed to initialize trading service: %v", err)
	}

	srv, err := httpserver.New(httpserver.Config{Port: cfg.HTTPPort, Logger: appLogger, Service: svc})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize HTTP server")
		log.Fatalf("FATAL: Failed to initialize HTTP server: %v", err)
	}

	var metricsSrv interface{ Shutdown(context.Context) error }
	if cfg.MetricsAddr != "" {
		metricsSrv = metrics.Serve(cfg.MetricsAddr)
		appLogger.Info(ctx, "Metrics listener started", map[string]interface{}{"addr": cfg.MetricsAddr})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLogger.Info(ctx, "Shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			appLogger.Error(ctx, err, "HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(ctx, err, "HTTP server shutdown failed")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	appLogger.Info(ctx, "Shutdown complete", nil)
}
