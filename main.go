package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"strings"

	"tradepilot/config"
	"tradepilot/internal/adapters/binanceclient"
	"tradepilot/internal/adapters/logger"
	"tradepilot/internal/adapters/sqlite"
	"tradepilot/internal/app"
	"tradepilot/internal/ledger"
	"tradepilot/internal/ports"
	"tradepilot/internal/pricing"
	"tradepilot/internal/signal"
)

// main reads one request envelope from stdin, processes it, and writes the
// result envelope to stdout. On a TTY (or empty/invalid input) a sample
// ANALYZE request is used so the binary can be demoed without piping.
func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel)
	ctx := context.Background()

	// 3. Wire collaborators (live adapters only when credentials exist)
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

	// 4. Build the core
	oracle, err := pricing.New(pricing.Config{Market: collab.Market, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize price oracle: %v", err)
	}
	book, err := ledger.New(cfg.QuoteAsset, cfg.StartingBalance)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize portfolio ledger: %v", err)
	}
	signals, err := signal.New(signal.Config{
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

	// 5. Read a request envelope and dispatch it
	req := readRequest(os.Stdin, appLogger)
	result := svc.HandleRequest(ctx, req)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stdout, `{"error": "Execution failed: %v", "confidence": 0.0}%s`, err, "\n")
		os.Exit(1)
	}
}

// demoRequest is used when no request arrives on stdin.
func demoRequest() app.Request {
	return app.Request{Action: "ANALYZE", Symbol: "ETH", Mode: "paper"}
}

// readRequest reads a JSON request envelope from in. A TTY, empty input, or
// invalid JSON falls back to the demo request with a note on stderr.
func readRequest(in *os.File, appLogger ports.Logger) app.Request {
	ctx := context.Background()

	if info, err := in.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
		fmt.Fprintln(os.Stderr, "[Demo mode - TTY detected, using sample ANALYZE input]")
		return demoRequest()
	}

	raw, err := io.ReadAll(in)
	if err != nil {
		appLogger.Warn(ctx, "failed to read stdin, using sample input", map[string]interface{}{"error": err.Error()})
		return demoRequest()
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		fmt.Fprintln(os.Stderr, "[Demo mode - empty stdin, using sample input]")
		return demoRequest()
	}

	var req app.Request
	if err := json.Unmarshal([]byte(trimmed), &req); err != nil {
		fmt.Fprintln(os.Stderr, "[Demo mode - invalid JSON, using sample input]")
		return demoRequest()
	}
	return req
}
