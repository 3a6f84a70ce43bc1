package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tradepilot/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (used only when live mode is in play)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Trading Parameters
	DefaultMode     domain.Mode
	DefaultSymbol   string
	DefaultAmount   float64
	QuoteAsset      string
	StartingBalance float64
	AccountRef      string

	// Signal Thresholds
	SignalBuyMomentum  float64
	SignalSellMomentum float64
	SignalSpreadRatio  float64

	// Trade Journal
	JournalDSN string // ":memory:" keeps records in-process only

	// HTTP
	HTTPPort    int
	MetricsAddr string // empty disables the metrics listener

	// Logging
	LogLevel string

	// Collaborator boundary
	MarketDataTimeout time.Duration
	OrderBookDepth    int
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	// Trading Parameters
	modeStr := strings.ToLower(getEnv("TRADING_MODE", string(domain.ModePaper)))
	switch modeStr {
	case string(domain.ModePaper):
		cfg.DefaultMode = domain.ModePaper
	case string(domain.ModeLive):
		cfg.DefaultMode = domain.ModeLive
	default:
		errs = append(errs, fmt.Sprintf("TRADING_MODE must be %q or %q, got %q", domain.ModePaper, domain.ModeLive, modeStr))
	}

	// Live order placement is authenticated; refuse to start in live mode
	// without keys instead of inheriting an unauthenticated stub.
	if cfg.DefaultMode == domain.ModeLive && (cfg.APIKey == "" || cfg.SecretKey == "") {
		errs = append(errs, "BINANCE_API_KEY and BINANCE_API_SECRET must be set when TRADING_MODE is live")
	}

	cfg.DefaultSymbol = domain.NormalizeSymbol(getEnv("SYMBOL", "ETH"))
	if cfg.DefaultSymbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.DefaultAmount, err = getEnvAsFloatRequired("DEFAULT_AMOUNT", 1.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid DEFAULT_AMOUNT: %v", err))
	} else if cfg.DefaultAmount <= 0 {
		errs = append(errs, "DEFAULT_AMOUNT must be positive")
	}

	cfg.QuoteAsset = domain.NormalizeSymbol(getEnv("QUOTE_ASSET", "USDC"))
	if cfg.QuoteAsset == "" {
		errs = append(errs, "QUOTE_ASSET must be set")
	}

	cfg.StartingBalance, err = getEnvAsFloatRequired("STARTING_BALANCE", 10000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STARTING_BALANCE: %v", err))
	} else if cfg.StartingBalance < 0 {
		errs = append(errs, "STARTING_BALANCE cannot be negative")
	}

	cfg.AccountRef = getEnv("ACCOUNT_REF", "")

	// Signal Thresholds (using defaults if not set)
	cfg.SignalBuyMomentum = getEnvAsFloat("SIGNAL_BUY_MOMENTUM", 0.7)
	cfg.SignalSellMomentum = getEnvAsFloat("SIGNAL_SELL_MOMENTUM", 0.3)
	cfg.SignalSpreadRatio = getEnvAsFloat("SIGNAL_SPREAD_RATIO", 0.001)
	if cfg.SignalBuyMomentum <= 0 || cfg.SignalBuyMomentum >= 1 || cfg.SignalSellMomentum <= 0 || cfg.SignalSellMomentum >= 1 {
		errs = append(errs, "signal momentum thresholds must lie strictly between 0 and 1")
	}
	if cfg.SignalSellMomentum >= cfg.SignalBuyMomentum {
		errs = append(errs, "SIGNAL_SELL_MOMENTUM must be less than SIGNAL_BUY_MOMENTUM")
	}
	if cfg.SignalSpreadRatio <= 0 {
		errs = append(errs, "SIGNAL_SPREAD_RATIO must be positive")
	}

	// Trade Journal
	cfg.JournalDSN = getEnv("JOURNAL_DSN", ":memory:")

	// HTTP
	cfg.HTTPPort = getEnvAsInt("HTTP_PORT", 8080)
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		errs = append(errs, "HTTP_PORT must be a valid port number")
	}
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// Collaborator boundary
	timeoutSeconds := getEnvAsInt("MARKET_DATA_TIMEOUT_SECONDS", 10)
	if timeoutSeconds <= 0 {
		errs = append(errs, "MARKET_DATA_TIMEOUT_SECONDS must be positive")
	}
	cfg.MarketDataTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.OrderBookDepth = getEnvAsInt("ORDER_BOOK_DEPTH", 10)
	if cfg.OrderBookDepth <= 0 {
		errs = append(errs, "ORDER_BOOK_DEPTH must be positive")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// LiveConfigured reports whether exchange credentials are present, i.e. the
// live collaborators can be wired at all.
func (c *Config) LiveConfigured() bool {
	return c.APIKey != "" && c.SecretKey != ""
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
