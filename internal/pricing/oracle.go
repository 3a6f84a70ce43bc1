package pricing

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"

	"tradepilot/internal/domain"
	"tradepilot/internal/ports"
)

// Oracle resolves a symbol to a current price using one of two interchangeable
// strategies: deterministic paper simulation, or delegation to the market-data
// collaborator for the live mark price.
type Oracle struct {
	market ports.MarketDataSource // nil when only paper mode is wired
	logger ports.Logger
}

// Config holds the Oracle's dependencies.
type Config struct {
	Market ports.MarketDataSource // optional, required only for live pricing
	Logger ports.Logger
}

// New creates a price oracle.
func New(cfg Config) (*Oracle, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for price oracle")
	}
	return &Oracle{market: cfg.Market, logger: cfg.Logger}, nil
}

// Price resolves the current price for symbol under the given mode.
// Live pricing never silently falls back to the paper price: any market-data
// failure is surfaced to the caller.
func (o *Oracle) Price(ctx context.Context, symbol string, mode domain.Mode) (float64, error) {
	switch mode {
	case domain.ModePaper:
		return PaperPrice(symbol), nil
	case domain.ModeLive:
		if o.market == nil {
			return 0, fmt.Errorf("%w: live pricing requested but no market-data source is wired", ports.ErrUnsupportedMode)
		}
		snapshot, err := o.market.GetMarketSnapshot(ctx, symbol)
		if err != nil {
			if !errors.Is(err, ports.ErrMarketDataUnavailable) {
				err = fmt.Errorf("%w: %w", ports.ErrMarketDataUnavailable, err)
			}
			o.logger.Error(ctx, err, "live price resolution failed", map[string]interface{}{"symbol": symbol})
			return 0, err
		}
		return snapshot.MarkPrice, nil
	default:
		return 0, fmt.Errorf("%w: %q", ports.ErrUnsupportedMode, mode)
	}
}

// PaperPrice derives a deterministic simulated price from the symbol alone:
// same symbol, same price, on every run and platform. The mapping is pinned to
// MD5 so it stays stable across builds: the first four bytes of the digest of
// the normalized symbol, read big-endian, are reduced into [0.01, 99.99] with
// two-decimal precision.
func PaperPrice(symbol string) float64 {
	sum := md5.Sum([]byte(domain.NormalizeSymbol(symbol)))
	seed := binary.BigEndian.Uint32(sum[:4])
	price := float64(seed%10000) / 100
	if price < 0.01 {
		price = 0.01
	}
	return price
}
