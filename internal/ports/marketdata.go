package ports

import (
	"context"

	"tradepilot/internal/domain"
)

// MarketDataSource is the narrow contract to the market-data collaborator.
// The core never talks to an exchange API directly; live pricing and analysis
// go through this interface.
type MarketDataSource interface {
	// GetMarketSnapshot returns the current market view for a symbol.
	// Fails with ErrMarketDataUnavailable when the symbol cannot be resolved.
	GetMarketSnapshot(ctx context.Context, symbol string) (domain.MarketSnapshot, error)

	// GetOrderBook returns up to depth levels per side, best first.
	GetOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error)

	// GetAvailableSymbols lists the symbols the collaborator can serve.
	GetAvailableSymbols(ctx context.Context) ([]string, error)
}

// OrderPlacer submits orders to the exchange. Used in live mode only.
type OrderPlacer interface {
	// PlaceOrder submits an order for the referenced account and returns the
	// exchange's order ID.
	PlaceOrder(ctx context.Context, order domain.Order, accountRef string) (string, error)
}

// AccountSource exposes external account state for portfolio reporting.
type AccountSource interface {
	GetAccountInfo(ctx context.Context, accountRef string) (domain.AccountState, error)
}
