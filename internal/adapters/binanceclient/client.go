package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"

	"tradepilot/internal/domain"
	"tradepilot/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	// defaultQuantityPrecision is used when a symbol's precision is unknown.
	defaultQuantityPrecision = 3
)

// Client implements the ports.MarketDataSource, ports.OrderPlacer, and
// ports.AccountSource contracts using the go-binance futures library.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger

	precisionMu       sync.Mutex
	quantityPrecision map[string]int // per-symbol, from exchange info
}

// Config holds configuration specific to the Binance adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
}

// New creates a new Binance adapter. API keys are optional for market data but
// required for order placement and account queries.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance client configured for Testnet", map[string]interface{}{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance client configured for Production", map[string]interface{}{"baseURL": client.BaseURL})
	}

	return &Client{futuresClient: client, logger: cfg.Logger}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Invalid signature
			mappedErr = ports.ErrAuthenticationFailed
		case -1121: // Invalid symbol
			mappedErr = ports.ErrSymbolNotFound
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111: // Parameter errors
			mappedErr = ports.ErrInvalidRequest
		case -2010: // New order rejected
			mappedErr = ports.ErrOrderPlacementFailed
		case -2014, -2015: // Invalid API key or permissions
			mappedErr = ports.ErrAuthenticationFailed
		default:
			mappedErr = ports.ErrExchangeUnavailable
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrExchangeUnavailable, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// marketDataError wraps an adapter error so callers can classify it with the
// ErrMarketDataUnavailable sentinel.
func marketDataError(err error) error {
	if err == nil || errors.Is(err, ports.ErrMarketDataUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ports.ErrMarketDataUnavailable, err)
}

// GetMarketSnapshot assembles the current market view for a symbol from the
// premium index (mark price, funding), the 24h ticker stats, the book ticker,
// and open interest.
func (c *Client) GetMarketSnapshot(ctx context.Context, symbol string) (domain.MarketSnapshot, error) {
	op := "GetMarketSnapshot"
	symbol = domain.NormalizeSymbol(symbol)

	premiums, err := c.futuresClient.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return domain.MarketSnapshot{}, marketDataError(c.handleError(ctx, err, op))
	}
	if len(premiums) == 0 {
		err := fmt.Errorf("no premium index data returned for symbol %s", symbol)
		return domain.MarketSnapshot{}, marketDataError(c.handleError(ctx, err, op))
	}
	premium := premiums[0]

	markPrice, err := strconv.ParseFloat(premium.MarkPrice, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse mark price '%s': %w", premium.MarkPrice, err)
		return domain.MarketSnapshot{}, marketDataError(c.handleError(ctx, parseErr, op))
	}
	fundingRate, _ := strconv.ParseFloat(premium.LastFundingRate, 64)

	stats, err := c.futuresClient.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return domain.MarketSnapshot{}, marketDataError(c.handleError(ctx, err, op))
	}
	if len(stats) == 0 {
		err := fmt.Errorf("no 24h ticker stats returned for symbol %s", symbol)
		return domain.MarketSnapshot{}, marketDataError(c.handleError(ctx, err, op))
	}
	high24h, _ := strconv.ParseFloat(stats[0].HighPrice, 64)
	low24h, _ := strconv.ParseFloat(stats[0].LowPrice, 64)
	volume24h, _ := strconv.ParseFloat(stats[0].Volume, 64)

	var bestBid, bestAsk float64
	if tickers, err := c.futuresClient.NewListBookTickersService().Symbol(symbol).Do(ctx); err != nil {
		// Non-fatal: the signal engine falls back to the mark price when the
		// top of book is missing.
		c.logger.Warn(ctx, op+": book ticker unavailable", map[string]interface{}{"symbol": symbol, "error": err.Error()})
	} else if len(tickers) > 0 {
		bestBid, _ = strconv.ParseFloat(tickers[0].BidPrice, 64)
		bestAsk, _ = strconv.ParseFloat(tickers[0].AskPrice, 64)
	}

	var openInterest float64
	if oi, err := c.futuresClient.NewGetOpenInterestService().Symbol(symbol).Do(ctx); err != nil {
		c.logger.Warn(ctx, op+": open interest unavailable", map[string]interface{}{"symbol": symbol, "error": err.Error()})
	} else {
		openInterest, _ = strconv.ParseFloat(oi.OpenInterest, 64)
	}

	return domain.MarketSnapshot{
		Symbol:       symbol,
		MarkPrice:    markPrice,
		High24h:      high24h,
		Low24h:       low24h,
		Volume24h:    volume24h,
		OpenInterest: openInterest,
		FundingRate:  fundingRate,
		BestBid:      bestBid,
		BestAsk:      bestAsk,
		Timestamp:    time.UnixMilli(premium.Time),
	}, nil
}

// GetOrderBook retrieves up to depth levels per side, best first.
func (c *Client) GetOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error) {
	op := "GetOrderBook"
	symbol = domain.NormalizeSymbol(symbol)

	res, err := c.futuresClient.NewDepthService().Symbol(symbol).Limit(depth).Do(ctx)
	if err != nil {
		return domain.OrderBook{}, marketDataError(c.handleError(ctx, err, op))
	}

	book := domain.OrderBook{
		Bids: make([]domain.PriceLevel, 0, len(res.Bids)),
		Asks: make([]domain.PriceLevel, 0, len(res.Asks)),
	}
	for _, bid := range res.Bids {
		price, qty, err := parseLevel(bid.Price, bid.Quantity)
		if err != nil {
			return domain.OrderBook{}, marketDataError(c.handleError(ctx, err, op))
		}
		book.Bids = append(book.Bids, domain.PriceLevel{Price: price, Quantity: qty})
	}
	for _, ask := range res.Asks {
		price, qty, err := parseLevel(ask.Price, ask.Quantity)
		if err != nil {
			return domain.OrderBook{}, marketDataError(c.handleError(ctx, err, op))
		}
		book.Asks = append(book.Asks, domain.PriceLevel{Price: price, Quantity: qty})
	}
	return book, nil
}

// GetAvailableSymbols lists symbols currently open for trading.
func (c *Client) GetAvailableSymbols(ctx context.Context) ([]string, error) {
	op := "GetAvailableSymbols"
	info, err := c.futuresClient.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, marketDataError(c.handleError(ctx, err, op))
	}
	c.cacheQuantityPrecision(info.Symbols)

	symbols := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status == "TRADING" {
			symbols = append(symbols, s.Symbol)
		}
	}
	return symbols, nil
}

// PlaceOrder submits a market order. The Binance account is bound to the API
// keys, so accountRef is recorded for logging only.
func (c *Client) PlaceOrder(ctx context.Context, order domain.Order, accountRef string) (string, error) {
	op := "PlaceOrder"
	symbol := domain.NormalizeSymbol(order.Symbol)

	res, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(order.Side)).
		Type(futures.OrderTypeMarket).
		Quantity(formatQuantity(order.Quantity, c.quantityPrecisionFor(ctx, symbol))).
		Do(ctx)
	if err != nil {
		return "", c.handleError(ctx, err, op)
	}

	orderID := strconv.FormatInt(res.OrderID, 10)
	c.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol":     order.Symbol,
		"side":       order.Side,
		"quantity":   order.Quantity,
		"orderID":    orderID,
		"accountRef": accountRef,
		"status":     res.Status,
	})
	return orderID, nil
}

// GetAccountInfo retrieves the futures account state for portfolio reporting.
func (c *Client) GetAccountInfo(ctx context.Context, accountRef string) (domain.AccountState, error) {
	op := "GetAccountInfo"

	account, err := c.futuresClient.NewGetAccountService().Do(ctx)
	if err != nil {
		return domain.AccountState{}, c.handleError(ctx, err, op)
	}

	totalValue, _ := strconv.ParseFloat(account.TotalMarginBalance, 64)
	unrealizedPnl, _ := strconv.ParseFloat(account.TotalUnrealizedProfit, 64)
	availableBalance, _ := strconv.ParseFloat(account.AvailableBalance, 64)

	positions := make([]domain.Position, 0, len(account.Positions))
	for _, pos := range account.Positions {
		qty, _ := strconv.ParseFloat(pos.PositionAmt, 64)
		if qty == 0 {
			continue
		}
		entryPrice, _ := strconv.ParseFloat(pos.EntryPrice, 64)
		pnl, _ := strconv.ParseFloat(pos.UnrealizedProfit, 64)
		leverage, _ := strconv.Atoi(pos.Leverage)
		positions = append(positions, domain.Position{
			Symbol:        pos.Symbol,
			Quantity:      qty,
			EntryPrice:    entryPrice,
			UnrealizedPnl: pnl,
			Leverage:      leverage,
		})
	}

	return domain.AccountState{
		AccountRef:       accountRef,
		TotalValue:       totalValue,
		UnrealizedPnl:    unrealizedPnl,
		AvailableBalance: availableBalance,
		Positions:        positions,
		Timestamp:        time.Now().UTC(),
	}, nil
}

// --- helpers ---

func parseLevel(priceStr, qtyStr string) (float64, float64, error) {
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing level price '%s': %w", priceStr, err)
	}
	qty, err := strconv.ParseFloat(qtyStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing level quantity '%s': %w", qtyStr, err)
	}
	return price, qty, nil
}

// cacheQuantityPrecision remembers per-symbol quantity precision from an
// exchange-info response.
func (c *Client) cacheQuantityPrecision(symbols []futures.Symbol) {
	c.precisionMu.Lock()
	defer c.precisionMu.Unlock()
	if c.quantityPrecision == nil {
		c.quantityPrecision = make(map[string]int, len(symbols))
	}
	for _, s := range symbols {
		c.quantityPrecision[s.Symbol] = s.QuantityPrecision
	}
}

// quantityPrecisionFor returns the symbol's quantity precision, fetching
// exchange info on the first miss. Unknown symbols and fetch failures fall
// back to defaultQuantityPrecision.
func (c *Client) quantityPrecisionFor(ctx context.Context, symbol string) int {
	c.precisionMu.Lock()
	precision, ok := c.quantityPrecision[symbol]
	c.precisionMu.Unlock()
	if ok {
		return precision
	}

	info, err := c.futuresClient.NewExchangeInfoService().Do(ctx)
	if err != nil {
		c.logger.Warn(ctx, "exchange info unavailable, using default quantity precision", map[string]interface{}{
			"symbol": symbol, "error": err.Error(),
		})
		return defaultQuantityPrecision
	}
	c.cacheQuantityPrecision(info.Symbols)

	c.precisionMu.Lock()
	defer c.precisionMu.Unlock()
	if precision, ok := c.quantityPrecision[symbol]; ok {
		return precision
	}
	return defaultQuantityPrecision
}

// formatQuantity renders a quantity with the symbol's step precision.
func formatQuantity(quantity float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return strconv.FormatFloat(quantity, 'f', precision, 64)
}
