package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tradepilot/internal/domain"
	"tradepilot/internal/ledger"
	"tradepilot/internal/metrics"
	"tradepilot/internal/ports"
	"tradepilot/internal/pricing"
	"tradepilot/internal/report"
	"tradepilot/internal/signal"
)

const defaultMarketDataTimeout = 10 * time.Second

// Config holds the request-independent parameters of the trading service.
type Config struct {
	DefaultMode       domain.Mode   // mode used when a request does not name one
	DefaultSymbol     string        // symbol used when a request omits one
	DefaultAmount     float64       // amount used when a request omits one
	AccountRef        string        // default account for portfolio queries
	OrderBookDepth    int           // levels fetched per side for analysis
	MarketDataTimeout time.Duration // deadline for market-data collaborator calls
}

// TradingService orchestrates the price oracle, the portfolio ledger, and the
// signal engine to process trade, analysis, and portfolio requests end to end.
type TradingService struct {
	cfg      Config
	logger   ports.Logger
	oracle   *pricing.Oracle
	ledger   *ledger.Ledger
	signals  *signal.Engine
	reporter *report.Reporter

	// Collaborators. All optional: a paper-only deployment wires none of them.
	market   ports.MarketDataSource
	orders   ports.OrderPlacer
	accounts ports.AccountSource
	journal  ports.TradeJournal
}

// Collaborators groups the optional external dependencies of the service.
type Collaborators struct {
	Market   ports.MarketDataSource
	Orders   ports.OrderPlacer
	Accounts ports.AccountSource
	Journal  ports.TradeJournal
}

// NewTradingService creates the application service.
func NewTradingService(
	cfg Config,
	logger ports.Logger,
	oracle *pricing.Oracle,
	ldgr *ledger.Ledger,
	signals *signal.Engine,
	collab Collaborators,
) (*TradingService, error) {
	if logger == nil || oracle == nil || ldgr == nil || signals == nil {
		return nil, fmt.Errorf("missing required dependencies for TradingService")
	}
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = domain.ModePaper
	}
	if cfg.DefaultMode != domain.ModePaper && cfg.DefaultMode != domain.ModeLive {
		return nil, fmt.Errorf("%w: default mode %q", ports.ErrUnsupportedMode, cfg.DefaultMode)
	}
	if cfg.DefaultSymbol == "" {
		cfg.DefaultSymbol = "ETH"
	}
	if cfg.DefaultAmount <= 0 {
		cfg.DefaultAmount = 1.0
	}
	if cfg.OrderBookDepth <= 0 {
		cfg.OrderBookDepth = 10
	}
	if cfg.MarketDataTimeout <= 0 {
		cfg.MarketDataTimeout = defaultMarketDataTimeout
	}

	return &TradingService{
		cfg:      cfg,
		logger:   logger,
		oracle:   oracle,
		ledger:   ldgr,
		signals:  signals,
		reporter: report.New(),
		market:   collab.Market,
		orders:   collab.Orders,
		accounts: collab.Accounts,
		journal:  collab.Journal,
	}, nil
}

// marketContext bounds collaborator calls. On timeout the request fails; a
// trade never commits partially.
func (s *TradingService) marketContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.MarketDataTimeout)
}

// ExecuteTrade processes one trade request end to end: resolve the price,
// apply the trade to the ledger, and stamp the record. Price resolution errors
// propagate — a trade is never filled against a defaulted price. The ledger is
// mutated only when the trade fills.
func (s *TradingService) ExecuteTrade(ctx context.Context, req domain.TradeRequest, mode domain.Mode) (*domain.TradeRecord, error) {
	op := "ExecuteTrade"

	symbol := domain.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ports.ErrInvalidRequest)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ports.ErrInvalidRequest)
	}

	priceCtx, cancel := s.marketContext(ctx)
	defer cancel()
	price, err := s.oracle.Price(priceCtx, symbol, mode)
	if err != nil {
		s.logger.Error(ctx, err, op+": price resolution failed", map[string]interface{}{"symbol": symbol, "mode": mode})
		return nil, err
	}

	status, reason := s.ledger.ApplyTrade(req.Action, symbol, req.Amount, price)

	if status == domain.StatusFilled && mode == domain.ModeLive {
		if err := s.placeLiveOrder(ctx, req.Action, symbol, req.Amount); err != nil {
			// Best-effort compensation: the revert runs outside the ApplyTrade
			// critical section, so a concurrent trade may already have consumed
			// the credited asset. In that case the revert fails and the later
			// trade's state stands.
			if revertErr := s.ledger.Revert(req.Action, symbol, req.Amount, price); revertErr != nil {
				s.logger.Error(ctx, revertErr, op+": ledger revert failed after order placement failure", map[string]interface{}{"symbol": symbol})
			}
			return nil, err
		}
	}

	record := &domain.TradeRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    req.Action,
		Symbol:    symbol,
		Amount:    req.Amount,
		Price:     price,
		Value:     req.Amount * price,
		Mode:      mode,
		Status:    status,
		Reason:    reason,
	}

	// The journal is observability, not the source of truth: a failed append
	// is logged and the trade result stands.
	if s.journal != nil {
		if err := s.journal.Append(ctx, record); err != nil {
			s.logger.Warn(ctx, op+": failed to append trade record to journal", map[string]interface{}{"tradeID": record.ID, "error": err.Error()})
		}
	}

	metrics.TradesTotal.WithLabelValues(string(mode), string(status)).Inc()
	s.logger.Info(ctx, op+": trade processed", map[string]interface{}{
		"tradeID": record.ID,
		"action":  record.Action,
		"symbol":  record.Symbol,
		"status":  record.Status,
		"price":   record.Price,
		"mode":    record.Mode,
	})
	return record, nil
}

// placeLiveOrder submits a market order through the order-placement
// collaborator after the ledger accepted the trade.
func (s *TradingService) placeLiveOrder(ctx context.Context, action domain.Action, symbol string, amount float64) error {
	op := "placeLiveOrder"
	if s.orders == nil {
		return fmt.Errorf("%w: live trading requested but no order placer is wired", ports.ErrConfigurationError)
	}

	order := domain.Order{
		Symbol:   symbol,
		Side:     action,
		Type:     domain.OrderTypeMarket,
		Quantity: amount,
	}

	orderCtx, cancel := s.marketContext(ctx)
	defer cancel()
	orderID, err := s.orders.PlaceOrder(orderCtx, order, s.cfg.AccountRef)
	if err != nil {
		s.logger.Error(ctx, err, op+": order placement failed", map[string]interface{}{"symbol": symbol, "side": action})
		return fmt.Errorf("%w: %w", ports.ErrOrderPlacementFailed, err)
	}

	s.logger.Info(ctx, op+": order placed", map[string]interface{}{"symbol": symbol, "side": action, "orderID": orderID})
	return nil
}

// Analyze produces a market analysis for the symbol. Paper mode synthesizes a
// flat snapshot around the deterministic price (momentum 0.5, zero spread), so
// analysis works with no external dependency; live mode pulls the snapshot and
// order book from the market-data collaborator.
func (s *TradingService) Analyze(ctx context.Context, symbol string, mode domain.Mode) (domain.MarketAnalysis, error) {
	op := "Analyze"

	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return domain.MarketAnalysis{}, fmt.Errorf("%w: symbol is required", ports.ErrInvalidRequest)
	}

	var (
		snapshot domain.MarketSnapshot
		book     domain.OrderBook
	)

	switch mode {
	case domain.ModePaper:
		price := pricing.PaperPrice(symbol)
		snapshot = domain.MarketSnapshot{
			Symbol:    symbol,
			MarkPrice: price,
			High24h:   price,
			Low24h:    price,
			BestBid:   price,
			BestAsk:   price,
			Timestamp: time.Now().UTC(),
		}

	case domain.ModeLive:
		if s.market == nil {
			return domain.MarketAnalysis{}, fmt.Errorf("%w: live analysis requested but no market-data source is wired", ports.ErrUnsupportedMode)
		}
		marketCtx, cancel := s.marketContext(ctx)
		defer cancel()

		var err error
		snapshot, err = s.market.GetMarketSnapshot(marketCtx, symbol)
		if err != nil {
			s.logger.Error(ctx, err, op+": market snapshot failed", map[string]interface{}{"symbol": symbol})
			return domain.MarketAnalysis{}, err
		}
		book, err = s.market.GetOrderBook(marketCtx, symbol, s.cfg.OrderBookDepth)
		if err != nil {
			s.logger.Error(ctx, err, op+": order book fetch failed", map[string]interface{}{"symbol": symbol})
			return domain.MarketAnalysis{}, err
		}

	default:
		return domain.MarketAnalysis{}, fmt.Errorf("%w: %q", ports.ErrUnsupportedMode, mode)
	}

	analysis := s.signals.Analyze(snapshot, book)
	metrics.AnalysesTotal.WithLabelValues(string(mode)).Inc()
	s.logger.Info(ctx, op+": analysis complete", map[string]interface{}{
		"symbol":         symbol,
		"mode":           mode,
		"recommendation": analysis.Recommendation,
	})
	return analysis, nil
}

// PortfolioSummary fetches external account state and projects it into a
// risk-annotated summary.
func (s *TradingService) PortfolioSummary(ctx context.Context, accountRef string) (domain.AccountSummary, error) {
	op := "PortfolioSummary"
	if s.accounts == nil {
		return domain.AccountSummary{}, fmt.Errorf("%w: no account source is wired", ports.ErrConfigurationError)
	}
	if accountRef == "" {
		accountRef = s.cfg.AccountRef
	}
	if accountRef == "" {
		return domain.AccountSummary{}, fmt.Errorf("%w: account reference is required", ports.ErrInvalidRequest)
	}

	accountCtx, cancel := s.marketContext(ctx)
	defer cancel()
	state, err := s.accounts.GetAccountInfo(accountCtx, accountRef)
	if err != nil {
		s.logger.Error(ctx, err, op+": account info fetch failed", map[string]interface{}{"accountRef": accountRef})
		return domain.AccountSummary{}, err
	}

	return s.reporter.Summarize(state), nil
}

// Portfolio returns a copy of the current ledger balances.
func (s *TradingService) Portfolio() domain.Portfolio {
	return s.ledger.Snapshot()
}

// AvailableSymbols lists the symbols the market-data collaborator can serve.
func (s *TradingService) AvailableSymbols(ctx context.Context) ([]string, error) {
	if s.market == nil {
		return nil, fmt.Errorf("%w: no market-data source is wired", ports.ErrConfigurationError)
	}
	marketCtx, cancel := s.marketContext(ctx)
	defer cancel()
	return s.market.GetAvailableSymbols(marketCtx)
}

// RecentTrades returns up to limit journal records, newest first.
func (s *TradingService) RecentTrades(ctx context.Context, limit int) ([]*domain.TradeRecord, error) {
	if s.journal == nil {
		return nil, fmt.Errorf("%w: no trade journal is wired", ports.ErrConfigurationError)
	}
	return s.journal.Recent(ctx, limit)
}

// MarketConfigured reports whether a market-data collaborator is wired.
func (s *TradingService) MarketConfigured() bool {
	return s.market != nil
}

// MarketConnected reports whether the market-data collaborator answers.
func (s *TradingService) MarketConnected(ctx context.Context) bool {
	if s.market == nil {
		return false
	}
	symbols, err := s.AvailableSymbols(ctx)
	return err == nil && len(symbols) > 0
}
