package signal

import (
	"fmt"

	"tradepilot/internal/domain"
)

// Default thresholds for the recommendation policy.
const (
	DefaultBuyMomentum  = 0.7
	DefaultSellMomentum = 0.3
	DefaultSpreadRatio  = 0.001
)

// Config holds the tunable thresholds of the signal engine.
type Config struct {
	BuyMomentum  float64 // momentum strictly above this may trigger BUY
	SellMomentum float64 // momentum strictly below this may trigger SELL
	SpreadRatio  float64 // spread must be strictly below markPrice*ratio to trade
}

// Engine derives trading recommendations from momentum and spread.
// It is read-only and side-effect-free; one instance may serve any number of
// concurrent callers.
type Engine struct {
	cfg Config
}

// New creates a signal engine, applying defaults for zero-valued thresholds.
func New(cfg Config) (*Engine, error) {
	if cfg.BuyMomentum == 0 {
		cfg.BuyMomentum = DefaultBuyMomentum
	}
	if cfg.SellMomentum == 0 {
		cfg.SellMomentum = DefaultSellMomentum
	}
	if cfg.SpreadRatio == 0 {
		cfg.SpreadRatio = DefaultSpreadRatio
	}
	if cfg.BuyMomentum <= 0 || cfg.BuyMomentum >= 1 || cfg.SellMomentum <= 0 || cfg.SellMomentum >= 1 {
		return nil, fmt.Errorf("momentum thresholds must lie strictly between 0 and 1")
	}
	if cfg.SellMomentum >= cfg.BuyMomentum {
		return nil, fmt.Errorf("sell momentum threshold (%.2f) must be below buy threshold (%.2f)", cfg.SellMomentum, cfg.BuyMomentum)
	}
	if cfg.SpreadRatio <= 0 {
		return nil, fmt.Errorf("spread ratio must be positive")
	}
	return &Engine{cfg: cfg}, nil
}

// Recommend derives a signal from the current mark price, the top of the book,
// and the 24-hour range. A flat range (high == low) yields momentum 0.5 — no
// signal. Either empty book side falls back to the mark price. A wide spread
// always forces HOLD regardless of momentum: it is a liquidity gate, not a
// momentum override.
func (e *Engine) Recommend(markPrice, bestBid, bestAsk, high24h, low24h float64) domain.Signal {
	momentum := 0.5
	if high24h > low24h {
		momentum = (markPrice - low24h) / (high24h - low24h)
	}

	if bestBid <= 0 {
		bestBid = markPrice
	}
	if bestAsk <= 0 {
		bestAsk = markPrice
	}
	spread := bestAsk - bestBid

	recommendation := domain.RecommendHold
	tight := spread < markPrice*e.cfg.SpreadRatio
	switch {
	case momentum > e.cfg.BuyMomentum && tight:
		recommendation = domain.RecommendBuy
	case momentum < e.cfg.SellMomentum && tight:
		recommendation = domain.RecommendSell
	}

	return domain.Signal{
		MomentumScore:  momentum,
		Spread:         spread,
		Recommendation: recommendation,
	}
}

// Analyze assembles the full analysis payload for a snapshot and order book.
// The book's top level takes precedence over the snapshot's best bid/ask.
func (e *Engine) Analyze(snapshot domain.MarketSnapshot, book domain.OrderBook) domain.MarketAnalysis {
	bestBid := snapshot.BestBid
	bestAsk := snapshot.BestAsk
	if len(book.Bids) > 0 {
		bestBid = book.Bids[0].Price
	}
	if len(book.Asks) > 0 {
		bestAsk = book.Asks[0].Price
	}

	sig := e.Recommend(snapshot.MarkPrice, bestBid, bestAsk, snapshot.High24h, snapshot.Low24h)

	return domain.MarketAnalysis{
		Symbol:         snapshot.Symbol,
		MarkPrice:      snapshot.MarkPrice,
		BidAskSpread:   sig.Spread,
		MomentumScore:  sig.MomentumScore,
		Volume24h:      snapshot.Volume24h,
		OpenInterest:   snapshot.OpenInterest,
		FundingRate:    snapshot.FundingRate,
		Recommendation: sig.Recommendation,
		Timestamp:      snapshot.Timestamp,
	}
}
