package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepilot/internal/domain"
)

func TestNew(t *testing.T) {
	t.Run("Zero config gets defaults", func(t *testing.T) {
		e, err := New(Config{})
		require.NoError(t, err)
		assert.Equal(t, DefaultBuyMomentum, e.cfg.BuyMomentum)
		assert.Equal(t, DefaultSellMomentum, e.cfg.SellMomentum)
		assert.Equal(t, DefaultSpreadRatio, e.cfg.SpreadRatio)
	})

	t.Run("Sell threshold must stay below buy", func(t *testing.T) {
		_, err := New(Config{BuyMomentum: 0.3, SellMomentum: 0.7})
		assert.Error(t, err)
	})

	t.Run("Thresholds outside unit interval", func(t *testing.T) {
		_, err := New(Config{BuyMomentum: 1.5, SellMomentum: 0.3})
		assert.Error(t, err)
	})

	t.Run("Negative spread ratio", func(t *testing.T) {
		_, err := New(Config{SpreadRatio: -0.1})
		assert.Error(t, err)
	})
}

func TestRecommend(t *testing.T) {
	e, err := New(Config{})
	require.NoError(t, err)

	tests := []struct {
		name      string
		markPrice float64
		bestBid   float64
		bestAsk   float64
		high24h   float64
		low24h    float64
		wantRec   domain.Recommendation
		wantMom   float64
	}{
		{
			name:      "High momentum tight spread is BUY",
			markPrice: 95, bestBid: 94.99, bestAsk: 95.0, high24h: 100, low24h: 50,
			wantRec: domain.RecommendBuy, wantMom: 0.9,
		},
		{
			name:      "Low momentum tight spread is SELL",
			markPrice: 55, bestBid: 54.99, bestAsk: 55.0, high24h: 100, low24h: 50,
			wantRec: domain.RecommendSell, wantMom: 0.1,
		},
		{
			name:      "Mid momentum is HOLD",
			markPrice: 75, bestBid: 74.99, bestAsk: 75.0, high24h: 100, low24h: 50,
			wantRec: domain.RecommendHold, wantMom: 0.5,
		},
		{
			name:      "Momentum exactly at buy threshold is HOLD",
			markPrice: 85, bestBid: 84.99, bestAsk: 85.0, high24h: 100, low24h: 50,
			wantRec: domain.RecommendHold, wantMom: 0.7,
		},
		{
			name:      "Momentum exactly at sell threshold is HOLD",
			markPrice: 65, bestBid: 64.99, bestAsk: 65.0, high24h: 100, low24h: 50,
			wantRec: domain.RecommendHold, wantMom: 0.3,
		},
		{
			name:      "Wide spread gates out a strong buy signal",
			markPrice: 95, bestBid: 94, bestAsk: 96, high24h: 100, low24h: 50,
			wantRec: domain.RecommendHold, wantMom: 0.9,
		},
		{
			name:      "Wide spread gates out a strong sell signal",
			markPrice: 55, bestBid: 54, bestAsk: 56, high24h: 100, low24h: 50,
			wantRec: domain.RecommendHold, wantMom: 0.1,
		},
		{
			name:      "Flat range yields neutral momentum",
			markPrice: 42, bestBid: 42, bestAsk: 42, high24h: 42, low24h: 42,
			wantRec: domain.RecommendHold, wantMom: 0.5,
		},
		{
			name:      "Inverted range yields neutral momentum",
			markPrice: 42, bestBid: 42, bestAsk: 42, high24h: 40, low24h: 50,
			wantRec: domain.RecommendHold, wantMom: 0.5,
		},
		{
			name:      "Missing book sides fall back to mark price",
			markPrice: 95, bestBid: 0, bestAsk: 0, high24h: 100, low24h: 50,
			wantRec: domain.RecommendBuy, wantMom: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := e.Recommend(tt.markPrice, tt.bestBid, tt.bestAsk, tt.high24h, tt.low24h)
			assert.Equal(t, tt.wantRec, sig.Recommendation)
			assert.InDelta(t, tt.wantMom, sig.MomentumScore, 1e-9)
		})
	}
}

func TestRecommend_SpreadBoundary(t *testing.T) {
	// Ratio 0.01 at mark 100 makes both spread (101-100) and threshold
	// (100*0.01) exactly 1.0 in float64, so the boundary case is exact.
	e, err := New(Config{SpreadRatio: 0.01})
	require.NoError(t, err)

	// Spread exactly at markPrice*ratio is not tight: strict inequality.
	sig := e.Recommend(100, 100, 101, 110, 10)
	assert.InDelta(t, 0.9, sig.MomentumScore, 1e-9)
	assert.Equal(t, domain.RecommendHold, sig.Recommendation)

	// Strictly inside the threshold the same momentum trades.
	sig = e.Recommend(100, 100, 100.5, 110, 10)
	assert.Equal(t, domain.RecommendBuy, sig.Recommendation)
}

func TestAnalyze(t *testing.T) {
	e, err := New(Config{})
	require.NoError(t, err)

	now := time.Now().UTC()
	snapshot := domain.MarketSnapshot{
		Symbol:       "ETH",
		MarkPrice:    95,
		High24h:      100,
		Low24h:       50,
		Volume24h:    123456,
		OpenInterest: 789,
		FundingRate:  0.0001,
		BestBid:      94,
		BestAsk:      96,
		Timestamp:    now,
	}

	t.Run("Book top overrides snapshot bid/ask", func(t *testing.T) {
		book := domain.OrderBook{
			Bids: []domain.PriceLevel{{Price: 94.99, Quantity: 10}},
			Asks: []domain.PriceLevel{{Price: 95.00, Quantity: 12}},
		}
		analysis := e.Analyze(snapshot, book)
		assert.Equal(t, "ETH", analysis.Symbol)
		assert.Equal(t, domain.RecommendBuy, analysis.Recommendation)
		assert.InDelta(t, 0.01, analysis.BidAskSpread, 1e-9)
		assert.InDelta(t, 0.9, analysis.MomentumScore, 1e-9)
		assert.Equal(t, 123456.0, analysis.Volume24h)
		assert.Equal(t, now, analysis.Timestamp)
	})

	t.Run("Empty book uses snapshot bid/ask", func(t *testing.T) {
		analysis := e.Analyze(snapshot, domain.OrderBook{})
		assert.InDelta(t, 2.0, analysis.BidAskSpread, 1e-9)
		assert.Equal(t, domain.RecommendHold, analysis.Recommendation)
	})
}
