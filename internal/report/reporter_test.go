package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradepilot/internal/domain"
)

func TestSummarize(t *testing.T) {
	r := New()
	now := time.Now().UTC()

	state := domain.AccountState{
		AccountRef:       "acct-1",
		TotalValue:       10000,
		UnrealizedPnl:    -250,
		AvailableBalance: 8000,
		Positions: []domain.Position{
			{Symbol: "ETH", Quantity: 2, EntryPrice: 1500, UnrealizedPnl: -250, Leverage: 3},
		},
		Timestamp: now,
	}

	summary := r.Summarize(state)
	assert.Equal(t, "acct-1", summary.AccountRef)
	assert.Equal(t, 10000.0, summary.TotalValue)
	assert.Equal(t, -250.0, summary.UnrealizedPnl)
	assert.Equal(t, 8000.0, summary.AvailableBalance)
	assert.Equal(t, 1, summary.PositionsCount)
	assert.InDelta(t, 2.5, summary.RiskPercentage, 1e-9) // |−250|/10000×100
	assert.Equal(t, now, summary.Timestamp)
}

func TestSummarize_ZeroTotalValue(t *testing.T) {
	r := New()

	summary := r.Summarize(domain.AccountState{TotalValue: 0, UnrealizedPnl: 500})
	assert.Equal(t, 0.0, summary.RiskPercentage)
}

func TestSummarize_PositiveAndNegativePnlSameRisk(t *testing.T) {
	r := New()

	up := r.Summarize(domain.AccountState{TotalValue: 1000, UnrealizedPnl: 100})
	down := r.Summarize(domain.AccountState{TotalValue: 1000, UnrealizedPnl: -100})
	assert.Equal(t, up.RiskPercentage, down.RiskPercentage)
	assert.InDelta(t, 10.0, up.RiskPercentage, 1e-9)
}

func TestSummarize_Idempotent(t *testing.T) {
	r := New()
	state := domain.AccountState{
		AccountRef:    "acct-1",
		TotalValue:    5000,
		UnrealizedPnl: 125,
		Positions:     []domain.Position{{Symbol: "BTC", Quantity: 0.1}},
		Timestamp:     time.Now().UTC(),
	}

	first := r.Summarize(state)
	second := r.Summarize(state)
	assert.Equal(t, first, second)
}

func TestSummarize_CopiesPositions(t *testing.T) {
	r := New()
	state := domain.AccountState{
		TotalValue: 100,
		Positions:  []domain.Position{{Symbol: "ETH", Quantity: 1}},
	}

	summary := r.Summarize(state)
	summary.Positions[0].Quantity = 99
	assert.Equal(t, 1.0, state.Positions[0].Quantity)
}
