package report

import (
	"math"

	"tradepilot/internal/domain"
)

// Reporter aggregates external account state into a risk-annotated summary.
// Summaries are pure projections: nothing is mutated and nothing is cached, so
// every query recomputes risk from the snapshot it is handed. Stale risk
// numbers are a correctness bug here, not a performance concern.
type Reporter struct{}

// New creates a portfolio reporter.
func New() *Reporter { return &Reporter{} }

// Summarize projects an account state into a summary. Calling it twice on the
// same unmodified state yields identical output.
func (r *Reporter) Summarize(state domain.AccountState) domain.AccountSummary {
	riskPercentage := 0.0
	if state.TotalValue > 0 {
		riskPercentage = math.Abs(state.UnrealizedPnl) / state.TotalValue * 100
	}

	positions := make([]domain.Position, len(state.Positions))
	copy(positions, state.Positions)

	return domain.AccountSummary{
		AccountRef:       state.AccountRef,
		TotalValue:       state.TotalValue,
		UnrealizedPnl:    state.UnrealizedPnl,
		AvailableBalance: state.AvailableBalance,
		PositionsCount:   len(state.Positions),
		RiskPercentage:   riskPercentage,
		Positions:        positions,
		Timestamp:        state.Timestamp,
	}
}
