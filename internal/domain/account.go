package domain

import "time"

// Position is one open position reported by the account-state collaborator.
type Position struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"` // positive long, negative short
	EntryPrice    float64 `json:"entry_price"`
	UnrealizedPnl float64 `json:"unrealized_pnl"`
	Leverage      int     `json:"leverage"`
}

// AccountState is the raw account view supplied by the collaborator.
type AccountState struct {
	AccountRef       string     `json:"account_ref"`
	TotalValue       float64    `json:"total_value"`
	UnrealizedPnl    float64    `json:"unrealized_pnl"`
	AvailableBalance float64    `json:"available_balance"`
	Positions        []Position `json:"positions"`
	Timestamp        time.Time  `json:"timestamp"`
}

// AccountSummary is the risk-annotated projection of an AccountState.
// Recomputed on every query, never cached.
type AccountSummary struct {
	AccountRef       string     `json:"account_ref"`
	TotalValue       float64    `json:"total_value"`
	UnrealizedPnl    float64    `json:"unrealized_pnl"`
	AvailableBalance float64    `json:"available_balance"`
	PositionsCount   int        `json:"positions_count"`
	RiskPercentage   float64    `json:"risk_percentage"`
	Positions        []Position `json:"positions"`
	Timestamp        time.Time  `json:"timestamp"`
}
