package domain

import "strings"

// Action is the operation requested against the trading core.
type Action string

const (
	ActionBuy     Action = "BUY"
	ActionSell    Action = "SELL"
	ActionAnalyze Action = "ANALYZE"
)

// Mode selects how prices are derived for a request.
type Mode string

const (
	// ModePaper derives prices deterministically with no external market contact.
	ModePaper Mode = "paper"
	// ModeLive derives prices from the market-data collaborator.
	ModeLive Mode = "live"
)

// TradeStatus is the terminal state of an executed trade request.
type TradeStatus string

const (
	StatusFilled   TradeStatus = "FILLED"
	StatusRejected TradeStatus = "REJECTED"
	StatusInvalid  TradeStatus = "INVALID"
)

// Recommendation is the trading signal derived from market conditions.
type Recommendation string

const (
	RecommendBuy  Recommendation = "BUY"
	RecommendSell Recommendation = "SELL"
	RecommendHold Recommendation = "HOLD"
)

// NormalizeSymbol canonicalizes an asset symbol. All portfolio entries and
// price lookups use the normalized form, so "eth" and "ETH" are the same asset.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
