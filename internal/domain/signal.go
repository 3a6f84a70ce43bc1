package domain

import "time"

// Signal is a derived trading recommendation. Never stored.
type Signal struct {
	MomentumScore  float64        `json:"momentum_score"` // [0,1], position within 24h range
	Spread         float64        `json:"spread"`         // best ask minus best bid, >= 0
	Recommendation Recommendation `json:"recommendation"`
}

// MarketAnalysis is the full analysis payload returned for an ANALYZE request.
type MarketAnalysis struct {
	Symbol         string         `json:"symbol"`
	MarkPrice      float64        `json:"mark_price"`
	BidAskSpread   float64        `json:"bid_ask_spread"`
	MomentumScore  float64        `json:"momentum_score"`
	Volume24h      float64        `json:"volume_24h"`
	OpenInterest   float64        `json:"open_interest"`
	FundingRate    float64        `json:"funding_rate"`
	Recommendation Recommendation `json:"recommendation"`
	Timestamp      time.Time      `json:"timestamp"`
}
