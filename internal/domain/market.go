package domain

import "time"

// MarketSnapshot is the market-data collaborator's view of one symbol.
// Read-only to the core.
type MarketSnapshot struct {
	Symbol       string    `json:"symbol"`
	MarkPrice    float64   `json:"mark_price"`
	High24h      float64   `json:"high_24h"`
	Low24h       float64   `json:"low_24h"`
	Volume24h    float64   `json:"volume_24h"`
	OpenInterest float64   `json:"open_interest"`
	FundingRate  float64   `json:"funding_rate"`
	BestBid      float64   `json:"best_bid"`
	BestAsk      float64   `json:"best_ask"`
	Timestamp    time.Time `json:"timestamp"`
}

// PriceLevel is one order-book level.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// OrderBook holds bid and ask levels, best first. Either side may be empty.
type OrderBook struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// Order is a request handed to the order-placement collaborator in live mode.
type Order struct {
	Symbol   string  `json:"symbol"`
	Side     Action  `json:"side"`
	Type     string  `json:"order_type"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price,omitempty"` // zero for market orders
}

// OrderTypeMarket is the only order type the core submits.
const OrderTypeMarket = "MARKET"
