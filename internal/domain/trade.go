package domain

import "time"

// TradeRequest describes one buy or sell instruction. Immutable once submitted.
type TradeRequest struct {
	Action Action  `json:"action"`
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"` // positive quantity of the base asset
}

// TradeRecord is the append-only result of processing one trade request.
// Exactly one record is produced per executed request and it is never mutated
// after creation. Reason is present iff the trade did not fill.
type TradeRecord struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Action    Action      `json:"action"`
	Symbol    string      `json:"symbol"`
	Amount    float64     `json:"amount"`
	Price     float64     `json:"price"`
	Value     float64     `json:"value"` // amount * price
	Mode      Mode        `json:"mode"`
	Status    TradeStatus `json:"status"`
	Reason    string      `json:"reason,omitempty"`
}
