package ledger

import (
	"fmt"
	"sync"

	"tradepilot/internal/domain"
)

// Ledger holds per-asset balances for a single portfolio and applies trade
// mutations atomically with solvency checks. The check-then-mutate sequence
// for each trade runs as one critical section, so concurrent trades against
// the same ledger can never interleave a solvency check with another trade's
// mutation.
type Ledger struct {
	mu         sync.Mutex
	quoteAsset string
	balances   domain.Portfolio
}

// New creates a ledger seeded with a single quote-asset entry.
func New(quoteAsset string, startingBalance float64) (*Ledger, error) {
	quoteAsset = domain.NormalizeSymbol(quoteAsset)
	if quoteAsset == "" {
		return nil, fmt.Errorf("quote asset is required")
	}
	if startingBalance < 0 {
		return nil, fmt.Errorf("starting balance cannot be negative")
	}
	return &Ledger{
		quoteAsset: quoteAsset,
		balances:   domain.Portfolio{quoteAsset: startingBalance},
	}, nil
}

// QuoteAsset returns the balance-holding currency all trades settle against.
func (l *Ledger) QuoteAsset() string { return l.quoteAsset }

// ApplyTrade applies one buy or sell at the given price. Mutation is
// all-or-nothing: a REJECTED or INVALID trade leaves the portfolio exactly as
// it was, and no entry can go negative.
func (l *Ledger) ApplyTrade(action domain.Action, symbol string, amount, price float64) (domain.TradeStatus, string) {
	symbol = domain.NormalizeSymbol(symbol)

	l.mu.Lock()
	defer l.mu.Unlock()

	switch action {
	case domain.ActionBuy:
		cost := amount * price
		if l.balances[l.quoteAsset] < cost {
			return domain.StatusRejected, "Insufficient balance"
		}
		l.balances[l.quoteAsset] -= cost
		l.balances[symbol] += amount
		return domain.StatusFilled, ""

	case domain.ActionSell:
		if l.balances[symbol] < amount {
			return domain.StatusRejected, "Insufficient holdings"
		}
		l.balances[symbol] -= amount
		l.balances[l.quoteAsset] += amount * price
		return domain.StatusFilled, ""

	default:
		return domain.StatusInvalid, fmt.Sprintf("Unknown action: %s", action)
	}
}

// Revert applies the exact inverse of a previously filled trade. Used to roll
// the ledger back when live order placement fails after the solvency check
// committed, keeping execution all-or-nothing end to end.
func (l *Ledger) Revert(action domain.Action, symbol string, amount, price float64) error {
	symbol = domain.NormalizeSymbol(symbol)

	l.mu.Lock()
	defer l.mu.Unlock()

	switch action {
	case domain.ActionBuy:
		if l.balances[symbol] < amount {
			return fmt.Errorf("cannot revert buy of %s: holdings %.8f below amount %.8f", symbol, l.balances[symbol], amount)
		}
		l.balances[symbol] -= amount
		l.balances[l.quoteAsset] += amount * price
		return nil

	case domain.ActionSell:
		proceeds := amount * price
		if l.balances[l.quoteAsset] < proceeds {
			return fmt.Errorf("cannot revert sell of %s: quote balance %.8f below proceeds %.8f", symbol, l.balances[l.quoteAsset], proceeds)
		}
		l.balances[l.quoteAsset] -= proceeds
		l.balances[symbol] += amount
		return nil

	default:
		return fmt.Errorf("cannot revert unknown action %s", action)
	}
}

// Balance returns the current balance for symbol, zero if absent.
func (l *Ledger) Balance(symbol string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances.Balance(symbol)
}

// Snapshot returns an independent copy of the portfolio.
func (l *Ledger) Snapshot() domain.Portfolio {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances.Clone()
}
