package domain

// Portfolio maps a normalized asset symbol to a non-negative balance.
// An absent symbol is equivalent to a balance of zero. Only the ledger
// mutates a portfolio; everything else works on copies.
type Portfolio map[string]float64

// Balance returns the balance for symbol, zero if absent.
func (p Portfolio) Balance(symbol string) float64 {
	return p[NormalizeSymbol(symbol)]
}

// Clone returns an independent copy of the portfolio.
func (p Portfolio) Clone() Portfolio {
	out := make(Portfolio, len(p))
	for sym, bal := range p {
		out[sym] = bal
	}
	return out
}
