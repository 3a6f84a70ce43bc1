package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these sentinels so the
// core and the entry points can classify failures without knowing the adapter.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Pricing / Market Data Errors
	ErrUnsupportedMode       = errors.New("unsupported trading mode")
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	ErrSymbolNotFound        = errors.New("symbol not listed on the exchange")

	// Exchange Specific Errors
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
	ErrOrderPlacementFailed = errors.New("failed to place order")

	// Journal Specific Errors
	ErrJournalUnavailable = errors.New("trade journal unavailable")
	ErrQueryFailed        = errors.New("journal query failed")
)
