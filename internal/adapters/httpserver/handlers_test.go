package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepilot/internal/adapters/logger"
	"tradepilot/internal/adapters/sqlite"
	"tradepilot/internal/app"
	"tradepilot/internal/domain"
	"tradepilot/internal/ledger"
	"tradepilot/internal/ports"
	"tradepilot/internal/pricing"
	"tradepilot/internal/signal"
)

type stubMarket struct {
	snapshot domain.MarketSnapshot
	symbols  []string
	err      error
}

func (s *stubMarket) GetMarketSnapshot(ctx context.Context, symbol string) (domain.MarketSnapshot, error) {
	return s.snapshot, s.err
}

func (s *stubMarket) GetOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error) {
	return domain.OrderBook{}, s.err
}

func (s *stubMarket) GetAvailableSymbols(ctx context.Context) ([]string, error) {
	return s.symbols, s.err
}

type stubAccounts struct {
	state domain.AccountState
	err   error
}

func (s *stubAccounts) GetAccountInfo(ctx context.Context, accountRef string) (domain.AccountState, error) {
	return s.state, s.err
}

func newTestHandler(t *testing.T, collab app.Collaborators) http.Handler {
	t.Helper()

	log := logger.NewWithWriter("error", io.Discard)
	oracle, err := pricing.New(pricing.Config{Market: collab.Market, Logger: log})
	require.NoError(t, err)
	ldgr, err := ledger.New("USDC", 10000)
	require.NoError(t, err)
	signals, err := signal.New(signal.Config{})
	require.NoError(t, err)

	svc, err := app.NewTradingService(app.Config{}, log, oracle, ldgr, signals, collab)
	require.NoError(t, err)

	srv, err := New(Config{Port: 8080, Logger: log, Service: svc})
	require.NoError(t, err)
	return srv.Handler()
}

func newTestJournal(t *testing.T) ports.TradeJournal {
	t.Helper()
	j, err := sqlite.NewJournal(sqlite.Config{DSN: ":memory:", Logger: logger.NewWithWriter("error", io.Discard)})
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleHealth(t *testing.T) {
	t.Run("Paper-only deployment is healthy and unconfigured", func(t *testing.T) {
		handler := newTestHandler(t, app.Collaborators{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "healthy", body["status"])
		services := body["services"].(map[string]interface{})
		assert.Equal(t, "unconfigured", services["market_data"])
	})

	t.Run("Connected market", func(t *testing.T) {
		handler := newTestHandler(t, app.Collaborators{Market: &stubMarket{symbols: []string{"ETH"}}})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		body := decodeBody(t, rec)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "connected", body["services"].(map[string]interface{})["market_data"])
	})

	t.Run("Failing market degrades health", func(t *testing.T) {
		handler := newTestHandler(t, app.Collaborators{Market: &stubMarket{err: errors.New("down")}})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		body := decodeBody(t, rec)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "disconnected", body["services"].(map[string]interface{})["market_data"])
	})
}

func TestHandleTrade(t *testing.T) {
	t.Run("BUY fills in paper mode", func(t *testing.T) {
		handler := newTestHandler(t, app.Collaborators{Journal: newTestJournal(t)})

		payload := bytes.NewBufferString(`{"action":"BUY","symbol":"ETH","amount":1,"mode":"paper"}`)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trade", payload))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, 0.95, body["confidence"])
		trade := body["trade"].(map[string]interface{})
		assert.Equal(t, "FILLED", trade["status"])
		assert.Equal(t, "ETH", trade["symbol"])
		assert.NotEmpty(t, trade["id"])

		portfolio := body["portfolio"].(map[string]interface{})
		assert.Equal(t, 1.0, portfolio["ETH"])
	})

	t.Run("Unknown action still answers 200", func(t *testing.T) {
		handler := newTestHandler(t, app.Collaborators{})

		payload := bytes.NewBufferString(`{"action":"SHORT","symbol":"ETH"}`)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trade", payload))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, 0.0, body["confidence"])
		assert.Contains(t, body["error"], "Unknown action: SHORT")
		assert.Len(t, body["supported_actions"], 3)
	})

	t.Run("Undecodable body is a 400", func(t *testing.T) {
		handler := newTestHandler(t, app.Collaborators{})

		payload := bytes.NewBufferString(`{not json`)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trade", payload))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, 0.0, body["confidence"])
	})

	t.Run("ANALYZE in paper mode", func(t *testing.T) {
		handler := newTestHandler(t, app.Collaborators{})

		payload := bytes.NewBufferString(`{"action":"ANALYZE","symbol":"ETH","mode":"paper"}`)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trade", payload))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, 0.9, body["confidence"])
		analysis := body["analysis"].(map[string]interface{})
		assert.Equal(t, "HOLD", analysis["recommendation"])
		assert.Equal(t, 0.5, analysis["momentum_score"])
	})
}

func TestHandleMarket(t *testing.T) {
	t.Run("Serves live analysis", func(t *testing.T) {
		market := &stubMarket{snapshot: domain.MarketSnapshot{Symbol: "ETH", MarkPrice: 95, High24h: 100, Low24h: 50}}
		handler := newTestHandler(t, app.Collaborators{Market: market})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/ETH", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "ETH", body["symbol"])
		assert.Equal(t, 95.0, body["mark_price"])
	})

	t.Run("Symbol failure maps to HTTP error", func(t *testing.T) {
		market := &stubMarket{err: ports.ErrSymbolNotFound}
		handler := newTestHandler(t, app.Collaborators{Market: market})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/NOPE", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleSymbols(t *testing.T) {
	handler := newTestHandler(t, app.Collaborators{Market: &stubMarket{symbols: []string{"ETH", "BTC"}}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/symbols", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["symbols"], 2)
}

func TestHandleTrades(t *testing.T) {
	handler := newTestHandler(t, app.Collaborators{Journal: newTestJournal(t)})

	// Seed via the trade endpoint.
	payload := bytes.NewBufferString(`{"action":"BUY","symbol":"ETH","amount":1,"mode":"paper"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trade", payload))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trades?limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["trades"], 1)
}

func TestHandleTrades_InvalidLimit(t *testing.T) {
	handler := newTestHandler(t, app.Collaborators{Journal: newTestJournal(t)})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trades?limit=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePortfolio(t *testing.T) {
	accounts := &stubAccounts{state: domain.AccountState{
		AccountRef:    "acct-1",
		TotalValue:    10000,
		UnrealizedPnl: -250,
	}}
	handler := newTestHandler(t, app.Collaborators{Accounts: accounts})

	payload := bytes.NewBufferString(`{"user_address":"acct-1"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio", payload))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "acct-1", body["account_ref"])
	assert.Equal(t, 2.5, body["risk_percentage"])
}

func TestHandlePortfolio_MissingAccountRef(t *testing.T) {
	accounts := &stubAccounts{}
	handler := newTestHandler(t, app.Collaborators{Accounts: accounts})

	payload := bytes.NewBufferString(`{}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio", payload))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
