package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tradepilot/internal/app"
	"tradepilot/internal/domain"
	"tradepilot/internal/ports"
)

// handleHealth reports service health. The market-data collaborator is probed
// when wired; a paper-only deployment is healthy without it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	marketStatus := "unconfigured"
	status := "healthy"
	if s.svc.MarketConfigured() {
		if s.svc.MarketConnected(r.Context()) {
			marketStatus = "connected"
		} else {
			marketStatus = "disconnected"
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"services": map[string]string{
			"market_data": marketStatus,
		},
	})
}

// handleMarket serves a live market analysis for the path symbol.
func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	analysis, err := s.svc.Analyze(r.Context(), symbol, domain.ModeLive)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// handleSymbols lists the symbols the market-data collaborator can serve.
func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.svc.AvailableSymbols(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"symbols": symbols})
}

// handleTrades returns recent journal records, newest first.
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, fmt.Errorf("%w: limit must be a positive integer", ports.ErrInvalidRequest))
			return
		}
		limit = parsed
	}

	records, err := s.svc.RecentTrades(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []*domain.TradeRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trades": records})
}

// handleTrade dispatches a request envelope. The response is always a
// well-formed result object; only an undecodable body is an HTTP-level error.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req app.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, app.ErrorResult{
			Error:      fmt.Sprintf("invalid request body: %v", err),
			Confidence: app.ConfidenceError,
		})
		return
	}

	writeJSON(w, http.StatusOK, s.svc.HandleRequest(r.Context(), req))
}

// handlePortfolio serves a risk-annotated account summary.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserAddress string `json:"user_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %v", ports.ErrInvalidRequest, err))
		return
	}

	summary, err := s.svc.PortfolioSummary(r.Context(), req.UserAddress)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
