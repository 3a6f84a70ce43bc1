package app

import (
	"context"
	"fmt"
	"strings"

	"tradepilot/internal/domain"
)

// Confidence values stamped on result envelopes. Fixed policy, not a
// statistical measure.
const (
	ConfidenceFilled   = 0.95
	ConfidenceRejected = 0.3
	ConfidenceAnalyze  = 0.9
	ConfidenceError    = 0.0
)

// Request is the envelope an external entry point hands to the core.
// Amount is a pointer so an omitted amount can default without making an
// explicit zero look absent.
type Request struct {
	Action string   `json:"action"`
	Symbol string   `json:"symbol"`
	Amount *float64 `json:"amount,omitempty"`
	Mode   string   `json:"mode,omitempty"`
}

// TradeResult is the envelope returned for BUY and SELL requests.
type TradeResult struct {
	Trade      *domain.TradeRecord `json:"trade"`
	Portfolio  domain.Portfolio    `json:"portfolio"`
	Mode       domain.Mode         `json:"mode"`
	Confidence float64             `json:"confidence"`
}

// AnalysisResult is the envelope returned for ANALYZE requests.
type AnalysisResult struct {
	Action     domain.Action         `json:"action"`
	Symbol     string                `json:"symbol"`
	Analysis   domain.MarketAnalysis `json:"analysis"`
	Price      float64               `json:"price"`
	Mode       domain.Mode           `json:"mode"`
	Confidence float64               `json:"confidence"`
}

// ErrorResult is the envelope returned for malformed input, unknown actions,
// and internal faults caught at the boundary.
type ErrorResult struct {
	Error            string   `json:"error"`
	SupportedActions []string `json:"supported_actions,omitempty"`
	Confidence       float64  `json:"confidence"`
}

// SupportedActions lists the actions the request envelope accepts.
func SupportedActions() []string {
	return []string{string(domain.ActionBuy), string(domain.ActionSell), string(domain.ActionAnalyze)}
}

// parseMode maps the envelope's mode string onto a domain mode, using fallback
// when the request names none.
func parseMode(raw string, fallback domain.Mode) (domain.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return fallback, nil
	case string(domain.ModePaper):
		return domain.ModePaper, nil
	case string(domain.ModeLive):
		return domain.ModeLive, nil
	default:
		return "", fmt.Errorf("unsupported trading mode: %q", raw)
	}
}

// HandleRequest dispatches one request envelope and always returns a
// well-formed result object: internal faults are converted into an ErrorResult
// here and never escape to the caller.
func (s *TradingService) HandleRequest(ctx context.Context, req Request) any {
	action := domain.Action(strings.ToUpper(strings.TrimSpace(req.Action)))

	symbol := req.Symbol
	if strings.TrimSpace(symbol) == "" {
		symbol = s.cfg.DefaultSymbol
	}

	amount := s.cfg.DefaultAmount
	if req.Amount != nil {
		amount = *req.Amount
	}

	mode, err := parseMode(req.Mode, s.cfg.DefaultMode)
	if err != nil {
		return ErrorResult{Error: err.Error(), Confidence: ConfidenceError}
	}

	switch action {
	case domain.ActionAnalyze:
		analysis, err := s.Analyze(ctx, symbol, mode)
		if err != nil {
			return ErrorResult{Error: err.Error(), Confidence: ConfidenceError}
		}
		return AnalysisResult{
			Action:     domain.ActionAnalyze,
			Symbol:     analysis.Symbol,
			Analysis:   analysis,
			Price:      analysis.MarkPrice,
			Mode:       mode,
			Confidence: ConfidenceAnalyze,
		}

	case domain.ActionBuy, domain.ActionSell:
		record, err := s.ExecuteTrade(ctx, domain.TradeRequest{Action: action, Symbol: symbol, Amount: amount}, mode)
		if err != nil {
			return ErrorResult{Error: err.Error(), Confidence: ConfidenceError}
		}
		confidence := ConfidenceRejected
		if record.Status == domain.StatusFilled {
			confidence = ConfidenceFilled
		}
		return TradeResult{
			Trade:      record,
			Portfolio:  s.ledger.Snapshot(),
			Mode:       mode,
			Confidence: confidence,
		}

	default:
		return ErrorResult{
			Error:            fmt.Sprintf("Unknown action: %s. Use BUY, SELL, or ANALYZE.", action),
			SupportedActions: SupportedActions(),
			Confidence:       ConfidenceError,
		}
	}
}
