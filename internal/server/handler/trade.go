package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/server/middleware"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/settlement"
)

// TradeHandler books settlements and serves the trade history.
type TradeHandler struct {
	engine *settlement.Engine
	trades domain.TradeStore
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler.
func NewTradeHandler(engine *settlement.Engine, trades domain.TradeStore, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{engine: engine, trades: trades, logger: logHandler(logger, "trade")}
}

type executeTradeRequest struct {
	OpportunityID  string  `json:"opportunityId"`
	Amount         float64 `json:"amount"`
	SimulationMode *bool   `json:"simulationMode"`
	UserID         string  `json:"userId"`
}

// ExecuteTrade books a two-leg settlement against an active opportunity.
// The caller identity comes from the X-User-ID header or the userId body
// field; requests without one are rejected. Live mode (simulationMode
// false) is refused without writing any rows.
// POST /api/execute-trade
func (h *TradeHandler) ExecuteTrade(w http.ResponseWriter, r *http.Request) {
	var req executeTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		userID = req.UserID
	}
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	if req.OpportunityID == "" {
		writeError(w, http.StatusBadRequest, "opportunityId is required")
		return
	}

	// Simulation unless the caller explicitly asked for live mode.
	simulation := req.SimulationMode == nil || *req.SimulationMode

	res, err := h.engine.Settle(r.Context(), userID, req.OpportunityID, req.Amount, simulation)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, domain.ErrInvalidAmount.Error())
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "opportunity not found or no longer active")
		case errors.Is(err, domain.ErrLiveTradingUnavailable):
			writeJSON(w, http.StatusOK, map[string]any{
				"success": false,
				"message": domain.ErrLiveTradingUnavailable.Error(),
				"hint":    domain.LiveTradingHint,
			})
		default:
			h.logger.ErrorContext(r.Context(), "settlement failed",
				slog.String("opportunity_id", req.OpportunityID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "settlement failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"simulation":      true,
		"trades":          res.Trades,
		"estimatedProfit": res.EstimatedProfit,
	})
}

// ListTrades returns the most recent trades, optionally filtered to one
// opportunity.
// Query parameters: limit (default 50), opportunity_id.
// GET /api/trades
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 500)

	var trades []domain.Trade
	var err error
	if oppID := r.URL.Query().Get("opportunity_id"); oppID != "" {
		trades, err = h.trades.ListByOpportunity(r.Context(), oppID)
	} else {
		trades, err = h.trades.ListRecent(r.Context(), limit)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list trades failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}
	if trades == nil {
		trades = []domain.Trade{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trades": trades,
		"count":  len(trades),
	})
}
