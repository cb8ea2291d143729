package handler

import (
	"log/slog"
	"net/http"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// OpportunityHandler serves stored opportunities.
type OpportunityHandler struct {
	opps   domain.OpportunityStore
	logger *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(opps domain.OpportunityStore, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{opps: opps, logger: logHandler(logger, "opportunity")}
}

// ListActive returns active, unexpired opportunities sorted by profit.
// Query parameters: min_profit (percent, default 0), limit (default 50).
// GET /api/opportunities
func (h *OpportunityHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	minProfit := queryFloat(r, "min_profit", 0)
	limit := queryInt(r, "limit", 50, 500)

	opps, err := h.opps.ListActive(r.Context(), minProfit, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list opportunities failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": opps,
		"count":         len(opps),
	})
}
