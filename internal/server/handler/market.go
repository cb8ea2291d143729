package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// MarketHandler serves the latest cached quote snapshots per venue.
type MarketHandler struct {
	cache  domain.QuoteCache
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(cache domain.QuoteCache, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{cache: cache, logger: logHandler(logger, "market")}
}

// ListMarkets returns the last fetched quote snapshot for each venue. A
// venue with no snapshot yet (or an aged-out one) reports an empty list.
// Query parameters: venue (optional, "polymarket" or "kalshi").
// GET /api/markets
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	venues := []domain.Venue{domain.VenuePolymarket, domain.VenueKalshi}
	if v := r.URL.Query().Get("venue"); v != "" {
		switch domain.Venue(v) {
		case domain.VenuePolymarket, domain.VenueKalshi:
			venues = []domain.Venue{domain.Venue(v)}
		default:
			writeError(w, http.StatusBadRequest, "unknown venue")
			return
		}
	}

	out := map[string][]domain.Quote{}
	for _, venue := range venues {
		quotes, err := h.cache.GetSnapshot(r.Context(), venue)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				h.logger.ErrorContext(r.Context(), "snapshot read failed",
					slog.String("venue", string(venue)),
					slog.String("error", err.Error()),
				)
				writeError(w, http.StatusInternalServerError, "failed to read market snapshot")
				return
			}
			quotes = []domain.Quote{}
		}
		out[string(venue)] = quotes
	}

	writeJSON(w, http.StatusOK, map[string]any{"markets": out})
}
