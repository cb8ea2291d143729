package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/scanner"
)

// ScanHandler triggers on-demand detection cycles.
type ScanHandler struct {
	scanner *scanner.Scanner
	logger  *slog.Logger
}

// NewScanHandler creates a ScanHandler.
func NewScanHandler(sc *scanner.Scanner, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{scanner: sc, logger: logHandler(logger, "scan")}
}

// FetchMarkets runs one detection cycle and returns the freshly detected
// opportunities, best first. A cycle already in progress yields 409.
// POST /api/fetch-markets
func (h *ScanHandler) FetchMarkets(w http.ResponseWriter, r *http.Request) {
	res, err := h.scanner.Scan(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			writeError(w, http.StatusConflict, "a scan is already in progress")
			return
		}
		h.logger.ErrorContext(r.Context(), "scan failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "market fetch failed")
		return
	}

	opps := res.Opportunities
	if opps == nil {
		opps = []domain.Opportunity{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"opportunitiesFound": res.OpportunitiesFound,
		"opportunities":      opps,
	})
}
