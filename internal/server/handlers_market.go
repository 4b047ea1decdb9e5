package server

import (
	"net/http"

	"trademind/internal/services/market"
)

// handleMarketData handles GET /api/market-data/{ticker} — the full
// dashboard snapshot: candles, indicators, scored news, and forecast.
// Public: the dashboard fetches this before sign-in.
func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := market.NormalizeTicker(PathParam(r, "/api/market-data/", ""))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	snapshot, err := s.app.MarketService.GetSnapshot(r.Context(), ticker)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("Snapshot failed")
		WriteError(w, http.StatusInternalServerError, "failed to build snapshot")
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}
