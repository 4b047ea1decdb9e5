package server

import (
	"net/http"
)

// handleWatchlist handles /api/watchlist:
// GET returns the list, POST adds a ticker.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	uc := requireUser(w, r)
	if uc == nil {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		wl, err := s.app.WatchlistService.GetWatchlist(ctx, uc.UserID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load watchlist")
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	case http.MethodPost:
		var req struct {
			Ticker string `json:"ticker"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		wl, err := s.app.WatchlistService.AddTicker(ctx, uc.UserID, req.Ticker)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistRemove handles DELETE /api/watchlist/{ticker}.
func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	ticker := PathParam(r, "/api/watchlist/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	wl, err := s.app.WatchlistService.RemoveTicker(r.Context(), uc.UserID, ticker)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to update watchlist")
		return
	}
	WriteJSON(w, http.StatusOK, wl)
}
