package server

import (
	"net/http"

	"trademind/internal/models"
	"trademind/internal/services/ledger"
)

// handleLedger handles GET /api/paper/ledger — the full paper account.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	led, err := s.app.LedgerService.GetLedger(r.Context(), uc.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load ledger")
		WriteError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}
	WriteJSON(w, http.StatusOK, led)
}

// handleTrade handles POST /api/paper/trade — execute a buy or sell.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	var req struct {
		Symbol   string           `json:"symbol"`
		Side     models.TradeSide `json:"type"`
		Quantity float64          `json:"quantity"`
		Price    float64          `json:"price"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ctx := r.Context()
	tx, err := s.app.LedgerService.ExecuteTrade(ctx, uc.UserID, req.Symbol, req.Side, req.Quantity, req.Price)
	if err != nil {
		switch err {
		case ledger.ErrInvalidTrade, ledger.ErrUnknownSide:
			WriteError(w, http.StatusBadRequest, err.Error())
		case ledger.ErrInsufficientFunds:
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, "Insufficient funds", "insufficient_funds")
		case ledger.ErrNoPosition:
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, "No position in "+req.Symbol, "no_position")
		case ledger.ErrInsufficientShares:
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, "Insufficient shares to sell", "insufficient_shares")
		default:
			s.logger.Error().Err(err).Msg("Trade failed")
			WriteError(w, http.StatusInternalServerError, "trade failed")
		}
		return
	}

	led, err := s.app.LedgerService.GetLedger(ctx, uc.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to reload ledger after trade")
		WriteError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transaction": tx,
		"ledger":      led,
	})
}

// handlePortfolioValue handles GET /api/paper/value — positions marked to
// the latest cached prices, entry price standing in when a quote is
// unavailable.
func (s *Server) handlePortfolioValue(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}
	ctx := r.Context()

	led, err := s.app.LedgerService.GetLedger(ctx, uc.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}

	prices := make(map[string]float64, len(led.Positions))
	for symbol := range led.Positions {
		if price, err := s.app.MarketService.CurrentPrice(ctx, symbol); err == nil && price > 0 {
			prices[symbol] = price
		}
	}

	value, err := s.app.LedgerService.PortfolioValue(ctx, uc.UserID, prices)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to value portfolio")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio_value": value,
		"balance":         led.Balance,
		"equity":          led.Balance + value,
		"prices":          prices,
	})
}

// handleLedgerReset handles POST /api/paper/reset — restore the initial
// balance and clear positions and history.
func (s *Server) handleLedgerReset(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	if err := s.app.LedgerService.Reset(r.Context(), uc.UserID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to reset account")
		WriteError(w, http.StatusInternalServerError, "failed to reset account")
		return
	}
	led, err := s.app.LedgerService.GetLedger(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}
	WriteJSON(w, http.StatusOK, led)
}

// handleLedgerChart handles GET /api/paper/chart — allocation pie PNG.
func (s *Server) handleLedgerChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	png, err := s.app.LedgerService.RenderAllocationChart(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
