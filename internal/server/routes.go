package server

import (
	"net/http"
	"time"

	"trademind/internal/common"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/validate", s.handleAuthValidate)
	mux.HandleFunc("/api/auth/logout", s.handleAuthLogout)

	// Account
	mux.HandleFunc("/api/me", s.handleMe)
	mux.HandleFunc("/api/settings/", s.handleSettingDelete)
	mux.HandleFunc("/api/settings", s.handleSettings)

	// Paper trading
	mux.HandleFunc("/api/paper/ledger", s.handleLedger)
	mux.HandleFunc("/api/paper/trade", s.handleTrade)
	mux.HandleFunc("/api/paper/value", s.handlePortfolioValue)
	mux.HandleFunc("/api/paper/reset", s.handleLedgerReset)
	mux.HandleFunc("/api/paper/chart", s.handleLedgerChart)

	// Market data
	mux.HandleFunc("/api/market-data/", s.handleMarketData)
	mux.HandleFunc("/api/market/ws/", s.handleMarketWS)

	// Watchlist
	mux.HandleFunc("/api/watchlist/", s.handleWatchlistRemove)
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)

	// AI analysis
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/history/", s.handleHistoryDelete)
	mux.HandleFunc("/api/history", s.handleHistory)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uptime := time.Since(s.app.StartupTime).Round(time.Second)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       s.app.Config.Environment,
		"version":           common.GetVersion(),
		"uptime":            uptime.String(),
		"started_at":        s.app.StartupTime,
		"tickers":           s.app.Config.Market.Tickers,
		"poll_interval":     s.app.Config.Market.PollInterval,
		"cache_ttl":         s.app.Config.Market.CacheTTL,
		"news_configured":   s.app.NewsClient != nil,
		"gemini_configured": s.app.AIClient != nil && s.app.AIClient.IsConfigured(),
		"logging_level":     s.app.Config.Logging.Level,
	})
}
