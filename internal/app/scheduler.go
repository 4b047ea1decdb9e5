package app

import (
	"context"
	"time"

	"trademind/internal/common"
	"trademind/internal/interfaces"
)

// startMarketScheduler refreshes snapshots for the configured tickers at the
// poll interval so dashboard and WebSocket reads hit a warm cache. Runs until
// the context is cancelled.
func startMarketScheduler(ctx context.Context, marketService interfaces.MarketService, config *common.Config, logger *common.Logger) {
	interval := config.Market.GetPollInterval()
	logger.Info().
		Dur("interval", interval).
		Strs("tickers", config.Market.Tickers).
		Msg("Starting market scheduler")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh := func() {
		for _, t := range config.Market.Tickers {
			if ctx.Err() != nil {
				return
			}
			if _, err := marketService.GetSnapshot(ctx, t); err != nil {
				logger.Warn().Err(err).Str("ticker", t).Msg("Scheduled refresh failed")
			}
		}
	}

	refresh()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Market scheduler stopped")
			return
		case <-ticker.C:
			refresh()
		}
	}
}
