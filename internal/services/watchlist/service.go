// Package watchlist provides per-user watchlist management
package watchlist

import (
	"context"
	"fmt"

	"trademind/internal/common"
	"trademind/internal/interfaces"
	"trademind/internal/models"
	"trademind/internal/services/market"
)

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// Service implements WatchlistService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new watchlist service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetWatchlist retrieves the user's watchlist, empty when none exists.
func (s *Service) GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error) {
	wl, err := s.storage.PaperStore().GetWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return wl, nil
}

// AddTicker adds a ticker to the watchlist. Adding a ticker already
// present is a no-op.
func (s *Service) AddTicker(ctx context.Context, userID, ticker string) (*models.Watchlist, error) {
	ticker = market.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	wl, err := s.storage.PaperStore().GetWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	if wl.Contains(ticker) {
		return wl, nil
	}

	wl.Tickers = append(wl.Tickers, ticker)
	if err := s.storage.PaperStore().SaveWatchlist(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("ticker", ticker).Msg("Ticker added to watchlist")
	return wl, nil
}

// RemoveTicker removes a ticker from the watchlist. Removing an absent
// ticker is a no-op.
func (s *Service) RemoveTicker(ctx context.Context, userID, ticker string) (*models.Watchlist, error) {
	ticker = market.NormalizeTicker(ticker)

	wl, err := s.storage.PaperStore().GetWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}

	kept := wl.Tickers[:0]
	removed := false
	for _, t := range wl.Tickers {
		if t == ticker {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return wl, nil
	}
	wl.Tickers = kept

	if err := s.storage.PaperStore().SaveWatchlist(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("ticker", ticker).Msg("Ticker removed from watchlist")
	return wl, nil
}
