package interfaces

import (
	"context"

	"trademind/internal/models"
)

// LedgerService manages the paper-trading ledger.
type LedgerService interface {
	// GetLedger returns the user's current ledger, creating a default one
	// on first access.
	GetLedger(ctx context.Context, userID string) (*models.Ledger, error)

	// ExecuteTrade applies a buy or sell atomically. Failed trades leave
	// the ledger untouched.
	ExecuteTrade(ctx context.Context, userID, symbol string, side models.TradeSide, quantity, price float64) (*models.Transaction, error)

	// PortfolioValue marks open positions to the given prices, falling
	// back to each position's average entry price.
	PortfolioValue(ctx context.Context, userID string, prices map[string]float64) (float64, error)

	// Reset restores the initial balance and clears positions and history.
	Reset(ctx context.Context, userID string) error

	// RenderAllocationChart renders a PNG pie of position allocation.
	RenderAllocationChart(ctx context.Context, userID string) ([]byte, error)
}

// MarketService provides cached market snapshots.
type MarketService interface {
	// GetSnapshot returns the full dashboard payload for a ticker. It
	// never fails: upstream errors degrade to synthetic data.
	GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error)

	// CurrentPrice returns the latest close for a ticker.
	CurrentPrice(ctx context.Context, ticker string) (float64, error)
}

// WatchlistService manages per-user watchlists.
type WatchlistService interface {
	GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error)
	AddTicker(ctx context.Context, userID, ticker string) (*models.Watchlist, error)
	RemoveTicker(ctx context.Context, userID, ticker string) (*models.Watchlist, error)
}

// ChatService handles AI chat and chart analysis.
type ChatService interface {
	// Chat answers a free-form question, optionally grounded in a chart
	// image and the ticker's live indicator context.
	Chat(ctx context.Context, userID, message, imageURL, ticker string) (string, error)

	// Analyze runs a named strategy review over a chart image and records
	// the result in the user's history.
	Analyze(ctx context.Context, userID, imageURL, mode, ticker string) (*models.AnalysisRecord, error)

	// History lists the user's saved analyses, newest first.
	History(ctx context.Context, userID string, limit int) ([]*models.AnalysisRecord, error)
}
