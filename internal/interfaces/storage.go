// Package interfaces defines service contracts for TradeMind
package interfaces

import (
	"context"

	"trademind/internal/models"
)

// StorageManager coordinates the two storage areas.
type StorageManager interface {
	UserStore() UserStore
	PaperStore() PaperStore

	// Lifecycle
	Close() error
}

// UserStore manages accounts, per-user settings, and system KV in the
// internal area.
type UserStore interface {
	// Accounts
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error

	// Per-user settings
	GetSetting(ctx context.Context, userID, name string) (*models.UserSetting, error)
	SetSetting(ctx context.Context, userID, name, value string) error
	DeleteSetting(ctx context.Context, userID, name string) error
	ListSettings(ctx context.Context, userID string) ([]*models.UserSetting, error)

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
}

// PaperStore manages ledgers, watchlists, and analysis history in the
// paper area.
type PaperStore interface {
	// Ledgers, keyed by user ID. GetLedger returns a fresh default ledger
	// when none is stored or the stored blob cannot be decoded.
	GetLedger(ctx context.Context, userID string) (*models.Ledger, error)
	SaveLedger(ctx context.Context, ledger *models.Ledger) error
	DeleteLedger(ctx context.Context, userID string) error

	// Watchlists, keyed by user ID
	GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error)
	SaveWatchlist(ctx context.Context, watchlist *models.Watchlist) error

	// Analysis history, newest-first
	SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	ListAnalyses(ctx context.Context, userID string, limit int) ([]*models.AnalysisRecord, error)
	DeleteAnalysis(ctx context.Context, userID, recordID string) error
}
