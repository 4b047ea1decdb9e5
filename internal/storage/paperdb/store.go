// Package paperdb implements PaperStore using BadgerHold. It holds the
// paper-trading ledgers, watchlists, and analysis history.
package paperdb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"trademind/internal/common"
	"trademind/internal/models"
)

// maxAnalysisRecords caps history per user; older records are pruned on save.
const maxAnalysisRecords = 200

// Store implements interfaces.PaperStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens (or creates) the paper area at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create paper db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open paper db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("PaperDB opened")
	return &Store{db: db, logger: logger}, nil
}

// --- Ledgers ---

// GetLedger returns the stored ledger for a user. A missing or undecodable
// record yields a fresh default ledger rather than an error, so a corrupt
// blob can never lock a user out of trading.
func (s *Store) GetLedger(_ context.Context, userID string) (*models.Ledger, error) {
	var ledger models.Ledger
	if err := s.db.Get(userID, &ledger); err != nil {
		if err != badgerhold.ErrNotFound {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Ledger unreadable, resetting to defaults")
		}
		return models.NewLedger(userID), nil
	}
	ledger.UserID = userID
	ledger.Normalize()
	return &ledger, nil
}

func (s *Store) SaveLedger(_ context.Context, ledger *models.Ledger) error {
	if ledger.UserID == "" {
		return fmt.Errorf("ledger user ID is required")
	}
	if err := s.db.Upsert(ledger.UserID, ledger); err != nil {
		return fmt.Errorf("failed to save ledger for user '%s': %w", ledger.UserID, err)
	}
	return nil
}

func (s *Store) DeleteLedger(_ context.Context, userID string) error {
	err := s.db.Delete(userID, models.Ledger{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete ledger for user '%s': %w", userID, err)
	}
	return nil
}

// --- Watchlists ---

// GetWatchlist returns the user's watchlist, empty when none is stored.
func (s *Store) GetWatchlist(_ context.Context, userID string) (*models.Watchlist, error) {
	var wl models.Watchlist
	if err := s.db.Get(userID, &wl); err != nil {
		if err == badgerhold.ErrNotFound {
			return &models.Watchlist{UserID: userID, Tickers: []string{}}, nil
		}
		return nil, fmt.Errorf("failed to get watchlist for user '%s': %w", userID, err)
	}
	wl.UserID = userID
	if wl.Tickers == nil {
		wl.Tickers = []string{}
	}
	return &wl, nil
}

func (s *Store) SaveWatchlist(_ context.Context, wl *models.Watchlist) error {
	if wl.UserID == "" {
		return fmt.Errorf("watchlist user ID is required")
	}
	wl.UpdatedAt = time.Now()
	if err := s.db.Upsert(wl.UserID, wl); err != nil {
		return fmt.Errorf("failed to save watchlist for user '%s': %w", wl.UserID, err)
	}
	return nil
}

// --- Analysis history ---

func (s *Store) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if record.ID == "" {
		return fmt.Errorf("analysis record ID is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if err := s.db.Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save analysis '%s': %w", record.ID, err)
	}
	s.pruneAnalyses(record.UserID)
	return nil
}

func (s *Store) ListAnalyses(_ context.Context, userID string, limit int) ([]*models.AnalysisRecord, error) {
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID").
		SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []models.AnalysisRecord
	if err := s.db.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list analyses for user '%s': %w", userID, err)
	}
	out := make([]*models.AnalysisRecord, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out, nil
}

func (s *Store) DeleteAnalysis(_ context.Context, userID, recordID string) error {
	var record models.AnalysisRecord
	if err := s.db.Get(recordID, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to get analysis '%s': %w", recordID, err)
	}
	if record.UserID != userID {
		return fmt.Errorf("analysis '%s' does not belong to user '%s'", recordID, userID)
	}
	if err := s.db.Delete(recordID, models.AnalysisRecord{}); err != nil {
		return fmt.Errorf("failed to delete analysis '%s': %w", recordID, err)
	}
	return nil
}

// pruneAnalyses drops the oldest records beyond the per-user cap.
func (s *Store) pruneAnalyses(userID string) {
	var records []models.AnalysisRecord
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID").
		SortBy("CreatedAt").Reverse()
	if err := s.db.Find(&records, query); err != nil {
		return
	}
	for i := maxAnalysisRecords; i < len(records); i++ {
		_ = s.db.Delete(records[i].ID, models.AnalysisRecord{})
	}
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}
