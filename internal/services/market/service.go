// Package market assembles the per-ticker dashboard snapshot: candles,
// technical indicators, scored news, and a next-close forecast.
package market

import (
	"context"
	"strings"
	"sync"
	"time"

	"trademind/internal/common"
	"trademind/internal/interfaces"
	"trademind/internal/models"
	"trademind/internal/signals"
)

const (
	candleDays = 30

	// minPrimaryHeadlines is the story count below which the fallback
	// news source is consulted.
	minPrimaryHeadlines = 3
	fallbackHeadlines   = 5
)

// Compile-time interface check
var _ interfaces.MarketService = (*Service)(nil)

// Service implements MarketService with a short-lived in-memory cache.
// Snapshot assembly never fails: upstream errors degrade to synthetic
// candles and a placeholder headline.
type Service struct {
	quotes interfaces.QuoteClient
	news   interfaces.NewsClient
	logger *common.Logger
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[string]*models.MarketSnapshot

	now func() time.Time
}

// NewService creates a new market service. news may be nil when no
// fallback source is configured.
func NewService(quotes interfaces.QuoteClient, news interfaces.NewsClient, ttl time.Duration, logger *common.Logger) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Service{
		quotes: quotes,
		news:   news,
		logger: logger,
		ttl:    ttl,
		cache:  make(map[string]*models.MarketSnapshot),
		now:    time.Now,
	}
}

// NormalizeTicker strips the cashtag prefix and uppercases the symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(ticker, "$", "")))
}

// GetSnapshot returns the full dashboard payload for a ticker, serving
// from cache when fresh.
func (s *Service) GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	ticker = NormalizeTicker(ticker)

	s.mu.RLock()
	cached, ok := s.cache[ticker]
	s.mu.RUnlock()
	if ok && s.now().Sub(cached.FetchedAt) < s.ttl {
		return cached, nil
	}

	snapshot := s.build(ctx, ticker)

	s.mu.Lock()
	s.cache[ticker] = snapshot
	s.mu.Unlock()

	return snapshot, nil
}

// CurrentPrice returns the latest close for a ticker.
func (s *Service) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	snapshot, err := s.GetSnapshot(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return snapshot.Price, nil
}

// build assembles a fresh snapshot, degrading to synthetic data on
// upstream failure.
func (s *Service) build(ctx context.Context, ticker string) *models.MarketSnapshot {
	synthetic := false
	candles, err := s.quotes.GetDailyCandles(ctx, ticker, candleDays)
	if err != nil || len(candles) == 0 {
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote fetch failed, using synthetic candles")
		}
		candles = syntheticCandles(ticker, s.now())
		synthetic = true
	}

	news, sentiment := s.fetchNews(ctx, ticker)

	price := 0.0
	if len(candles) > 0 {
		price = candles[len(candles)-1].Close
	}

	return &models.MarketSnapshot{
		Ticker:        ticker,
		Price:         price,
		MarketData:    candles,
		News:          news,
		NewsSentiment: sentiment,
		Indicators:    signals.Compute(candles),
		Forecast:      signals.Forecast(candles),
		FetchedAt:     s.now(),
		Synthetic:     synthetic,
	}
}

// fetchNews pulls headlines from the primary source, tops up from the
// fallback when thin, and scores sentiment over the result.
func (s *Service) fetchNews(ctx context.Context, ticker string) ([]models.NewsItem, *models.NewsSentiment) {
	items, err := s.quotes.GetNews(ctx, ticker, maxHeadlines)
	if err != nil {
		s.logger.Debug().Err(err).Str("ticker", ticker).Msg("Primary news fetch failed")
		items = nil
	}

	if len(items) < minPrimaryHeadlines && s.news != nil {
		query := ticker
		if ticker == "GENERAL" {
			query = "Stock Market, Economy, Finance"
		}
		extra, err := s.news.SearchNews(ctx, query, fallbackHeadlines-len(items))
		if err != nil {
			s.logger.Debug().Err(err).Str("ticker", ticker).Msg("Fallback news fetch failed")
		} else {
			items = append(items, extra...)
		}
	}

	return ScoreNews(items)
}
