package interfaces

import (
	"context"

	"trademind/internal/models"
)

// QuoteClient fetches historical candles and headlines from the upstream
// market data source.
type QuoteClient interface {
	// GetDailyCandles retrieves ~days of daily bars, oldest first.
	GetDailyCandles(ctx context.Context, ticker string, days int) ([]models.Candle, error)

	// GetNews retrieves recent headlines for a ticker, unscored.
	GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error)
}

// NewsClient is the fallback headline source used when the quote source
// returns too few stories.
type NewsClient interface {
	SearchNews(ctx context.Context, query string, limit int) ([]models.NewsItem, error)
}

// AIClient generates advisory text from prompts and optional chart images.
type AIClient interface {
	// GenerateText answers a plain text prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateWithImage answers a prompt about an image (PNG/JPEG bytes).
	GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)

	// IsConfigured reports whether an API key is present.
	IsConfigured() bool
}
