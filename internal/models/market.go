package models

import "time"

// Candle is a single daily OHLCV bar. Time is formatted YYYY-MM-DD, the
// shape the dashboard's charting library consumes directly.
type Candle struct {
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Indicators is the technical snapshot computed from a candle series.
// SMA50/SMA200 are pointers: nil when the series is too short for the
// window, serialized as JSON null.
type Indicators struct {
	RSI             float64            `json:"rsi"`
	RSIState        string             `json:"rsi_state"`
	MACD            float64            `json:"macd"`
	MACDSignal      string             `json:"macd_signal"`
	BBPosition      float64            `json:"bb_position"`
	CurrentPrice    float64            `json:"current_price"`
	SMA50           *float64           `json:"sma_50"`
	SMA200          *float64           `json:"sma_200"`
	GoldenCross     bool               `json:"golden_cross"`
	IchimokuStatus  string             `json:"ichimoku_status"`
	ATR             float64            `json:"atr"`
	OBV             float64            `json:"obv"`
	Patterns        []string           `json:"patterns"`
	FibonacciLevels map[string]float64 `json:"fibonacci_levels"`
}

// NewsItem is a single headline with its lexicon sentiment score.
type NewsItem struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	PublishedAt string  `json:"publishedAt,omitempty"`
	Sentiment   string  `json:"sentiment"`
	Score       float64 `json:"score"`
}

// NewsSentiment is the aggregate mood over the returned headlines.
type NewsSentiment struct {
	Score float64 `json:"score"`
	Mood  string  `json:"mood"`
}

// Forecast is the next-close prediction. When the series is too short or
// the model fails, Error is set and the other fields are zero.
type Forecast struct {
	PredictedPrice         float64 `json:"predicted_price,omitempty"`
	PredictedChangePercent float64 `json:"predicted_change_percent,omitempty"`
	Direction              string  `json:"direction,omitempty"`
	Confidence             string  `json:"confidence,omitempty"`
	ModelErrorRMSE         float64 `json:"model_error_rmse,omitempty"`
	Error                  string  `json:"error,omitempty"`
}

// MarketSnapshot is everything the dashboard needs for one ticker in a
// single response.
type MarketSnapshot struct {
	Ticker        string         `json:"ticker"`
	Price         float64        `json:"price"`
	MarketData    []Candle       `json:"market_data"`
	News          []NewsItem     `json:"news"`
	NewsSentiment *NewsSentiment `json:"news_sentiment"`
	Indicators    *Indicators    `json:"indicators"`
	Forecast      *Forecast      `json:"forecast"`
	FetchedAt     time.Time      `json:"-"`
	Synthetic     bool           `json:"-"`
}
