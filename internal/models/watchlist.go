package models

import "time"

// Watchlist is the set of tickers a user tracks, keyed by user ID.
type Watchlist struct {
	UserID    string    `json:"user_id" badgerhold:"key"`
	Tickers   []string  `json:"tickers"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether the watchlist already holds the ticker.
func (w *Watchlist) Contains(ticker string) bool {
	for _, t := range w.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}
