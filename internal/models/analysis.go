package models

import "time"

// Analysis strategy modes accepted by the chart analyzer.
const (
	StrategyGeneral  = "General Analysis"
	StrategyTrap     = "Trap Detector"
	StrategyReversal = "Reversal Hunter"
	StrategyMomentum = "Momentum Scalp"
	StrategyElliott  = "Elliott Wave"
	StrategyWyckoff  = "Wyckoff Method"
	StrategyHarmonic = "Harmonic Patterns"
)

// AnalysisRecord is one saved AI analysis or chat exchange, stored in the
// paper area and listed newest-first on the history page.
type AnalysisRecord struct {
	ID           string    `json:"id" badgerhold:"key"`
	UserID       string    `json:"user_id" badgerhold:"index"`
	Ticker       string    `json:"ticker"`
	StrategyType string    `json:"strategy_type"`
	ImageURL     string    `json:"image_url,omitempty"`
	Response     string    `json:"gemini_response"`
	CreatedAt    time.Time `json:"created_at"`
}
