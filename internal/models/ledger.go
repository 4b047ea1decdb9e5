// Package models defines data structures for TradeMind
package models

// InitialBalance is the cash a fresh paper account starts with.
const InitialBalance = 100000.0

// TradeSide identifies the direction of a trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// Valid reports whether the side is one of the two known values.
func (s TradeSide) Valid() bool {
	return s == TradeSideBuy || s == TradeSideSell
}

// Position is an open holding in the paper account. AvgPrice is the
// volume-weighted average entry price across all buys still held.
type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	AvgPrice float64 `json:"avgPrice"`
}

// Transaction records a single executed trade. Timestamp is epoch
// milliseconds. The JSON field for Side is "type" to match the wire
// format the dashboard consumes.
type Transaction struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      TradeSide `json:"type"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp int64     `json:"timestamp"`
}

// Ledger is the full paper-trading state for one user: cash balance,
// open positions keyed by symbol, and the trade history newest-first.
type Ledger struct {
	UserID       string               `json:"-" badgerhold:"key"`
	Balance      float64              `json:"balance"`
	Positions    map[string]*Position `json:"portfolio"`
	Transactions []Transaction        `json:"transactions"`
}

// NewLedger returns a fresh ledger for a user with the initial balance
// and no positions or history.
func NewLedger(userID string) *Ledger {
	return &Ledger{
		UserID:       userID,
		Balance:      InitialBalance,
		Positions:    make(map[string]*Position),
		Transactions: []Transaction{},
	}
}

// Normalize repairs nil collections after deserialization so callers can
// index and append without nil checks.
func (l *Ledger) Normalize() {
	if l.Positions == nil {
		l.Positions = make(map[string]*Position)
	}
	if l.Transactions == nil {
		l.Transactions = []Transaction{}
	}
}

// Value returns the mark-to-market value of the open positions. When a
// symbol has an entry in prices that price is used, otherwise the
// position's average entry price stands in. Cash balance is not included.
func (l *Ledger) Value(prices map[string]float64) float64 {
	total := 0.0
	for symbol, pos := range l.Positions {
		price := pos.AvgPrice
		if p, ok := prices[symbol]; ok {
			price = p
		}
		total += pos.Quantity * price
	}
	return total
}

// Equity returns cash balance plus position value at the given prices.
func (l *Ledger) Equity(prices map[string]float64) float64 {
	return l.Balance + l.Value(prices)
}
