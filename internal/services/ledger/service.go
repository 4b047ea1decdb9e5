// Package ledger implements the paper-trading account: cash balance,
// open positions, and trade history per user.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"trademind/internal/common"
	"trademind/internal/interfaces"
	"trademind/internal/models"
)

// Trade rejection errors. Handlers map these onto 4xx responses.
var (
	ErrInvalidTrade       = errors.New("quantity and price must be positive")
	ErrUnknownSide        = errors.New("trade side must be buy or sell")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNoPosition         = errors.New("no position in symbol")
	ErrInsufficientShares = errors.New("insufficient shares to sell")
)

// Compile-time interface check
var _ interfaces.LedgerService = (*Service)(nil)

// Service implements LedgerService. A per-user mutex serializes trades so
// concurrent requests from the same account cannot interleave a
// read-modify-write.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new ledger service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// GetLedger returns the user's current ledger, creating a default one on
// first access.
func (s *Service) GetLedger(ctx context.Context, userID string) (*models.Ledger, error) {
	return s.storage.PaperStore().GetLedger(ctx, userID)
}

// ExecuteTrade applies a buy or sell. Validation happens before any
// mutation, so a rejected trade leaves the ledger exactly as it was.
func (s *Service) ExecuteTrade(ctx context.Context, userID, symbol string, side models.TradeSide, quantity, price float64) (*models.Transaction, error) {
	if quantity <= 0 || price <= 0 {
		return nil, ErrInvalidTrade
	}
	if !side.Valid() {
		return nil, ErrUnknownSide
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := s.storage.PaperStore().GetLedger(ctx, userID)
	if err != nil {
		return nil, err
	}

	cost := quantity * price
	switch side {
	case models.TradeSideBuy:
		if cost > ledger.Balance {
			return nil, ErrInsufficientFunds
		}
		ledger.Balance -= cost
		if pos, ok := ledger.Positions[symbol]; ok {
			// Volume-weighted average entry price across all held shares
			totalQty := pos.Quantity + quantity
			pos.AvgPrice = (pos.Quantity*pos.AvgPrice + quantity*price) / totalQty
			pos.Quantity = totalQty
		} else {
			ledger.Positions[symbol] = &models.Position{
				Symbol:   symbol,
				Quantity: quantity,
				AvgPrice: price,
			}
		}

	case models.TradeSideSell:
		pos, ok := ledger.Positions[symbol]
		if !ok {
			return nil, ErrNoPosition
		}
		if quantity > pos.Quantity {
			return nil, ErrInsufficientShares
		}
		ledger.Balance += cost
		pos.Quantity -= quantity
		if pos.Quantity <= 0 {
			delete(ledger.Positions, symbol)
		}
	}

	tx := models.Transaction{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Timestamp: time.Now().UnixMilli(),
	}
	// Newest first
	ledger.Transactions = append([]models.Transaction{tx}, ledger.Transactions...)

	if err := s.storage.PaperStore().SaveLedger(ctx, ledger); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("symbol", symbol).
		Str("side", string(side)).
		Float64("quantity", quantity).
		Float64("price", price).
		Float64("balance", ledger.Balance).
		Msg("Trade executed")

	return &tx, nil
}

// PortfolioValue marks open positions to the given prices, falling back
// to each position's average entry price.
func (s *Service) PortfolioValue(ctx context.Context, userID string, prices map[string]float64) (float64, error) {
	ledger, err := s.storage.PaperStore().GetLedger(ctx, userID)
	if err != nil {
		return 0, err
	}
	return ledger.Value(prices), nil
}

// Reset restores the initial balance and clears positions and history.
func (s *Service) Reset(ctx context.Context, userID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.storage.PaperStore().SaveLedger(ctx, models.NewLedger(userID)); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Msg("Paper account reset")
	return nil
}
