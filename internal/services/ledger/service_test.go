package ledger

import (
	"context"
	"testing"

	"trademind/internal/common"
	"trademind/internal/models"
	"trademind/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := common.NewSilentLogger()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Internal.Path = t.TempDir()
	cfg.Storage.Paper.Path = t.TempDir()

	mgr, err := storage.NewManager(logger, cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return NewService(mgr, logger)
}

func TestFreshAccount(t *testing.T) {
	svc := newTestService(t)
	ledger, err := svc.GetLedger(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if ledger.Balance != 100000 {
		t.Errorf("initial balance: got %v", ledger.Balance)
	}
	if len(ledger.Positions) != 0 || len(ledger.Transactions) != 0 {
		t.Error("fresh account should have no positions or history")
	}
}

// Walks the canonical buy/average/sell sequence end to end.
func TestTradeScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	const user = "u-1"

	// Buy 10 TSLA @ 200
	if _, err := svc.ExecuteTrade(ctx, user, "TSLA", models.TradeSideBuy, 10, 200); err != nil {
		t.Fatalf("buy 1: %v", err)
	}
	ledger, _ := svc.GetLedger(ctx, user)
	if ledger.Balance != 98000 {
		t.Errorf("after buy 1: balance %v", ledger.Balance)
	}
	pos := ledger.Positions["TSLA"]
	if pos == nil || pos.Quantity != 10 || pos.AvgPrice != 200 {
		t.Errorf("after buy 1: position %+v", pos)
	}

	// Buy 10 more @ 300: avg price becomes 250
	if _, err := svc.ExecuteTrade(ctx, user, "TSLA", models.TradeSideBuy, 10, 300); err != nil {
		t.Fatalf("buy 2: %v", err)
	}
	ledger, _ = svc.GetLedger(ctx, user)
	if ledger.Balance != 95000 {
		t.Errorf("after buy 2: balance %v", ledger.Balance)
	}
	pos = ledger.Positions["TSLA"]
	if pos.Quantity != 20 || pos.AvgPrice != 250 {
		t.Errorf("after buy 2: position %+v", pos)
	}

	// Sell 5 @ 400: proceeds 2000, avg price untouched
	if _, err := svc.ExecuteTrade(ctx, user, "TSLA", models.TradeSideSell, 5, 400); err != nil {
		t.Fatalf("sell: %v", err)
	}
	ledger, _ = svc.GetLedger(ctx, user)
	if ledger.Balance != 97000 {
		t.Errorf("after sell: balance %v", ledger.Balance)
	}
	pos = ledger.Positions["TSLA"]
	if pos.Quantity != 15 || pos.AvgPrice != 250 {
		t.Errorf("after sell: position %+v", pos)
	}

	// History is newest first
	if len(ledger.Transactions) != 3 {
		t.Fatalf("transactions: got %d", len(ledger.Transactions))
	}
	if ledger.Transactions[0].Side != models.TradeSideSell {
		t.Errorf("newest transaction should be the sell, got %+v", ledger.Transactions[0])
	}
	for _, tx := range ledger.Transactions {
		if tx.ID == "" || tx.Timestamp == 0 {
			t.Errorf("transaction missing id or timestamp: %+v", tx)
		}
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.ExecuteTrade(ctx, "u-1", "TSLA", models.TradeSideBuy, 1000, 200)
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Rejected trade is a no-op
	ledger, _ := svc.GetLedger(ctx, "u-1")
	if ledger.Balance != 100000 || len(ledger.Transactions) != 0 {
		t.Errorf("ledger should be untouched: %+v", ledger)
	}
}

func TestBuyExactBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Cost exactly equals balance: allowed, leaves zero cash
	if _, err := svc.ExecuteTrade(ctx, "u-1", "TSLA", models.TradeSideBuy, 500, 200); err != nil {
		t.Fatalf("exact-balance buy: %v", err)
	}
	ledger, _ := svc.GetLedger(ctx, "u-1")
	if ledger.Balance != 0 {
		t.Errorf("balance: got %v", ledger.Balance)
	}
}

func TestSellUnheldSymbol(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ExecuteTrade(context.Background(), "u-1", "AAPL", models.TradeSideSell, 1, 100)
	if err != ErrNoPosition {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
}

func TestOverSellRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ExecuteTrade(ctx, "u-1", "TSLA", models.TradeSideBuy, 10, 100); err != nil {
		t.Fatalf("buy: %v", err)
	}
	_, err := svc.ExecuteTrade(ctx, "u-1", "TSLA", models.TradeSideSell, 11, 100)
	if err != ErrInsufficientShares {
		t.Fatalf("expected ErrInsufficientShares, got %v", err)
	}

	// State unchanged by the rejected sell
	ledger, _ := svc.GetLedger(ctx, "u-1")
	if ledger.Positions["TSLA"].Quantity != 10 {
		t.Errorf("position: got %+v", ledger.Positions["TSLA"])
	}
	if ledger.Balance != 99000 {
		t.Errorf("balance: got %v", ledger.Balance)
	}
}

func TestSellAllRemovesPosition(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.ExecuteTrade(ctx, "u-1", "TSLA", models.TradeSideBuy, 10, 100)
	if _, err := svc.ExecuteTrade(ctx, "u-1", "TSLA", models.TradeSideSell, 10, 100); err != nil {
		t.Fatalf("sell all: %v", err)
	}
	ledger, _ := svc.GetLedger(ctx, "u-1")
	if _, ok := ledger.Positions["TSLA"]; ok {
		t.Error("fully sold position should be removed, not stored at zero")
	}
	if ledger.Balance != 100000 {
		t.Errorf("balance: got %v", ledger.Balance)
	}
}

func TestInvalidTradeInputs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		side     models.TradeSide
		quantity float64
		price    float64
		want     error
	}{
		{"zero quantity", models.TradeSideBuy, 0, 100, ErrInvalidTrade},
		{"negative quantity", models.TradeSideBuy, -5, 100, ErrInvalidTrade},
		{"zero price", models.TradeSideBuy, 5, 0, ErrInvalidTrade},
		{"negative price", models.TradeSideSell, 5, -1, ErrInvalidTrade},
		{"unknown side", models.TradeSide("short"), 5, 100, ErrUnknownSide},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.ExecuteTrade(ctx, "u-1", "TSLA", tc.side, tc.quantity, tc.price); err != tc.want {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPortfolioValue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.ExecuteTrade(ctx, "u-1", "TSLA", models.TradeSideBuy, 10, 200)
	_, _ = svc.ExecuteTrade(ctx, "u-1", "AAPL", models.TradeSideBuy, 5, 100)

	// Override for TSLA only; AAPL falls back to its entry price
	value, err := svc.PortfolioValue(ctx, "u-1", map[string]float64{"TSLA": 300})
	if err != nil {
		t.Fatalf("PortfolioValue: %v", err)
	}
	if value != 10*300+5*100 {
		t.Errorf("value: got %v", value)
	}

	// No overrides: everything at entry price
	value, _ = svc.PortfolioValue(ctx, "u-1", nil)
	if value != 10*200+5*100 {
		t.Errorf("value without overrides: got %v", value)
	}
}

func TestLedgersIsolatedBetweenUsers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.ExecuteTrade(ctx, "u-a", "TSLA", models.TradeSideBuy, 10, 200)

	other, _ := svc.GetLedger(ctx, "u-b")
	if other.Balance != 100000 || len(other.Positions) != 0 {
		t.Errorf("user b should have an untouched account: %+v", other)
	}
}

func TestReset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.ExecuteTrade(ctx, "u-1", "TSLA", models.TradeSideBuy, 10, 200)
	if err := svc.Reset(ctx, "u-1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	ledger, _ := svc.GetLedger(ctx, "u-1")
	if ledger.Balance != 100000 || len(ledger.Positions) != 0 || len(ledger.Transactions) != 0 {
		t.Errorf("reset account should be pristine: %+v", ledger)
	}
}

func TestRenderAllocationChart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.ExecuteTrade(ctx, "u-1", "TSLA", models.TradeSideBuy, 10, 200)
	png, err := svc.RenderAllocationChart(ctx, "u-1")
	if err != nil {
		t.Fatalf("RenderAllocationChart: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty PNG")
	}
	// PNG magic bytes
	if png[0] != 0x89 || png[1] != 'P' || png[2] != 'N' || png[3] != 'G' {
		t.Errorf("output is not a PNG, starts with % x", png[:4])
	}
}
