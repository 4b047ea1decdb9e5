package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"trademind/internal/app"
	"trademind/internal/common"
	"trademind/internal/interfaces"
	"trademind/internal/models"
	"trademind/internal/services/chat"
	"trademind/internal/services/ledger"
	"trademind/internal/services/market"
	"trademind/internal/services/watchlist"
	"trademind/internal/storage"
)

type stubQuoteClient struct{}

func (s *stubQuoteClient) GetDailyCandles(ctx context.Context, ticker string, days int) ([]models.Candle, error) {
	candles := make([]models.Candle, 250)
	for i := range candles {
		price := 100.0 + float64(i)
		candles[i] = models.Candle{
			Time:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02"),
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1_000_000,
		}
	}
	return candles, nil
}

func (s *stubQuoteClient) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	return []models.NewsItem{
		{Title: "Shares surge on record growth", URL: "https://example.com/1", Source: "Example"},
		{Title: "Analysts see strong rally ahead", URL: "https://example.com/2", Source: "Example"},
		{Title: "Earnings beat expectations", URL: "https://example.com/3", Source: "Example"},
	}, nil
}

type fakeAIClient struct {
	configured bool
	reply      string
}

func (f *fakeAIClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.reply, nil
}

func (f *fakeAIClient) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return f.reply, nil
}

func (f *fakeAIClient) IsConfigured() bool { return f.configured }

func newTestApp(t *testing.T, ai interfaces.AIClient) *app.App {
	t.Helper()

	config := common.NewDefaultConfig()
	dir := t.TempDir()
	config.Storage.Internal.Path = dir + "/internal"
	config.Storage.Paper.Path = dir + "/paper"

	logger := common.NewSilentLogger()

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { storageManager.Close() })

	quotes := &stubQuoteClient{}
	marketService := market.NewService(quotes, nil, time.Minute, logger)

	return &app.App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		QuoteClient:      quotes,
		AIClient:         ai,
		LedgerService:    ledger.NewService(storageManager, logger),
		MarketService:    marketService,
		WatchlistService: watchlist.NewService(storageManager, logger),
		ChatService:      chat.NewService(ai, marketService, storageManager, logger),
		StartupTime:      time.Now(),
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return NewServer(newTestApp(t, &fakeAIClient{configured: true, reply: "Looks rangebound."})).Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	// Zero the target first: json.Unmarshal merges into non-nil maps, which
	// would leak entries from an earlier response decoded into the same value.
	if v := reflect.ValueOf(out); v.Kind() == reflect.Pointer && !v.IsNil() {
		v.Elem().Set(reflect.Zero(v.Elem().Type()))
	}
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func registerUser(t *testing.T, handler http.Handler, email string) string {
	t.Helper()

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token in the register response")
	}
	return resp.Token
}

func TestHealthAndVersion(t *testing.T) {
	handler := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/version", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("version returned %d", rec.Code)
	}
	var version map[string]string
	decodeBody(t, rec, &version)
	if version["version"] == "" {
		t.Error("expected a version string")
	}
}

func TestConfigEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/config", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("config returned %d", rec.Code)
	}
	var cfg map[string]interface{}
	decodeBody(t, rec, &cfg)
	if cfg["environment"] != "development" {
		t.Errorf("environment = %v, want development", cfg["environment"])
	}
	if cfg["gemini_configured"] != true {
		t.Errorf("gemini_configured = %v, want true", cfg["gemini_configured"])
	}
}

func TestRegisterLoginValidate(t *testing.T) {
	handler := newTestHandler(t)

	token := registerUser(t, handler, "trader@example.com")

	// Duplicate registration
	rec := doRequest(t, handler, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "trader@example.com",
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register returned %d, want 409", rec.Code)
	}

	// Login with correct credentials
	rec = doRequest(t, handler, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "Trader@Example.com",
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	// Wrong password and unknown email produce the same response
	rec = doRequest(t, handler, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "trader@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password returned %d, want 401", rec.Code)
	}
	badPassBody := rec.Body.String()

	rec = doRequest(t, handler, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown email returned %d, want 401", rec.Code)
	}
	if rec.Body.String() != badPassBody {
		t.Error("unknown email and bad password responses should be indistinguishable")
	}

	// Validate
	rec = doRequest(t, handler, http.MethodPost, "/api/auth/validate", "", map[string]string{"token": token})
	var valid struct {
		Valid bool `json:"valid"`
	}
	decodeBody(t, rec, &valid)
	if !valid.Valid {
		t.Error("expected the issued token to validate")
	}

	rec = doRequest(t, handler, http.MethodPost, "/api/auth/validate", "", map[string]string{"token": "garbage"})
	decodeBody(t, rec, &valid)
	if valid.Valid {
		t.Error("expected a garbage token to be invalid")
	}
}

func TestRegisterValidation(t *testing.T) {
	handler := newTestHandler(t)

	cases := []struct {
		name  string
		email string
		pass  string
	}{
		{"missing email", "", "hunter2hunter2"},
		{"malformed email", "not-an-email", "hunter2hunter2"},
		{"short password", "ok@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/api/auth/register", "", map[string]string{
				"email":    tc.email,
				"password": tc.pass,
			})
			if rec.Code != http.StatusBadRequest {
				t.Errorf("returned %d, want 400", rec.Code)
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	handler := newTestHandler(t)

	for _, path := range []string{"/api/paper/ledger", "/api/watchlist", "/api/me", "/api/history"} {
		rec := doRequest(t, handler, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token returned %d, want 401", path, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Errorf("GET %s missing WWW-Authenticate challenge", path)
		}
	}

	rec := doRequest(t, handler, http.MethodGet, "/api/paper/ledger", "not-a-real-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token returned %d, want 401", rec.Code)
	}
}

func TestTradeLifecycle(t *testing.T) {
	handler := newTestHandler(t)
	token := registerUser(t, handler, "trader@example.com")

	rec := doRequest(t, handler, http.MethodGet, "/api/paper/ledger", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ledger returned %d", rec.Code)
	}
	var led models.Ledger
	decodeBody(t, rec, &led)
	if led.Balance != models.InitialBalance {
		t.Fatalf("fresh balance = %v, want %v", led.Balance, models.InitialBalance)
	}

	// Buy 10 TSLA @ 200
	rec = doRequest(t, handler, http.MethodPost, "/api/paper/trade", token, map[string]interface{}{
		"symbol": "TSLA", "type": "buy", "quantity": 10, "price": 200,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("buy returned %d: %s", rec.Code, rec.Body.String())
	}
	var tradeResp struct {
		Transaction models.Transaction `json:"transaction"`
		Ledger      models.Ledger      `json:"ledger"`
	}
	decodeBody(t, rec, &tradeResp)
	if tradeResp.Ledger.Balance != 98000 {
		t.Errorf("balance after buy = %v, want 98000", tradeResp.Ledger.Balance)
	}
	if tradeResp.Transaction.Side != models.TradeSideBuy {
		t.Errorf("transaction type = %q, want buy", tradeResp.Transaction.Side)
	}
	pos := tradeResp.Ledger.Positions["TSLA"]
	if pos == nil || pos.Quantity != 10 || pos.AvgPrice != 200 {
		t.Errorf("unexpected position after buy: %+v", pos)
	}

	// Over-sell is rejected and leaves the ledger untouched
	rec = doRequest(t, handler, http.MethodPost, "/api/paper/trade", token, map[string]interface{}{
		"symbol": "TSLA", "type": "sell", "quantity": 15, "price": 250,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("over-sell returned %d, want 422", rec.Code)
	}
	var errResp ErrorResponse
	decodeBody(t, rec, &errResp)
	if errResp.Code != "insufficient_shares" {
		t.Errorf("over-sell code = %q, want insufficient_shares", errResp.Code)
	}

	// Sell the full position
	rec = doRequest(t, handler, http.MethodPost, "/api/paper/trade", token, map[string]interface{}{
		"symbol": "TSLA", "type": "sell", "quantity": 10, "price": 250,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("sell returned %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &tradeResp)
	if tradeResp.Ledger.Balance != 100500 {
		t.Errorf("balance after sell = %v, want 100500", tradeResp.Ledger.Balance)
	}
	if _, held := tradeResp.Ledger.Positions["TSLA"]; held {
		t.Error("expected the TSLA position to be removed after a full sell")
	}
	if len(tradeResp.Ledger.Transactions) != 2 {
		t.Errorf("transaction count = %d, want 2", len(tradeResp.Ledger.Transactions))
	}

	// Reset
	rec = doRequest(t, handler, http.MethodPost, "/api/paper/reset", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset returned %d", rec.Code)
	}
	decodeBody(t, rec, &led)
	if led.Balance != models.InitialBalance || len(led.Transactions) != 0 {
		t.Errorf("reset ledger = balance %v with %d transactions", led.Balance, len(led.Transactions))
	}
}

func TestTradeValidation(t *testing.T) {
	handler := newTestHandler(t)
	token := registerUser(t, handler, "trader@example.com")

	cases := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
		wantErr  string
	}{
		{
			name:     "unknown side",
			body:     map[string]interface{}{"symbol": "TSLA", "type": "short", "quantity": 1, "price": 100},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "zero quantity",
			body:     map[string]interface{}{"symbol": "TSLA", "type": "buy", "quantity": 0, "price": 100},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing symbol",
			body:     map[string]interface{}{"type": "buy", "quantity": 1, "price": 100},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "insufficient funds",
			body:     map[string]interface{}{"symbol": "TSLA", "type": "buy", "quantity": 1000, "price": 1000},
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "insufficient_funds",
		},
		{
			name:     "sell unheld symbol",
			body:     map[string]interface{}{"symbol": "NVDA", "type": "sell", "quantity": 1, "price": 100},
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "no_position",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/api/paper/trade", token, tc.body)
			if rec.Code != tc.wantCode {
				t.Fatalf("returned %d, want %d: %s", rec.Code, tc.wantCode, rec.Body.String())
			}
			if tc.wantErr != "" {
				var errResp ErrorResponse
				decodeBody(t, rec, &errResp)
				if errResp.Code != tc.wantErr {
					t.Errorf("code = %q, want %q", errResp.Code, tc.wantErr)
				}
			}
		})
	}
}

func TestPortfolioValueEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	token := registerUser(t, handler, "trader@example.com")

	rec := doRequest(t, handler, http.MethodPost, "/api/paper/trade", token, map[string]interface{}{
		"symbol": "TSLA", "type": "buy", "quantity": 10, "price": 200,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("buy returned %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/paper/value", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("value returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		PortfolioValue float64            `json:"portfolio_value"`
		Balance        float64            `json:"balance"`
		Equity         float64            `json:"equity"`
		Prices         map[string]float64 `json:"prices"`
	}
	decodeBody(t, rec, &resp)

	// The stub quote source closes at 349, so 10 shares mark to 3490.
	if resp.PortfolioValue != 3490 {
		t.Errorf("portfolio_value = %v, want 3490", resp.PortfolioValue)
	}
	if resp.Balance != 98000 {
		t.Errorf("balance = %v, want 98000", resp.Balance)
	}
	if resp.Equity != 101490 {
		t.Errorf("equity = %v, want 101490", resp.Equity)
	}
	if resp.Prices["TSLA"] != 349 {
		t.Errorf("price for TSLA = %v, want 349", resp.Prices["TSLA"])
	}
}

func TestLedgerChartEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	token := registerUser(t, handler, "trader@example.com")

	rec := doRequest(t, handler, http.MethodPost, "/api/paper/trade", token, map[string]interface{}{
		"symbol": "TSLA", "type": "buy", "quantity": 10, "price": 200,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("buy returned %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/paper/chart", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chart returned %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected a PNG body")
	}
}

func TestMarketDataPublic(t *testing.T) {
	handler := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/market-data/tsla", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("market-data returned %d: %s", rec.Code, rec.Body.String())
	}

	var snap map[string]interface{}
	decodeBody(t, rec, &snap)
	if snap["ticker"] != "TSLA" {
		t.Errorf("ticker = %v, want TSLA", snap["ticker"])
	}
	if price, _ := snap["price"].(float64); price != 349 {
		t.Errorf("price = %v, want 349", snap["price"])
	}
	indicators, ok := snap["indicators"].(map[string]interface{})
	if !ok {
		t.Fatal("expected an indicators object")
	}
	if _, ok := indicators["rsi"]; !ok {
		t.Error("expected an rsi field in indicators")
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/market-data/", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty ticker returned %d, want 400", rec.Code)
	}
}

func TestWatchlistFlow(t *testing.T) {
	handler := newTestHandler(t)
	token := registerUser(t, handler, "trader@example.com")

	rec := doRequest(t, handler, http.MethodPost, "/api/watchlist", token, map[string]string{"ticker": "$nvda"})
	if rec.Code != http.StatusOK {
		t.Fatalf("add returned %d: %s", rec.Code, rec.Body.String())
	}
	var wl models.Watchlist
	decodeBody(t, rec, &wl)
	if len(wl.Tickers) != 1 || wl.Tickers[0] != "NVDA" {
		t.Fatalf("tickers = %v, want [NVDA]", wl.Tickers)
	}

	// Duplicate add is a no-op
	rec = doRequest(t, handler, http.MethodPost, "/api/watchlist", token, map[string]string{"ticker": "NVDA"})
	decodeBody(t, rec, &wl)
	if len(wl.Tickers) != 1 {
		t.Errorf("tickers after duplicate add = %v", wl.Tickers)
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/watchlist/NVDA", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove returned %d", rec.Code)
	}
	decodeBody(t, rec, &wl)
	if len(wl.Tickers) != 0 {
		t.Errorf("tickers after remove = %v, want empty", wl.Tickers)
	}
}

func TestSettingsFlow(t *testing.T) {
	handler := newTestHandler(t)
	token := registerUser(t, handler, "trader@example.com")

	rec := doRequest(t, handler, http.MethodPut, "/api/settings", token, map[string]string{
		"name": "theme", "value": "dark",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/settings", token, nil)
	var resp struct {
		Settings map[string]string `json:"settings"`
	}
	decodeBody(t, rec, &resp)
	if resp.Settings["theme"] != "dark" {
		t.Errorf("settings = %v, want theme=dark", resp.Settings)
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/settings/theme", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/settings", token, nil)
	decodeBody(t, rec, &resp)
	if len(resp.Settings) != 0 {
		t.Errorf("settings after delete = %v, want empty", resp.Settings)
	}
}

func TestMeEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	token := registerUser(t, handler, "trader@example.com")

	rec := doRequest(t, handler, http.MethodGet, "/api/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me returned %d", rec.Code)
	}
	var user models.User
	decodeBody(t, rec, &user)
	if user.Email != "trader@example.com" {
		t.Errorf("email = %q", user.Email)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response should not expose the password hash")
	}
}

func TestChatAndHistory(t *testing.T) {
	handler := newTestHandler(t)
	token := registerUser(t, handler, "trader@example.com")

	rec := doRequest(t, handler, http.MethodPost, "/api/chat", token, map[string]string{
		"message": "What do you think of TSLA here?",
		"ticker":  "TSLA",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat returned %d: %s", rec.Code, rec.Body.String())
	}
	var chatResp map[string]string
	decodeBody(t, rec, &chatResp)
	if chatResp["response"] == "" {
		t.Fatal("expected a chat response")
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/history", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history returned %d", rec.Code)
	}
	var hist struct {
		History []models.AnalysisRecord `json:"history"`
	}
	decodeBody(t, rec, &hist)
	if len(hist.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(hist.History))
	}

	rec = doRequest(t, handler, http.MethodDelete, fmt.Sprintf("/api/history/%s", hist.History[0].ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history delete returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/history", token, nil)
	decodeBody(t, rec, &hist)
	if len(hist.History) != 0 {
		t.Errorf("history after delete = %d records, want 0", len(hist.History))
	}
}

func TestChatUnconfigured(t *testing.T) {
	a := newTestApp(t, &fakeAIClient{configured: false})
	handler := NewServer(a).Handler()
	token := registerUser(t, handler, "trader@example.com")

	rec := doRequest(t, handler, http.MethodPost, "/api/chat", token, map[string]string{"message": "hi"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("chat returned %d, want 503", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodPost, "/api/analyze", token, map[string]string{
		"image_url": "https://example.com/chart.png",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("analyze returned %d, want 503", rec.Code)
	}
}

func TestAnalyzeRequiresImage(t *testing.T) {
	handler := newTestHandler(t)
	token := registerUser(t, handler, "trader@example.com")

	rec := doRequest(t, handler, http.MethodPost, "/api/analyze", token, map[string]string{"mode": "Wyckoff Method"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("analyze without image returned %d, want 400", rec.Code)
	}
}

func TestShutdownEndpoint(t *testing.T) {
	a := newTestApp(t, &fakeAIClient{configured: true})
	srv := NewServer(a)

	shutdownChan := make(chan struct{}, 1)
	srv.SetShutdownChannel(shutdownChan)
	handler := srv.Handler()

	rec := doRequest(t, handler, http.MethodPost, "/api/shutdown", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("shutdown returned %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case <-shutdownChan:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a shutdown signal on the channel")
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/shutdown", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET shutdown returned %d, want 405", rec.Code)
	}
}

func TestShutdownDisabledInProduction(t *testing.T) {
	a := newTestApp(t, &fakeAIClient{configured: true})
	a.Config.Environment = "production"
	srv := NewServer(a)

	shutdownChan := make(chan struct{}, 1)
	srv.SetShutdownChannel(shutdownChan)

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/shutdown", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("shutdown returned %d, want 403", rec.Code)
	}

	select {
	case <-shutdownChan:
		t.Fatal("production shutdown request must not signal the channel")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/paper/ledger", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight returned %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}
