package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trademind/internal/clients/gemini"
	"trademind/internal/clients/newsapi"
	"trademind/internal/clients/yahoo"
	"trademind/internal/common"
	"trademind/internal/interfaces"
	"trademind/internal/services/chat"
	"trademind/internal/services/ledger"
	"trademind/internal/services/market"
	"trademind/internal/services/watchlist"
	"trademind/internal/storage"
)

// App holds all initialized services, clients, and storage.
// It is the shared core used by cmd/trademind-server and the handler tests.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	QuoteClient      interfaces.QuoteClient
	NewsClient       interfaces.NewsClient
	AIClient         interfaces.AIClient
	LedgerService    interfaces.LedgerService
	MarketService    interfaces.MarketService
	WatchlistService interfaces.WatchlistService
	ChatService      interfaces.ChatService
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes all services and clients.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Check provided path, TRADEMIND_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("TRADEMIND_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "trademind.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/trademind.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	if config.Storage.Internal.Path != "" && !filepath.IsAbs(config.Storage.Internal.Path) {
		config.Storage.Internal.Path = filepath.Join(binDir, config.Storage.Internal.Path)
	}
	if config.Storage.Paper.Path != "" && !filepath.IsAbs(config.Storage.Paper.Path) {
		config.Storage.Paper.Path = filepath.Join(binDir, config.Storage.Paper.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	return NewAppWithConfig(config, logger)
}

// NewAppWithConfig initializes the application from an already-loaded
// configuration. Used directly by tests.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()
	ctx := context.Background()

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// API clients
	yahooOpts := []yahoo.ClientOption{
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	}
	if config.Clients.Yahoo.BaseURL != "" {
		yahooOpts = append(yahooOpts, yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL))
	}
	quoteClient := yahoo.NewClient(yahooOpts...)

	var newsClient interfaces.NewsClient
	if config.Clients.News.APIKey != "" {
		newsClient = newsapi.NewClient(config.Clients.News.APIKey,
			newsapi.WithLogger(logger),
			newsapi.WithRateLimit(config.Clients.News.RateLimit),
		)
	} else {
		logger.Warn().Msg("News API key not configured - headline fallback will be unavailable")
	}

	aiClient, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
		gemini.WithLogger(logger),
		gemini.WithModel(config.Clients.Gemini.Model),
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Gemini client - AI analysis will be unavailable")
		aiClient, _ = gemini.NewClient(ctx, "")
	}
	if !aiClient.IsConfigured() {
		logger.Warn().Msg("Gemini API key not configured - AI analysis will be unavailable")
	}

	// Services
	marketService := market.NewService(quoteClient, newsClient, config.Market.GetCacheTTL(), logger)
	ledgerService := ledger.NewService(storageManager, logger)
	watchlistService := watchlist.NewService(storageManager, logger)
	chatService := chat.NewService(aiClient, marketService, storageManager, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		QuoteClient:      quoteClient,
		NewsClient:       newsClient,
		AIClient:         aiClient,
		LedgerService:    ledgerService,
		MarketService:    marketService,
		WatchlistService: watchlistService,
		ChatService:      chatService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartMarketScheduler launches the background snapshot refresh goroutine.
func (a *App) StartMarketScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startMarketScheduler(schedulerCtx, a.MarketService, a.Config, a.Logger)
}
