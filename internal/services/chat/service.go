// Package chat provides AI chat and chart analysis backed by Gemini,
// grounded in live indicator data when a ticker is supplied.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"trademind/internal/common"
	"trademind/internal/interfaces"
	"trademind/internal/models"
)

// ErrNotConfigured is returned when no Gemini API key is available.
var ErrNotConfigured = errors.New("gemini api key not configured")

// maxImageBytes caps chart image downloads.
const maxImageBytes = 8 * 1024 * 1024

// generalTicker is the sentinel meaning "no specific symbol".
const generalTicker = "General"

// Compile-time interface check
var _ interfaces.ChatService = (*Service)(nil)

// Service implements ChatService
type Service struct {
	ai         interfaces.AIClient
	market     interfaces.MarketService
	storage    interfaces.StorageManager
	logger     *common.Logger
	httpClient *http.Client
}

// NewService creates a new chat service
func NewService(ai interfaces.AIClient, market interfaces.MarketService, storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		ai:      ai,
		market:  market,
		storage: storage,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Chat answers a free-form question, optionally grounded in a chart image
// and the ticker's live market context.
func (s *Service) Chat(ctx context.Context, userID, message, imageURL, ticker string) (string, error) {
	if !s.ai.IsConfigured() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message is required")
	}

	prompt := chatPersona
	if ticker != "" && ticker != generalTicker {
		if snap, err := s.market.GetSnapshot(ctx, ticker); err == nil && len(snap.MarketData) > 0 {
			latest := snap.MarketData[len(snap.MarketData)-1]
			prompt += fmt.Sprintf("\n\nMarket context for %s:\n- Price: %.2f\n- Volume: %d\n- Date: %s\n",
				snap.Ticker, latest.Close, latest.Volume, latest.Time)
		}
	}
	prompt += "\n\nUser question: " + message

	var response string
	var err error
	if imageURL != "" {
		image, mimeType, dlErr := s.downloadImage(ctx, imageURL)
		if dlErr != nil {
			s.logger.Warn().Err(dlErr).Msg("Chart image download failed, answering without it")
			response, err = s.ai.GenerateText(ctx, prompt)
		} else {
			response, err = s.ai.GenerateWithImage(ctx, prompt, image, mimeType)
		}
	} else {
		response, err = s.ai.GenerateText(ctx, prompt)
	}
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	record := &models.AnalysisRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		Ticker:       ticker,
		StrategyType: "Chat",
		ImageURL:     imageURL,
		Response:     response,
		CreatedAt:    time.Now(),
	}
	if err := s.storage.PaperStore().SaveAnalysis(ctx, record); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save chat history")
	}

	return response, nil
}

// Analyze runs a named strategy review over a chart image, confirmed
// against calculated indicators when a ticker is supplied, and records
// the result.
func (s *Service) Analyze(ctx context.Context, userID, imageURL, mode, ticker string) (*models.AnalysisRecord, error) {
	if !s.ai.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if imageURL == "" {
		return nil, fmt.Errorf("image_url is required")
	}

	image, mimeType, err := s.downloadImage(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download chart image: %w", err)
	}

	prompt := strategyPrompt(mode)
	if ticker != "" && ticker != generalTicker {
		if snap, snapErr := s.market.GetSnapshot(ctx, ticker); snapErr == nil {
			prompt += formatQuantContext(snap.Indicators)
		}
	}
	prompt += "\n\n" + outputFormat

	raw, err := s.ai.GenerateWithImage(ctx, prompt, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("analysis generation failed: %w", err)
	}

	record := &models.AnalysisRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		Ticker:       ticker,
		StrategyType: mode,
		ImageURL:     imageURL,
		Response:     stripJSONFences(raw),
		CreatedAt:    time.Now(),
	}
	if err := s.storage.PaperStore().SaveAnalysis(ctx, record); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save analysis history")
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("mode", record.StrategyType).
		Str("ticker", ticker).
		Msg("Chart analysis complete")
	return record, nil
}

// History lists the user's saved analyses, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*models.AnalysisRecord, error) {
	return s.storage.PaperStore().ListAnalyses(ctx, userID, limit)
}

// downloadImage fetches a chart image, enforcing the size cap and sniffing
// the content type.
func (s *Service) downloadImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image")
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}
