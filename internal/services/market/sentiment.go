package market

import (
	"strings"

	"trademind/internal/models"
)

// Lightweight financial sentiment lexicon. Each bullish word found in a
// headline adds 0.3, each bearish word subtracts 0.3, clamped to [-1, 1].
var (
	bullishWords = []string{
		"surge", "jump", "rise", "gain", "climb", "soar", "rocket", "bull",
		"buy", "outperform", "upgrade", "beat", "record", "strong",
		"positive", "growth", "profit",
	}
	bearishWords = []string{
		"plunge", "drop", "fall", "sink", "dive", "crash", "bear", "sell",
		"underperform", "downgrade", "miss", "weak", "negative", "loss",
		"debt", "risk", "crisis",
	}
)

// ScoreText returns a sentiment score between -1.0 and 1.0 for a headline.
func ScoreText(text string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	score := 0.0
	for _, word := range bullishWords {
		if strings.Contains(lower, word) {
			score += 0.3
		}
	}
	for _, word := range bearishWords {
		if strings.Contains(lower, word) {
			score -= 0.3
		}
	}
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func sentimentLabel(score float64) string {
	if score > 0.1 {
		return "Positive"
	}
	if score < -0.1 {
		return "Negative"
	}
	return "Neutral"
}

func moodLabel(avg float64) string {
	mood := "Neutral"
	if avg > 0.1 {
		mood = "Bullish"
	}
	if avg > 0.4 {
		mood = "Strong Bullish"
	}
	if avg < -0.1 {
		mood = "Bearish"
	}
	if avg < -0.4 {
		mood = "Strong Bearish"
	}
	return mood
}

// maxHeadlines caps how many stories the dashboard shows.
const maxHeadlines = 10

// ScoreNews attaches per-item sentiment to headlines and aggregates the
// market mood. An empty input yields the "no recent news" placeholder.
func ScoreNews(items []models.NewsItem) ([]models.NewsItem, *models.NewsSentiment) {
	if len(items) == 0 {
		placeholder := []models.NewsItem{{
			Title:     "No recent news found",
			URL:       "#",
			Source:    "System",
			Sentiment: "Neutral",
			Score:     0,
		}}
		return placeholder, &models.NewsSentiment{Score: 0, Mood: "Neutral"}
	}

	total := 0.0
	scored := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		item.Score = round2(ScoreText(item.Title))
		item.Sentiment = sentimentLabel(item.Score)
		total += item.Score
		scored = append(scored, item)
	}
	avg := total / float64(len(scored))

	if len(scored) > maxHeadlines {
		scored = scored[:maxHeadlines]
	}
	return scored, &models.NewsSentiment{
		Score: round2(avg),
		Mood:  moodLabel(avg),
	}
}
