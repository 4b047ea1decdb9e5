package signals

import (
	"math"

	"trademind/internal/models"
)

// minForecastCandles is the shortest series the forecaster will model.
const minForecastCandles = 50

// Forecast predicts the next close with an ordinary least squares trend
// fit. The model trains on the first 80% of the series and scores RMSE on
// the held-out tail; confidence is derived from RMSE relative to the
// current price.
func Forecast(candles []models.Candle) *models.Forecast {
	if len(candles) < minForecastCandles {
		return &models.Forecast{Error: "not enough data for prediction (need 50+ candles)"}
	}

	closeSeries := Closes(candles)
	current := closeSeries[len(closeSeries)-1]
	if current <= 0 {
		return &models.Forecast{Error: "invalid price series"}
	}

	// Holdout validation: fit on the head, score on the tail.
	split := len(closeSeries) * 4 / 5
	slope, intercept, ok := linearFit(closeSeries[:split])
	if !ok {
		return &models.Forecast{Error: "data validation failed"}
	}
	var sqErr float64
	for i := split; i < len(closeSeries); i++ {
		pred := intercept + slope*float64(i)
		d := pred - closeSeries[i]
		sqErr += d * d
	}
	rmse := math.Sqrt(sqErr / float64(len(closeSeries)-split))

	// Refit on the full series for the actual prediction.
	slope, intercept, ok = linearFit(closeSeries)
	if !ok {
		return &models.Forecast{Error: "data validation failed"}
	}
	next := intercept + slope*float64(len(closeSeries))
	change := (next - current) / current * 100

	confidence := "Medium"
	if rmse < current*0.02 {
		confidence = "High"
	} else if rmse > current*0.05 {
		confidence = "Low"
	}

	direction := "Down"
	if next > current {
		direction = "Up"
	}

	return &models.Forecast{
		PredictedPrice:         round2(next),
		PredictedChangePercent: round2(change),
		Direction:              direction,
		Confidence:             confidence,
		ModelErrorRMSE:         round2(rmse),
	}
}

// linearFit returns the OLS slope and intercept of values against their
// indices. ok is false for degenerate inputs.
func linearFit(values []float64) (slope, intercept float64, ok bool) {
	n := float64(len(values))
	if n < 2 {
		return 0, 0, false
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, false
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}
