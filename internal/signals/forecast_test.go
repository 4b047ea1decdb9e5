package signals

import (
	"testing"

	"trademind/internal/models"
)

func TestForecastNeedsFiftyCandles(t *testing.T) {
	f := Forecast(trendCandles(49, 100, 1))
	if f.Error == "" {
		t.Error("expected error on short series")
	}
	if f.PredictedPrice != 0 {
		t.Errorf("short series should not predict, got %v", f.PredictedPrice)
	}
}

func TestForecastLinearUptrend(t *testing.T) {
	f := Forecast(trendCandles(100, 100, 1))
	if f.Error != "" {
		t.Fatalf("unexpected error: %s", f.Error)
	}
	if f.Direction != "Up" {
		t.Errorf("Direction: got %s", f.Direction)
	}
	// A perfectly linear series extrapolates exactly: last close 199, next 200.
	if f.PredictedPrice != 200 {
		t.Errorf("PredictedPrice: got %v", f.PredictedPrice)
	}
	if f.Confidence != "High" {
		t.Errorf("perfect fit should be High confidence, got %s (rmse=%v)", f.Confidence, f.ModelErrorRMSE)
	}
}

func TestForecastDowntrend(t *testing.T) {
	f := Forecast(trendCandles(100, 500, -1))
	if f.Error != "" {
		t.Fatalf("unexpected error: %s", f.Error)
	}
	if f.Direction != "Down" {
		t.Errorf("Direction: got %s", f.Direction)
	}
	if f.PredictedChangePercent >= 0 {
		t.Errorf("change percent should be negative, got %v", f.PredictedChangePercent)
	}
}

func TestForecastFlatSeries(t *testing.T) {
	candles := make([]models.Candle, 60)
	for i := range candles {
		candles[i] = models.Candle{Open: 100, High: 100, Low: 100, Close: 100, Volume: 1}
	}
	f := Forecast(candles)
	if f.Error != "" {
		t.Fatalf("unexpected error: %s", f.Error)
	}
	if f.PredictedPrice != 100 {
		t.Errorf("flat series should predict the same price, got %v", f.PredictedPrice)
	}
	if f.Direction != "Down" {
		// next == current is not strictly greater, so it reports Down
		t.Errorf("Direction: got %s", f.Direction)
	}
}
