// Package signals provides technical indicator calculations over daily
// candle series. Candles are ordered oldest-first throughout.
package signals

import (
	"math"

	"trademind/internal/models"
)

// Closes extracts the close series from candles.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// SMA returns the simple moving average of the last period values.
// ok is false when the series is shorter than the period.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// EMASeries returns the exponential moving average aligned with values.
// Entries before the seed window are NaN; the seed is the SMA of the
// first period values.
func EMASeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[period-1] = ema
	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*k + ema
		out[i] = ema
	}
	return out
}

// RSI computes the Wilder-smoothed Relative Strength Index over the full
// series. Returns the neutral 50 when the series is too short.
func RSI(values []float64, period int) float64 {
	if len(values) < period+1 {
		return 50
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		g, l := 0.0, 0.0
		if change > 0 {
			g = change
		} else {
			l = -change
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the latest MACD(12,26,9) line and signal line values.
// When too few MACD points exist to seed the 9-period signal EMA, the
// signal falls back to the mean of the available points.
func MACD(values []float64) (macdLine, signalLine float64) {
	fast := EMASeries(values, 12)
	slow := EMASeries(values, 26)

	var macdSeries []float64
	for i := range values {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			macdSeries = append(macdSeries, fast[i]-slow[i])
		}
	}
	if len(macdSeries) == 0 {
		return 0, 0
	}
	macdLine = macdSeries[len(macdSeries)-1]

	if len(macdSeries) >= 9 {
		sig := EMASeries(macdSeries, 9)
		signalLine = sig[len(sig)-1]
	} else {
		sum := 0.0
		for _, v := range macdSeries {
			sum += v
		}
		signalLine = sum / float64(len(macdSeries))
	}
	return macdLine, signalLine
}

// Bollinger returns the upper, middle, and lower bands over the last
// period values with the given width in standard deviations. Shorter
// series use the full available window.
func Bollinger(values []float64, period int, width float64) (upper, mid, lower float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	if len(values) < period {
		period = len(values)
	}
	window := values[len(values)-period:]
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(period)
	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))
	return mean + width*std, mean, mean - width*std
}

// Ichimoku returns the latest span A and span B values for the
// (9, 26, 52) configuration. Windows clamp to the available series so a
// 30-bar series still gets a cloud.
func Ichimoku(candles []models.Candle) (spanA, spanB float64) {
	conv := midpoint(candles, 9)
	base := midpoint(candles, 26)
	spanA = (conv + base) / 2
	spanB = midpoint(candles, 52)
	return spanA, spanB
}

// midpoint is the Ichimoku line primitive: (highest high + lowest low)/2
// over the last window candles.
func midpoint(candles []models.Candle, window int) float64 {
	if len(candles) == 0 {
		return 0
	}
	if len(candles) < window {
		window = len(candles)
	}
	recent := candles[len(candles)-window:]
	hi, lo := recent[0].High, recent[0].Low
	for _, c := range recent[1:] {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	return (hi + lo) / 2
}

// OBV computes On-Balance Volume over the full series.
func OBV(candles []models.Candle) float64 {
	obv := 0.0
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			obv += float64(candles[i].Volume)
		case candles[i].Close < candles[i-1].Close:
			obv -= float64(candles[i].Volume)
		}
	}
	return obv
}

// ATR computes the Average True Range over the last period candles.
func ATR(candles []models.Candle, period int) float64 {
	if len(candles) < 2 {
		return 0
	}
	if len(candles) < period+1 {
		period = len(candles) - 1
	}
	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		hl := candles[i].High - candles[i].Low
		hc := math.Abs(candles[i].High - candles[i-1].Close)
		lc := math.Abs(candles[i].Low - candles[i-1].Close)
		sum += math.Max(hl, math.Max(hc, lc))
	}
	return sum / float64(period)
}

// FibonacciLevels computes retracement levels over the last lookback
// candles (at most 100 in practice).
func FibonacciLevels(candles []models.Candle, lookback int) map[string]float64 {
	if len(candles) == 0 {
		return map[string]float64{}
	}
	if len(candles) < lookback {
		lookback = len(candles)
	}
	recent := candles[len(candles)-lookback:]
	hi, lo := recent[0].High, recent[0].Low
	for _, c := range recent[1:] {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	diff := hi - lo
	return map[string]float64{
		"0.0":   round2(lo),
		"0.236": round2(lo + 0.236*diff),
		"0.382": round2(lo + 0.382*diff),
		"0.5":   round2(lo + 0.5*diff),
		"0.618": round2(lo + 0.618*diff),
		"0.786": round2(lo + 0.786*diff),
		"1.0":   round2(hi),
	}
}

// Patterns reports candlestick patterns present on the latest candle.
func Patterns(candles []models.Candle) []string {
	patterns := []string{}
	if len(candles) == 0 {
		return patterns
	}
	cur := candles[len(candles)-1]
	body := math.Abs(cur.Open - cur.Close)
	rng := cur.High - cur.Low

	// Doji: open and close virtually equal relative to the day's range
	if body <= rng*0.1 {
		patterns = append(patterns, "Doji")
	}

	// Hammer: long lower wick, small upper wick
	lowerWick := math.Min(cur.Open, cur.Close) - cur.Low
	upperWick := cur.High - math.Max(cur.Open, cur.Close)
	if lowerWick > 2*body && upperWick < body {
		patterns = append(patterns, "Hammer")
	}

	// Bullish engulfing: red candle swallowed by a green one
	if len(candles) >= 2 {
		prev := candles[len(candles)-2]
		if prev.Close < prev.Open && cur.Close > cur.Open &&
			cur.Open < prev.Close && cur.Close > prev.Open {
			patterns = append(patterns, "Bullish Engulfing")
		}
	}
	return patterns
}

// Compute builds the full indicator summary for a candle series.
func Compute(candles []models.Candle) *models.Indicators {
	if len(candles) == 0 {
		return &models.Indicators{
			RSIState:        "Neutral",
			MACDSignal:      "Bearish",
			IchimokuStatus:  "Neutral",
			Patterns:        []string{},
			FibonacciLevels: map[string]float64{},
		}
	}

	closeSeries := Closes(candles)
	latestClose := closeSeries[len(closeSeries)-1]

	rsi := RSI(closeSeries, 14)
	rsiState := "Neutral"
	if rsi > 70 {
		rsiState = "Overbought"
	} else if rsi < 30 {
		rsiState = "Oversold"
	}

	macdLine, signalLine := MACD(closeSeries)
	macdSignal := "Bearish"
	if macdLine > signalLine {
		macdSignal = "Bullish"
	}

	upper, _, lower := Bollinger(closeSeries, 20, 2)
	bbPosition := 0.5
	if upper != lower {
		bbPosition = (latestClose - lower) / (upper - lower)
	}

	var sma50, sma200 *float64
	goldenCross := false
	if v, ok := SMA(closeSeries, 50); ok {
		v = round2(v)
		sma50 = &v
	}
	if v, ok := SMA(closeSeries, 200); ok {
		v = round2(v)
		sma200 = &v
	}
	if sma50 != nil && sma200 != nil {
		goldenCross = *sma50 > *sma200
	}

	spanA, spanB := Ichimoku(candles)
	cloudTop := math.Max(spanA, spanB)
	cloudBottom := math.Min(spanA, spanB)
	ichimokuStatus := "Neutral"
	switch {
	case latestClose > cloudTop:
		ichimokuStatus = "Bullish (Above Cloud)"
	case latestClose < cloudBottom:
		ichimokuStatus = "Bearish (Below Cloud)"
	default:
		ichimokuStatus = "Congested (In Cloud)"
	}

	return &models.Indicators{
		RSI:             round2(rsi),
		RSIState:        rsiState,
		MACD:            round2(macdLine),
		MACDSignal:      macdSignal,
		BBPosition:      round2(bbPosition),
		CurrentPrice:    round2(latestClose),
		SMA50:           sma50,
		SMA200:          sma200,
		GoldenCross:     goldenCross,
		IchimokuStatus:  ichimokuStatus,
		ATR:             round2(ATR(candles, 14)),
		OBV:             round2(OBV(candles)),
		Patterns:        Patterns(candles),
		FibonacciLevels: FibonacciLevels(candles, 100),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
