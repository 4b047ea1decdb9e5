package chat

import (
	"fmt"
	"sort"
	"strings"

	"trademind/internal/models"
)

// strategyPrompts maps analysis modes to their system prompts.
var strategyPrompts = map[string]string{
	models.StrategyGeneral: `Act as a professional financial analyst. Analyze this financial chart (Stock, Crypto, Forex, or Commodity).
Identify the overall trend, key support/resistance levels, and volume profile.
Provide a summary of the market structure and the asset's current phase.`,

	models.StrategyTrap: `Act as a professional trader specialized in "Trap Trading".
Analyze this chart specifically looking for Bull Traps or Bear Traps.
Identify wicks that rejected key levels, fake-outs, or liquidity grabs.
Confidently state if a trap is present or forming on this asset.`,

	models.StrategyReversal: `Act as a counter-trend specialist. Look for potential reversal patterns (Double Top/Bottom, Head & Shoulders, Wedge).
Analyze momentum divergence if visible (or infer from candle strength).
Identify entry criteria for a reversal trade.`,

	models.StrategyMomentum: `Act as a momentum day trader. Analyze this chart for "Gap and Go" or strong trend continuation setups.
Look for strong breakout candles and consolidation flags.
Suggest a quick scalp entry and tight stop loss.`,

	models.StrategyElliott: `Act as an Elliott Wave practitioner. Analyze the market structure for 5-wave motive and 3-wave corrective phases.
Identify the current wave count (e.g., "Wave 3 of 5").
Project potential fibonacci extension targets based on the wave structure.`,

	models.StrategyWyckoff: `Act as a Wyckoff Method expert. Analyze the market phases (Accumulation, Markup, Distribution, Markdown).
Look for Specific events: Springs, Upthrusts (UTAD), Sign of Strength (SOS).
Determine if the smart money is accumulating or distributing positions.`,

	models.StrategyHarmonic: `Act as a Harmonic Pattern trader. Scan the chart for XABCD patterns (Gartley, Butterfly, Bat, Crab).
Identify potential Reversal Zones (PRZ) based on fibonacci ratios.
Confirm validity of potential patterns.`,
}

// outputFormat instructs the model to return machine-readable analysis.
const outputFormat = `Return the response strictly as a JSON object with the following keys:
{
    "Detected Pattern": "Name of pattern found or 'None'",
    "Strategy": "Actionable advice based on the mode",
    "Entry Price": "Specific price or 'Market'",
    "Stop Loss": "Specific price",
    "Risk Level": "High/Medium/Low"
}
Do not add markdown formatting like ` + "```json ... ```" + `. Just the raw JSON string.`

// chatPersona frames free-form chat answers.
const chatPersona = `You are TradeMind, a concise and pragmatic trading assistant.
Answer the user's question about markets, trading, or the chart provided.
Be direct, mention concrete levels or indicators when relevant, and remind
the user this is not financial advice only when recommending an action.`

// strategyPrompt returns the prompt for a mode, defaulting to the general
// analysis persona for unknown modes.
func strategyPrompt(mode string) string {
	if p, ok := strategyPrompts[mode]; ok {
		return p
	}
	return strategyPrompts[models.StrategyGeneral]
}

// formatQuantContext renders indicator data as a prompt section so the
// model can cross-check visual patterns against calculated values.
func formatQuantContext(ind *models.Indicators) string {
	if ind == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\n**Quantitative Technical Data (Calculated):**\n")
	sb.WriteString(fmt.Sprintf("- RSI: %.2f (%s)\n", ind.RSI, ind.RSIState))
	sb.WriteString(fmt.Sprintf("- MACD: %.2f (%s)\n", ind.MACD, ind.MACDSignal))
	sb.WriteString(fmt.Sprintf("- Bollinger Position: %.2f\n", ind.BBPosition))
	sb.WriteString(fmt.Sprintf("- Current Price: %.2f\n", ind.CurrentPrice))
	if ind.SMA50 != nil {
		sb.WriteString(fmt.Sprintf("- SMA50: %.2f\n", *ind.SMA50))
	}
	if ind.SMA200 != nil {
		sb.WriteString(fmt.Sprintf("- SMA200: %.2f\n", *ind.SMA200))
	}
	sb.WriteString(fmt.Sprintf("- Golden Cross: %t\n", ind.GoldenCross))
	sb.WriteString(fmt.Sprintf("- Ichimoku: %s\n", ind.IchimokuStatus))
	sb.WriteString(fmt.Sprintf("- ATR: %.2f\n", ind.ATR))
	if len(ind.Patterns) > 0 {
		sb.WriteString(fmt.Sprintf("- Candle Patterns: %s\n", strings.Join(ind.Patterns, ", ")))
	}
	if len(ind.FibonacciLevels) > 0 {
		levels := make([]string, 0, len(ind.FibonacciLevels))
		for k := range ind.FibonacciLevels {
			levels = append(levels, k)
		}
		sort.Strings(levels)
		for _, k := range levels {
			sb.WriteString(fmt.Sprintf("- Fib %s: %.2f\n", k, ind.FibonacciLevels[k]))
		}
	}
	sb.WriteString("\nUse this data to confirm visual patterns. E.g. if RSI is > 70, confirm overbought conditions visually.\n")
	return sb.String()
}

// stripJSONFences removes markdown code fences the model sometimes wraps
// around its JSON despite instructions.
func stripJSONFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
