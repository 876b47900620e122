// FILE: pkg/assistant/intent/market.go
// PURPOSE: Market intent scoring and symbol recovery from conversation history

package intent

import (
	"regexp"
	"strings"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
)

// MarketIntent is the analyzer's view of whether (and which) market data the
// message asks for.
type MarketIntent struct {
	Symbol     string
	AssetType  string
	Timeframe  string // "1d", "7d", "30d", "90d", "1y"
	Confidence float64
}

// HighConfidence is the threshold above which the visualization resolver may
// build a chart even without structured model output.
const HighConfidence = 0.7

var timeframePatterns = []struct {
	keywords  []string
	timeframe string
}{
	{[]string{"hari ini", "today", "24 jam", "1d"}, "1d"},
	{[]string{"minggu", "week", "7 hari", "7d"}, "7d"},
	{[]string{"3 bulan", "kuartal", "quarter", "90d"}, "90d"},
	{[]string{"tahun", "year", "1y", "setahun"}, "1y"},
	{[]string{"bulan", "month", "30 hari", "30d"}, "30d"},
}

// AnalyzeMarket scores market intent for a message. Confidence stacks: a
// recognized symbol is the strongest signal, market keywords add the rest.
func AnalyzeMarket(message string) MarketIntent {
	mi := MarketIntent{Timeframe: "30d"}

	symbols := ExtractSymbols(message)
	if len(symbols) > 0 {
		mi.Symbol = symbols[0].Code
		mi.AssetType = symbols[0].AssetType
		mi.Confidence += 0.6
	}
	if HasMarketKeyword(message) {
		mi.Confidence += 0.3
	}
	if NeedsVisualization(message) {
		mi.Confidence += 0.1
	}
	if mi.Confidence > 1 {
		mi.Confidence = 1
	}

	lower := strings.ToLower(message)
	for _, tp := range timeframePatterns {
		if containsAny(lower, tp.keywords) {
			mi.Timeframe = tp.timeframe
			break
		}
	}
	return mi
}

// recommendationHeader marks the start of an assistant recommendation block.
// The boundary is heuristic: everything from the header to the next blank
// line is dropped before history is re-scanned for symbols, so the assistant
// does not quote its own prior suggestions back as new symbols.
var recommendationHeader = regexp.MustCompile(`(?im)^\s*(\*\*)?(rekomendasi|recommendation|saran)\b`)

// StripRecommendations removes recommendation sections from assistant text.
func StripRecommendations(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string
	skipping := false
	for _, line := range lines {
		if recommendationHeader.MatchString(line) {
			skipping = true
			continue
		}
		if skipping {
			if strings.TrimSpace(line) == "" {
				skipping = false
			}
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// HistorySymbols scans up to maxTurns prior turns, most recent first, for
// asset symbols. Assistant turns are stripped of recommendation sections
// before scanning. Order of the result is most-recent-first.
func HistorySymbols(history []assistant.Turn, maxTurns int) []Symbol {
	var result []Symbol
	seen := make(map[string]bool)

	scanned := 0
	for i := len(history) - 1; i >= 0 && scanned < maxTurns; i-- {
		turn := history[i]
		scanned++

		text := turn.Content
		if turn.Role != "user" {
			text = StripRecommendations(text)
		}
		for _, sym := range ExtractSymbols(text) {
			if seen[sym.Code] {
				continue
			}
			seen[sym.Code] = true
			result = append(result, sym)
		}
	}
	return result
}
