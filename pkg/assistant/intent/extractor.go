// FILE: pkg/assistant/intent/extractor.go
// PURPOSE: Deterministic extraction of symbols, intent and language from user text

package intent

import (
	"regexp"
	"strings"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
)

// Asset types recognized by the extractor.
const (
	AssetCrypto = "crypto"
	AssetStock  = "stock"
)

// Symbol is one recognized asset identifier.
type Symbol struct {
	Code      string
	AssetType string
}

// knownSymbols maps ticker codes to asset types. IDX tickers and the large-cap
// US/crypto set cover what the market data provider serves.
var knownSymbols = map[string]string{
	// Crypto
	"BTC": AssetCrypto, "ETH": AssetCrypto, "SOL": AssetCrypto,
	"BNB": AssetCrypto, "XRP": AssetCrypto, "ADA": AssetCrypto,
	"DOGE": AssetCrypto, "DOT": AssetCrypto, "AVAX": AssetCrypto,
	// IDX
	"BBCA": AssetStock, "BBRI": AssetStock, "BMRI": AssetStock,
	"TLKM": AssetStock, "ASII": AssetStock, "GOTO": AssetStock,
	"ANTM": AssetStock, "UNVR": AssetStock, "ADRO": AssetStock,
	// US
	"AAPL": AssetStock, "TSLA": AssetStock, "GOOGL": AssetStock,
	"MSFT": AssetStock, "NVDA": AssetStock, "AMZN": AssetStock,
}

// symbolAliases maps spelled-out names (Indonesian and English usage) to codes.
var symbolAliases = map[string]string{
	"bitcoin":  "BTC",
	"ethereum": "ETH",
	"solana":   "SOL",
	"ripple":   "XRP",
	"cardano":  "ADA",
	"dogecoin": "DOGE",
	"apple":    "AAPL",
	"tesla":    "TSLA",
	"nvidia":   "NVDA",
}

// Keyword families. Indonesian first since that is the primary user base.
var (
	comparisonKeywords = []string{
		"bandingkan", "dibandingkan", "dibanding", "perbandingan",
		"compare", "comparison", "versus", " vs ", " vs.",
	}
	letterKeywords = []string{
		"surat", "buatkan surat", "draft surat", "letter",
	}
	visualizationKeywords = []string{
		"grafik", "diagram", "visualisasi", "chart", "plot",
		"tabel", "table", "pie", "bar chart",
	}
	marketKeywords = []string{
		"harga", "price", "naik", "turun", "candlestick", "ohlc",
		"market", "pasar", "saham", "crypto", "kripto", "koin",
	}
	// Category language that legitimizes multi-series output.
	categoryKeywords = []string{
		"kategori", "category", "per bulan", "per produk", "masing-masing",
		"breakdown", "jenis", "tiap",
	}
)

var wordPattern = regexp.MustCompile(`[A-Za-z]+`)

// Extraction is the full result of analyzing one message.
type Extraction struct {
	Symbols       []Symbol
	Comparison    bool
	Letter        bool
	Visualization bool
	MarketData    bool
	Language      string // "id" | "en"
}

// Extract runs every classifier over the message. Leaf operation: no
// dependencies, no I/O.
func Extract(message string) Extraction {
	return Extraction{
		Symbols:       ExtractSymbols(message),
		Comparison:    HasComparisonKeyword(message),
		Letter:        HasLetterIntent(message),
		Visualization: NeedsVisualization(message),
		MarketData:    HasMarketKeyword(message),
		Language:      DetectLanguage(message),
	}
}

// ExtractSymbols returns the recognized asset symbols in the message, in
// order of first appearance, deduplicated.
func ExtractSymbols(message string) []Symbol {
	var result []Symbol
	seen := make(map[string]bool)

	add := func(code string) {
		if seen[code] {
			return
		}
		seen[code] = true
		result = append(result, Symbol{Code: code, AssetType: knownSymbols[code]})
	}

	for _, word := range wordPattern.FindAllString(message, -1) {
		upper := strings.ToUpper(word)
		if _, ok := knownSymbols[upper]; ok && word == upper {
			// Tickers must appear uppercase; "ada" is an Indonesian word,
			// ADA is a coin.
			add(upper)
			continue
		}
		if code, ok := symbolAliases[strings.ToLower(word)]; ok {
			add(code)
		}
	}
	return result
}

// LookupSymbol reports whether code names a known asset and its type.
func LookupSymbol(code string) (string, bool) {
	t, ok := knownSymbols[strings.ToUpper(code)]
	return t, ok
}

// HasComparisonKeyword detects explicit comparison intent.
func HasComparisonKeyword(message string) bool {
	return containsAny(strings.ToLower(message), comparisonKeywords)
}

// HasLetterIntent detects the letter-generation keyword family.
func HasLetterIntent(message string) bool {
	return containsAny(strings.ToLower(message), letterKeywords)
}

// NeedsVisualization detects a generic chart/table request unrelated to
// market data.
func NeedsVisualization(message string) bool {
	return containsAny(strings.ToLower(message), visualizationKeywords)
}

// HasMarketKeyword detects market-data language.
func HasMarketKeyword(message string) bool {
	return containsAny(strings.ToLower(message), marketKeywords)
}

// HasCategoryLanguage reports whether the message legitimizes a multi-series
// answer (comparison or per-category phrasing).
func HasCategoryLanguage(message string) bool {
	lower := strings.ToLower(message)
	return containsAny(lower, comparisonKeywords) || containsAny(lower, categoryKeywords)
}

// indonesianMarkers are common function words; three or fewer-letter tokens
// like "di" are too noisy, so only distinctive ones are listed.
var indonesianMarkers = []string{
	"yang", "dan", "apa", "berapa", "bagaimana", "tolong", "adalah",
	"dengan", "untuk", "saya", "tidak", "bisa", "buatkan", "bandingkan",
	"kenapa", "naik", "turun",
}

// DetectLanguage returns "id" when the message reads as Indonesian, "en"
// otherwise. Used only to pick the response locale.
func DetectLanguage(message string) string {
	lower := " " + strings.ToLower(message) + " "
	hits := 0
	for _, marker := range indonesianMarkers {
		if strings.Contains(lower, " "+marker+" ") {
			hits++
		}
	}
	if hits >= 1 {
		return "id"
	}
	return "en"
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// labelValuePattern matches "Label 123" / "Label: 123" pairs the user types
// when supplying their own data ("Januari 100, Februari 200").
var labelValuePattern = regexp.MustCompile(`([A-Za-z][A-Za-z ]{1,30}?)\s*[:=]?\s*(\d[\d.,]*)`)

// ExtractUserData derives labels and a point count from the user's own
// message. It is deterministic: the same message always yields the same data.
// Returns nil when the message carries no label/value pairs.
func ExtractUserData(message string) *assistant.ExtractedUserData {
	matches := labelValuePattern.FindAllStringSubmatch(message, -1)
	if len(matches) < 2 {
		// A single pair is more likely a quantity in prose than a dataset.
		return nil
	}

	data := &assistant.ExtractedUserData{}
	seen := make(map[string]bool)
	for _, m := range matches {
		label := strings.TrimSpace(m[1])
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		data.Labels = append(data.Labels, label)
	}
	data.DataPoints = len(data.Labels)
	return data
}
