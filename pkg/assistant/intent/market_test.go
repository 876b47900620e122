package intent

import (
	"testing"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
)

func TestAnalyzeMarket(t *testing.T) {
	tests := []struct {
		name          string
		message       string
		wantSymbol    string
		wantTimeframe string
		wantHigh      bool // confidence >= HighConfidence
	}{
		{
			name:          "symbol plus market keyword",
			message:       "berapa harga BTC hari ini",
			wantSymbol:    "BTC",
			wantTimeframe: "1d",
			wantHigh:      true,
		},
		{
			name:          "bare symbol is not confident enough",
			message:       "BTC",
			wantSymbol:    "BTC",
			wantTimeframe: "30d",
			wantHigh:      false,
		},
		{
			name:          "keyword without symbol",
			message:       "kenapa pasar crypto turun",
			wantSymbol:    "",
			wantTimeframe: "30d",
			wantHigh:      false,
		},
		{
			name:          "weekly timeframe with chart request",
			message:       "grafik ETH satu minggu terakhir",
			wantSymbol:    "ETH",
			wantTimeframe: "7d",
			wantHigh:      true,
		},
		{
			name:          "yearly timeframe",
			message:       "harga saham TLKM selama setahun",
			wantSymbol:    "TLKM",
			wantTimeframe: "1y",
			wantHigh:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mi := AnalyzeMarket(tt.message)

			if mi.Symbol != tt.wantSymbol {
				t.Errorf("Symbol = %q, want %q", mi.Symbol, tt.wantSymbol)
			}
			if mi.Timeframe != tt.wantTimeframe {
				t.Errorf("Timeframe = %q, want %q", mi.Timeframe, tt.wantTimeframe)
			}
			if high := mi.Confidence >= HighConfidence; high != tt.wantHigh {
				t.Errorf("Confidence = %.2f, high = %v, want %v", mi.Confidence, high, tt.wantHigh)
			}
		})
	}
}

func TestHistorySymbols(t *testing.T) {
	history := []assistant.Turn{
		{Role: "user", Content: "berapa harga BTC"},
		{Role: "assistant", Content: "BTC sedang naik.\n\nRekomendasi: pertimbangkan juga SOL\n\nSemoga membantu."},
		{Role: "user", Content: "kalau ETH bagaimana"},
	}

	symbols := HistorySymbols(history, 5)

	codes := make(map[string]bool)
	for _, s := range symbols {
		codes[s.Code] = true
	}

	if !codes["ETH"] || !codes["BTC"] {
		t.Errorf("expected ETH and BTC in history symbols, got %v", symbols)
	}
	if codes["SOL"] {
		t.Error("SOL came from a recommendation block and must be stripped")
	}
	// Most recent turn scans first.
	if len(symbols) == 0 || symbols[0].Code != "ETH" {
		t.Errorf("expected ETH first, got %v", symbols)
	}
}

func TestHistorySymbolsBounded(t *testing.T) {
	history := []assistant.Turn{
		{Role: "user", Content: "harga BTC"},
		{Role: "user", Content: "halo"},
		{Role: "user", Content: "apa kabar"},
		{Role: "user", Content: "terima kasih"},
	}

	// Only the last 3 turns are scanned; BTC is out of the window.
	symbols := HistorySymbols(history, 3)
	if len(symbols) != 0 {
		t.Errorf("expected no symbols inside the window, got %v", symbols)
	}
}
