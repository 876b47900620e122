package intent

import (
	"testing"
)

func TestExtractSymbols(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{
			name:    "no symbols",
			message: "bagaimana cara mengatur keuangan bulanan",
			want:    nil,
		},
		{
			name:    "uppercase ticker",
			message: "berapa harga BTC hari ini",
			want:    []string{"BTC"},
		},
		{
			name:    "lowercase ticker is not a symbol",
			message: "tidak ada btc di sini",
			want:    nil,
		},
		{
			name:    "ada the word is not ADA the coin",
			message: "apakah ada laporan baru",
			want:    nil,
		},
		{
			name:    "alias resolves to code",
			message: "bandingkan bitcoin dengan ethereum",
			want:    []string{"BTC", "ETH"},
		},
		{
			name:    "dedup keeps first appearance order",
			message: "BTC turun, bitcoin naik, lalu ETH",
			want:    []string{"BTC", "ETH"},
		},
		{
			name:    "idx ticker",
			message: "analisa saham BBCA dong",
			want:    []string{"BBCA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSymbols(tt.message)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d symbols, want %d (%v)", len(got), len(tt.want), got)
			}
			for i, sym := range got {
				if sym.Code != tt.want[i] {
					t.Errorf("symbol[%d] = %s, want %s", i, sym.Code, tt.want[i])
				}
			}
		})
	}
}

func TestKeywordClassifiers(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		comparison bool
		letter     bool
		viz        bool
	}{
		{"comparison indonesian", "bandingkan BTC dan ETH", true, false, false},
		{"comparison vs", "BTC vs ETH mana yang lebih baik", true, false, false},
		{"letter", "buatkan surat pengunduran diri", false, true, false},
		{"visualization", "buatkan grafik penjualan per bulan", false, false, true},
		{"plain", "apa kabar", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := Extract(tt.message)
			if ext.Comparison != tt.comparison {
				t.Errorf("Comparison = %v, want %v", ext.Comparison, tt.comparison)
			}
			if ext.Letter != tt.letter {
				t.Errorf("Letter = %v, want %v", ext.Letter, tt.letter)
			}
			if ext.Visualization != tt.viz {
				t.Errorf("Visualization = %v, want %v", ext.Visualization, tt.viz)
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"berapa harga BTC yang sekarang", "id"},
		{"what is the current price of BTC", "en"},
		{"tolong buatkan laporan untuk saya", "id"},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.message); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestExtractUserData(t *testing.T) {
	t.Run("label value pairs", func(t *testing.T) {
		data := ExtractUserData("Penjualan: Januari 100, Februari 200, Maret 300")
		if data == nil {
			t.Fatal("expected extracted data, got nil")
		}
		if data.DataPoints != 3 {
			t.Errorf("DataPoints = %d, want 3", data.DataPoints)
		}
		want := []string{"Januari", "Februari", "Maret"}
		for i, label := range data.Labels {
			if label != want[i] {
				t.Errorf("Labels[%d] = %q, want %q", i, label, want[i])
			}
		}
	})

	t.Run("single pair is prose not data", func(t *testing.T) {
		if data := ExtractUserData("saya punya stok 50"); data != nil {
			t.Errorf("expected nil, got %+v", data)
		}
	})

	t.Run("no numbers", func(t *testing.T) {
		if data := ExtractUserData("tolong buatkan surat"); data != nil {
			t.Errorf("expected nil, got %+v", data)
		}
	})
}
