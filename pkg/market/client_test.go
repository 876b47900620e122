package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGetSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("X-Api-Key = %q", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTC" {
			t.Errorf("symbol = %q", got)
		}
		if got := r.URL.Query().Get("days"); got != "7" {
			t.Errorf("days = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol": "BTC", "candles": [
			{"time": "2026-08-01T00:00:00Z", "open": 100, "high": 105, "low": 95, "close": 102},
			{"time": "2026-08-02T00:00:00Z", "open": 102, "high": 108, "low": 101, "close": 107}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	candles, err := client.GetSeries(context.Background(), SeriesRequest{Symbol: "BTC", AssetType: "crypto", Days: 7})
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	if candles[1].Close != 107 {
		t.Errorf("close = %v, want 107", candles[1].Close)
	}
}

func TestGetSeriesEmptyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol": "BTC", "candles": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if _, err := client.GetSeries(context.Background(), SeriesRequest{Symbol: "BTC"}); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestGetSeriesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if _, err := client.GetSeries(context.Background(), SeriesRequest{Symbol: "BTC"}); err == nil {
		t.Error("expected error for 502")
	}
}

func TestGetQuoteCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"symbol": "ETH", "name": "Ethereum", "last_price": 3000, "change": 30, "change_pct": 1.0}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	for i := 0; i < 3; i++ {
		q, err := client.GetQuote(context.Background(), "ETH", "crypto")
		if err != nil {
			t.Fatalf("GetQuote: %v", err)
		}
		if q.LastPrice != 3000 {
			t.Errorf("LastPrice = %v", q.LastPrice)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("upstream hit %d times, want 1 (cached)", hits.Load())
	}
}

func TestTimeframeDays(t *testing.T) {
	tests := []struct {
		timeframe string
		want      int
	}{
		{"1d", 1},
		{"7d", 7},
		{"30d", 30},
		{"90d", 90},
		{"1y", 365},
		{"", 30},
		{"garbage", 30},
	}
	for _, tt := range tests {
		if got := TimeframeDays(tt.timeframe); got != tt.want {
			t.Errorf("TimeframeDays(%q) = %d, want %d", tt.timeframe, got, tt.want)
		}
	}
}
