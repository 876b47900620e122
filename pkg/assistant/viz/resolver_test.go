package viz

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/intent"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/policy"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/market"
)

// fakeFetcher serves canned candles and quotes; symbols listed in failing
// return an error.
type fakeFetcher struct {
	failing map[string]bool
}

func (f *fakeFetcher) GetSeries(_ context.Context, req market.SeriesRequest) ([]market.Candle, error) {
	if f.failing[req.Symbol] {
		return nil, fmt.Errorf("upstream down for %s", req.Symbol)
	}
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]market.Candle, 3)
	for i := range candles {
		candles[i] = market.Candle{
			Time:  base.AddDate(0, 0, i),
			Open:  100 + float64(i),
			High:  105 + float64(i),
			Low:   95 + float64(i),
			Close: 102 + float64(i),
		}
	}
	return candles, nil
}

func (f *fakeFetcher) GetQuote(_ context.Context, symbol, assetType string) (*market.Quote, error) {
	if f.failing[symbol] {
		return nil, fmt.Errorf("upstream down for %s", symbol)
	}
	return &market.Quote{
		Symbol:    symbol,
		Name:      symbol,
		AssetType: assetType,
		LastPrice: 104,
		Change:    2,
		ChangePct: 1.96,
	}, nil
}

func testResolver(failing ...string) *Resolver {
	fail := make(map[string]bool)
	for _, s := range failing {
		fail[s] = true
	}
	return NewResolver(&fakeFetcher{failing: fail}, log.New(io.Discard, "", 0))
}

func marketInput(message string) Input {
	return Input{
		Mode:       assistant.ModeMarketAnalysis,
		RawText:    message,
		Extraction: intent.Extract(message),
		Market:     intent.AnalyzeMarket(message),
	}
}

func TestRouterChartWinsOutright(t *testing.T) {
	routed := &assistant.ChartSpec{Type: policy.ChartLine, Symbol: "BTC"}

	in := marketInput("bandingkan BTC dan ETH")
	in.RouterChart = routed

	res := testResolver().Resolve(context.Background(), in)

	require.NotNil(t, res)
	assert.Same(t, routed, res.Chart)
	assert.Empty(t, res.Charts)
}

func TestComparisonChart(t *testing.T) {
	res := testResolver().Resolve(context.Background(), marketInput("bandingkan BTC dan ETH"))

	require.NotNil(t, res)
	require.NotNil(t, res.Chart)
	assert.Equal(t, policy.ChartComparison, res.Chart.Type)
	assert.Equal(t, []string{"BTC", "ETH"}, res.Chart.YKeys)
	require.Len(t, res.Chart.ComparisonAssets, 2)
	assert.Equal(t, "BTC", res.Chart.ComparisonAssets[0].Symbol)
	assert.NotEmpty(t, res.Chart.Data)

	// Every merged row is normalized percent change keyed by date.
	for _, row := range res.Chart.Data {
		assert.Contains(t, row, "time")
	}
}

func TestComparisonRecoversSymbolsFromHistory(t *testing.T) {
	in := marketInput("bandingkan dengan yang lain dong")
	in.History = []assistant.Turn{
		{Role: "user", Content: "berapa harga BTC"},
		{Role: "assistant", Content: "BTC sedang naik."},
		{Role: "user", Content: "kalau ETH?"},
	}

	res := testResolver().Resolve(context.Background(), in)

	require.NotNil(t, res)
	require.NotNil(t, res.Chart)
	assert.Equal(t, policy.ChartComparison, res.Chart.Type)
	assert.Len(t, res.Chart.ComparisonAssets, 2)
}

func TestComparisonPairsCurrentSymbolWithSameAssetType(t *testing.T) {
	in := marketInput("bandingkan BTC dengan yang kemarin")
	in.History = []assistant.Turn{
		{Role: "user", Content: "harga saham TLKM"}, // stock, wrong type
		{Role: "user", Content: "harga ETH"},        // crypto, pairs
	}

	res := testResolver().Resolve(context.Background(), in)

	require.NotNil(t, res)
	require.NotNil(t, res.Chart)
	codes := []string{res.Chart.ComparisonAssets[0].Symbol, res.Chart.ComparisonAssets[1].Symbol}
	assert.Contains(t, codes, "BTC")
	assert.Contains(t, codes, "ETH")
	assert.NotContains(t, codes, "TLKM")
}

func TestComparisonDegradesWhenFetchesFail(t *testing.T) {
	res := testResolver("BTC", "ETH").Resolve(context.Background(), marketInput("bandingkan BTC dan ETH"))

	require.NotNil(t, res)
	assert.Nil(t, res.Chart)
	assert.NotEmpty(t, res.Diagnostic)
}

func TestStructuredChartWithUserData(t *testing.T) {
	in := Input{
		Mode:    assistant.ModeBusinessAdmin,
		RawText: "berikut grafiknya",
		Structured: &assistant.CandidateResponse{
			Action:    assistant.ActionShowChart,
			ChartType: policy.ChartBar,
			Title:     "Penjualan",
			XKey:      "bulan",
			YKey:      assistant.YKeys{"penjualan"},
			Data: []map[string]any{
				{"bulan": "Januari", "penjualan": 100.0},
				{"bulan": "Februari", "penjualan": 200.0},
			},
			Message: "Penjualan naik di Februari.",
		},
		Extraction: intent.Extract("buatkan grafik penjualan januari 100 februari 200"),
		Market:     intent.AnalyzeMarket("buatkan grafik penjualan januari 100 februari 200"),
	}

	res := testResolver().Resolve(context.Background(), in)

	require.NotNil(t, res)
	require.NotNil(t, res.Chart)
	assert.Equal(t, policy.ChartBar, res.Chart.Type)
	assert.Len(t, res.Chart.Data, 2)
	assert.Equal(t, "Penjualan naik di Februari.", res.Narrative)
}

func TestStructuredChartFetchFailureKeepsProse(t *testing.T) {
	msg := "grafik BTC minggu ini"
	in := marketInput(msg)
	in.Structured = &assistant.CandidateResponse{
		Action:    assistant.ActionShowChart,
		ChartType: policy.ChartLine,
		Symbol:    "BTC",
		XKey:      "time",
		YKey:      assistant.YKeys{"close"},
		Data:      []map[string]any{{"time": "2026-08-01", "close": 1.0}},
		Message:   "BTC bergerak sideways.",
	}

	res := testResolver("BTC").Resolve(context.Background(), in)

	require.NotNil(t, res)
	assert.Nil(t, res.Chart)
	assert.Equal(t, "BTC bergerak sideways.", res.Narrative)
	assert.Contains(t, res.Diagnostic, "BTC")
}

func TestDetectedSymbolFallback(t *testing.T) {
	// High-confidence market ask, model refused to emit structured output.
	res := testResolver().Resolve(context.Background(), marketInput("berapa harga BTC hari ini"))

	require.NotNil(t, res)
	require.NotNil(t, res.Chart)
	assert.Equal(t, "BTC", res.Chart.Symbol)
	assert.Equal(t, policy.ChartLine, res.Chart.Type)
	assert.Equal(t, "1d", res.Chart.Timeframe)
}

func TestDetectedSymbolRespectsModePolicy(t *testing.T) {
	in := marketInput("berapa harga BTC hari ini")
	in.Mode = assistant.ModeBusinessAdmin

	res := testResolver().Resolve(context.Background(), in)
	assert.Nil(t, res)
}

func TestLowConfidenceSymbolStaysTextOnly(t *testing.T) {
	// A bare ticker with no market language is not confident enough.
	res := testResolver().Resolve(context.Background(), marketInput("BTC"))
	assert.Nil(t, res)
}

func TestStructuredTable(t *testing.T) {
	in := Input{
		Mode: assistant.ModeBusinessAdmin,
		Structured: &assistant.CandidateResponse{
			Action: assistant.ActionShowTable,
			Title:  "Stok",
			XKey:   "produk",
			YKey:   assistant.YKeys{"jumlah"},
			Data: []map[string]any{
				{"produk": "Kopi", "jumlah": 10.0},
				{"produk": "Teh", "jumlah": 5.0},
			},
		},
		Extraction: intent.Extract("tabel stok kopi 10 teh 5"),
		Market:     intent.AnalyzeMarket("tabel stok kopi 10 teh 5"),
	}

	res := testResolver().Resolve(context.Background(), in)

	require.NotNil(t, res)
	require.NotNil(t, res.Table)
	assert.Equal(t, []string{"produk", "jumlah"}, res.Table.Columns)
	require.Len(t, res.Table.Rows, 2)
	assert.Equal(t, "Kopi", res.Table.Rows[0][0])
}

func TestGenericVisualizationDefers(t *testing.T) {
	in := Input{
		Mode:       assistant.ModeBusinessAdmin,
		Extraction: intent.Extract("buatkan diagram alur kerja tim"),
		Market:     intent.AnalyzeMarket("buatkan diagram alur kerja tim"),
	}

	res := testResolver().Resolve(context.Background(), in)

	require.NotNil(t, res)
	assert.True(t, res.Deferred)
	assert.Nil(t, res.Chart)
	assert.Nil(t, res.Table)
}

func TestMultiSymbolFanOutIsolatesFailures(t *testing.T) {
	res := testResolver("ETH").Resolve(context.Background(), marketInput("BTC ETH"))

	require.NotNil(t, res)
	require.Len(t, res.Charts, 1)
	assert.Equal(t, "BTC", res.Charts[0].Symbol)
	assert.Contains(t, res.Diagnostic, "ETH")
}

func TestMultiSymbolAllFailed(t *testing.T) {
	res := testResolver("BTC", "ETH").Resolve(context.Background(), marketInput("BTC ETH"))

	require.NotNil(t, res)
	assert.Empty(t, res.Charts)
	assert.NotEmpty(t, res.Diagnostic)
}

func TestNoRuleMatchesMeansTextOnly(t *testing.T) {
	in := Input{
		Mode:       assistant.ModeChat,
		Extraction: intent.Extract("ceritakan sejarah kopi"),
		Market:     intent.AnalyzeMarket("ceritakan sejarah kopi"),
	}

	assert.Nil(t, testResolver().Resolve(context.Background(), in))
}
