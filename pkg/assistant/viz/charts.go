// FILE: pkg/assistant/viz/charts.go
// PURPOSE: Chart construction from market data (single, comparison, fan-out)

package viz

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/intent"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/policy"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/market"
)

// buildSymbolChart fetches one asset's series and shapes it into a ChartSpec.
// chartType "" defaults to a line chart.
func (r *Resolver) buildSymbolChart(ctx context.Context, symbol, assetType, timeframe, chartType string) (*assistant.ChartSpec, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	candles, err := r.fetcher.GetSeries(fetchCtx, market.SeriesRequest{
		Symbol:    symbol,
		AssetType: assetType,
		Days:      market.TimeframeDays(timeframe),
	})
	if err != nil {
		return nil, err
	}

	if chartType == "" {
		chartType = policy.ChartLine
	}

	data := make([]map[string]any, 0, len(candles))
	yKeys := []string{"close"}
	for _, c := range candles {
		row := map[string]any{
			"time":  c.Time.Format("2006-01-02"),
			"close": c.Close,
		}
		if chartType == policy.ChartCandlestick {
			row["open"] = c.Open
			row["high"] = c.High
			row["low"] = c.Low
		}
		data = append(data, row)
	}
	if chartType == policy.ChartCandlestick {
		yKeys = []string{"open", "high", "low", "close"}
	}

	return &assistant.ChartSpec{
		Type:      chartType,
		Title:     fmt.Sprintf("%s (%s)", symbol, timeframe),
		Data:      data,
		XKey:      "time",
		YKeys:     yKeys,
		Source:    policy.SourceMarketData,
		Symbol:    symbol,
		AssetType: assetType,
		Timeframe: timeframe,
	}, nil
}

// assetSeries is one asset's fetched data inside a comparison build.
type assetSeries struct {
	symbol  intent.Symbol
	quote   *market.Quote
	candles []market.Candle
}

// buildComparisonChart produces a single comparison-typed chart carrying one
// comparisonAssets entry and one yKey per asset. Fetches run concurrently;
// an asset whose fetch fails is dropped rather than failing the whole chart.
// Returns a nil chart plus a diagnostic when fewer than two assets survive.
func (r *Resolver) buildComparisonChart(ctx context.Context, symbols []intent.Symbol, timeframe string) (*assistant.ChartSpec, string) {
	results := make([]*assetSeries, len(symbols))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(groupCtx, r.fetchTimeout)
			defer cancel()

			quote, err := r.fetcher.GetQuote(fetchCtx, sym.Code, sym.AssetType)
			if err != nil {
				r.logger.Printf("[VIZ] Comparison quote fetch failed for %s: %v", sym.Code, err)
				return nil // isolation: a failed asset is dropped, not fatal
			}
			candles, err := r.fetcher.GetSeries(fetchCtx, market.SeriesRequest{
				Symbol:    sym.Code,
				AssetType: sym.AssetType,
				Days:      market.TimeframeDays(timeframe),
			})
			if err != nil {
				r.logger.Printf("[VIZ] Comparison series fetch failed for %s: %v", sym.Code, err)
				return nil
			}
			results[i] = &assetSeries{symbol: sym, quote: quote, candles: candles}
			return nil
		})
	}
	_ = g.Wait()

	var survived []*assetSeries
	var dropped []string
	for i, res := range results {
		if res != nil {
			survived = append(survived, res)
		} else {
			dropped = append(dropped, symbols[i].Code)
		}
	}

	if len(survived) < 2 {
		return nil, fetchDiagnostic(symbolCodes(symbols)...)
	}

	chart := &assistant.ChartSpec{
		Type:      policy.ChartComparison,
		Title:     comparisonTitle(survived),
		XKey:      "time",
		Source:    policy.SourceMarketData,
		Timeframe: timeframe,
	}
	for _, as := range survived {
		chart.YKeys = append(chart.YKeys, as.symbol.Code)
		chart.ComparisonAssets = append(chart.ComparisonAssets, assistant.ComparisonAsset{
			Symbol:    as.quote.Symbol,
			Name:      as.quote.Name,
			AssetType: as.symbol.AssetType,
			LastPrice: as.quote.LastPrice,
			Change:    as.quote.Change,
			ChangePct: as.quote.ChangePct,
		})
	}
	chart.Data = mergeNormalized(survived)

	var diag string
	if len(dropped) > 0 {
		diag = fetchDiagnostic(dropped...)
	}
	return chart, diag
}

// mergeNormalized merges per-asset series into shared rows keyed by date,
// each series normalized to percent change from its first close so assets of
// different magnitudes compare on one axis.
func mergeNormalized(series []*assetSeries) []map[string]any {
	rows := make(map[string]map[string]any)
	var order []string

	for _, as := range series {
		if len(as.candles) == 0 {
			continue
		}
		base := as.candles[0].Close
		if base == 0 {
			base = 1
		}
		for _, c := range as.candles {
			day := c.Time.Format("2006-01-02")
			row, ok := rows[day]
			if !ok {
				row = map[string]any{"time": day}
				rows[day] = row
				order = append(order, day)
			}
			row[as.symbol.Code] = (c.Close - base) / base * 100
		}
	}

	sort.Strings(order) // ISO dates sort chronologically
	merged := make([]map[string]any, 0, len(order))
	for _, day := range order {
		merged = append(merged, rows[day])
	}
	return merged
}

func comparisonTitle(series []*assetSeries) string {
	title := "Perbandingan"
	for i, as := range series {
		if i == 0 {
			title += " " + as.symbol.Code
		} else {
			title += " vs " + as.symbol.Code
		}
	}
	return title
}

// fanOutCharts builds one independent chart per symbol, concurrently, with
// per-symbol failure isolation: one slow or failing fetch neither blocks nor
// fails the others.
func (r *Resolver) fanOutCharts(ctx context.Context, symbols []intent.Symbol, timeframe string) (charts []*assistant.ChartSpec, failed []string) {
	built := make([]*assistant.ChartSpec, len(symbols))

	var wg sync.WaitGroup
	for i, sym := range symbols {
		i, sym := i, sym
		wg.Add(1)
		go func() {
			defer wg.Done()
			chart, err := r.buildSymbolChart(ctx, sym.Code, sym.AssetType, timeframe, "")
			if err != nil {
				r.logger.Printf("[VIZ] Fan-out fetch failed for %s: %v", sym.Code, err)
				return
			}
			built[i] = chart
		}()
	}
	wg.Wait()

	for i, chart := range built {
		if chart != nil {
			charts = append(charts, chart)
		} else {
			failed = append(failed, symbols[i].Code)
		}
	}
	return charts, failed
}
