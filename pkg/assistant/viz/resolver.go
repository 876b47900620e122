// FILE: pkg/assistant/viz/resolver.go
// PURPOSE: Resolve the final chart/table payload through a fixed priority chain

package viz

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/intent"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/policy"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/market"
)

// Input carries everything a resolution rule may consult.
type Input struct {
	Mode        assistant.OperatingMode
	RawText     string
	Structured  *assistant.CandidateResponse // schema-valid structured output, or nil
	RouterChart *assistant.ChartSpec         // chart already built by an upstream mode handler
	Extraction  intent.Extraction
	Market      intent.MarketIntent
	History     []assistant.Turn
}

// Result is what resolution produced. Diagnostic is appended to the answer
// narrative when fetching degraded; Deferred marks a generic visualization
// request handed to the non-market handler.
type Result struct {
	Chart      *assistant.ChartSpec
	Charts     []*assistant.ChartSpec
	Table      *assistant.TableSpec
	Narrative  string
	Diagnostic string
	Deferred   bool
}

// rule is one step of the priority chain. The first rule that matches wins
// and every later rule is skipped.
type rule struct {
	name  string
	apply func(ctx context.Context, in Input) (*Result, bool)
}

// Resolver resolves visualizations through a strict priority order. Skipping
// later rules once one matches is deliberate: market handlers that already
// fetched and shaped data must not be re-fetched by a lower-priority rule.
type Resolver struct {
	fetcher      market.Fetcher
	logger       *log.Logger
	fetchTimeout time.Duration
	rules        []rule

	// historyTurns bounds how far back symbol recovery scans.
	historyTurns int
}

func NewResolver(fetcher market.Fetcher, logger *log.Logger) *Resolver {
	r := &Resolver{
		fetcher:      fetcher,
		logger:       logger,
		fetchTimeout: 8 * time.Second,
		historyTurns: 5,
	}
	r.rules = []rule{
		{"router_chart", r.ruleRouterChart},
		{"comparison", r.ruleComparison},
		{"structured_chart", r.ruleStructuredChart},
		{"detected_symbol", r.ruleDetectedSymbol},
		{"structured_table", r.ruleStructuredTable},
		{"generic_visualization", r.ruleGenericVisualization},
		{"multi_symbol", r.ruleMultiSymbol},
	}
	return r
}

// Resolve walks the priority chain and returns the first match. A nil result
// means the answer stays text-only.
func (r *Resolver) Resolve(ctx context.Context, in Input) *Result {
	for _, rl := range r.rules {
		if res, ok := rl.apply(ctx, in); ok {
			r.logger.Printf("[VIZ] Rule %q matched", rl.name)
			return res
		}
	}
	return nil
}

// --- Rule 1: upstream handler already supplied the chart ---

func (r *Resolver) ruleRouterChart(_ context.Context, in Input) (*Result, bool) {
	if in.RouterChart == nil {
		return nil, false
	}
	// The handler already fetched and shaped the data; use it as-is.
	return &Result{Chart: in.RouterChart}, true
}

// --- Rule 2: comparison special-case ---

func (r *Resolver) ruleComparison(ctx context.Context, in Input) (*Result, bool) {
	if !in.Extraction.Comparison {
		return nil, false
	}
	symbols := r.comparisonSymbols(in)
	if len(symbols) < 2 {
		return nil, false
	}

	chart, diag := r.buildComparisonChart(ctx, symbols, in.Market.Timeframe)
	if chart == nil {
		return &Result{Diagnostic: diag}, true
	}
	return &Result{Chart: chart, Diagnostic: diag, Narrative: structuredMessage(in)}, true
}

// comparisonSymbols applies the sourcing precedence: symbols in the current
// message win outright when two or more are present; one current symbol may
// be completed by at most one same-asset-type symbol from recent history; no
// current symbols lets up to two be pulled from history, most recent first.
func (r *Resolver) comparisonSymbols(in Input) []intent.Symbol {
	current := in.Extraction.Symbols
	if len(current) >= 2 {
		return current
	}

	fromHistory := intent.HistorySymbols(in.History, r.historyTurns)

	if len(current) == 1 {
		for _, h := range fromHistory {
			if h.Code == current[0].Code {
				continue
			}
			if h.AssetType != current[0].AssetType {
				continue
			}
			return append(current, h)
		}
		r.logger.Printf("[VIZ] Comparison with a single symbol %s; no pairing candidate in history", current[0].Code)
		return current
	}

	var picked []intent.Symbol
	for _, h := range fromHistory {
		picked = append(picked, h)
		if len(picked) == 2 {
			break
		}
	}
	if len(picked) > 0 {
		r.logger.Printf("[VIZ] Comparison symbols recovered from history: %v", symbolCodes(picked))
	}
	return picked
}

// --- Rule 3: structured show_chart output ---

func (r *Resolver) ruleStructuredChart(ctx context.Context, in Input) (*Result, bool) {
	s := in.Structured
	if s == nil || s.Action != assistant.ActionShowChart {
		return nil, false
	}

	symbol := s.Symbol
	assetType := s.AssetType
	timeframe := s.Timeframe
	// Fall back to what market-intent analysis detected in the raw text.
	if symbol == "" {
		symbol = in.Market.Symbol
	}
	if assetType == "" {
		assetType = in.Market.AssetType
	}
	if timeframe == "" {
		timeframe = in.Market.Timeframe
	}

	// Model-supplied data with no symbol renders directly (admin/report
	// charts drawn from user data).
	if symbol == "" {
		if len(s.Data) == 0 {
			return nil, false
		}
		return &Result{
			Chart: &assistant.ChartSpec{
				Type:   s.ChartType,
				Title:  s.Title,
				Data:   s.Data,
				XKey:   s.XKey,
				YKeys:  []string(s.YKey),
				Source: s.Source,
			},
			Narrative: structuredMessage(in),
		}, true
	}

	chart, err := r.buildSymbolChart(ctx, symbol, assetType, timeframe, s.ChartType)
	if err != nil {
		r.logger.Printf("[VIZ] Structured chart fetch failed for %s: %v", symbol, err)
		return &Result{
			Narrative:  structuredMessage(in),
			Diagnostic: fetchDiagnostic(symbol),
		}, true
	}
	return &Result{Chart: chart, Narrative: structuredMessage(in)}, true
}

// --- Rule 4: aggressive fallback on a confidently detected symbol ---

// The model refusing to emit structured output must not suppress a chart the
// user clearly asked for.
func (r *Resolver) ruleDetectedSymbol(ctx context.Context, in Input) (*Result, bool) {
	if in.Structured != nil && !in.Structured.IsTextOnly() {
		return nil, false
	}
	if in.Market.Symbol == "" || in.Market.Confidence < intent.HighConfidence {
		return nil, false
	}
	if !policy.AllowsMarketSource(in.Mode) {
		return nil, false
	}

	chart, err := r.buildSymbolChart(ctx, in.Market.Symbol, in.Market.AssetType, in.Market.Timeframe, "")
	if err != nil {
		r.logger.Printf("[VIZ] Detected-symbol fetch failed for %s: %v", in.Market.Symbol, err)
		return &Result{Diagnostic: fetchDiagnostic(in.Market.Symbol)}, true
	}
	return &Result{Chart: chart}, true
}

// --- Rule 5a: structured show_table output ---

func (r *Resolver) ruleStructuredTable(_ context.Context, in Input) (*Result, bool) {
	s := in.Structured
	if s == nil || s.Action != assistant.ActionShowTable || len(s.Data) == 0 {
		return nil, false
	}

	columns := tableColumns(s)
	rows := make([][]any, 0, len(s.Data))
	for _, record := range s.Data {
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = record[col]
		}
		rows = append(rows, row)
	}
	return &Result{
		Table:     &assistant.TableSpec{Title: s.Title, Columns: columns, Rows: rows},
		Narrative: structuredMessage(in),
	}, true
}

// --- Rule 5b: generic visualization heuristic ---

// A chart/table keyword without market data defers construction to the
// non-market handler downstream.
func (r *Resolver) ruleGenericVisualization(_ context.Context, in Input) (*Result, bool) {
	if !in.Extraction.Visualization || in.Market.Symbol != "" {
		return nil, false
	}
	return &Result{Deferred: true}, true
}

// --- Rule 6: independent charts for multiple non-comparison symbols ---

func (r *Resolver) ruleMultiSymbol(ctx context.Context, in Input) (*Result, bool) {
	if in.Extraction.Comparison || len(in.Extraction.Symbols) < 2 {
		return nil, false
	}
	if !policy.AllowsMarketSource(in.Mode) {
		return nil, false
	}

	charts, failed := r.fanOutCharts(ctx, in.Extraction.Symbols, in.Market.Timeframe)
	if len(charts) == 0 {
		return &Result{Diagnostic: fetchDiagnostic(symbolCodes(in.Extraction.Symbols)...)}, true
	}
	res := &Result{Charts: charts}
	if len(failed) > 0 {
		res.Diagnostic = fetchDiagnostic(failed...)
	}
	return res, true
}

func structuredMessage(in Input) string {
	if in.Structured != nil && in.Structured.Message != "" {
		// The structured narrative replaces the raw text as the answer body.
		return in.Structured.Message
	}
	return ""
}

func tableColumns(s *assistant.CandidateResponse) []string {
	var columns []string
	if s.XKey != "" {
		columns = append(columns, s.XKey)
	}
	columns = append(columns, []string(s.YKey)...)
	if len(columns) > 0 {
		return columns
	}
	// No declared keys: take the first row's keys, sorted for determinism.
	for key := range s.Data[0] {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}

func symbolCodes(symbols []intent.Symbol) []string {
	codes := make([]string, len(symbols))
	for i, s := range symbols {
		codes[i] = s.Code
	}
	return codes
}

func fetchDiagnostic(symbols ...string) string {
	return fmt.Sprintf("Catatan: data pasar untuk %v sedang tidak tersedia, jadi grafiknya belum bisa ditampilkan.", symbols)
}
