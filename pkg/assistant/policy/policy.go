// FILE: pkg/assistant/policy/policy.go
// PURPOSE: Static per-mode policy tables (sources, chart types, creativity)

package policy

import (
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
)

// Data source identifiers a candidate may declare (or have inferred).
const (
	SourceMarketData = "market_data"
	SourceUserInput  = "user_input"
	SourceDocument   = "document"
	SourceGenerated  = "generated"
	SourceWebSearch  = "web_search"
)

// Chart type identifiers.
const (
	ChartLine        = "line"
	ChartBar         = "bar"
	ChartPie         = "pie"
	ChartArea        = "area"
	ChartCandlestick = "candlestick"
	ChartComparison  = "comparison"
)

// The three tables below are configuration: loaded once, read-only afterward,
// safe for unbounded concurrent reads.

var allowedSources = map[assistant.OperatingMode][]string{
	assistant.ModeChat:            {SourceGenerated},
	assistant.ModeMarketAnalysis:  {SourceMarketData, SourceWebSearch},
	assistant.ModeLetterGenerator: {SourceGenerated, SourceUserInput},
	assistant.ModeReportGenerator: {SourceDocument, SourceUserInput},
	assistant.ModeBusinessAdmin:   {SourceUserInput, SourceDocument},
}

var allowedChartTypes = map[assistant.OperatingMode][]string{
	assistant.ModeChat:            {},
	assistant.ModeMarketAnalysis:  {ChartLine, ChartArea, ChartCandlestick, ChartComparison},
	assistant.ModeLetterGenerator: {},
	assistant.ModeReportGenerator: {ChartBar, ChartLine, ChartPie},
	assistant.ModeBusinessAdmin:   {ChartBar, ChartLine, ChartPie, ChartArea},
}

// creativity controls how much latitude the model's phrasing gets downstream
// (0 = rigid, 10 = free). Not enforced by the pipeline itself.
var creativity = map[assistant.OperatingMode]int{
	assistant.ModeChat:            7,
	assistant.ModeMarketAnalysis:  2,
	assistant.ModeLetterGenerator: 8,
	assistant.ModeReportGenerator: 4,
	assistant.ModeBusinessAdmin:   3,
}

// AllowedSources returns the data sources legal for the mode.
func AllowedSources(mode assistant.OperatingMode) []string {
	return allowedSources[mode]
}

// AllowedChartTypes returns the chart types legal for the mode. An empty set
// means the mode never renders charts.
func AllowedChartTypes(mode assistant.OperatingMode) []string {
	return allowedChartTypes[mode]
}

// Creativity returns the mode's creativity level (0-10).
func Creativity(mode assistant.OperatingMode) int {
	return creativity[mode]
}

// SourceAllowed reports whether the source is legal for the mode.
func SourceAllowed(mode assistant.OperatingMode, source string) bool {
	for _, s := range allowedSources[mode] {
		if s == source {
			return true
		}
	}
	return false
}

// ChartTypeAllowed reports whether the chart type is legal for the mode.
func ChartTypeAllowed(mode assistant.OperatingMode, chartType string) bool {
	for _, t := range allowedChartTypes[mode] {
		if t == chartType {
			return true
		}
	}
	return false
}

// AllowsMarketSource reports whether the mode may carry market-sourced data
// at all. Modes where this is false reject any recognized asset symbol.
func AllowsMarketSource(mode assistant.OperatingMode) bool {
	return SourceAllowed(mode, SourceMarketData)
}

// AllowsCharts reports whether the mode has a non-empty chart type set.
func AllowsCharts(mode assistant.OperatingMode) bool {
	return len(allowedChartTypes[mode]) > 0
}
