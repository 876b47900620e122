// FILE: pkg/assistant/mode/resolver.go
// PURPOSE: Resolve the operating mode and streaming eligibility per request

package mode

import (
	"log"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/intent"
)

// View identifiers sent by the UI. Any view other than ViewChat is an
// explicit user navigation and wins over message heuristics.
const (
	ViewChat   = "chat"
	ViewMarket = "market"
	ViewLetter = "letter"
	ViewReport = "report"
	ViewAdmin  = "admin"
)

var viewModes = map[string]assistant.OperatingMode{
	ViewMarket: assistant.ModeMarketAnalysis,
	ViewLetter: assistant.ModeLetterGenerator,
	ViewReport: assistant.ModeReportGenerator,
	ViewAdmin:  assistant.ModeBusinessAdmin,
}

// Resolution is the resolver's full output. Extraction and MarketIntent are
// carried along so downstream components do not re-scan the message.
type Resolution struct {
	Mode       assistant.OperatingMode
	Stream     bool
	Comparison bool
	Extraction intent.Extraction
	Market     intent.MarketIntent
}

// Resolver combines the active UI view, intent extraction and message
// heuristics into one operating mode plus a streaming decision.
type Resolver struct {
	logger *log.Logger
}

func NewResolver(logger *log.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve picks the operating mode for the request context.
//   - An explicitly requested mode wins outright.
//   - A non-chat UI view is authoritative.
//   - Otherwise the mode is inferred from the message.
func (r *Resolver) Resolve(ctx assistant.RequestContext) Resolution {
	ext := intent.Extract(ctx.Message)
	market := intent.AnalyzeMarket(ctx.Message)

	res := Resolution{
		Extraction: ext,
		Market:     market,
		Comparison: ext.Comparison || len(ext.Symbols) >= 2,
	}

	switch {
	case ctx.RequestedMode != "" && ctx.RequestedMode != "auto" && assistant.IsValidMode(ctx.RequestedMode):
		res.Mode = assistant.OperatingMode(ctx.RequestedMode)
	case ctx.ActiveView != "" && ctx.ActiveView != ViewChat:
		if m, ok := viewModes[ctx.ActiveView]; ok {
			res.Mode = m
		} else {
			r.logger.Printf("[MODE] Unknown view %q, falling back to inference", ctx.ActiveView)
			res.Mode = r.infer(ext)
		}
	default:
		res.Mode = r.infer(ext)
	}

	res.Stream = streamEligible(ctx, res)
	r.logger.Printf("[MODE] Resolved mode=%s stream=%v comparison=%v symbols=%d",
		res.Mode, res.Stream, res.Comparison, len(ext.Symbols))
	return res
}

// infer maps message heuristics to a mode when the view is the generic chat
// view. Order matters: comparison and letter intent outrank a bare symbol.
func (r *Resolver) infer(ext intent.Extraction) assistant.OperatingMode {
	switch {
	case ext.Comparison || len(ext.Symbols) >= 2:
		// Comparison is a market variant.
		return assistant.ModeMarketAnalysis
	case ext.Letter:
		return assistant.ModeLetterGenerator
	case len(ext.Symbols) == 1:
		return assistant.ModeMarketAnalysis
	default:
		return assistant.ModeBusinessAdmin
	}
}

// streamEligible decides incremental token delivery. Only pure-prose answers
// may stream: anything needing a structured payload must be fully generated
// before the guard chain and visualization resolution can run.
func streamEligible(ctx assistant.RequestContext, res Resolution) bool {
	if !ctx.WantStream || !ctx.CanStream {
		return false
	}
	if res.Mode == assistant.ModeMarketAnalysis || res.Mode == assistant.ModeLetterGenerator {
		return false
	}
	if res.Comparison {
		return false
	}
	if res.Extraction.Visualization {
		return false
	}
	if ctx.ImageGeneration {
		return false
	}
	return true
}
