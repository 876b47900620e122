// FILE: pkg/assistant/guard/guards.go
// PURPOSE: The five independent validation guards for structured model output

package guard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/intent"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/policy"
)

// Input is what every guard sees. Guards never mutate it.
type Input struct {
	Mode        assistant.OperatingMode
	Candidate   *assistant.CandidateResponse
	UserData    *assistant.ExtractedUserData
	UserMessage string
}

// Guard is one independent pure check. It returns pass/fail plus an optional
// diagnostic and never touches shared state.
type Guard interface {
	Name() string
	Check(in Input) assistant.GuardVerdict
}

func pass() assistant.GuardVerdict {
	return assistant.GuardVerdict{Pass: true}
}

func fail(format string, args ...any) assistant.GuardVerdict {
	return assistant.GuardVerdict{Pass: false, Error: fmt.Sprintf(format, args...)}
}

// --- 1. Module guard ---

// moduleGuard rejects candidates that declare a module other than the active
// mode, and market-asset content in modes whose policy forbids market
// sourcing.
type moduleGuard struct{}

func (moduleGuard) Name() string { return "module" }

func (moduleGuard) Check(in Input) assistant.GuardVerdict {
	c := in.Candidate
	if c.Module != "" && c.Module != string(in.Mode) {
		return fail("module mismatch: candidate declares module %q but active mode is %q", c.Module, in.Mode)
	}
	if !policy.AllowsMarketSource(in.Mode) && c.Symbol != "" {
		if _, known := intent.LookupSymbol(c.Symbol); known {
			return fail("market asset %q is not allowed in mode %q", strings.ToUpper(c.Symbol), in.Mode)
		}
	}
	return pass()
}

// --- 2. Source guard ---

// sourceGuard checks the declared data source against the mode's allowed set.
// With no declared source, one is inferred from shape: a symbol, asset type,
// or candlestick chart implies market data.
type sourceGuard struct{}

func (sourceGuard) Name() string { return "source" }

func (sourceGuard) Check(in Input) assistant.GuardVerdict {
	c := in.Candidate

	source := c.Source
	inferred := false
	if source == "" {
		inferred = true
		switch {
		case c.Symbol != "" || c.AssetType != "" || c.ChartType == policy.ChartCandlestick:
			source = policy.SourceMarketData
		case len(c.Data) > 0:
			source = policy.SourceUserInput
		default:
			source = policy.SourceGenerated
		}
	}

	if !policy.SourceAllowed(in.Mode, source) {
		if inferred {
			return fail("inferred source %q is not allowed in mode %q", source, in.Mode)
		}
		return fail("source %q is not allowed in mode %q", source, in.Mode)
	}
	return pass()
}

// --- 3. Chart-type guard ---

type chartTypeGuard struct{}

func (chartTypeGuard) Name() string { return "chart_type" }

func (chartTypeGuard) Check(in Input) assistant.GuardVerdict {
	c := in.Candidate
	if c.Action != assistant.ActionShowChart {
		return pass()
	}
	if !policy.AllowsCharts(in.Mode) {
		return fail("mode %q does not render charts", in.Mode)
	}
	if c.ChartType != "" && !policy.ChartTypeAllowed(in.Mode, c.ChartType) {
		return fail("chart type %q is not allowed in mode %q", c.ChartType, in.Mode)
	}
	return pass()
}

// --- 4. Schema guard ---

// schemaGuard validates structural shape only. It knows nothing about mode
// policy.
type schemaGuard struct{}

func (schemaGuard) Name() string { return "schema" }

func (schemaGuard) Check(in Input) assistant.GuardVerdict {
	c := in.Candidate

	switch c.Action {
	case assistant.ActionShowChart, assistant.ActionShowTable:
	default:
		return fail("schema: unknown action %q", c.Action)
	}

	if len(c.Data) == 0 {
		return fail("schema: data must be a non-empty sequence")
	}
	for i, row := range c.Data {
		if len(row) == 0 {
			return fail("schema: data row %d is empty", i)
		}
		for key, value := range row {
			if !isPrimitive(value) {
				return fail("schema: data row %d key %q holds a non-primitive value", i, key)
			}
		}
	}

	if c.Action == assistant.ActionShowChart {
		if c.ChartType == "" {
			return fail("schema: chart_type is required for show_chart")
		}
		if c.XKey == "" {
			return fail("schema: xKey is required for show_chart")
		}
		if len(c.YKey) == 0 {
			return fail("schema: yKey must be a string or non-empty list")
		}
		for _, y := range c.YKey {
			if y == "" {
				return fail("schema: yKey entries must be non-empty strings")
			}
		}
	}
	return pass()
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int32, int64, json.Number:
		return true
	default:
		return false
	}
}

// --- 5. Consistency (anti-hallucination) guard ---

// consistencyGuard checks the candidate's data claims against data the user
// actually supplied. Only runs when extracted user data is present.
type consistencyGuard struct{}

func (consistencyGuard) Name() string { return "consistency" }

func (consistencyGuard) Check(in Input) assistant.GuardVerdict {
	if in.UserData.IsEmpty() {
		return pass()
	}
	c := in.Candidate

	if len(c.Data) != in.UserData.DataPoints {
		return fail("data count mismatch: candidate has %d rows, user supplied %d", len(c.Data), in.UserData.DataPoints)
	}

	for _, label := range in.UserData.Labels {
		if !labelPresent(label, c) {
			return fail("label %q from user data is absent: category invented or dropped", label)
		}
	}

	if len(c.YKey) > 1 && !intent.HasCategoryLanguage(in.UserMessage) {
		return fail("multi-series invented: candidate declares %d series but user message has no comparison or category language", len(c.YKey))
	}
	return pass()
}

// labelPresent matches a user label against the candidate's x-axis values,
// case-insensitively, substring in either direction.
func labelPresent(label string, c *assistant.CandidateResponse) bool {
	want := strings.ToLower(label)
	for _, row := range c.Data {
		raw, ok := row[c.XKey]
		if !ok {
			continue
		}
		got := strings.ToLower(fmt.Sprintf("%v", raw))
		if got == "" {
			continue
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			return true
		}
	}
	return false
}
