package guard

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
)

func testChain() *Chain {
	return NewChain(log.New(io.Discard, "", 0))
}

func chartCandidate() *assistant.CandidateResponse {
	return &assistant.CandidateResponse{
		Action:    assistant.ActionShowChart,
		ChartType: "bar",
		Source:    "user_input",
		XKey:      "bulan",
		YKey:      assistant.YKeys{"penjualan"},
		Data: []map[string]any{
			{"bulan": "Januari", "penjualan": 100.0},
			{"bulan": "Februari", "penjualan": 200.0},
			{"bulan": "Maret", "penjualan": 300.0},
		},
	}
}

func TestTextOnlyBypassesAllGuards(t *testing.T) {
	candidates := []*assistant.CandidateResponse{
		{Text: "jawaban prosa"},
		{Action: assistant.ActionTextOnly, Message: "cukup teks"},
	}

	for _, c := range candidates {
		res := testChain().Validate(assistant.ModeChat, c, nil, "apa kabar")
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
		assert.Equal(t, c, res.Payload)
	}
}

func TestValidChartPasses(t *testing.T) {
	res := testChain().Validate(assistant.ModeBusinessAdmin, chartCandidate(), nil, "buatkan grafik penjualan")

	assert.True(t, res.Valid)
	assert.NotNil(t, res.Payload)
	assert.Empty(t, res.FallbackMessage)
}

func TestFailureAlwaysYieldsFallbackAndNilPayload(t *testing.T) {
	tests := []struct {
		name   string
		mode   assistant.OperatingMode
		mutate func(c *assistant.CandidateResponse)
	}{
		{
			name:   "module mismatch",
			mode:   assistant.ModeBusinessAdmin,
			mutate: func(c *assistant.CandidateResponse) { c.Module = "market_analysis" },
		},
		{
			name:   "chart in chartless mode",
			mode:   assistant.ModeChat,
			mutate: func(c *assistant.CandidateResponse) {},
		},
		{
			name:   "disallowed chart type",
			mode:   assistant.ModeMarketAnalysis,
			mutate: func(c *assistant.CandidateResponse) { c.ChartType = "pie"; c.Source = "market_data" },
		},
		{
			name:   "missing xKey",
			mode:   assistant.ModeBusinessAdmin,
			mutate: func(c *assistant.CandidateResponse) { c.XKey = "" },
		},
		{
			name:   "empty data",
			mode:   assistant.ModeBusinessAdmin,
			mutate: func(c *assistant.CandidateResponse) { c.Data = nil },
		},
		{
			name: "nested value in data row",
			mode: assistant.ModeBusinessAdmin,
			mutate: func(c *assistant.CandidateResponse) {
				c.Data[0]["penjualan"] = map[string]any{"nested": 1}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := chartCandidate()
			tt.mutate(c)

			res := testChain().Validate(tt.mode, c, nil, "buatkan grafik penjualan")

			assert.False(t, res.Valid)
			assert.Nil(t, res.Payload)
			assert.NotEmpty(t, res.Errors)
			assert.NotEmpty(t, res.FallbackMessage)
		})
	}
}

func TestAllGuardsRunDespiteEarlierFailures(t *testing.T) {
	c := chartCandidate()
	c.Module = "market_analysis" // module guard fails
	c.XKey = ""                  // schema guard fails too

	res := testChain().Validate(assistant.ModeBusinessAdmin, c, nil, "grafik")

	assert.False(t, res.Valid)
	assert.GreaterOrEqual(t, len(res.Errors), 2)
}

func TestMarketAssetRejectedOutsideMarketMode(t *testing.T) {
	c := chartCandidate()
	c.Symbol = "BTC"

	res := testChain().Validate(assistant.ModeBusinessAdmin, c, nil, "grafik BTC")

	assert.False(t, res.Valid)
	// The fallback redirects the user to the market mode.
	assert.Contains(t, res.FallbackMessage, "Analisis Pasar")
}

func TestConsistencyGuard(t *testing.T) {
	userData := &assistant.ExtractedUserData{
		Labels:     []string{"januari", "februari", "maret"},
		DataPoints: 3,
	}

	t.Run("case-insensitive label match passes", func(t *testing.T) {
		res := testChain().Validate(assistant.ModeBusinessAdmin, chartCandidate(), userData,
			"penjualan januari 100 februari 200 maret 300")
		assert.True(t, res.Valid)
	})

	t.Run("extra invented row fails", func(t *testing.T) {
		c := chartCandidate()
		c.Data = append(c.Data, map[string]any{"bulan": "April", "penjualan": 400.0})

		res := testChain().Validate(assistant.ModeBusinessAdmin, c, userData,
			"penjualan januari 100 februari 200 maret 300")

		assert.False(t, res.Valid)
		assert.True(t, ConsistencyOnly(res.Errors))
	})

	t.Run("dropped label fails", func(t *testing.T) {
		c := chartCandidate()
		c.Data[2]["bulan"] = "Desember"

		res := testChain().Validate(assistant.ModeBusinessAdmin, c, userData,
			"penjualan januari 100 februari 200 maret 300")

		assert.False(t, res.Valid)
		assert.True(t, ConsistencyOnly(res.Errors))
	})

	t.Run("multi-series without category language fails", func(t *testing.T) {
		c := chartCandidate()
		c.YKey = assistant.YKeys{"penjualan", "laba"}

		res := testChain().Validate(assistant.ModeBusinessAdmin, c, userData,
			"penjualan januari 100 februari 200 maret 300")

		assert.False(t, res.Valid)
		assert.True(t, ConsistencyOnly(res.Errors))
	})

	t.Run("multi-series with category language passes", func(t *testing.T) {
		c := chartCandidate()
		c.YKey = assistant.YKeys{"penjualan", "laba"}

		res := testChain().Validate(assistant.ModeBusinessAdmin, c, userData,
			"breakdown penjualan dan laba: januari 100 februari 200 maret 300")

		assert.True(t, res.Valid)
	})

	t.Run("no user data skips the guard", func(t *testing.T) {
		c := chartCandidate()
		c.Data = append(c.Data, map[string]any{"bulan": "April", "penjualan": 400.0})

		res := testChain().Validate(assistant.ModeBusinessAdmin, c, nil, "buatkan grafik contoh")
		assert.True(t, res.Valid)
	})
}

func TestFallbackMessageIsTotal(t *testing.T) {
	tests := []struct {
		name string
		errs []string
		want string
	}{
		{"market errors redirect", []string{`market asset "BTC" is not allowed`}, "Analisis Pasar"},
		{"mismatch errors explain data", []string{"data count mismatch: 4 vs 3"}, "tidak sesuai"},
		{"schema errors explain format", []string{"schema: xKey is required"}, "Format"},
		{"unknown errors get the generic message", []string{"something odd"}, "coba lagi"},
		{"empty set still yields a message", nil, "coba lagi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FallbackMessage(assistant.ModeBusinessAdmin, tt.errs)
			if msg == "" {
				t.Fatal("fallback message must never be empty")
			}
			if !strings.Contains(msg, tt.want) {
				t.Errorf("message %q does not contain %q", msg, tt.want)
			}
		})
	}
}

func TestConsistencyOnly(t *testing.T) {
	assert.False(t, ConsistencyOnly(nil))
	assert.True(t, ConsistencyOnly([]string{"data count mismatch: 4 rows"}))
	assert.True(t, ConsistencyOnly([]string{`label "maret" from user data is absent: category invented or dropped`}))
	assert.False(t, ConsistencyOnly([]string{"data count mismatch", "schema: xKey is required"}))
}
