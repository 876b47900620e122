package assistant

import (
	"encoding/json"
	"strings"
)

// OperatingMode is the closed category governing which chart types, data
// sources, and creativity level are legal for a request. Exactly one mode is
// active per request.
type OperatingMode string

const (
	ModeChat            OperatingMode = "chat"
	ModeMarketAnalysis  OperatingMode = "market_analysis"
	ModeLetterGenerator OperatingMode = "letter_generator"
	ModeReportGenerator OperatingMode = "report_generator"
	ModeBusinessAdmin   OperatingMode = "business_admin"
)

// AllModes lists every valid operating mode.
var AllModes = []OperatingMode{
	ModeChat,
	ModeMarketAnalysis,
	ModeLetterGenerator,
	ModeReportGenerator,
	ModeBusinessAdmin,
}

// IsValidMode reports whether s names a known operating mode.
func IsValidMode(s string) bool {
	for _, m := range AllModes {
		if string(m) == s {
			return true
		}
	}
	return false
}

// Structured action values emitted by the model.
const (
	ActionShowChart = "show_chart"
	ActionShowTable = "show_table"
	ActionTextOnly  = "text_only"
)

// Turn is a single prior conversation turn, oldest first.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// RequestContext is the immutable per-request input to the pipeline.
type RequestContext struct {
	Message         string
	History         []Turn // ordered, oldest first
	RequestedMode   string // "" or "auto" means infer
	ActiveView      string // UI view; non-chat views are authoritative
	ContextText     string // retrieved document/search content, may be empty
	WebSearch       bool
	ImageGeneration bool
	FileIDs         []string
	WantStream      bool // caller asked for incremental delivery
	CanStream       bool // transport supports incremental delivery
	UserData        *ExtractedUserData
}

// YKeys is a yKey field that the model may emit either as a single string or
// as a list of series keys.
type YKeys []string

func (y *YKeys) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*y = nil
		} else {
			*y = YKeys{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*y = YKeys(many)
	return nil
}

func (y YKeys) MarshalJSON() ([]byte, error) {
	if len(y) == 1 {
		return json.Marshal(y[0])
	}
	return json.Marshal([]string(y))
}

// CandidateResponse is the model's raw output for a turn: free text plus an
// optional structured action object. It is untrusted input to the guard chain.
type CandidateResponse struct {
	Text string `json:"-"`

	Action    string           `json:"action,omitempty"`
	Module    string           `json:"module,omitempty"`
	ChartType string           `json:"chart_type,omitempty"`
	Data      []map[string]any `json:"data,omitempty"`
	XKey      string           `json:"xKey,omitempty"`
	YKey      YKeys            `json:"yKey,omitempty"`
	Title     string           `json:"title,omitempty"`
	Source    string           `json:"source,omitempty"`
	Symbol    string           `json:"symbol,omitempty"`
	AssetType string           `json:"asset_type,omitempty"`
	Timeframe string           `json:"timeframe,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// IsTextOnly reports whether the candidate carries no structured claim. Such
// candidates bypass the guard chain entirely.
func (c *CandidateResponse) IsTextOnly() bool {
	return c == nil || c.Action == "" || c.Action == ActionTextOnly
}

// ExtractedUserData is the labels and point count derived deterministically
// from the user's own message, used to check the model did not invent or drop
// categories.
type ExtractedUserData struct {
	Labels     []string
	DataPoints int
}

func (d *ExtractedUserData) IsEmpty() bool {
	return d == nil || (len(d.Labels) == 0 && d.DataPoints == 0)
}

// GuardVerdict is the outcome of one independent guard.
type GuardVerdict struct {
	Pass    bool
	Error   string
	Warning string
}

// MiddlewareResult is the terminal, immutable verdict of the guard chain.
type MiddlewareResult struct {
	Valid           bool
	Payload         *CandidateResponse
	Errors          []string
	Warnings        []string
	FallbackMessage string
}

// ComparisonAsset is one asset entry inside a comparison chart.
type ComparisonAsset struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	AssetType string  `json:"asset_type"`
	LastPrice float64 `json:"last_price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// ChartSpec is the resolved visualization attached to a final answer. It is
// built once and never mutated after resolution.
type ChartSpec struct {
	Type             string            `json:"type"`
	Title            string            `json:"title"`
	Data             []map[string]any  `json:"data"`
	XKey             string            `json:"xKey"`
	YKeys            []string          `json:"yKey"`
	Source           string            `json:"source,omitempty"`
	Symbol           string            `json:"symbol,omitempty"`
	AssetType        string            `json:"asset_type,omitempty"`
	Timeframe        string            `json:"timeframe,omitempty"`
	ComparisonAssets []ComparisonAsset `json:"comparison_assets,omitempty"`
}

// TableSpec is a resolved tabular payload.
type TableSpec struct {
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// AnswerEnvelope is the boundary contract the rendering layer depends on.
type AnswerEnvelope struct {
	Success    bool               `json:"success"`
	Response   string             `json:"response"`
	Mode       OperatingMode      `json:"mode"`
	Language   string             `json:"language,omitempty"`
	Streamed   bool               `json:"streamed,omitempty"`
	Cached     bool               `json:"cached,omitempty"`
	Rejected   bool               `json:"rejected,omitempty"`
	Chart      *ChartSpec         `json:"chart,omitempty"`
	Charts     []*ChartSpec       `json:"charts,omitempty"`
	Table      *TableSpec         `json:"table,omitempty"`
	Structured *CandidateResponse `json:"structured_output,omitempty"`
	LetterText string             `json:"letter,omitempty"`
}

// NormalizeQuery produces the cache key form of a message: lowercased with
// whitespace collapsed.
func NormalizeQuery(message string) string {
	return strings.Join(strings.Fields(strings.ToLower(message)), " ")
}
