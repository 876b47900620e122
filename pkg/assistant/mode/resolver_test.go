package mode

import (
	"io"
	"log"
	"testing"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
)

func testResolver() *Resolver {
	return NewResolver(log.New(io.Discard, "", 0))
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name string
		ctx  assistant.RequestContext
		want assistant.OperatingMode
	}{
		{
			name: "explicit mode wins over view and message",
			ctx: assistant.RequestContext{
				Message:       "berapa harga BTC",
				RequestedMode: "letter_generator",
				ActiveView:    ViewMarket,
			},
			want: assistant.ModeLetterGenerator,
		},
		{
			name: "auto defers to view",
			ctx: assistant.RequestContext{
				Message:       "halo",
				RequestedMode: "auto",
				ActiveView:    ViewReport,
			},
			want: assistant.ModeReportGenerator,
		},
		{
			name: "invalid requested mode falls through to view",
			ctx: assistant.RequestContext{
				Message:       "halo",
				RequestedMode: "turbo",
				ActiveView:    ViewAdmin,
			},
			want: assistant.ModeBusinessAdmin,
		},
		{
			name: "non-chat view is authoritative",
			ctx: assistant.RequestContext{
				Message:    "buatkan surat",
				ActiveView: ViewMarket,
			},
			want: assistant.ModeMarketAnalysis,
		},
		{
			name: "chat view infers comparison as market",
			ctx: assistant.RequestContext{
				Message:    "bandingkan BTC dan ETH",
				ActiveView: ViewChat,
			},
			want: assistant.ModeMarketAnalysis,
		},
		{
			name: "chat view infers letter intent",
			ctx: assistant.RequestContext{
				Message: "buatkan surat pengunduran diri",
			},
			want: assistant.ModeLetterGenerator,
		},
		{
			name: "chat view infers single symbol as market",
			ctx: assistant.RequestContext{
				Message: "analisa TLKM dong",
			},
			want: assistant.ModeMarketAnalysis,
		},
		{
			name: "plain message defaults to business admin",
			ctx: assistant.RequestContext{
				Message: "bagaimana cara mengatur arus kas",
			},
			want: assistant.ModeBusinessAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testResolver().Resolve(tt.ctx)
			if res.Mode != tt.want {
				t.Errorf("Mode = %s, want %s", res.Mode, tt.want)
			}
		})
	}
}

func TestStreamEligibility(t *testing.T) {
	base := assistant.RequestContext{
		Message:    "bagaimana cara mengatur arus kas",
		WantStream: true,
		CanStream:  true,
	}

	tests := []struct {
		name   string
		mutate func(ctx assistant.RequestContext) assistant.RequestContext
		want   bool
	}{
		{
			name:   "prose answer streams",
			mutate: func(ctx assistant.RequestContext) assistant.RequestContext { return ctx },
			want:   true,
		},
		{
			name: "transport without streaming blocks",
			mutate: func(ctx assistant.RequestContext) assistant.RequestContext {
				ctx.CanStream = false
				return ctx
			},
			want: false,
		},
		{
			name: "caller not asking blocks",
			mutate: func(ctx assistant.RequestContext) assistant.RequestContext {
				ctx.WantStream = false
				return ctx
			},
			want: false,
		},
		{
			name: "market mode never streams",
			mutate: func(ctx assistant.RequestContext) assistant.RequestContext {
				ctx.RequestedMode = "market_analysis"
				return ctx
			},
			want: false,
		},
		{
			name: "letter mode never streams",
			mutate: func(ctx assistant.RequestContext) assistant.RequestContext {
				ctx.RequestedMode = "letter_generator"
				return ctx
			},
			want: false,
		},
		{
			name: "comparison intent blocks",
			mutate: func(ctx assistant.RequestContext) assistant.RequestContext {
				ctx.Message = "bandingkan pengeluaran bulan ini dengan bulan lalu"
				ctx.RequestedMode = "business_admin"
				return ctx
			},
			want: false,
		},
		{
			name: "visualization request blocks",
			mutate: func(ctx assistant.RequestContext) assistant.RequestContext {
				ctx.Message = "buatkan tabel pengeluaran bulanan"
				return ctx
			},
			want: false,
		},
		{
			name: "image generation blocks",
			mutate: func(ctx assistant.RequestContext) assistant.RequestContext {
				ctx.ImageGeneration = true
				return ctx
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testResolver().Resolve(tt.mutate(base))
			if res.Stream != tt.want {
				t.Errorf("Stream = %v, want %v (mode %s)", res.Stream, tt.want, res.Mode)
			}
		})
	}
}
