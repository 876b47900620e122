package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/guard"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/mode"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/viz"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/events"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/llm"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/market"
)

// --- fakes ---

type fakeProvider struct {
	reply      string
	chatCalls  int
	streamErr  error
	streamable bool
}

func (f *fakeProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	f.chatCalls++
	return f.reply, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, nil)
}

type fakeStreamingProvider struct {
	fakeProvider
}

func (f *fakeStreamingProvider) ChatStream(_ context.Context, _ []llm.Message, onToken llm.TokenFunc, _ ...llm.Option) (string, error) {
	if f.streamErr != nil {
		return "", f.streamErr
	}
	for _, tok := range strings.SplitAfter(f.reply, " ") {
		if err := onToken(tok); err != nil {
			return "", err
		}
	}
	return f.reply, nil
}

type spyCache struct {
	stored map[string]*assistant.AnswerEnvelope
	canned *assistant.AnswerEnvelope
}

func newSpyCache() *spyCache {
	return &spyCache{stored: make(map[string]*assistant.AnswerEnvelope)}
}

func (c *spyCache) Get(_ context.Context, mode assistant.OperatingMode, query string) (*assistant.AnswerEnvelope, bool) {
	if c.canned != nil {
		return c.canned, true
	}
	env, ok := c.stored[string(mode)+":"+query]
	return env, ok
}

func (c *spyCache) Set(_ context.Context, mode assistant.OperatingMode, query string, env *assistant.AnswerEnvelope) {
	c.stored[string(mode)+":"+query] = env
}

type spyPublisher struct {
	published []events.Event
}

func (p *spyPublisher) Publish(_ context.Context, ev events.Event) error {
	p.published = append(p.published, ev)
	return nil
}

type fakeRetriever struct {
	text string
}

func (f *fakeRetriever) Context(context.Context, string) string { return f.text }

type tokenSink struct {
	tokens []string
}

func (s *tokenSink) Token(token string) error {
	s.tokens = append(s.tokens, token)
	return nil
}

type fetcherStub struct{}

func (fetcherStub) GetSeries(context.Context, market.SeriesRequest) ([]market.Candle, error) {
	return nil, fmt.Errorf("no market data in tests")
}

func (fetcherStub) GetQuote(context.Context, string, string) (*market.Quote, error) {
	return nil, fmt.Errorf("no market data in tests")
}

type fixture struct {
	orch      *Orchestrator
	cache     *spyCache
	publisher *spyPublisher
}

func newFixture(provider llm.LLMProvider, retriever ContextProvider) *fixture {
	logger := log.New(io.Discard, "", 0)
	c := newSpyCache()
	p := &spyPublisher{}
	return &fixture{
		orch: NewOrchestrator(
			mode.NewResolver(logger),
			guard.NewChain(logger),
			viz.NewResolver(fetcherStub{}, logger),
			provider,
			c,
			retriever,
			p,
			logger,
		),
		cache:     c,
		publisher: p,
	}
}

// --- tests ---

func TestBlockingProseAnswer(t *testing.T) {
	provider := &fakeProvider{reply: "Atur arus kas dengan mencatat semua pemasukan."}
	fx := newFixture(provider, nil)

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message: "bagaimana cara mengatur arus kas",
	}, AnswerOptions{})

	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.False(t, env.Rejected)
	assert.False(t, env.Streamed)
	assert.Equal(t, assistant.ModeBusinessAdmin, env.Mode)
	assert.Equal(t, provider.reply, env.Response)
	assert.Nil(t, env.Chart)
}

func TestStreamingDeliversTokens(t *testing.T) {
	provider := &fakeStreamingProvider{fakeProvider: fakeProvider{reply: "Tentu, saya bisa membantu."}}
	fx := newFixture(provider, nil)
	sink := &tokenSink{}

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message:    "tolong bantu saya merencanakan anggaran",
		WantStream: true,
		CanStream:  true,
	}, AnswerOptions{Sink: sink})

	require.NoError(t, err)
	assert.True(t, env.Streamed)
	assert.Equal(t, provider.reply, env.Response)
	assert.NotEmpty(t, sink.tokens)
	assert.Equal(t, provider.reply, strings.Join(sink.tokens, ""))
	// Streaming skips the model's blocking path entirely.
	assert.Zero(t, provider.chatCalls)
}

func TestStreamFailureDemotesToBlockingOnce(t *testing.T) {
	provider := &fakeStreamingProvider{fakeProvider: fakeProvider{
		reply:     "Tentu, saya bisa membantu.",
		streamErr: errors.New("connection reset"),
	}}
	fx := newFixture(provider, nil)

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message:    "tolong bantu saya merencanakan anggaran",
		WantStream: true,
		CanStream:  true,
	}, AnswerOptions{Sink: &tokenSink{}})

	require.NoError(t, err)
	assert.False(t, env.Streamed)
	assert.Equal(t, provider.reply, env.Response)
	assert.Equal(t, 1, provider.chatCalls)
}

func TestNonStreamingProviderBlocksQuietly(t *testing.T) {
	provider := &fakeProvider{reply: "Jawaban biasa."}
	fx := newFixture(provider, nil)

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message:    "tolong bantu saya",
		WantStream: true,
		CanStream:  true,
	}, AnswerOptions{Sink: &tokenSink{}})

	require.NoError(t, err)
	assert.False(t, env.Streamed)
	assert.Equal(t, 1, provider.chatCalls)
}

func TestCacheHitSkipsModel(t *testing.T) {
	provider := &fakeProvider{reply: "unused"}
	fx := newFixture(provider, nil)
	fx.cache.canned = &assistant.AnswerEnvelope{
		Success:  true,
		Response: "jawaban lama",
		Mode:     assistant.ModeBusinessAdmin,
	}

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message: "bagaimana cara mengatur arus kas",
	}, AnswerOptions{})

	require.NoError(t, err)
	assert.True(t, env.Cached)
	assert.Equal(t, "jawaban lama", env.Response)
	assert.Zero(t, provider.chatCalls)
}

func TestCleanAnswerIsCached(t *testing.T) {
	provider := &fakeProvider{reply: "Jawaban bersih."}
	fx := newFixture(provider, nil)

	_, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message: "bagaimana cara mengatur arus kas",
	}, AnswerOptions{})

	require.NoError(t, err)
	assert.Len(t, fx.cache.stored, 1)
}

func TestGuardRejectionIsTerminal(t *testing.T) {
	// A market chart claim in business admin mode must be rejected outright.
	reply := `Ini grafiknya. {"action": "show_chart", "chart_type": "line", "symbol": "BTC", "source": "market_data", "xKey": "time", "yKey": "close", "data": [{"time": "2026-08-01", "close": 1}]}`
	provider := &fakeProvider{reply: reply}
	fx := newFixture(provider, nil)

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message:       "tolong tampilkan tren penjualan",
		RequestedMode: "business_admin",
	}, AnswerOptions{})

	require.NoError(t, err)
	assert.True(t, env.Rejected)
	assert.NotEmpty(t, env.Response)
	assert.Nil(t, env.Chart)
	assert.Nil(t, env.Structured)
	// Rejected answers never enter the cache.
	assert.Empty(t, fx.cache.stored)
}

func TestConsistencyFailureKeepsProse(t *testing.T) {
	// Candidate invents an April row the user never supplied.
	reply := `Penjualan naik. {"action": "show_chart", "chart_type": "bar", "source": "user_input", "xKey": "bulan", "yKey": "penjualan", "data": [{"bulan": "Januari", "penjualan": 100}, {"bulan": "Februari", "penjualan": 200}, {"bulan": "Maret", "penjualan": 300}, {"bulan": "April", "penjualan": 400}]}`
	provider := &fakeProvider{reply: reply}
	fx := newFixture(provider, nil)

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message:       "buatkan grafik penjualan Januari 100, Februari 200, Maret 300",
		RequestedMode: "business_admin",
	}, AnswerOptions{})

	require.NoError(t, err)
	assert.False(t, env.Rejected)
	assert.Nil(t, env.Chart)
	assert.Contains(t, env.Response, "Penjualan naik.")
	assert.Contains(t, env.Response, "Catatan")
}

func TestValidStructuredChartFromUserData(t *testing.T) {
	reply := `Berikut grafiknya. {"action": "show_chart", "chart_type": "bar", "source": "user_input", "xKey": "bulan", "yKey": "penjualan", "data": [{"bulan": "Januari", "penjualan": 100}, {"bulan": "Februari", "penjualan": 200}, {"bulan": "Maret", "penjualan": 300}]}`
	provider := &fakeProvider{reply: reply}
	fx := newFixture(provider, nil)

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message:       "buatkan grafik penjualan Januari 100, Februari 200, Maret 300",
		RequestedMode: "business_admin",
	}, AnswerOptions{})

	require.NoError(t, err)
	assert.False(t, env.Rejected)
	require.NotNil(t, env.Chart)
	assert.Equal(t, "bar", env.Chart.Type)
	assert.Len(t, env.Chart.Data, 3)
	require.NotNil(t, env.Structured)
}

func TestLetterModeCarriesLetterText(t *testing.T) {
	provider := &fakeProvider{reply: "Dengan hormat,\n\nSaya mengajukan pengunduran diri."}
	fx := newFixture(provider, nil)

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message: "buatkan surat pengunduran diri",
	}, AnswerOptions{})

	require.NoError(t, err)
	assert.Equal(t, assistant.ModeLetterGenerator, env.Mode)
	assert.Equal(t, provider.reply, env.LetterText)
}

func TestRouterChartPassedThrough(t *testing.T) {
	provider := &fakeProvider{reply: "BTC sedang menguat."}
	fx := newFixture(provider, nil)
	routed := &assistant.ChartSpec{Type: "line", Symbol: "BTC"}

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message:       "lanjutkan analisa sebelumnya",
		RequestedMode: "market_analysis",
	}, AnswerOptions{RouterChart: routed})

	require.NoError(t, err)
	assert.Same(t, routed, env.Chart)
}

func TestRetrieverContextFeedsPrompt(t *testing.T) {
	provider := &fakeProvider{reply: "Berdasarkan dokumen Anda, margin naik."}
	fx := newFixture(provider, &fakeRetriever{text: "[Dokumen 1: Laporan]\nMargin naik 5%."})

	env, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message: "bagaimana margin bulan lalu",
	}, AnswerOptions{})

	require.NoError(t, err)
	assert.True(t, env.Success)
}

func TestUsageEventPublishedPerAnswer(t *testing.T) {
	provider := &fakeProvider{reply: "Jawaban."}
	fx := newFixture(provider, nil)

	_, err := fx.orch.Answer(context.Background(), assistant.RequestContext{
		Message: "halo apa kabar",
	}, AnswerOptions{})

	require.NoError(t, err)
	require.Len(t, fx.publisher.published, 1)
	assert.Equal(t, events.UsageLoggedType, fx.publisher.published[0].EventType())
}
