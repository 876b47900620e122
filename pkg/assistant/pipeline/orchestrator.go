// FILE: pkg/assistant/pipeline/orchestrator.go
// PURPOSE: Run one request through mode resolution, generation, validation
// and visualization, producing the final answer envelope

package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/constant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/guard"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/intent"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/mode"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/policy"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/viz"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/cache"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/events"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/llm"
)

// StreamSink receives incremental tokens during a streamed answer.
type StreamSink interface {
	Token(token string) error
}

// ContextProvider supplies retrieved document context for the prompt. The
// service layer binds it to the vector retriever with the user's identity.
type ContextProvider interface {
	Context(ctx context.Context, query string) string
}

// EventPublisher is the usage-event sink. Satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// AnswerOptions carries per-call extras that are not part of the request
// context itself.
type AnswerOptions struct {
	// RouterChart is a chart an upstream mode handler already fetched and
	// shaped. When set, the visualization resolver uses it verbatim.
	RouterChart *assistant.ChartSpec

	// Sink enables token streaming when the resolution allows it.
	Sink StreamSink
}

// Orchestrator wires the whole decision pipeline together.
type Orchestrator struct {
	modes     *mode.Resolver
	chain     *guard.Chain
	viz       *viz.Resolver
	provider  llm.LLMProvider
	answers   cache.ResponseCache
	retriever ContextProvider // optional
	publisher EventPublisher  // optional
	logger    *log.Logger
}

func NewOrchestrator(
	modes *mode.Resolver,
	chain *guard.Chain,
	vizResolver *viz.Resolver,
	provider llm.LLMProvider,
	answers cache.ResponseCache,
	retriever ContextProvider,
	publisher EventPublisher,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		modes:     modes,
		chain:     chain,
		viz:       vizResolver,
		provider:  provider,
		answers:   answers,
		retriever: retriever,
		publisher: publisher,
		logger:    logger,
	}
}

// Answer runs one request end to end. It never returns a nil envelope
// together with a nil error.
func (o *Orchestrator) Answer(ctx context.Context, req assistant.RequestContext, opts AnswerOptions) (*assistant.AnswerEnvelope, error) {
	res := o.modes.Resolve(req)

	o.logger.Printf("[PIPELINE] Mode=%s stream=%v comparison=%v symbols=%d",
		res.Mode, res.Stream, res.Comparison, len(res.Extraction.Symbols))

	if res.Stream && opts.Sink != nil {
		if sp, ok := o.provider.(llm.StreamingProvider); ok {
			env, err := o.streamAnswer(ctx, sp, req, res, opts.Sink)
			if err == nil {
				return env, nil
			}
			// One demotion only: fall through to the blocking path.
			o.logger.Printf("[PIPELINE] Streaming failed, demoting to blocking: %v", err)
		}
	}

	return o.blockingAnswer(ctx, req, res, opts)
}

func (o *Orchestrator) streamAnswer(
	ctx context.Context,
	provider llm.StreamingProvider,
	req assistant.RequestContext,
	res mode.Resolution,
	sink StreamSink,
) (*assistant.AnswerEnvelope, error) {

	history := o.buildHistory(ctx, req, res)

	full, err := provider.ChatStream(ctx, history, sink.Token, o.modelOptions(res.Mode)...)
	if err != nil {
		return nil, err
	}

	env := &assistant.AnswerEnvelope{
		Success:  true,
		Response: full,
		Mode:     res.Mode,
		Language: res.Extraction.Language,
		Streamed: true,
	}
	o.publishUsage(ctx, req, env)
	return env, nil
}

func (o *Orchestrator) blockingAnswer(
	ctx context.Context,
	req assistant.RequestContext,
	res mode.Resolution,
	opts AnswerOptions,
) (*assistant.AnswerEnvelope, error) {

	if cached, ok := o.answers.Get(ctx, res.Mode, req.Message); ok {
		o.logger.Printf("[PIPELINE] Cache hit for mode %s", res.Mode)
		cached.Cached = true
		o.publishUsage(ctx, req, cached)
		return cached, nil
	}

	history := o.buildHistory(ctx, req, res)

	raw, err := o.provider.Chat(ctx, history, o.modelOptions(res.Mode)...)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	candidate := assistant.ParseCandidate(raw)

	userData := req.UserData
	if userData.IsEmpty() {
		userData = intent.ExtractUserData(req.Message)
	}

	verdict := o.chain.Validate(res.Mode, candidate, userData, req.Message)

	env := &assistant.AnswerEnvelope{
		Success:  true,
		Mode:     res.Mode,
		Language: res.Extraction.Language,
	}

	if !verdict.Valid {
		if guard.ConsistencyOnly(verdict.Errors) {
			// The prose survives a pure consistency failure; only the
			// visualization claim is dropped.
			env.Response = joinNarrative(candidate.Text, consistencyNote(res.Extraction.Language))
		} else {
			env.Rejected = true
			env.Response = verdict.FallbackMessage
		}
		o.publishUsage(ctx, req, env)
		return env, nil
	}

	vres := o.viz.Resolve(ctx, viz.Input{
		Mode:        res.Mode,
		RawText:     candidate.Text,
		Structured:  verdict.Payload,
		RouterChart: opts.RouterChart,
		Extraction:  res.Extraction,
		Market:      res.Market,
		History:     req.History,
	})

	env.Response = candidate.Text
	if !verdict.Payload.IsTextOnly() {
		env.Structured = verdict.Payload
	}

	if vres != nil {
		if vres.Narrative != "" {
			env.Response = vres.Narrative
		}
		env.Chart = vres.Chart
		env.Charts = vres.Charts
		env.Table = vres.Table
		if vres.Diagnostic != "" {
			env.Response = joinNarrative(env.Response, vres.Diagnostic)
		}
	}

	if res.Mode == assistant.ModeLetterGenerator {
		env.LetterText = candidate.Text
	}

	// Only clean, fully resolved answers are worth caching.
	if !env.Rejected && (vres == nil || !vres.Deferred) {
		o.answers.Set(ctx, res.Mode, req.Message, env)
	}

	o.publishUsage(ctx, req, env)
	return env, nil
}

// buildHistory assembles the chat transcript sent to the model: the mode's
// system prompt, the output contract, retrieved context, user-supplied
// numbers, prior turns and finally the current message.
func (o *Orchestrator) buildHistory(ctx context.Context, req assistant.RequestContext, res mode.Resolution) []llm.Message {
	var sb strings.Builder
	sb.WriteString(systemPrompt(res.Mode))
	sb.WriteString("\n\n")
	sb.WriteString(constant.StructuredActionInstructionV1)

	contextText := req.ContextText
	if contextText == "" && o.retriever != nil {
		contextText = o.retriever.Context(ctx, req.Message)
	}
	if contextText != "" {
		sb.WriteString("\n\n")
		sb.WriteString(constant.ContextPreambleV1)
		sb.WriteString("\n")
		sb.WriteString(contextText)
	}

	if !req.UserData.IsEmpty() {
		sb.WriteString("\n\n")
		sb.WriteString(constant.UserDataPreambleV1)
		sb.WriteString("\n")
		sb.WriteString(strings.Join(req.UserData.Labels, ", "))
	}

	history := []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: sb.String()},
	}
	for _, turn := range req.History {
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	history = append(history, llm.Message{Role: constant.ChatMessageRoleUser, Content: req.Message})
	return history
}

func (o *Orchestrator) modelOptions(m assistant.OperatingMode) []llm.Option {
	// Creativity maps 0-10 onto sampling temperature 0.0-1.0
	return []llm.Option{
		llm.WithTemperature(float64(policy.Creativity(m)) / 10.0),
	}
}

func (o *Orchestrator) publishUsage(ctx context.Context, req assistant.RequestContext, env *assistant.AnswerEnvelope) {
	if o.publisher == nil {
		return
	}
	ev := events.NewUsageLogged(
		string(env.Mode),
		len(strings.Fields(req.Message)),
		len(strings.Fields(env.Response)),
		env.Cached,
	)
	if err := o.publisher.Publish(ctx, ev); err != nil {
		o.logger.Printf("[WARN] Usage event publish failed: %v", err)
	}
}

func systemPrompt(m assistant.OperatingMode) string {
	switch m {
	case assistant.ModeMarketAnalysis:
		return constant.MarketAnalysisSystemPromptV1
	case assistant.ModeLetterGenerator:
		return constant.LetterGeneratorSystemPromptV1
	case assistant.ModeReportGenerator:
		return constant.ReportGeneratorSystemPromptV1
	case assistant.ModeBusinessAdmin:
		return constant.BusinessAdminSystemPromptV1
	default:
		return constant.ChatModeSystemPromptV1
	}
}

func joinNarrative(text, note string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return note
	}
	if note == "" {
		return text
	}
	return text + "\n\n" + note
}

func consistencyNote(language string) string {
	if language == "en" {
		return "Note: the chart was omitted because its numbers did not match the data you provided."
	}
	return "Catatan: grafik tidak ditampilkan karena angkanya tidak sesuai dengan data yang Anda berikan."
}
