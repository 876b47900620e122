package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// TokenFunc receives one incremental token. Returning an error aborts the
// stream.
type TokenFunc func(token string) error

// StreamingProvider is implemented by backends that can deliver the answer
// token by token. Callers must handle providers that only implement
// LLMProvider by demoting to a blocking Chat call.
type StreamingProvider interface {
	LLMProvider

	// ChatStream sends a chat history and delivers the response
	// incrementally through onToken. The full concatenated response is
	// returned once the stream ends.
	ChatStream(ctx context.Context, history []Message, onToken TokenFunc, options ...Option) (string, error)
}
