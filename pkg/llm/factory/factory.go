package factory

import (
	"fmt"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/llm"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/llm/gemini"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/llm/ollama"
)

// NewLLMProvider builds the configured LLM backend.
// Supported providers: "ollama" (streaming capable), "gemini".
func NewLLMProvider(provider, model, ollamaBaseURL, geminiAPIKey string) (llm.LLMProvider, error) {
	switch provider {
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(geminiAPIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
