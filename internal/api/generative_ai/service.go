package generativeAI

import (
	"context"
	"fmt"
	"net/http"
)

// Provider names an LLM backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

const defaultTemperature = 0.2

const systemPrompt = "You are a travel search assistant. Answer with the requested list only, without calling tools or functions."

var (
	_ Client = (*GeminiClient)(nil)
	_ Client = (*OpenAIClient)(nil)
)

// Client generates a completion for a single prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type Options struct {
	Provider      Provider
	Model         string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	HTTPClient    *http.Client
}

// NewClient builds the client for the configured provider.
func NewClient(ctx context.Context, opts Options) (Client, error) {
	switch opts.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, opts.GeminiAPIKey, opts.Model)
	case ProviderOpenAI:
		return NewOpenAIClient(opts.OpenAIAPIKey, opts.OpenAIBaseURL, opts.Model, opts.HTTPClient)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s (supported: %s, %s)", opts.Provider, ProviderGemini, ProviderOpenAI)
	}
}
