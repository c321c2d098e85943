package provider

import (
	"context"
	"fmt"
	"strings"
)

type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewProvider builds a single backend by name. An empty name means gemini.
func NewProvider(ctx context.Context, opts Options) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Provider))
	if name == "" {
		name = "gemini"
	}

	switch name {
	case "gemini":
		return NewGeminiProvider(ctx, opts.APIKey, opts.Model)
	case "openai":
		return NewOpenAIProvider(opts.APIKey, opts.Model, opts.BaseURL), nil
	case "ollama":
		return NewOllamaProvider(opts.Model, opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", opts.Provider)
	}
}
