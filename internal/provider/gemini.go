package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider generates text with the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	apiKey string
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{client: client, apiKey: apiKey, model: model}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// IsAvailable reports whether an API key is configured. It does not call the API.
func (p *GeminiProvider) IsAvailable(context.Context) bool {
	return strings.TrimSpace(p.apiKey) != ""
}

func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), geminiConfig(opts))
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return cleanOutput(resp.Text()), nil
}

func (p *GeminiProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error) {
	opts.SystemPrompt = systemPrompt
	return p.GenerateText(ctx, userPrompt, opts)
}

func (p *GeminiProvider) GenerateTextStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan StreamChunk, error) {
	out := make(chan StreamChunk, 16)
	go func() {
		defer close(out)
		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, genai.Text(prompt), geminiConfig(opts)) {
			if err != nil {
				send(ctx, out, StreamChunk{Err: fmt.Errorf("gemini stream failed: %w", err)})
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !send(ctx, out, StreamChunk{Content: text}) {
				return
			}
		}
	}()
	return out, nil
}

func geminiConfig(opts GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if opts.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	return cfg
}
