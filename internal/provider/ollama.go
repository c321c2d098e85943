package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL   = "http://127.0.0.1:11434"
	defaultOllamaModel = "llama3.2"
	ollamaProbeTimeout = 2 * time.Second
)

// OllamaProvider talks to a local Ollama server.
type OllamaProvider struct {
	client  *http.Client
	stream  *http.Client
	model   string
	baseURL string
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []openAIChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  map[string]any      `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message openAIChatMessage `json:"message"`
	Done    bool              `json:"done"`
	Error   string            `json:"error"`
}

func NewOllamaProvider(model, baseURL string) *OllamaProvider {
	url := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if url == "" {
		url = defaultOllamaURL
	}
	if strings.TrimSpace(model) == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		client:  &http.Client{Timeout: 90 * time.Second},
		stream:  &http.Client{},
		model:   model,
		baseURL: url,
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

// IsAvailable probes the server's tag listing.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ollamaProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (p *OllamaProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error) {
	opts.SystemPrompt = systemPrompt
	return p.GenerateText(ctx, userPrompt, opts)
}

func (p *OllamaProvider) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	resp, err := p.do(ctx, p.request(prompt, opts, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama error: %s", parsed.Error)
	}
	return cleanOutput(parsed.Message.Content), nil
}

// GenerateTextStream reads Ollama's newline-delimited JSON stream.
func (p *OllamaProvider) GenerateTextStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan StreamChunk, error) {
	resp, err := p.do(ctx, p.request(prompt, opts, true))
	if err != nil {
		return nil, err
	}

	out := make(chan StreamChunk, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk ollamaChatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}
			if chunk.Error != "" {
				send(ctx, out, StreamChunk{Err: fmt.Errorf("ollama stream error: %s", chunk.Error)})
				return
			}
			if chunk.Message.Content != "" {
				if !send(ctx, out, StreamChunk{Content: chunk.Message.Content}) {
					return
				}
			}
			if chunk.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			send(ctx, out, StreamChunk{Err: fmt.Errorf("ollama stream failed: %w", err)})
		}
	}()
	return out, nil
}

func (p *OllamaProvider) request(prompt string, opts GenerateOptions, stream bool) ollamaChatRequest {
	var messages []openAIChatMessage
	if opts.SystemPrompt != "" {
		messages = append(messages, openAIChatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, openAIChatMessage{Role: "user", Content: prompt})

	options := map[string]any{}
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	return ollamaChatRequest{Model: p.model, Messages: messages, Stream: stream, Options: options}
}

func (p *OllamaProvider) do(ctx context.Context, reqBody ollamaChatRequest) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := p.client
	if reqBody.Stream {
		client = p.stream
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama chat request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return resp, nil
}
