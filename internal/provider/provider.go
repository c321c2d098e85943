// Package provider implements the AI generation capability: concrete
// Gemini, OpenAI-compatible and Ollama backends plus a Manager that picks
// among them by platform and fallback order.
package provider

import (
	"context"
	"errors"
	"strings"
)

// ErrNoProvider is returned when no registered provider is available.
var ErrNoProvider = errors.New("no AI provider is available")

// GenerateOptions are passed through to the backend on every call.
type GenerateOptions struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// StreamChunk is one delta of a streamed generation. A chunk with Err set is
// the last one sent before the channel is closed.
type StreamChunk struct {
	Content string
	Err     error
}

// Provider is a single AI backend.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// GenerateTextStream returns a finite channel of deltas. The channel is
	// closed when generation ends or ctx is cancelled.
	GenerateTextStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan StreamChunk, error)
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error)
}

// cleanOutput strips a code fence wrapping the whole response.
func cleanOutput(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	inner := strings.TrimSuffix(text[3:], "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(strings.TrimSpace(inner[:nl]), " \t") {
		// drop the info string, e.g. ```markdown
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}

// send delivers c unless ctx is done first.
func send(ctx context.Context, ch chan<- StreamChunk, c StreamChunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
