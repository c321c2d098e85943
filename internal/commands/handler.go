// Package commands implements the editing commands. Every handler follows
// the same sequence: snapshot the document, validate, build a prompt,
// generate, then apply the result through the document engine.
package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"nova/internal/conversation"
	"nova/internal/document"
	"nova/internal/prompt"
	"nova/internal/provider"
	"nova/internal/types"
)

const (
	errNoDocument   = "No active document found"
	errNoSelection  = "No text selected. Select some text or choose a different target."
	errNoLocation   = "Section target requires a location"
	errEmptyContent = "AI provider returned empty content"

	defaultHistoryMessages = 10
	snippetLimit           = 200
)

// Generator is the AI generation capability the handlers depend on.
// *provider.Manager satisfies it.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, opts provider.GenerateOptions) (string, error)
	GenerateTextStream(ctx context.Context, prompt string, opts provider.GenerateOptions) (<-chan provider.StreamChunk, error)
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts provider.GenerateOptions) (string, error)
}

// StreamCallback receives the accumulated content after every chunk and a
// final time with done set.
type StreamCallback func(partial string, done bool)

type ExecuteOptions struct {
	Stream bool
	// OnChunk observes streamed content. When Stream is set and OnChunk is
	// nil, the handler writes the stream into the document itself.
	OnChunk StreamCallback
}

// Preview describes a command's effect without performing it.
type Preview struct {
	Description string `json:"description"`
	Snippet     string `json:"snippet,omitempty"`
}

// Scope estimates how much of the document a command touches.
type Scope struct {
	CharactersAffected int    `json:"characters_affected"`
	LinesAffected      int    `json:"lines_affected"`
	ScopeDescription   string `json:"scope_description"`
	Complexity         string `json:"complexity,omitempty"`
	EstimatedIssues    int    `json:"estimated_issues,omitempty"`
}

// Handler is implemented by every command.
type Handler interface {
	Action() types.Action
	Execute(ctx context.Context, cmd types.Command, opts ExecuteOptions) types.EditResult
	GetSuggestions(dc *document.Context, hasSelection bool) []string
	Preview(cmd types.Command) Preview
	EstimateScope(cmd types.Command) Scope
	GetAvailableTargets(dc *document.Context) []types.Target
}

// Option configures a handler.
type Option func(*base)

func WithLogger(l *zap.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithConversation records every command in l and feeds its history into
// prompts when history is enabled.
func WithConversation(l conversation.Log) Option {
	return func(b *base) { b.conv = l }
}

func WithPromptOptions(o prompt.Options) Option {
	return func(b *base) { b.prompt = o }
}

func WithHistoryMessages(n int) Option {
	return func(b *base) {
		if n > 0 {
			b.historyMessages = n
		}
	}
}

// steps is the command-specific part of the shared sequence.
type steps interface {
	editType(target types.Target) types.EditType
	// validate returns a failure message, or "" when cmd may proceed.
	validate(cmd types.Command, dc *document.Context) string
	apply(ctx context.Context, cmd types.Command, dc *document.Context, content string) types.EditResult
}

type base struct {
	action          types.Action
	engine          *document.Engine
	gen             Generator
	builder         *prompt.ContextBuilder
	conv            conversation.Log
	prompt          prompt.Options
	temperature     float64
	historyMessages int
	logger          *zap.Logger
}

func newBase(action types.Action, engine *document.Engine, gen Generator, opts []Option) base {
	b := base{
		action:          action,
		engine:          engine,
		gen:             gen,
		builder:         prompt.NewContextBuilder(),
		prompt:          prompt.Options{IncludeStructure: true},
		historyMessages: defaultHistoryMessages,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = b.logger.With(zap.String("command", string(action)))
	return b
}

func (b *base) Action() types.Action { return b.action }

// execute runs the shared sequence. It never panics: a panic in any step is
// reported as a failed result.
func (b *base) execute(ctx context.Context, cmd types.Command, opts ExecuteOptions, s steps) (res types.EditResult) {
	editType := s.editType(cmd.Target)
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("command panicked", zap.Any("panic", r))
			res = types.Failure(editType, "%v", r)
		}
	}()

	dc := b.engine.GetDocumentContext()
	if dc == nil {
		return types.Failure(editType, errNoDocument)
	}
	if msg := s.validate(cmd, dc); msg != "" {
		b.logger.Debug("command rejected", zap.String("target", string(cmd.Target)), zap.String("reason", msg))
		return types.Failure(editType, "%s", msg)
	}

	p := b.builder.BuildPrompt(cmd, dc, b.prompt, b.history(ctx))
	if b.temperature > 0 {
		p.Config.Temperature = b.temperature
	}
	if err := b.builder.ValidatePrompt(p); err != nil {
		return types.Failure(editType, "%s", err.Error())
	}

	b.record(ctx, conversation.RoleUser, cmd.Instruction)
	b.logger.Debug("generating",
		zap.String("target", string(cmd.Target)),
		zap.Bool("stream", opts.Stream),
		zap.Int("prompt_chars", len(p.UserPrompt)),
	)

	genOpts := provider.GenerateOptions{
		SystemPrompt: p.SystemPrompt,
		Temperature:  p.Config.Temperature,
		MaxTokens:    p.Config.MaxTokens,
	}
	var content string
	var err error
	if opts.Stream {
		content, err = b.stream(ctx, cmd, p.UserPrompt, genOpts, opts.OnChunk)
	} else {
		content, err = b.gen.GenerateText(ctx, p.UserPrompt, genOpts)
	}
	if err != nil {
		return b.finish(ctx, cmd, types.Failure(editType, "%s", err.Error()))
	}
	if strings.TrimSpace(content) == "" {
		return b.finish(ctx, cmd, types.Failure(editType, errEmptyContent))
	}

	if opts.Stream {
		// The stream callback has already written the content.
		return b.finish(ctx, cmd, types.EditResult{Success: true, Content: content, EditType: editType})
	}
	return b.finish(ctx, cmd, s.apply(ctx, cmd, dc, content))
}

func (b *base) stream(ctx context.Context, cmd types.Command, userPrompt string, opts provider.GenerateOptions, cb StreamCallback) (string, error) {
	if cb == nil {
		w, err := EditorStream(b.engine, cmd)
		if err != nil {
			return "", err
		}
		cb = w
	}
	ch, err := b.gen.GenerateTextStream(ctx, userPrompt, opts)
	if err != nil {
		return "", err
	}
	return consumeStream(ctx, ch, cb)
}

// consumeStream accumulates chunks in order, reporting progress after each.
func consumeStream(ctx context.Context, ch <-chan provider.StreamChunk, cb StreamCallback) (string, error) {
	var sb strings.Builder
	for chunk := range ch {
		if chunk.Err != nil {
			return sb.String(), chunk.Err
		}
		sb.WriteString(chunk.Content)
		cb(sb.String(), false)
	}
	if err := ctx.Err(); err != nil {
		return sb.String(), err
	}
	cb(sb.String(), true)
	return sb.String(), nil
}

func (b *base) history(ctx context.Context) string {
	if b.conv == nil || !b.prompt.IncludeHistory {
		return ""
	}
	return b.conv.GetConversationContext(ctx, b.historyMessages)
}

func (b *base) record(ctx context.Context, role conversation.Role, content string) {
	if b.conv == nil || strings.TrimSpace(content) == "" {
		return
	}
	var err error
	if role == conversation.RoleUser {
		err = b.conv.AddUserMessage(ctx, content)
	} else {
		err = b.conv.AddAssistantMessage(ctx, content)
	}
	if err != nil {
		b.logger.Warn("failed to record conversation", zap.String("role", string(role)), zap.Error(err))
	}
}

func (b *base) finish(ctx context.Context, cmd types.Command, res types.EditResult) types.EditResult {
	if res.Success {
		if res.SuccessMessage == "" {
			res.SuccessMessage = successMessage(cmd)
		}
		b.record(ctx, conversation.RoleAssistant, res.SuccessMessage)
		b.logger.Info("command applied",
			zap.String("target", string(cmd.Target)),
			zap.String("edit_type", string(res.EditType)),
			zap.Int("chars", len(res.Content)),
		)
		return res
	}
	b.record(ctx, conversation.RoleAssistant, "Error: "+res.Error)
	b.logger.Warn("command failed", zap.String("target", string(cmd.Target)), zap.String("error", res.Error))
	return res
}

// checkTarget enforces the shared target preconditions.
func checkTarget(cmd types.Command, dc *document.Context, allowed []types.Target) string {
	if !slices.Contains(allowed, cmd.Target) {
		return invalidTarget(cmd)
	}
	switch cmd.Target {
	case types.TargetSelection:
		if dc.SelectedText == "" {
			return errNoSelection
		}
	case types.TargetSection:
		if strings.TrimSpace(cmd.Location) == "" {
			return errNoLocation
		}
	}
	return ""
}

// sectionMissing reports a section target whose heading does not exist.
func sectionMissing(cmd types.Command, dc *document.Context) string {
	if cmd.Target != types.TargetSection || document.FindSection(dc.Content, cmd.Location) != nil {
		return ""
	}
	return fmt.Sprintf("Section %q not found", cmd.Location)
}

func invalidTarget(cmd types.Command) string {
	return fmt.Sprintf("Invalid target for %s command: %s", cmd.Action, cmd.Target)
}

func describeTarget(cmd types.Command) string {
	switch cmd.Target {
	case types.TargetSelection:
		return "the selection"
	case types.TargetCursor:
		return "the cursor position"
	case types.TargetParagraph:
		return "the current paragraph"
	case types.TargetDocument:
		return "the document"
	case types.TargetEnd:
		return "the end of the document"
	case types.TargetSection:
		return fmt.Sprintf("section %q", cmd.Location)
	}
	return string(cmd.Target)
}

func successMessage(cmd types.Command) string {
	switch cmd.Action {
	case types.ActionAdd:
		return "Added content at " + describeTarget(cmd)
	case types.ActionEdit:
		return "Edited " + describeTarget(cmd)
	case types.ActionDelete:
		return "Deleted " + describeTarget(cmd)
	case types.ActionRewrite:
		return "Rewrote " + describeTarget(cmd)
	case types.ActionGrammar:
		return "Corrected grammar in " + describeTarget(cmd)
	}
	return "Updated " + describeTarget(cmd)
}
