// Package prompt assembles the system and user prompts sent to the AI
// provider for each command.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"nova/internal/document"
	"nova/internal/types"
)

const (
	// MaxUserPromptChars is the longest user prompt ValidatePrompt accepts.
	MaxUserPromptChars = 10000

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Options controls what goes into the prompt. Zero Temperature and MaxTokens
// select the defaults.
type Options struct {
	IncludeStructure bool
	IncludeHistory   bool
	Temperature      float64
	MaxTokens        int
}

// Config is the generation configuration that travels with a prompt.
type Config struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// GeneratedPrompt is built fresh for every command.
type GeneratedPrompt struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
	Context      string `json:"context"`
	Config       Config `json:"config"`
}

// ValidationError lists every problem found in a prompt.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "Invalid prompt: " + strings.Join(e.Issues, "; ")
}

// ContextBuilder turns a command and document snapshot into a prompt.
type ContextBuilder struct{}

// NewContextBuilder returns a ContextBuilder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{}
}

// BuildPrompt assembles the prompt for cmd. conversation is a summary of
// earlier exchanges and is used only when opts.IncludeHistory is set.
func (b *ContextBuilder) BuildPrompt(cmd types.Command, dc *document.Context, opts Options, conversation string) GeneratedPrompt {
	contextBlock := b.buildContext(cmd, dc, opts, conversation)

	var sb strings.Builder
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nUSER REQUEST: ")
	sb.WriteString(strings.TrimSpace(cmd.Instruction))
	if extra := strings.TrimSpace(cmd.Context); extra != "" {
		sb.WriteString("\n\nADDITIONAL REQUIREMENTS: ")
		sb.WriteString(extra)
	}
	if focus, ok := actionFocus[cmd.Action]; ok {
		sb.WriteString("\n\n" + focus)
	}
	if format, ok := actionOutputFormat[cmd.Action]; ok {
		sb.WriteString("\n" + format)
	}

	return GeneratedPrompt{
		SystemPrompt: b.SystemPrompt(cmd.Action),
		UserPrompt:   sb.String(),
		Context:      contextBlock,
		Config:       resolveConfig(opts),
	}
}

// SystemPrompt returns the preamble plus the action-specific template.
func (b *ContextBuilder) SystemPrompt(action types.Action) string {
	return systemPreamble + "\n" + actionSystemPrompts[action]
}

func (b *ContextBuilder) buildContext(cmd types.Command, dc *document.Context, opts Options, conversation string) string {
	if dc == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "DOCUMENT: %s\n", dc.Filename)

	if opts.IncludeStructure && len(dc.Headings) > 0 {
		sb.WriteString("\nDOCUMENT STRUCTURE:\n")
		sb.WriteString(document.Outline(dc.Headings))
	}

	sb.WriteString("\n")
	sb.WriteString(targetContext(cmd, dc))

	if opts.IncludeHistory {
		if history := strings.TrimSpace(conversation); history != "" {
			sb.WriteString("\n\nPREVIOUS CONVERSATION:\n")
			sb.WriteString(history)
		}
	}

	sb.WriteString("\n\nFULL DOCUMENT:\n")
	sb.WriteString(dc.Content)
	return sb.String()
}

func targetContext(cmd types.Command, dc *document.Context) string {
	switch cmd.Target {
	case types.TargetSelection:
		if dc.SelectedText != "" {
			return "SELECTED TEXT:\n" + dc.SelectedText
		}
		return "TARGET: the current selection"
	case types.TargetCursor, types.TargetParagraph:
		var sb strings.Builder
		if cmd.Target == types.TargetParagraph {
			sb.WriteString("TARGET: the paragraph at the cursor\n")
		}
		sb.WriteString("CURSOR CONTEXT:\n")
		if dc.SurroundingLines != nil {
			sb.WriteString("Before cursor:\n")
			sb.WriteString(strings.Join(dc.SurroundingLines.Before, "\n"))
			sb.WriteString("\n[CURSOR]\nAfter cursor:\n")
			sb.WriteString(strings.Join(dc.SurroundingLines.After, "\n"))
		} else {
			sb.WriteString("[CURSOR]")
		}
		if text := replacedParagraph(cmd, dc); text != "" {
			sb.WriteString("\n\nCURRENT PARAGRAPH (return only its replacement):\n")
			sb.WriteString(text)
		}
		return sb.String()
	case types.TargetSection:
		return fmt.Sprintf("TARGET: targeting the %q section", cmd.Location)
	case types.TargetEnd:
		return "TARGET: targeting the end of the document"
	case types.TargetDocument:
		return "TARGET: targeting the entire document"
	}
	return fmt.Sprintf("TARGET: targeting %s", cmd.Target)
}

// replacedParagraph is the paragraph under the cursor when the command
// overwrites it. Add never does; edit only for a paragraph target.
func replacedParagraph(cmd types.Command, dc *document.Context) string {
	if dc.CursorPosition == nil || cmd.Action == types.ActionAdd {
		return ""
	}
	if cmd.Target == types.TargetCursor && cmd.Action == types.ActionEdit {
		return ""
	}
	lines := strings.Split(dc.Content, "\n")
	r := document.ParagraphRange(lines, dc.CursorPosition.Line)
	if r.Start < 0 {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[r.Start:r.End+1], "\n"))
}

func resolveConfig(opts Options) Config {
	cfg := Config{Temperature: opts.Temperature, MaxTokens: opts.MaxTokens}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return cfg
}

// ValidatePrompt rejects empty prompts and user prompts over the length cap.
func (b *ContextBuilder) ValidatePrompt(p GeneratedPrompt) error {
	var issues []string
	if strings.TrimSpace(p.SystemPrompt) == "" {
		issues = append(issues, "system prompt is empty")
	}
	if strings.TrimSpace(p.UserPrompt) == "" {
		issues = append(issues, "user prompt is empty")
	}
	if n := utf8.RuneCountInString(p.UserPrompt); n > MaxUserPromptChars {
		issues = append(issues, fmt.Sprintf("user prompt is too long (%d characters, maximum %d)", n, MaxUserPromptChars))
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
