package commands

import (
	"context"

	"nova/internal/document"
	"nova/internal/types"
)

var rewriteTargets = editTargets

// RewriteCommand produces a fresh version of the targeted text. Unlike edit,
// a cursor target rewrites the paragraph under the cursor.
type RewriteCommand struct {
	base
}

func NewRewriteCommand(engine *document.Engine, gen Generator, opts ...Option) *RewriteCommand {
	return &RewriteCommand{base: newBase(types.ActionRewrite, engine, gen, opts)}
}

func (c *RewriteCommand) Execute(ctx context.Context, cmd types.Command, opts ExecuteOptions) types.EditResult {
	return c.execute(ctx, cmd, opts, c)
}

func (c *RewriteCommand) editType(target types.Target) types.EditType {
	if target == types.TargetEnd {
		return types.EditAppend
	}
	return types.EditReplace
}

func (c *RewriteCommand) validate(cmd types.Command, dc *document.Context) string {
	if msg := checkTarget(cmd, dc, rewriteTargets); msg != "" {
		return msg
	}
	return sectionMissing(cmd, dc)
}

func (c *RewriteCommand) apply(ctx context.Context, cmd types.Command, dc *document.Context, content string) types.EditResult {
	switch cmd.Target {
	case types.TargetSelection:
		return c.engine.ApplyEdit(content, document.Selection, editOpts)
	case types.TargetCursor, types.TargetParagraph:
		return c.replaceParagraph(content)
	case types.TargetDocument:
		return c.replaceDocument(ctx, content)
	case types.TargetEnd:
		return c.appendToEnd(content)
	case types.TargetSection:
		return c.replaceSection(cmd, dc, content)
	}
	return types.Failure(c.editType(cmd.Target), "%s", invalidTarget(cmd))
}

func (c *RewriteCommand) GetSuggestions(dc *document.Context, hasSelection bool) []string {
	static := []string{
		"Rewrite in a more formal tone",
		"Rewrite in a casual, friendly tone",
		"Rewrite for a general audience",
		"Rewrite as bullet points",
		"Rewrite to be more persuasive",
	}
	if hasSelection {
		static = append([]string{"Rewrite the selected text more clearly"}, static...)
	}
	return withHeadings(static, dc, "Rewrite the %s section")
}

func (c *RewriteCommand) Preview(cmd types.Command) Preview {
	return previewOf(cmd, c.engine.GetDocumentContext(), "Will rewrite "+describeTarget(cmd))
}

func (c *RewriteCommand) EstimateScope(cmd types.Command) Scope {
	s := estimate(cmd, c.engine.GetDocumentContext(), "Rewrites "+describeTarget(cmd))
	s.Complexity = rewriteComplexity(s.CharactersAffected)
	return s
}

func rewriteComplexity(chars int) string {
	switch {
	case chars == 0:
		return "none"
	case chars < 200:
		return "simple"
	case chars < 1000:
		return "moderate"
	}
	return "complex"
}

func (c *RewriteCommand) GetAvailableTargets(dc *document.Context) []types.Target {
	return availableTargets(dc, rewriteTargets)
}
