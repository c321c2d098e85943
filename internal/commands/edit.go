package commands

import (
	"context"

	"nova/internal/document"
	"nova/internal/types"
)

var editTargets = []types.Target{
	types.TargetSelection,
	types.TargetCursor,
	types.TargetParagraph,
	types.TargetDocument,
	types.TargetEnd,
	types.TargetSection,
}

// EditCommand changes existing text according to the instruction.
type EditCommand struct {
	base
}

func NewEditCommand(engine *document.Engine, gen Generator, opts ...Option) *EditCommand {
	return &EditCommand{base: newBase(types.ActionEdit, engine, gen, opts)}
}

func (c *EditCommand) Execute(ctx context.Context, cmd types.Command, opts ExecuteOptions) types.EditResult {
	return c.execute(ctx, cmd, opts, c)
}

func (c *EditCommand) editType(target types.Target) types.EditType {
	switch target {
	case types.TargetCursor:
		return types.EditInsert
	case types.TargetEnd:
		return types.EditAppend
	}
	return types.EditReplace
}

func (c *EditCommand) validate(cmd types.Command, dc *document.Context) string {
	if msg := checkTarget(cmd, dc, editTargets); msg != "" {
		return msg
	}
	return sectionMissing(cmd, dc)
}

func (c *EditCommand) apply(ctx context.Context, cmd types.Command, dc *document.Context, content string) types.EditResult {
	switch cmd.Target {
	case types.TargetSelection:
		return c.engine.ApplyEdit(content, document.Selection, editOpts)
	case types.TargetCursor:
		return c.engine.ApplyEdit(content, document.Cursor, editOpts)
	case types.TargetParagraph:
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

func (c *EditCommand) GetSuggestions(dc *document.Context, hasSelection bool) []string {
	static := []string{
		"Make this more concise",
		"Make this more formal",
		"Improve clarity",
		"Fix the tone",
		"Expand with more detail",
	}
	if hasSelection {
		static = append([]string{"Improve the selected text", "Simplify the selected text"}, static...)
	}
	return withHeadings(static, dc, "Improve the %s section")
}

func (c *EditCommand) Preview(cmd types.Command) Preview {
	return previewOf(cmd, c.engine.GetDocumentContext(), "Will edit "+describeTarget(cmd))
}

func (c *EditCommand) EstimateScope(cmd types.Command) Scope {
	return estimate(cmd, c.engine.GetDocumentContext(), "Edits "+describeTarget(cmd))
}

func (c *EditCommand) GetAvailableTargets(dc *document.Context) []types.Target {
	return availableTargets(dc, editTargets)
}
