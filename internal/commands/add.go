package commands

import (
	"context"

	"nova/internal/document"
	"nova/internal/types"
)

var addTargets = []types.Target{
	types.TargetCursor,
	types.TargetParagraph,
	types.TargetEnd,
	types.TargetDocument,
	types.TargetSection,
}

// AddCommand generates new content and inserts it without removing text.
type AddCommand struct {
	base
}

func NewAddCommand(engine *document.Engine, gen Generator, opts ...Option) *AddCommand {
	return &AddCommand{base: newBase(types.ActionAdd, engine, gen, opts)}
}

func (c *AddCommand) Execute(ctx context.Context, cmd types.Command, opts ExecuteOptions) types.EditResult {
	return c.execute(ctx, cmd, opts, c)
}

func (c *AddCommand) editType(target types.Target) types.EditType {
	if target == types.TargetEnd || target == types.TargetDocument {
		return types.EditAppend
	}
	return types.EditInsert
}

func (c *AddCommand) validate(cmd types.Command, dc *document.Context) string {
	if cmd.Target == types.TargetSelection {
		return "Cannot add to a selection. Use the edit command to change selected text."
	}
	return checkTarget(cmd, dc, addTargets)
}

func (c *AddCommand) apply(_ context.Context, cmd types.Command, dc *document.Context, content string) types.EditResult {
	switch cmd.Target {
	case types.TargetCursor, types.TargetParagraph:
		return c.engine.ApplyEdit(content, document.Cursor, editOpts)
	case types.TargetEnd, types.TargetDocument:
		return c.appendToEnd(content)
	case types.TargetSection:
		section := document.FindSection(dc.Content, cmd.Location)
		if section == nil {
			c.logger.Debug("section not found, inserting at cursor")
			return c.engine.ApplyEdit(content, document.Cursor, editOpts)
		}
		return c.writeRegion(afterHeadingRegion(splitLines(dc.Content), section), content, types.EditInsert)
	}
	return types.Failure(c.editType(cmd.Target), "%s", invalidTarget(cmd))
}

func (c *AddCommand) GetSuggestions(dc *document.Context, _ bool) []string {
	return withHeadings([]string{
		"Add a conclusion",
		"Add an introduction",
		"Add examples",
		"Add a summary",
		"Add a list of key points",
		"Add a transition to the next section",
	}, dc, "Add more detail to %s")
}

func (c *AddCommand) Preview(cmd types.Command) Preview {
	return previewOf(cmd, c.engine.GetDocumentContext(), "Will add new content at "+describeTarget(cmd))
}

func (c *AddCommand) EstimateScope(cmd types.Command) Scope {
	s := estimate(cmd, c.engine.GetDocumentContext(), "New content is inserted at "+describeTarget(cmd)+"; existing text is unchanged")
	// Nothing existing is rewritten by an addition.
	s.CharactersAffected, s.LinesAffected = 0, 0
	return s
}

func (c *AddCommand) GetAvailableTargets(dc *document.Context) []types.Target {
	return availableTargets(dc, addTargets)
}
