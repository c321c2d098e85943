package commands

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"nova/internal/conversation"
	"nova/internal/document"
	"nova/internal/types"
)

const errDeleteEnd = "Cannot delete from end of document. Use a different target."

var deleteTargets = []types.Target{
	types.TargetSelection,
	types.TargetCursor,
	types.TargetParagraph,
	types.TargetDocument,
	types.TargetSection,
}

// DeleteCommand removes text directly; it never calls the generator.
type DeleteCommand struct {
	base
}

func NewDeleteCommand(engine *document.Engine, gen Generator, opts ...Option) *DeleteCommand {
	return &DeleteCommand{base: newBase(types.ActionDelete, engine, gen, opts)}
}

func (c *DeleteCommand) Execute(ctx context.Context, cmd types.Command, _ ExecuteOptions) (res types.EditResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("command panicked", zap.Any("panic", r))
			res = types.Failure(types.EditDelete, "%v", r)
		}
	}()

	if cmd.Target == types.TargetEnd {
		return types.Failure(types.EditDelete, errDeleteEnd)
	}
	dc := c.engine.GetDocumentContext()
	if dc == nil {
		return types.Failure(types.EditDelete, errNoDocument)
	}
	if msg := checkTarget(cmd, dc, deleteTargets); msg != "" {
		return types.Failure(types.EditDelete, "%s", msg)
	}

	c.record(ctx, conversation.RoleUser, cmd.Instruction)
	return c.finish(ctx, cmd, c.remove(ctx, cmd))
}

func (c *DeleteCommand) remove(ctx context.Context, cmd types.Command) types.EditResult {
	switch cmd.Target {
	case types.TargetSelection:
		return c.engine.DeleteContent(document.DeleteSelection, "")
	case types.TargetCursor:
		return c.engine.DeleteContent(document.DeleteLine, "")
	case types.TargetParagraph:
		r, ok := c.engine.CurrentParagraph()
		if !ok {
			return types.Failure(types.EditDelete, "No active editor or file")
		}
		return c.engine.DeleteLines(r)
	case types.TargetDocument:
		res := c.engine.SetDocumentContent(ctx, "")
		res.EditType = types.EditDelete
		return res
	case types.TargetSection:
		return c.engine.DeleteContent(document.DeleteSection, cmd.Location)
	}
	return types.Failure(types.EditDelete, "%s", invalidTarget(cmd))
}

func (c *DeleteCommand) GetSuggestions(dc *document.Context, hasSelection bool) []string {
	var static []string
	if hasSelection {
		static = append(static, "Delete the selected text")
	}
	static = append(static, "Delete the current line", "Delete the current paragraph", "Clear the document")
	return withHeadings(static, dc, "Delete the %s section")
}

func (c *DeleteCommand) Preview(cmd types.Command) Preview {
	if cmd.Target == types.TargetEnd {
		return Preview{Description: errDeleteEnd}
	}
	dc := c.engine.GetDocumentContext()
	if cmd.Target == types.TargetCursor && dc != nil && dc.CursorPosition != nil {
		lines := splitLines(dc.Content)
		line := min(dc.CursorPosition.Line, len(lines)-1)
		return Preview{Description: "Will delete " + describeTarget(cmd), Snippet: snippet(lines[line])}
	}
	if cmd.Target == types.TargetSection && dc != nil {
		if s := document.FindSection(dc.Content, cmd.Location); s != nil {
			lines := splitLines(dc.Content)
			return Preview{
				Description: "Will delete " + describeTarget(cmd) + " including its heading",
				Snippet:     snippet(joinLines(lines, s.Range)),
			}
		}
	}
	return previewOf(cmd, dc, "Will delete "+describeTarget(cmd))
}

func (c *DeleteCommand) EstimateScope(cmd types.Command) Scope {
	if cmd.Target == types.TargetEnd {
		return Scope{ScopeDescription: errDeleteEnd}
	}
	dc := c.engine.GetDocumentContext()
	switch {
	case cmd.Target == types.TargetCursor && dc != nil && dc.CursorPosition != nil:
		lines := splitLines(dc.Content)
		line := lines[min(dc.CursorPosition.Line, len(lines)-1)]
		return Scope{CharactersAffected: len([]rune(line)), LinesAffected: 1, ScopeDescription: "Deletes the current line"}
	case cmd.Target == types.TargetSection && dc != nil:
		if s := document.FindSection(dc.Content, cmd.Location); s != nil {
			text := joinLines(splitLines(dc.Content), s.Range)
			return Scope{
				CharactersAffected: len([]rune(text)),
				LinesAffected:      s.Range.End - s.Range.Start + 1,
				ScopeDescription:   "Deletes " + describeTarget(cmd) + " including its heading",
			}
		}
	}
	return estimate(cmd, dc, "Deletes "+describeTarget(cmd))
}

func (c *DeleteCommand) GetAvailableTargets(dc *document.Context) []types.Target {
	return availableTargets(dc, deleteTargets)
}

func joinLines(lines []string, r document.LineRange) string {
	end := min(r.End, len(lines)-1)
	return strings.Join(lines[r.Start:end+1], "\n")
}
