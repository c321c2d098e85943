package commands

import (
	"errors"
	"fmt"
	"strings"

	"nova/internal/document"
	"nova/internal/types"
)

// EditorStream returns a callback that writes streamed content into the
// region cmd targets. The region is resolved once; every call replaces what
// the previous call wrote, so the document always shows the latest partial
// content. Blank partials are not written, which leaves the document
// untouched when a stream produces nothing.
func EditorStream(engine *document.Engine, cmd types.Command) (StreamCallback, error) {
	dc := engine.GetDocumentContext()
	if dc == nil {
		return nil, errors.New(errNoDocument)
	}
	g, err := streamRegion(engine, cmd, dc)
	if err != nil {
		return nil, err
	}

	cur := g.r.To
	return func(partial string, done bool) {
		if strings.TrimSpace(partial) == "" {
			return
		}
		text := g.text(trimBlock(partial))
		opts := document.EditOptions{}
		if done {
			opts = editOpts
		}
		engine.ReplaceRange(text, document.Range{From: g.r.From, To: cur}, opts)
		cur = document.EndPosition(g.r.From, text)
	}, nil
}

func streamRegion(engine *document.Engine, cmd types.Command, dc *document.Context) (region, error) {
	if cmd.Action == types.ActionDelete || cmd.Action == types.ActionMetadata {
		return region{}, fmt.Errorf("streaming is not supported for the %s command", cmd.Action)
	}
	lines := splitLines(dc.Content)
	cursor := types.Position{}
	if dc.CursorPosition != nil {
		cursor = *dc.CursorPosition
	}

	switch cmd.Target {
	case types.TargetSelection:
		r, ok := engine.SelectionRange()
		if !ok {
			return region{}, errors.New(errNoSelection)
		}
		return region{r: r}, nil
	case types.TargetCursor:
		if cmd.Action == types.ActionAdd || cmd.Action == types.ActionEdit {
			return point(cursor), nil
		}
		return lineRegion(lines, document.ParagraphRange(lines, cursor.Line)), nil
	case types.TargetParagraph:
		if cmd.Action == types.ActionAdd {
			return point(cursor), nil
		}
		return lineRegion(lines, document.ParagraphRange(lines, cursor.Line)), nil
	case types.TargetEnd:
		g := point(document.EndPosition(types.Position{}, dc.Content))
		if dc.Content != "" && !strings.HasSuffix(dc.Content, "\n") {
			g.prefix = "\n"
		}
		return g, nil
	case types.TargetDocument:
		if cmd.Action == types.ActionAdd {
			return streamRegion(engine, types.Command{Action: cmd.Action, Target: types.TargetEnd}, dc)
		}
		return region{r: document.Range{To: document.EndPosition(types.Position{}, dc.Content)}}, nil
	case types.TargetSection:
		s := document.FindSection(dc.Content, cmd.Location)
		if s == nil {
			if cmd.Action == types.ActionAdd {
				return point(cursor), nil
			}
			return region{}, fmt.Errorf("Section %q not found", cmd.Location)
		}
		if cmd.Action == types.ActionAdd {
			return afterHeadingRegion(lines, s), nil
		}
		return sectionBodyRegion(lines, s), nil
	}
	return region{}, errors.New(invalidTarget(cmd))
}
