package commands

import (
	"context"
	"strings"

	"nova/internal/document"
	"nova/internal/types"
)

var (
	// editOpts selects and reveals replaced or inserted text.
	editOpts = document.EditOptions{SelectNewText: true, ScrollToEdit: true}
	// appendOpts only reveals text appended at the end of the document.
	appendOpts = document.EditOptions{ScrollToEdit: true}
)

// region is a span of the document to overwrite, with text wrapped around
// whatever is written into it.
type region struct {
	r      document.Range
	prefix string
	suffix string
}

func (g region) text(content string) string {
	return g.prefix + content + g.suffix
}

func point(p types.Position) region {
	return region{r: document.Range{From: p, To: p}}
}

func lineRegion(lines []string, r document.LineRange) region {
	end := min(r.End, len(lines)-1)
	return region{r: document.Range{
		From: types.Position{Line: r.Start},
		To:   types.Position{Line: end, Ch: len(lines[end])},
	}}
}

// sectionBodyRegion covers everything under the heading line, leaving the
// heading itself in place. An empty body becomes an insertion after it.
func sectionBodyRegion(lines []string, s *document.Section) region {
	if s.Range.End > s.Range.Start {
		g := lineRegion(lines, document.LineRange{Start: s.Range.Start + 1, End: s.Range.End})
		g.prefix = "\n"
		return g
	}
	g := point(types.Position{Line: s.Range.Start, Ch: len(lines[s.Range.Start])})
	g.prefix = "\n\n"
	return g
}

// afterHeadingRegion inserts directly below a heading, separated by blank
// lines from the heading and from the existing body.
func afterHeadingRegion(lines []string, s *document.Section) region {
	next := s.Range.Start + 1
	if next >= len(lines) {
		g := point(types.Position{Line: s.Range.Start, Ch: len(lines[s.Range.Start])})
		g.prefix = "\n\n"
		return g
	}
	g := point(types.Position{Line: next})
	g.prefix = "\n"
	g.suffix = "\n\n"
	if strings.TrimSpace(lines[next]) == "" {
		g.suffix = "\n"
	}
	return g
}

// trimBlock drops trailing newlines so a block slots between existing lines.
func trimBlock(content string) string {
	return strings.TrimRight(content, "\r\n")
}

func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

func (b *base) writeRegion(g region, content string, editType types.EditType) types.EditResult {
	res := b.engine.ReplaceRange(g.text(trimBlock(content)), g.r, editOpts)
	if res.Success {
		res.EditType = editType
		res.Content = content
	}
	return res
}

func (b *base) replaceSection(cmd types.Command, dc *document.Context, content string) types.EditResult {
	section := document.FindSection(dc.Content, cmd.Location)
	if section == nil {
		return types.Failure(types.EditReplace, "Section %q not found", cmd.Location)
	}
	return b.writeRegion(sectionBodyRegion(splitLines(dc.Content), section), content, types.EditReplace)
}

func (b *base) replaceParagraph(content string) types.EditResult {
	r, ok := b.engine.CurrentParagraph()
	if !ok {
		return types.Failure(types.EditReplace, "No active editor or file")
	}
	res := b.engine.ReplaceLines(trimBlock(content), r, editOpts)
	if res.Success {
		res.Content = content
	}
	return res
}

func (b *base) replaceDocument(ctx context.Context, content string) types.EditResult {
	return b.engine.SetDocumentContent(ctx, content)
}

func (b *base) appendToEnd(content string) types.EditResult {
	return b.engine.ApplyEdit(content, document.End, appendOpts)
}
