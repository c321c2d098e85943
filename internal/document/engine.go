package document

import (
	"context"
	"strings"

	"nova/internal/types"
)

const errNoEditor = "No active editor or file"

type positionKind int

const (
	kindCursor positionKind = iota
	kindSelection
	kindEnd
	kindExplicit
)

// EditPosition selects where ApplyEdit writes.
type EditPosition struct {
	kind positionKind
	at   types.Position
}

var (
	// Cursor inserts at the cursor without removing text.
	Cursor = EditPosition{kind: kindCursor}
	// Selection replaces the current selection.
	Selection = EditPosition{kind: kindSelection}
	// End appends to the end of the document.
	End = EditPosition{kind: kindEnd}
)

// At inserts at an explicit position.
func At(p types.Position) EditPosition {
	return EditPosition{kind: kindExplicit, at: p}
}

// EditOptions control the view after an edit.
type EditOptions struct {
	SelectNewText bool
	ScrollToEdit  bool
}

// DeleteTarget is what DeleteContent removes.
type DeleteTarget string

const (
	DeleteSelection DeleteTarget = "selection"
	DeleteLine      DeleteTarget = "line"
	DeleteSection   DeleteTarget = "section"
)

// Engine owns every read and write of the active document.
type Engine struct {
	ws           Workspace
	contextLines int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithContextLines sets how many lines around the cursor are captured.
func WithContextLines(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.contextLines = n
		}
	}
}

// NewEngine creates an engine over ws.
func NewEngine(ws Workspace, opts ...EngineOption) *Engine {
	e := &Engine{ws: ws, contextLines: 3}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) active() (*File, Editor) {
	if e.ws == nil {
		return nil, nil
	}
	return e.ws.ActiveFile(), e.ws.ActiveEditor()
}

// GetDocumentContext snapshots the active document, or returns nil when no
// file or editor is active.
func (e *Engine) GetDocumentContext() *Context {
	file, ed := e.active()
	if file == nil || ed == nil {
		return nil
	}
	content := ed.GetValue()
	cursor := ed.GetCursor()

	dc := &Context{
		File:           file,
		Filename:       file.Name,
		Content:        content,
		Headings:       ExtractHeadings(content),
		SelectedText:   ed.GetSelection(),
		CursorPosition: &cursor,
	}

	lines := strings.Split(content, "\n")
	before := max(0, cursor.Line-e.contextLines)
	after := min(len(lines), cursor.Line+1+e.contextLines)
	surrounding := &SurroundingLines{Before: []string{}, After: []string{}}
	if cursor.Line < len(lines) {
		surrounding.Before = append(surrounding.Before, lines[before:cursor.Line]...)
		surrounding.After = append(surrounding.After, lines[cursor.Line+1:after]...)
	}
	dc.SurroundingLines = surrounding
	return dc
}

// FindSection resolves a heading in the active document.
func (e *Engine) FindSection(headingText string) *Section {
	_, ed := e.active()
	if ed == nil {
		return nil
	}
	return FindSection(ed.GetValue(), headingText)
}

// CurrentParagraph returns the paragraph around the cursor.
func (e *Engine) CurrentParagraph() (LineRange, bool) {
	_, ed := e.active()
	if ed == nil {
		return LineRange{}, false
	}
	lines := strings.Split(ed.GetValue(), "\n")
	return ParagraphRange(lines, ed.GetCursor().Line), true
}

// ApplyEdit writes content at the given position.
func (e *Engine) ApplyEdit(content string, at EditPosition, opts EditOptions) types.EditResult {
	file, ed := e.active()
	editType := editTypeFor(at)
	if file == nil || ed == nil {
		return types.Failure(editType, errNoEditor)
	}

	var start types.Position
	switch at.kind {
	case kindSelection:
		if ed.GetSelection() == "" {
			return types.Failure(editType, "No text selected")
		}
		start = selectionStart(ed)
		ed.ReplaceSelection(content)
	case kindEnd:
		current := ed.GetValue()
		sep := ""
		if current != "" && !strings.HasSuffix(current, "\n") {
			sep = "\n"
		}
		start = EndPosition(types.Position{}, current+sep)
		// Whole-document replace keeps undo history coherent.
		ed.SetValue(current + sep + content)
	case kindExplicit:
		start = at.at
		ed.ReplaceRange(content, start, start)
	default:
		start = ed.GetCursor()
		ed.ReplaceRange(content, start, start)
	}

	e.afterEdit(ed, start, content, opts)
	applied := start
	return types.EditResult{
		Success:   true,
		Content:   content,
		EditType:  editType,
		AppliedAt: &applied,
	}
}

// ReplaceLines replaces the inclusive line range r with content.
func (e *Engine) ReplaceLines(content string, r LineRange, opts EditOptions) types.EditResult {
	file, ed := e.active()
	if file == nil || ed == nil {
		return types.Failure(types.EditReplace, errNoEditor)
	}
	last := ed.LineCount() - 1
	if r.Start < 0 || r.Start > last || r.End < r.Start {
		return types.Failure(types.EditReplace, "Line range %d-%d is outside the document", r.Start, r.End)
	}
	end := min(r.End, last)
	from := types.Position{Line: r.Start, Ch: 0}
	to := types.Position{Line: end, Ch: len(ed.GetLine(end))}
	ed.ReplaceRange(content, from, to)
	e.afterEdit(ed, from, content, opts)
	return types.EditResult{
		Success:   true,
		Content:   content,
		EditType:  types.EditReplace,
		AppliedAt: &from,
	}
}

// DeleteContent removes the selection, the cursor line, or a whole section.
func (e *Engine) DeleteContent(target DeleteTarget, location string) types.EditResult {
	file, ed := e.active()
	if file == nil || ed == nil {
		return types.Failure(types.EditDelete, errNoEditor)
	}

	switch target {
	case DeleteSelection:
		if ed.GetSelection() == "" {
			return types.Failure(types.EditDelete, "No text selected")
		}
		at := selectionStart(ed)
		ed.ReplaceSelection("")
		return types.EditResult{Success: true, EditType: types.EditDelete, AppliedAt: &at}
	case DeleteLine:
		line := ed.GetCursor().Line
		from, to := lineSpan(ed, LineRange{Start: line, End: line})
		ed.ReplaceRange("", from, to)
		return types.EditResult{Success: true, EditType: types.EditDelete, AppliedAt: &from}
	case DeleteSection:
		section := FindSection(ed.GetValue(), location)
		if section == nil {
			return types.Failure(types.EditDelete, "Section %q not found", location)
		}
		from, to := lineSpan(ed, section.Range)
		ed.ReplaceRange("", from, to)
		return types.EditResult{Success: true, EditType: types.EditDelete, AppliedAt: &from}
	}
	return types.Failure(types.EditDelete, "Invalid delete target: %s", target)
}

// DeleteLines removes an inclusive range of whole lines.
func (e *Engine) DeleteLines(r LineRange) types.EditResult {
	file, ed := e.active()
	if file == nil || ed == nil {
		return types.Failure(types.EditDelete, errNoEditor)
	}
	from, to := lineSpan(ed, r)
	ed.ReplaceRange("", from, to)
	return types.EditResult{Success: true, EditType: types.EditDelete, AppliedAt: &from}
}

// SetDocumentContent replaces the whole document.
func (e *Engine) SetDocumentContent(ctx context.Context, content string) types.EditResult {
	file, ed := e.active()
	if file == nil {
		return types.Failure(types.EditReplace, errNoEditor)
	}
	if ed != nil {
		ed.SetValue(content)
	} else if err := e.ws.Modify(ctx, file, content); err != nil {
		return types.Failure(types.EditReplace, "%s", err.Error())
	}
	return types.EditResult{
		Success:   true,
		Content:   content,
		EditType:  types.EditReplace,
		AppliedAt: &types.Position{},
	}
}

func (e *Engine) afterEdit(ed Editor, start types.Position, content string, opts EditOptions) {
	end := EndPosition(start, content)
	if opts.SelectNewText {
		ed.SetSelection(start, end)
	}
	if opts.ScrollToEdit {
		ed.ScrollIntoView(Range{From: start, To: end}, true)
	}
}

// lineSpan covers whole lines including the newline that ends them. When the
// range reaches the last line, the newline before it is taken instead.
func lineSpan(ed Editor, r LineRange) (types.Position, types.Position) {
	last := ed.LineCount() - 1
	end := min(r.End, last)
	if end < last {
		return types.Position{Line: r.Start}, types.Position{Line: end + 1}
	}
	to := types.Position{Line: end, Ch: len(ed.GetLine(end))}
	if r.Start > 0 {
		prev := r.Start - 1
		return types.Position{Line: prev, Ch: len(ed.GetLine(prev))}, to
	}
	return types.Position{}, to
}

// selectionRanger is implemented by editors that expose selection bounds.
type selectionRanger interface {
	SelectionRange() Range
}

func selectionStart(ed Editor) types.Position {
	if sr, ok := ed.(selectionRanger); ok {
		return sr.SelectionRange().From
	}
	// Assume the cursor sits at the end of the selection.
	return backOf(ed.GetCursor(), ed.GetSelection())
}

// EndPosition returns the position reached after writing text at start.
func EndPosition(start types.Position, text string) types.Position {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return types.Position{Line: start.Line, Ch: start.Ch + len(text)}
	}
	return types.Position{Line: start.Line + len(lines) - 1, Ch: len(lines[len(lines)-1])}
}

// backOf walks back from end over text. The starting column of a multi-line
// text is not recoverable and is reported as 0.
func backOf(end types.Position, text string) types.Position {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return types.Position{Line: end.Line, Ch: max(0, end.Ch-len(text))}
	}
	return types.Position{Line: max(0, end.Line-len(lines)+1)}
}

func editTypeFor(at EditPosition) types.EditType {
	switch at.kind {
	case kindSelection:
		return types.EditReplace
	case kindEnd:
		return types.EditAppend
	}
	return types.EditInsert
}

// ReplaceRange replaces the text between r.From and r.To with content.
func (e *Engine) ReplaceRange(content string, r Range, opts EditOptions) types.EditResult {
	file, ed := e.active()
	if file == nil || ed == nil {
		return types.Failure(types.EditReplace, errNoEditor)
	}
	ed.ReplaceRange(content, r.From, r.To)
	e.afterEdit(ed, r.From, content, opts)
	from := r.From
	return types.EditResult{
		Success:   true,
		Content:   content,
		EditType:  types.EditReplace,
		AppliedAt: &from,
	}
}

// SelectionRange returns the bounds of the current selection. ok is false
// when nothing is selected or no editor is active.
func (e *Engine) SelectionRange() (r Range, ok bool) {
	_, ed := e.active()
	if ed == nil || ed.GetSelection() == "" {
		return Range{}, false
	}
	if sr, isRanger := ed.(selectionRanger); isRanger {
		return sr.SelectionRange(), true
	}
	from := selectionStart(ed)
	return Range{From: from, To: EndPosition(from, ed.GetSelection())}, true
}
