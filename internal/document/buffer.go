package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nova/internal/types"
)

// Buffer is an in-memory Editor. It backs the CLI and the tests.
type Buffer struct {
	content string
	anchor  types.Position
	head    types.Position

	// LastScroll records the most recent ScrollIntoView request.
	LastScroll *Range
}

// NewBuffer returns a buffer holding content with the cursor at 0:0.
func NewBuffer(content string) *Buffer {
	return &Buffer{content: content}
}

func (b *Buffer) GetValue() string { return b.content }

func (b *Buffer) SetValue(content string) {
	b.content = content
	b.head = b.clamp(b.head)
	b.anchor = b.head
}

func (b *Buffer) GetCursor() types.Position { return b.head }

// SetCursor moves the cursor and collapses the selection.
func (b *Buffer) SetCursor(p types.Position) {
	b.head = b.clamp(p)
	b.anchor = b.head
}

func (b *Buffer) GetSelection() string {
	from, to := b.ordered()
	return b.content[b.offset(from):b.offset(to)]
}

func (b *Buffer) ReplaceSelection(text string) {
	from, to := b.ordered()
	b.ReplaceRange(text, from, to)
	end := b.positionAt(b.offset(from) + len(text))
	b.anchor, b.head = end, end
}

func (b *Buffer) ReplaceRange(text string, from, to types.Position) {
	if to.Before(from) {
		from, to = to, from
	}
	start, stop := b.offset(from), b.offset(to)
	cursor := b.offset(b.head)
	anchor := b.offset(b.anchor)

	b.content = b.content[:start] + text + b.content[stop:]

	shift := func(off int) int {
		switch {
		case off >= stop:
			return off + len(text) - (stop - start)
		case off > start:
			return start + len(text)
		default:
			return off
		}
	}
	b.head = b.positionAt(shift(cursor))
	b.anchor = b.positionAt(shift(anchor))
}

func (b *Buffer) GetLine(n int) string {
	lines := strings.Split(b.content, "\n")
	if n < 0 || n >= len(lines) {
		return ""
	}
	return lines[n]
}

func (b *Buffer) LineCount() int {
	return strings.Count(b.content, "\n") + 1
}

func (b *Buffer) SetSelection(from, to types.Position) {
	b.anchor = b.clamp(from)
	b.head = b.clamp(to)
}

func (b *Buffer) ScrollIntoView(r Range, center bool) {
	b.LastScroll = &r
}

// SelectionRange returns the selection bounds in document order.
func (b *Buffer) SelectionRange() Range {
	from, to := b.ordered()
	return Range{From: from, To: to}
}

func (b *Buffer) ordered() (types.Position, types.Position) {
	if b.head.Before(b.anchor) {
		return b.head, b.anchor
	}
	return b.anchor, b.head
}

// offset converts a position to a byte offset, clamping out-of-range values.
func (b *Buffer) offset(p types.Position) int {
	if p.Line < 0 {
		return 0
	}
	off := 0
	lines := strings.Split(b.content, "\n")
	for i, line := range lines {
		if i == p.Line {
			ch := p.Ch
			if ch < 0 {
				ch = 0
			}
			if ch > len(line) {
				ch = len(line)
			}
			return off + ch
		}
		off += len(line) + 1
	}
	return len(b.content)
}

func (b *Buffer) positionAt(off int) types.Position {
	if off < 0 {
		off = 0
	}
	if off > len(b.content) {
		off = len(b.content)
	}
	before := b.content[:off]
	line := strings.Count(before, "\n")
	ch := off - (strings.LastIndex(before, "\n") + 1)
	return types.Position{Line: line, Ch: ch}
}

func (b *Buffer) clamp(p types.Position) types.Position {
	return b.positionAt(b.offset(p))
}

// LocalWorkspace is a Workspace over a single Buffer, optionally tied to a
// file on disk.
type LocalWorkspace struct {
	file   *File
	buffer *Buffer
}

// NewWorkspace opens content under the given name without a backing file.
func NewWorkspace(name, content string) *LocalWorkspace {
	return &LocalWorkspace{
		file:   &File{Name: name},
		buffer: NewBuffer(content),
	}
}

// OpenWorkspace loads path into a buffer.
func OpenWorkspace(path string) (*LocalWorkspace, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return &LocalWorkspace{
		file:   &File{Path: path, Name: filepath.Base(path)},
		buffer: NewBuffer(string(raw)),
	}, nil
}

func (w *LocalWorkspace) ActiveFile() *File {
	if w == nil {
		return nil
	}
	return w.file
}

func (w *LocalWorkspace) ActiveEditor() Editor {
	if w == nil || w.buffer == nil {
		return nil
	}
	return w.buffer
}

// Buffer returns the underlying buffer.
func (w *LocalWorkspace) Buffer() *Buffer { return w.buffer }

func (w *LocalWorkspace) Modify(ctx context.Context, f *File, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f == nil || w.file == nil || f.Name != w.file.Name {
		return fmt.Errorf("file is not open in this workspace")
	}
	w.buffer.SetValue(content)
	return w.Save()
}

// Save writes the buffer back to its file. Workspaces without a path are a no-op.
func (w *LocalWorkspace) Save() error {
	if w.file == nil || w.file.Path == "" {
		return nil
	}
	if err := os.WriteFile(w.file.Path, []byte(w.buffer.GetValue()), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
