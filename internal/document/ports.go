package document

import (
	"context"

	"nova/internal/types"
)

// Range is a span between two positions.
type Range struct {
	From types.Position
	To   types.Position
}

// Editor is the host editor surface the engine drives.
type Editor interface {
	GetValue() string
	SetValue(content string)
	GetCursor() types.Position
	GetSelection() string
	ReplaceSelection(text string)
	// ReplaceRange replaces the text between from and to. Passing from == to
	// inserts without removing anything.
	ReplaceRange(text string, from, to types.Position)
	GetLine(n int) string
	LineCount() int
	SetSelection(from, to types.Position)
	ScrollIntoView(r Range, center bool)
}

// File identifies the open document.
type File struct {
	Path string
	Name string
}

// Workspace exposes the active file and editor. Either may be nil when
// nothing is open.
type Workspace interface {
	ActiveFile() *File
	ActiveEditor() Editor
	Modify(ctx context.Context, f *File, content string) error
}
