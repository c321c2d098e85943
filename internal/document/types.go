package document

import "nova/internal/types"

// Span is a pair of character offsets into the document.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LineRange is an inclusive range of zero-based line indices.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// HeadingInfo is one ATX heading found in the document.
type HeadingInfo struct {
	Text     string `json:"text"`
	Level    int    `json:"level"` // number of leading '#'
	Line     int    `json:"line"`
	Position Span   `json:"position"`
}

// Section is a heading together with the body that belongs to it.
type Section struct {
	Heading string    `json:"heading"`
	Level   int       `json:"level"`
	Content string    `json:"content"`
	Range   LineRange `json:"range"` // Start is the heading line itself
}

// SurroundingLines are the lines just above and below the cursor.
type SurroundingLines struct {
	Before []string `json:"before"`
	After  []string `json:"after"`
}

// Context is a snapshot of the active document. It is rebuilt for every
// command and never reused after a mutation.
type Context struct {
	File             *File             `json:"-"`
	Filename         string            `json:"filename"`
	Content          string            `json:"content"`
	Headings         []HeadingInfo     `json:"headings"`
	SelectedText     string            `json:"selected_text,omitempty"`
	CursorPosition   *types.Position   `json:"cursor_position,omitempty"`
	SurroundingLines *SurroundingLines `json:"surrounding_lines,omitempty"`
}

// HasSelection reports whether the snapshot carries non-empty selected text.
func (c *Context) HasSelection() bool {
	return c != nil && c.SelectedText != ""
}
