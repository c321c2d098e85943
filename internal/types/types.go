// Package types holds the value types shared by the document engine, the
// prompt builder and the command handlers.
package types

import "fmt"

// Position is a zero-based line/column location inside a document.
// Ch counts bytes within the line.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Ch)
}

// Before reports whether p sorts before o in document order.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Ch < o.Ch
}

// Action is the kind of change a command requests.
type Action string

const (
	ActionAdd      Action = "add"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionRewrite  Action = "rewrite"
	ActionGrammar  Action = "grammar"
	ActionMetadata Action = "metadata"
)

// Actions lists every known action in dispatch order.
var Actions = []Action{ActionAdd, ActionEdit, ActionDelete, ActionRewrite, ActionGrammar, ActionMetadata}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Target is where in the document a command applies.
type Target string

const (
	TargetSelection Target = "selection"
	TargetCursor    Target = "cursor"
	TargetEnd       Target = "end"
	TargetDocument  Target = "document"
	TargetSection   Target = "section"
	TargetParagraph Target = "paragraph"
)

// Targets lists every known target.
var Targets = []Target{TargetSelection, TargetCursor, TargetEnd, TargetDocument, TargetSection, TargetParagraph}

// Command is a single user request produced by the UI layer.
type Command struct {
	Action      Action `json:"action"`
	Target      Target `json:"target"`
	Instruction string `json:"instruction"`
	// Location names a heading when Target is TargetSection.
	Location string `json:"location,omitempty"`
	// Context carries additional requirements from the caller.
	Context string `json:"context,omitempty"`
}

// EditType describes how a result was applied to the document.
type EditType string

const (
	EditInsert  EditType = "insert"
	EditReplace EditType = "replace"
	EditDelete  EditType = "delete"
	EditAppend  EditType = "append"
)

// EditResult is the uniform outcome of every document mutation and command.
// A failed result carries Error and never Content.
type EditResult struct {
	Success        bool      `json:"success"`
	Content        string    `json:"content,omitempty"`
	Error          string    `json:"error,omitempty"`
	EditType       EditType  `json:"edit_type"`
	AppliedAt      *Position `json:"applied_at,omitempty"`
	SuccessMessage string    `json:"success_message,omitempty"`
}

// Failure builds a failed result.
func Failure(editType EditType, format string, args ...any) EditResult {
	return EditResult{
		Success:  false,
		Error:    fmt.Sprintf(format, args...),
		EditType: editType,
	}
}
