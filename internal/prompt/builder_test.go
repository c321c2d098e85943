package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova/internal/document"
	"nova/internal/types"
)

const notes = "# Notes\n\n## Intro\nHello there.\n\n## Ideas\nMore text.\n"

func noteContext() *document.Context {
	pos := types.Position{Line: 3, Ch: 0}
	return &document.Context{
		Filename:       "notes.md",
		Content:        notes,
		Headings:       document.ExtractHeadings(notes),
		CursorPosition: &pos,
		SurroundingLines: &document.SurroundingLines{
			Before: []string{"## Intro"},
			After:  []string{"Hello there."},
		},
	}
}

func TestBuildPrompt_UserPromptLayout(t *testing.T) {
	b := NewContextBuilder()
	cmd := types.Command{
		Action:      types.ActionAdd,
		Target:      types.TargetEnd,
		Instruction: "Add a closing remark",
		Context:     "Keep it short",
	}
	p := b.BuildPrompt(cmd, noteContext(), Options{IncludeStructure: true}, "")

	assert.Contains(t, p.SystemPrompt, systemPreamble)
	assert.Contains(t, p.SystemPrompt, "Generate new content")

	assert.Contains(t, p.UserPrompt, "DOCUMENT: notes.md")
	assert.Contains(t, p.UserPrompt, "DOCUMENT STRUCTURE:")
	assert.Contains(t, p.UserPrompt, "  - Intro")
	assert.Contains(t, p.UserPrompt, "targeting the end of the document")
	assert.Contains(t, p.UserPrompt, "FULL DOCUMENT:\n"+notes)

	req := strings.Index(p.UserPrompt, "USER REQUEST: Add a closing remark")
	extra := strings.Index(p.UserPrompt, "ADDITIONAL REQUIREMENTS: Keep it short")
	focus := strings.Index(p.UserPrompt, actionFocus[types.ActionAdd])
	require.True(t, req > 0 && extra > req && focus > extra, "sections out of order:\n%s", p.UserPrompt)

	assert.True(t, strings.HasPrefix(p.UserPrompt, p.Context))
	assert.Equal(t, Config{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}, p.Config)
}

func TestBuildPrompt_TargetContext(t *testing.T) {
	b := NewContextBuilder()
	dc := noteContext()

	tests := []struct {
		name   string
		cmd    types.Command
		want   string
		absent string
	}{
		{
			name: "section",
			cmd:  types.Command{Action: types.ActionEdit, Target: types.TargetSection, Location: "Intro", Instruction: "tighten"},
			want: `targeting the "Intro" section`,
		},
		{
			name: "document",
			cmd:  types.Command{Action: types.ActionRewrite, Target: types.TargetDocument, Instruction: "formal"},
			want: "targeting the entire document",
		},
		{
			name:   "cursor",
			cmd:    types.Command{Action: types.ActionAdd, Target: types.TargetCursor, Instruction: "a line"},
			want:   "Before cursor:\n## Intro\n[CURSOR]\nAfter cursor:\nHello there.",
			absent: "SELECTED TEXT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := b.BuildPrompt(tt.cmd, dc, Options{}, "")
			assert.Contains(t, p.UserPrompt, tt.want)
			if tt.absent != "" {
				assert.NotContains(t, p.UserPrompt, tt.absent)
			}
			assert.NotContains(t, p.UserPrompt, "DOCUMENT STRUCTURE:")
		})
	}
}

func TestBuildPrompt_ParagraphToReplace(t *testing.T) {
	const doc = "# T\n\nline one\nline two\n\nother"
	pos := types.Position{Line: 3, Ch: 2}
	dc := &document.Context{Filename: "t.md", Content: doc, CursorPosition: &pos}
	b := NewContextBuilder()

	for _, cmd := range []types.Command{
		{Action: types.ActionRewrite, Target: types.TargetCursor, Instruction: "shorter"},
		{Action: types.ActionGrammar, Target: types.TargetCursor, Instruction: "fix"},
		{Action: types.ActionEdit, Target: types.TargetParagraph, Instruction: "expand"},
	} {
		p := b.BuildPrompt(cmd, dc, Options{}, "")
		assert.Contains(t, p.UserPrompt, "CURRENT PARAGRAPH (return only its replacement):\nline one\nline two", cmd.Action)
	}

	// Inserting commands replace nothing.
	for _, cmd := range []types.Command{
		{Action: types.ActionEdit, Target: types.TargetCursor, Instruction: "x"},
		{Action: types.ActionAdd, Target: types.TargetCursor, Instruction: "x"},
		{Action: types.ActionAdd, Target: types.TargetParagraph, Instruction: "x"},
	} {
		p := b.BuildPrompt(cmd, dc, Options{}, "")
		assert.NotContains(t, p.UserPrompt, "CURRENT PARAGRAPH", cmd.Action)
	}
}

func TestBuildPrompt_Selection(t *testing.T) {
	dc := noteContext()
	dc.SelectedText = "Hello there."
	p := NewContextBuilder().BuildPrompt(types.Command{
		Action: types.ActionGrammar, Target: types.TargetSelection, Instruction: "fix",
	}, dc, Options{}, "")
	assert.Contains(t, p.UserPrompt, "SELECTED TEXT:\nHello there.")
	assert.Contains(t, p.SystemPrompt, "Correct grammar")
}

func TestBuildPrompt_History(t *testing.T) {
	b := NewContextBuilder()
	cmd := types.Command{Action: types.ActionEdit, Target: types.TargetDocument, Instruction: "x"}

	with := b.BuildPrompt(cmd, noteContext(), Options{IncludeHistory: true}, "user: hi\nassistant: hello")
	assert.Contains(t, with.UserPrompt, "PREVIOUS CONVERSATION:\nuser: hi")

	without := b.BuildPrompt(cmd, noteContext(), Options{}, "user: hi")
	assert.NotContains(t, without.UserPrompt, "PREVIOUS CONVERSATION")

	empty := b.BuildPrompt(cmd, noteContext(), Options{IncludeHistory: true}, "  ")
	assert.NotContains(t, empty.UserPrompt, "PREVIOUS CONVERSATION")
}

func TestBuildPrompt_ConfigOverrides(t *testing.T) {
	p := NewContextBuilder().BuildPrompt(types.Command{Action: types.ActionGrammar, Target: types.TargetDocument},
		noteContext(), Options{Temperature: 0.3, MaxTokens: 2000}, "")
	assert.Equal(t, Config{Temperature: 0.3, MaxTokens: 2000}, p.Config)
}

func TestValidatePrompt(t *testing.T) {
	b := NewContextBuilder()

	ok := b.BuildPrompt(types.Command{Action: types.ActionAdd, Target: types.TargetEnd, Instruction: "x"}, noteContext(), Options{}, "")
	assert.NoError(t, b.ValidatePrompt(ok))

	err := b.ValidatePrompt(GeneratedPrompt{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Issues, 2)
	assert.True(t, strings.HasPrefix(err.Error(), "Invalid prompt: "))

	long := GeneratedPrompt{SystemPrompt: "sys", UserPrompt: strings.Repeat("é", MaxUserPromptChars+1)}
	err = b.ValidatePrompt(long)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")

	exact := GeneratedPrompt{SystemPrompt: "sys", UserPrompt: strings.Repeat("é", MaxUserPromptChars)}
	assert.NoError(t, b.ValidatePrompt(exact))
}

func TestBuildTagPrompt(t *testing.T) {
	dc := noteContext()
	dc.Content = "---\ntags: [a]\n---\n" + notes
	p := NewContextBuilder().BuildTagPrompt("suggest tags", dc, []string{"a"}, Options{})

	assert.Equal(t, tagSystemPrompt, p.SystemPrompt)
	assert.Contains(t, p.UserPrompt, "EXISTING TAGS: a")
	assert.Contains(t, p.UserPrompt, "CONTENT:\n# Notes")
	assert.NotContains(t, p.UserPrompt, "tags: [a]")
	assert.Contains(t, p.UserPrompt, "USER REQUEST: suggest tags")
}

func TestBuildPropertyPrompt(t *testing.T) {
	p := NewContextBuilder().BuildPropertyPrompt("set status to done", noteContext(),
		map[string]any{"status": "draft", "author": "kim"}, Options{})

	assert.Equal(t, propertySystemPrompt, p.SystemPrompt)
	assert.Contains(t, p.UserPrompt, "- author: kim\n- status: draft\n")
	assert.Contains(t, p.UserPrompt, "USER REQUEST: set status to done")
}
