package document

import (
	"context"
	"testing"

	"nova/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closedWorkspace struct{}

func (closedWorkspace) ActiveFile() *File     { return nil }
func (closedWorkspace) ActiveEditor() Editor { return nil }
func (closedWorkspace) Modify(context.Context, *File, string) error {
	return nil
}

func newTestEngine(content string) (*Engine, *Buffer) {
	ws := NewWorkspace("note.md", content)
	return NewEngine(ws), ws.Buffer()
}

func TestEngine_GetDocumentContext(t *testing.T) {
	assert.Nil(t, NewEngine(nil).GetDocumentContext())
	assert.Nil(t, NewEngine(closedWorkspace{}).GetDocumentContext())

	ws := NewWorkspace("note.md", "l0\nl1\nl2\nl3\nl4")
	engine := NewEngine(ws, WithContextLines(1))
	ws.Buffer().SetSelection(types.Position{Line: 2, Ch: 0}, types.Position{Line: 2, Ch: 2})

	dc := engine.GetDocumentContext()
	require.NotNil(t, dc)
	assert.Equal(t, "note.md", dc.Filename)
	assert.Equal(t, "l2", dc.SelectedText)
	assert.Equal(t, &types.Position{Line: 2, Ch: 2}, dc.CursorPosition)
	assert.Equal(t, []string{"l1"}, dc.SurroundingLines.Before)
	assert.Equal(t, []string{"l3"}, dc.SurroundingLines.After)
	assert.Empty(t, dc.Headings)
}

func TestEngine_ApplyEdit_Cursor(t *testing.T) {
	engine, buf := newTestEngine("Hello world")
	buf.SetCursor(types.Position{Line: 0, Ch: 5})

	res := engine.ApplyEdit(",", Cursor, EditOptions{})
	require.True(t, res.Success)
	assert.Equal(t, types.EditInsert, res.EditType)
	assert.Equal(t, &types.Position{Line: 0, Ch: 5}, res.AppliedAt)
	assert.Equal(t, "Hello, world", buf.GetValue())
}

func TestEngine_ApplyEdit_Selection(t *testing.T) {
	engine, buf := newTestEngine("Hello world")

	res := engine.ApplyEdit("x", Selection, EditOptions{})
	assert.False(t, res.Success)
	assert.Equal(t, "No text selected", res.Error)
	assert.Equal(t, types.EditReplace, res.EditType)
	assert.Empty(t, res.Content)

	buf.SetSelection(types.Position{Line: 0, Ch: 11}, types.Position{Line: 0, Ch: 6})
	res = engine.ApplyEdit("there", Selection, EditOptions{})
	require.True(t, res.Success)
	assert.Equal(t, types.EditReplace, res.EditType)
	assert.Equal(t, &types.Position{Line: 0, Ch: 6}, res.AppliedAt)
	assert.Equal(t, "Hello there", buf.GetValue())
}

func TestEngine_ApplyEdit_End(t *testing.T) {
	for _, tc := range []struct {
		name    string
		initial string
		want    string
		at      types.Position
	}{
		{"adds separator", "abc", "abc\ndef", types.Position{Line: 1}},
		{"keeps trailing newline", "abc\n", "abc\ndef", types.Position{Line: 1}},
		{"empty document", "", "def", types.Position{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			engine, buf := newTestEngine(tc.initial)
			res := engine.ApplyEdit("def", End, EditOptions{})
			require.True(t, res.Success)
			assert.Equal(t, types.EditAppend, res.EditType)
			assert.Equal(t, tc.want, buf.GetValue())
			assert.Equal(t, &tc.at, res.AppliedAt)
		})
	}
}

func TestEngine_ApplyEdit_SelectAndScroll(t *testing.T) {
	engine, buf := newTestEngine("abc\nlast")

	res := engine.ApplyEdit("x\nyz", At(types.Position{Line: 1, Ch: 0}), EditOptions{SelectNewText: true, ScrollToEdit: true})
	require.True(t, res.Success)
	assert.Equal(t, types.EditInsert, res.EditType)
	assert.Equal(t, "abc\nx\nyzlast", buf.GetValue())
	assert.Equal(t, "x\nyz", buf.GetSelection())
	require.NotNil(t, buf.LastScroll)
	assert.Equal(t, types.Position{Line: 2, Ch: 2}, buf.LastScroll.To)
}

func TestEngine_ApplyEdit_NoEditor(t *testing.T) {
	res := NewEngine(closedWorkspace{}).ApplyEdit("x", End, EditOptions{})
	assert.False(t, res.Success)
	assert.Equal(t, "No active editor or file", res.Error)
	assert.Equal(t, types.EditAppend, res.EditType)
}

func TestEngine_DeleteContent(t *testing.T) {
	t.Run("line", func(t *testing.T) {
		engine, buf := newTestEngine("a\nb\nc")
		buf.SetCursor(types.Position{Line: 1})
		require.True(t, engine.DeleteContent(DeleteLine, "").Success)
		assert.Equal(t, "a\nc", buf.GetValue())
	})

	t.Run("last line", func(t *testing.T) {
		engine, buf := newTestEngine("a\nb\nc")
		buf.SetCursor(types.Position{Line: 2})
		require.True(t, engine.DeleteContent(DeleteLine, "").Success)
		assert.Equal(t, "a\nb", buf.GetValue())
	})

	t.Run("selection", func(t *testing.T) {
		engine, buf := newTestEngine("keep drop keep")
		res := engine.DeleteContent(DeleteSelection, "")
		assert.Equal(t, "No text selected", res.Error)

		buf.SetSelection(types.Position{Ch: 4}, types.Position{Ch: 9})
		res = engine.DeleteContent(DeleteSelection, "")
		require.True(t, res.Success)
		assert.Equal(t, types.EditDelete, res.EditType)
		assert.Equal(t, "keep keep", buf.GetValue())
	})

	t.Run("section", func(t *testing.T) {
		engine, buf := newTestEngine(scenarioDoc)
		require.True(t, engine.DeleteContent(DeleteSection, "Section One").Success)
		assert.Equal(t, "# Main Document\n\nThis is the introduction paragraph.\n\n\n## Section Two\n\nContent for section two.", buf.GetValue())

		res := engine.DeleteContent(DeleteSection, "Nope")
		assert.False(t, res.Success)
		assert.Equal(t, `Section "Nope" not found`, res.Error)
	})

	t.Run("last section", func(t *testing.T) {
		engine, buf := newTestEngine(scenarioDoc)
		require.True(t, engine.DeleteContent(DeleteSection, "Section Two").Success)
		assert.Equal(t, "# Main Document\n\nThis is the introduction paragraph.\n\n## Section One\n\nContent for section one goes here.\nIt has multiple paragraphs.\n", buf.GetValue())
	})
}

func TestEngine_ReplaceLines(t *testing.T) {
	engine, buf := newTestEngine("# H\nold one\nold two\n# Next")
	res := engine.ReplaceLines("new", LineRange{Start: 1, End: 2}, EditOptions{})
	require.True(t, res.Success)
	assert.Equal(t, "# H\nnew\n# Next", buf.GetValue())

	res = engine.ReplaceLines("x", LineRange{Start: 9, End: 10}, EditOptions{})
	assert.False(t, res.Success)
}

func TestEngine_SetDocumentContent(t *testing.T) {
	engine, buf := newTestEngine("old")
	res := engine.SetDocumentContent(context.Background(), "new")
	require.True(t, res.Success)
	assert.Equal(t, types.EditReplace, res.EditType)
	assert.Equal(t, "new", buf.GetValue())

	res = NewEngine(closedWorkspace{}).SetDocumentContent(context.Background(), "x")
	assert.Equal(t, "No active editor or file", res.Error)
}

func TestEngine_CurrentParagraph(t *testing.T) {
	engine, buf := newTestEngine(scenarioDoc)
	buf.SetCursor(types.Position{Line: 7})
	r, ok := engine.CurrentParagraph()
	require.True(t, ok)
	assert.Equal(t, LineRange{Start: 6, End: 7}, r)
}

func TestEngine_ReplaceRangeAndSelectionRange(t *testing.T) {
	engine, buf := newTestEngine("alpha\nbeta\ngamma")

	_, ok := engine.SelectionRange()
	assert.False(t, ok)

	buf.SetSelection(types.Position{Line: 1, Ch: 4}, types.Position{Line: 1, Ch: 0})
	r, ok := engine.SelectionRange()
	require.True(t, ok)
	assert.Equal(t, Range{From: types.Position{Line: 1}, To: types.Position{Line: 1, Ch: 4}}, r)

	res := engine.ReplaceRange("BETA\nDELTA", r, EditOptions{SelectNewText: true})
	require.True(t, res.Success)
	assert.Equal(t, "alpha\nBETA\nDELTA\ngamma", buf.GetValue())
	assert.Equal(t, "BETA\nDELTA", buf.GetSelection())

	assert.False(t, NewEngine(closedWorkspace{}).ReplaceRange("x", r, EditOptions{}).Success)
}

func TestEndPosition(t *testing.T) {
	start := types.Position{Line: 2, Ch: 3}
	assert.Equal(t, types.Position{Line: 2, Ch: 6}, EndPosition(start, "abc"))
	assert.Equal(t, types.Position{Line: 4, Ch: 1}, EndPosition(start, "a\nb\nc"))
	assert.Equal(t, types.Position{Line: 3, Ch: 0}, EndPosition(start, "abc\n"))
}
