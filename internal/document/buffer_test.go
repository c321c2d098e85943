package document

import (
	"os"
	"path/filepath"
	"testing"

	"nova/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_ReplaceRangeShiftsCursor(t *testing.T) {
	b := NewBuffer("one\ntwo\nthree")
	b.SetCursor(types.Position{Line: 2, Ch: 1})

	b.ReplaceRange("ONE", types.Position{Line: 0, Ch: 0}, types.Position{Line: 0, Ch: 3})
	assert.Equal(t, "ONE\ntwo\nthree", b.GetValue())
	assert.Equal(t, types.Position{Line: 2, Ch: 1}, b.GetCursor())

	b.ReplaceRange("x\n", types.Position{Line: 1, Ch: 0}, types.Position{Line: 1, Ch: 0})
	assert.Equal(t, types.Position{Line: 3, Ch: 1}, b.GetCursor())
	assert.Equal(t, 4, b.LineCount())
	assert.Equal(t, "x", b.GetLine(1))
	assert.Equal(t, "", b.GetLine(10))
}

func TestBuffer_SelectionIsOrdered(t *testing.T) {
	b := NewBuffer("abcdef")
	b.SetSelection(types.Position{Ch: 4}, types.Position{Ch: 1})
	assert.Equal(t, "bcd", b.GetSelection())

	b.ReplaceSelection("XY")
	assert.Equal(t, "aXYef", b.GetValue())
	assert.Equal(t, types.Position{Ch: 3}, b.GetCursor())
	assert.Equal(t, "", b.GetSelection())
}

func TestBuffer_ClampsPositions(t *testing.T) {
	b := NewBuffer("ab\ncd")
	b.SetCursor(types.Position{Line: 7, Ch: 9})
	assert.Equal(t, types.Position{Line: 1, Ch: 2}, b.GetCursor())

	b.SetValue("x")
	assert.Equal(t, types.Position{Line: 0, Ch: 1}, b.GetCursor())
}

func TestLocalWorkspace_SaveAndModify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n"), 0644))

	ws, err := OpenWorkspace(path)
	require.NoError(t, err)
	assert.Equal(t, "note.md", ws.ActiveFile().Name)

	ws.Buffer().SetValue("# Changed\n")
	require.NoError(t, ws.Save())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Changed\n", string(raw))

	require.NoError(t, ws.Modify(t.Context(), ws.ActiveFile(), "modified"))
	raw, _ = os.ReadFile(path)
	assert.Equal(t, "modified", string(raw))
	assert.Error(t, ws.Modify(t.Context(), &File{Name: "other.md"}, "x"))

	_, err = OpenWorkspace(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
