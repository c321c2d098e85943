package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nova/internal/types"
)

const sampleDoc = "# Guide\n\nIntro line.\n\n## Setup\n\nInstall it.\n\n## Usage\n\nRun it."

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NOVA_AI_PROVIDER", "")
	t.Setenv("NOVA_API_KEY", "")
	t.Setenv("NOVA_GEMINI_API_KEY", "")
	t.Setenv("NOVA_OPENAI_API_KEY", "")

	a := &app{logger: zaptest.NewLogger(t)}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func sampleFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guide.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))
	return path
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    types.Position
		wantErr bool
	}{
		{in: "3:7", want: types.Position{Line: 3, Ch: 7}},
		{in: "4", want: types.Position{Line: 4}},
		{in: " 0:0 ", want: types.Position{}},
		{in: "", wantErr: true},
		{in: "a:1", wantErr: true},
		{in: "1:b", wantErr: true},
		{in: "-1:0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePosition(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutlineAndSection(t *testing.T) {
	path := sampleFile(t)

	out, err := execute(t, "outline", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "- Guide\n  - Setup\n  - Usage\n", out)

	out, err = execute(t, "section", "-f", path, "Guide / Usage")
	require.NoError(t, err)
	assert.Contains(t, out, "Run it.")

	_, err = execute(t, "section", "-f", path, "Missing")
	assert.EqualError(t, err, `section "Missing" not found`)
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "classify", "Add", "a", "closing", "remark")
	require.NoError(t, err)
	assert.Contains(t, out, "editing")
}

func TestRunDeleteSavesFile(t *testing.T) {
	path := sampleFile(t)
	out, err := execute(t, "run", "-f", path, "-a", "delete", "-t", "section", "-l", "Setup", "remove setup")
	require.NoError(t, err)
	assert.Equal(t, "✅ Deleted section \"Setup\"\n", out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Guide\n\nIntro line.\n\n\n## Usage\n\nRun it.", string(raw))
}

func TestRunMetadataDirectTags(t *testing.T) {
	path := sampleFile(t)
	_, err := execute(t, "run", "-f", path, "-a", "metadata", "-t", "document", "Add tags: Guides, How To")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tags: [\"guides\",\"how-to\"]")
}

func TestRunFailureLeavesFile(t *testing.T) {
	path := sampleFile(t)
	_, err := execute(t, "run", "-f", path, "-a", "delete", "-t", "end", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot delete from end of document")

	_, err = execute(t, "run", "-f", path, "-a", "delte", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean: delete?")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleDoc, string(raw))
}

func TestPreviewScopeSuggest(t *testing.T) {
	path := sampleFile(t)

	out, err := execute(t, "preview", "-f", path, "-a", "edit", "--select-from", "2:0", "--select-to", "2:11", "-t", "selection")
	require.NoError(t, err)
	assert.Equal(t, "Will edit the selection\n\nIntro line.\n", out)

	out, err = execute(t, "scope", "-f", path, "-a", "delete", "-t", "section", "-l", "Usage")
	require.NoError(t, err)
	assert.Contains(t, out, "lines: 3")

	out, err = execute(t, "suggest", "-f", path, "-a", "grammar")
	require.NoError(t, err)
	assert.Contains(t, out, "- Fix grammar in the Setup section")
	assert.Contains(t, out, "targets: cursor, paragraph, document, section")

	_, err = execute(t, "preview", "-f", path, "-a", "nope", "x")
	assert.Error(t, err)

	_, err = execute(t, "preview", "-f", path, "--select-from", "x", "--select-to", "1:0", "x")
	assert.ErrorContains(t, err, "invalid --select-from")
}
