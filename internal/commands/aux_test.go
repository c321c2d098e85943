package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"nova/internal/document"
	"nova/internal/types"
)

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("  short \n"))
	long := snippet(strings.Repeat("a", 250))
	assert.Len(t, long, snippetLimit)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestAvailableTargets(t *testing.T) {
	engine, buf := newScenario(scenarioDoc)
	edit := NewEditCommand(engine, nil)

	assert.Equal(t, []types.Target{
		types.TargetCursor, types.TargetParagraph, types.TargetDocument, types.TargetEnd, types.TargetSection,
	}, edit.GetAvailableTargets(engine.GetDocumentContext()))

	selectIntro(buf)
	assert.Contains(t, edit.GetAvailableTargets(engine.GetDocumentContext()), types.TargetSelection)

	plain, _ := newScenario("no headings here")
	assert.NotContains(t, NewGrammarCommand(plain, nil).GetAvailableTargets(plain.GetDocumentContext()), types.TargetSection)
	assert.Equal(t, []types.Target{types.TargetCursor, types.TargetParagraph, types.TargetEnd, types.TargetDocument},
		NewAddCommand(plain, nil).GetAvailableTargets(nil))
}

func TestGetSuggestions(t *testing.T) {
	engine, _ := newScenario(scenarioDoc)
	dc := engine.GetDocumentContext()

	got := NewEditCommand(engine, nil).GetSuggestions(dc, true)
	assert.LessOrEqual(t, len(got), maxSuggestions)
	assert.Equal(t, "Improve the selected text", got[0])
	assert.Contains(t, got, "Improve the Section One section")

	assert.NotContains(t, NewDeleteCommand(engine, nil).GetSuggestions(dc, false), "Delete the selected text")
	assert.Contains(t, NewAddCommand(engine, nil).GetSuggestions(nil, false), "Add a conclusion")
}

func TestPreview(t *testing.T) {
	engine, buf := newScenario(scenarioDoc)
	selectIntro(buf)

	p := NewEditCommand(engine, nil).Preview(command(types.ActionEdit, types.TargetSelection, "x"))
	assert.Equal(t, "Will edit the selection", p.Description)
	assert.Equal(t, introLine, p.Snippet)

	p = NewDeleteCommand(engine, nil).Preview(sectionCommand(types.ActionDelete, "Section Two", "x"))
	assert.Equal(t, `Will delete section "Section Two" including its heading`, p.Description)
	assert.True(t, strings.HasPrefix(p.Snippet, "## Section Two"))

	p = NewRewriteCommand(engine, nil).Preview(sectionCommand(types.ActionRewrite, "Nope", "x"))
	assert.Equal(t, `Target could not be resolved: section "Nope"`, p.Description)

	p = NewAddCommand(document.NewEngine(closedWorkspace{}), nil).Preview(command(types.ActionAdd, types.TargetEnd, "x"))
	assert.Equal(t, errNoDocument, p.Description)

	p = NewDeleteCommand(engine, nil).Preview(command(types.ActionDelete, types.TargetEnd, "x"))
	assert.Equal(t, errDeleteEnd, p.Description)
}

func TestEstimateScope(t *testing.T) {
	engine, buf := newScenario(scenarioDoc)

	s := NewDeleteCommand(engine, nil).EstimateScope(sectionCommand(types.ActionDelete, "Section One", "x"))
	assert.Equal(t, 4, s.LinesAffected)
	assert.Equal(t, len("## Section One\n\nContent for section one goes here.\nIt has multiple paragraphs."), s.CharactersAffected)

	buf.SetCursor(types.Position{Line: 2})
	s = NewDeleteCommand(engine, nil).EstimateScope(command(types.ActionDelete, types.TargetCursor, "x"))
	assert.Equal(t, Scope{CharactersAffected: len(introLine), LinesAffected: 1, ScopeDescription: "Deletes the current line"}, s)

	s = NewAddCommand(engine, nil).EstimateScope(command(types.ActionAdd, types.TargetDocument, "x"))
	assert.Zero(t, s.CharactersAffected)
	assert.Zero(t, s.LinesAffected)

	s = NewRewriteCommand(engine, nil).EstimateScope(command(types.ActionRewrite, types.TargetDocument, "x"))
	assert.Equal(t, "simple", s.Complexity)
	assert.Equal(t, 12, s.LinesAffected)

	s = NewEditCommand(engine, nil).EstimateScope(command(types.ActionEdit, types.TargetParagraph, "x"))
	assert.Equal(t, len(introLine), s.CharactersAffected)
}

func TestRewriteComplexity(t *testing.T) {
	for chars, want := range map[int]string{0: "none", 199: "simple", 200: "moderate", 999: "moderate", 1000: "complex"} {
		assert.Equal(t, want, rewriteComplexity(chars), chars)
	}
}

func TestEstimateIssues(t *testing.T) {
	assert.Zero(t, estimateIssues("The cat sat on the mat."))
	assert.Equal(t, 1, estimateIssues("The the cat sat."))
	assert.Equal(t, 2, estimateIssues("Hello ,world"))

	engine, _ := newScenario("this is is fine.")
	s := NewGrammarCommand(engine, nil).EstimateScope(command(types.ActionGrammar, types.TargetDocument, "x"))
	assert.Equal(t, 1, s.EstimatedIssues)
}
