package commands

import (
	"context"
	"regexp"
	"strings"

	"nova/internal/document"
	"nova/internal/types"
)

const grammarTemperature = 0.3

var grammarTargets = []types.Target{
	types.TargetSelection,
	types.TargetCursor,
	types.TargetParagraph,
	types.TargetDocument,
	types.TargetSection,
}

// issueHeuristics only feed EstimateScope; they never change text.
var issueHeuristics = []*regexp.Regexp{
	regexp.MustCompile(`[^\s.] {2,}\S`),
	regexp.MustCompile(`[,;:][A-Za-z]`),
	regexp.MustCompile(`[.!?]\s+[a-z]`),
	regexp.MustCompile(`\bi\b`),
	regexp.MustCompile(`\s+[,.;:!?]`),
}

// GrammarCommand corrects grammar, spelling and punctuation.
type GrammarCommand struct {
	base
}

func NewGrammarCommand(engine *document.Engine, gen Generator, opts ...Option) *GrammarCommand {
	c := &GrammarCommand{base: newBase(types.ActionGrammar, engine, gen, opts)}
	c.temperature = grammarTemperature
	return c
}

func (c *GrammarCommand) Execute(ctx context.Context, cmd types.Command, opts ExecuteOptions) types.EditResult {
	return c.execute(ctx, cmd, opts, c)
}

func (c *GrammarCommand) editType(types.Target) types.EditType {
	return types.EditReplace
}

func (c *GrammarCommand) validate(cmd types.Command, dc *document.Context) string {
	if cmd.Target == types.TargetEnd {
		return "Cannot check grammar at the end of the document. Use a different target."
	}
	if msg := checkTarget(cmd, dc, grammarTargets); msg != "" {
		return msg
	}
	return sectionMissing(cmd, dc)
}

func (c *GrammarCommand) apply(ctx context.Context, cmd types.Command, dc *document.Context, content string) types.EditResult {
	switch cmd.Target {
	case types.TargetSelection:
		return c.engine.ApplyEdit(content, document.Selection, editOpts)
	case types.TargetCursor, types.TargetParagraph:
		return c.replaceParagraph(content)
	case types.TargetDocument:
		return c.replaceDocument(ctx, content)
	case types.TargetSection:
		return c.replaceSection(cmd, dc, content)
	}
	return types.Failure(types.EditReplace, "%s", invalidTarget(cmd))
}

func (c *GrammarCommand) GetSuggestions(dc *document.Context, hasSelection bool) []string {
	static := []string{
		"Fix grammar and spelling",
		"Fix punctuation",
		"Check subject-verb agreement",
		"Fix capitalization",
	}
	if hasSelection {
		static = append([]string{"Fix grammar in the selected text"}, static...)
	}
	return withHeadings(static, dc, "Fix grammar in the %s section")
}

func (c *GrammarCommand) Preview(cmd types.Command) Preview {
	return previewOf(cmd, c.engine.GetDocumentContext(), "Will correct grammar in "+describeTarget(cmd))
}

func (c *GrammarCommand) EstimateScope(cmd types.Command) Scope {
	dc := c.engine.GetDocumentContext()
	s := estimate(cmd, dc, "Checks grammar in "+describeTarget(cmd))
	if text, ok := targetText(cmd, dc); ok {
		s.EstimatedIssues = estimateIssues(text)
	}
	return s
}

func (c *GrammarCommand) GetAvailableTargets(dc *document.Context) []types.Target {
	return availableTargets(dc, grammarTargets)
}

func estimateIssues(text string) int {
	n := repeatedWords(text)
	for _, re := range issueHeuristics {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}

var wordPattern = regexp.MustCompile(`[A-Za-z']+`)

// repeatedWords counts immediately doubled words such as "the the".
func repeatedWords(text string) int {
	words := wordPattern.FindAllString(text, -1)
	n := 0
	for i := 1; i < len(words); i++ {
		if len(words[i]) > 1 && strings.EqualFold(words[i], words[i-1]) {
			n++
		}
	}
	return n
}
