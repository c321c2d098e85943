package document

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDoc = "# Main Document\n\nThis is the introduction paragraph.\n\n## Section One\n\nContent for section one goes here.\nIt has multiple paragraphs.\n\n## Section Two\n\nContent for section two."

func TestExtractHeadings(t *testing.T) {
	content := "# A\ntext\n## B\n####### not a heading\n#no space\n###### F"
	headings := ExtractHeadings(content)

	re := regexp.MustCompile(`^#{1,6}\s+.+$`)
	matching := 0
	for _, line := range strings.Split(content, "\n") {
		if re.MatchString(line) {
			matching++
		}
	}
	require.Len(t, headings, matching)

	assert.Equal(t, HeadingInfo{Text: "A", Level: 1, Line: 0, Position: Span{Start: 0, End: 3}}, headings[0])
	assert.Equal(t, HeadingInfo{Text: "B", Level: 2, Line: 2, Position: Span{Start: 9, End: 13}}, headings[1])
	assert.Equal(t, 6, headings[2].Level)
	assert.Equal(t, "F", headings[2].Text)
	for i := 1; i < len(headings); i++ {
		assert.Less(t, headings[i-1].Line, headings[i].Line)
	}
}

func TestFindSection_Scenario(t *testing.T) {
	s := FindSection(scenarioDoc, "Section One")
	require.NotNil(t, s)
	assert.Equal(t, "Section One", s.Heading)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, LineRange{Start: 4, End: 7}, s.Range)
	assert.Equal(t, "Content for section one goes here.\nIt has multiple paragraphs.", s.Content)
}

func TestFindSection_SubstringIgnoresCase(t *testing.T) {
	s := FindSection(scenarioDoc, "section two")
	require.NotNil(t, s)
	assert.Equal(t, "Section Two", s.Heading)
	assert.Equal(t, LineRange{Start: 9, End: 11}, s.Range)

	// First match wins.
	s = FindSection(scenarioDoc, "section")
	require.NotNil(t, s)
	assert.Equal(t, "Section One", s.Heading)
}

func TestFindSection_TopLevelRunsToEOF(t *testing.T) {
	s := FindSection(scenarioDoc, "Main")
	require.NotNil(t, s)
	assert.Equal(t, LineRange{Start: 0, End: 11}, s.Range)
}

func TestFindSection_Hierarchical(t *testing.T) {
	doc := "# Guide\n## Install\n### Linux\napt\n## Usage\n### Linux\nrun"

	s := FindSection(doc, "Guide::Usage::Linux")
	require.NotNil(t, s)
	assert.Equal(t, LineRange{Start: 5, End: 6}, s.Range)
	assert.Equal(t, "run", s.Content)

	s = FindSection(doc, "guide / install / linux")
	require.NotNil(t, s)
	assert.Equal(t, LineRange{Start: 2, End: 3}, s.Range)

	assert.Nil(t, FindSection(doc, "Install::Linux"))
}

func TestFindSection_NoMatch(t *testing.T) {
	assert.Nil(t, FindSection(scenarioDoc, "Missing"))
	assert.Nil(t, FindSection(scenarioDoc, "   "))
	assert.Nil(t, FindSection("no headings here", "here"))
}

func TestFindSection_RangeEndsBeforeNextHeading(t *testing.T) {
	doc := "## A\na\n## B\nb\nb2\n## C\nc"
	headings := ExtractHeadings(doc)
	total := len(strings.Split(doc, "\n"))

	for i, h := range headings {
		s := FindSection(doc, h.Text)
		require.NotNil(t, s, h.Text)
		if i < len(headings)-1 {
			assert.Equal(t, headings[i+1].Line-1, s.Range.End, h.Text)
		} else {
			assert.Equal(t, total-1, s.Range.End, h.Text)
		}
	}
}

func TestParagraphRange(t *testing.T) {
	lines := []string{"# H", "p1", "p2", "", "p3", "## Next", "q"}

	assert.Equal(t, LineRange{Start: 1, End: 2}, ParagraphRange(lines, 1))
	assert.Equal(t, LineRange{Start: 1, End: 2}, ParagraphRange(lines, 2))
	assert.Equal(t, LineRange{Start: 4, End: 4}, ParagraphRange(lines, 4))
	assert.Equal(t, LineRange{Start: 6, End: 6}, ParagraphRange(lines, 6))

	// Blank and heading lines never grow into their neighbours.
	assert.Equal(t, LineRange{Start: 3, End: 3}, ParagraphRange(lines, 3))
	assert.Equal(t, LineRange{Start: 5, End: 5}, ParagraphRange(lines, 5))
	assert.Equal(t, LineRange{Start: 0, End: 0}, ParagraphRange(lines, 0))
}

func TestFindSection_LastSectionDropsTrailingBlankLines(t *testing.T) {
	doc := "# Doc\n\n## Last\n\nold text\n\n"
	s := FindSection(doc, "Last")
	require.NotNil(t, s)
	assert.Equal(t, LineRange{Start: 2, End: 4}, s.Range)
	assert.Equal(t, "old text", s.Content)
}

func TestOutline(t *testing.T) {
	out := Outline(ExtractHeadings("# A\n## B\n### C\n# D"))
	assert.Equal(t, "- A\n  - B\n    - C\n- D\n", out)
}
