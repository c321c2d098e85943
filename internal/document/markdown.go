package document

import (
	"regexp"
	"strings"
)

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// ExtractHeadings scans content line by line and returns every ATX heading
// in document order.
func ExtractHeadings(content string) []HeadingInfo {
	var headings []HeadingInfo
	offset := 0
	for i, line := range strings.Split(content, "\n") {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			headings = append(headings, HeadingInfo{
				Text:  strings.TrimSpace(m[2]),
				Level: len(m[1]),
				Line:  i,
				Position: Span{
					Start: offset,
					End:   offset + len(line),
				},
			})
		}
		offset += len(line) + 1
	}
	return headings
}

// FindSection resolves a heading lookup against content.
//
// Plain lookups match the first heading whose text contains the lookup,
// ignoring case. Lookups containing "::" or "/" are compared against the
// heading's ancestor path instead, e.g. "Guide::Install::Linux"; when no
// path matches, the plain substring rule is tried.
func FindSection(content, lookup string) *Section {
	lookup = strings.TrimSpace(lookup)
	if lookup == "" {
		return nil
	}
	headings := ExtractHeadings(content)
	if len(headings) == 0 {
		return nil
	}
	lines := strings.Split(content, "\n")

	if sep := pathSeparator(lookup); sep != "" {
		want := splitPath(lookup, sep)
		for i := range headings {
			if pathEqual(headingPath(headings, i), want) {
				return sectionAt(lines, headings, i)
			}
		}
	}

	needle := strings.ToLower(lookup)
	for i, h := range headings {
		if strings.Contains(strings.ToLower(h.Text), needle) {
			return sectionAt(lines, headings, i)
		}
	}
	return nil
}

func pathSeparator(lookup string) string {
	switch {
	case strings.Contains(lookup, "::"):
		return "::"
	case strings.Contains(lookup, "/"):
		return "/"
	}
	return ""
}

func splitPath(lookup, sep string) []string {
	parts := strings.Split(lookup, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// headingPath walks backward from headings[i] collecting each heading whose
// level is strictly lower than the last one collected. The result runs from
// the most distant ancestor down to headings[i].
func headingPath(headings []HeadingInfo, i int) []string {
	path := []string{headings[i].Text}
	level := headings[i].Level
	for j := i - 1; j >= 0 && level > 1; j-- {
		if headings[j].Level < level {
			path = append([]string{headings[j].Text}, path...)
			level = headings[j].Level
		}
	}
	return path
}

func pathEqual(have, want []string) bool {
	if len(have) != len(want) {
		return false
	}
	for i := range have {
		if !strings.EqualFold(have[i], want[i]) {
			return false
		}
	}
	return true
}

// sectionAt builds the section for headings[i]. The section ends before the
// next heading of the same or higher level, or at the last line of the
// document, with trailing blank lines left out either way.
func sectionAt(lines []string, headings []HeadingInfo, i int) *Section {
	h := headings[i]
	end := len(lines) - 1
	for j := i + 1; j < len(headings); j++ {
		if headings[j].Level <= h.Level {
			end = headings[j].Line - 1
			break
		}
	}
	for end > h.Line && strings.TrimSpace(lines[end]) == "" {
		end--
	}
	body := ""
	if end > h.Line {
		body = strings.TrimSpace(strings.Join(lines[h.Line+1:end+1], "\n"))
	}
	return &Section{
		Heading: h.Text,
		Level:   h.Level,
		Content: body,
		Range:   LineRange{Start: h.Line, End: end},
	}
}

// ParagraphRange returns the inclusive line span of the paragraph around
// line. Paragraphs are delimited by blank lines and heading lines; on one of
// those the paragraph is just that line.
func ParagraphRange(lines []string, line int) LineRange {
	if line < 0 {
		line = 0
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}
	r := LineRange{Start: line, End: line}
	if line < 0 || !isParagraphLine(lines[line]) {
		return r
	}
	for r.Start > 0 && isParagraphLine(lines[r.Start-1]) {
		r.Start--
	}
	for r.End < len(lines)-1 && isParagraphLine(lines[r.End+1]) {
		r.End++
	}
	return r
}

func isParagraphLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && !strings.HasPrefix(trimmed, "#")
}

// Outline renders headings as an indented list, two spaces per level.
func Outline(headings []HeadingInfo) string {
	var sb strings.Builder
	for _, h := range headings {
		sb.WriteString(strings.Repeat("  ", h.Level-1))
		sb.WriteString("- ")
		sb.WriteString(h.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
