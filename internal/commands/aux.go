package commands

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"nova/internal/document"
	"nova/internal/types"
)

const maxSuggestions = 10

// snippet shortens s to at most snippetLimit characters.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= snippetLimit {
		return s
	}
	r := []rune(s)
	return string(r[:snippetLimit-3]) + "..."
}

// withHeadings appends one suggestion per heading, built from format, and
// caps the list.
func withHeadings(static []string, dc *document.Context, format string) []string {
	out := slices.Clone(static)
	if dc != nil && format != "" {
		for _, h := range dc.Headings {
			out = append(out, fmt.Sprintf(format, h.Text))
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// availableTargets drops selection when nothing is selected and section when
// the document has no headings.
func availableTargets(dc *document.Context, candidates []types.Target) []types.Target {
	out := make([]types.Target, 0, len(candidates))
	for _, t := range candidates {
		switch t {
		case types.TargetSelection:
			if dc == nil || !dc.HasSelection() {
				continue
			}
		case types.TargetSection:
			if dc == nil || len(dc.Headings) == 0 {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// targetText returns the existing text a command addresses. ok is false when
// the target cannot be resolved against dc.
func targetText(cmd types.Command, dc *document.Context) (string, bool) {
	if dc == nil {
		return "", false
	}
	switch cmd.Target {
	case types.TargetSelection:
		return dc.SelectedText, dc.SelectedText != ""
	case types.TargetDocument:
		return dc.Content, true
	case types.TargetEnd:
		return "", true
	case types.TargetSection:
		s := document.FindSection(dc.Content, cmd.Location)
		if s == nil {
			return "", false
		}
		return s.Content, true
	case types.TargetCursor, types.TargetParagraph:
		lines := splitLines(dc.Content)
		line := 0
		if dc.CursorPosition != nil {
			line = dc.CursorPosition.Line
		}
		r := document.ParagraphRange(lines, line)
		return strings.Join(lines[r.Start:r.End+1], "\n"), true
	}
	return "", false
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(strings.TrimRight(s, "\n"), "\n") + 1
}

// estimate measures the targeted text and describes it with desc.
func estimate(cmd types.Command, dc *document.Context, desc string) Scope {
	text, ok := targetText(cmd, dc)
	if !ok {
		return Scope{ScopeDescription: "Target could not be resolved: " + describeTarget(cmd)}
	}
	return Scope{
		CharactersAffected: utf8.RuneCountInString(text),
		LinesAffected:      lineCount(text),
		ScopeDescription:   desc,
	}
}

// previewOf pairs a description with a snippet of the targeted text.
func previewOf(cmd types.Command, dc *document.Context, desc string) Preview {
	if dc == nil {
		return Preview{Description: errNoDocument}
	}
	text, ok := targetText(cmd, dc)
	if !ok {
		return Preview{Description: "Target could not be resolved: " + describeTarget(cmd)}
	}
	return Preview{Description: desc, Snippet: snippet(text)}
}
