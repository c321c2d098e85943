// Package intent decides whether free text asks for a document edit or is
// conversation about the writing.
package intent

import (
	"fmt"
	"regexp"
	"strings"
)

// Type is the classification outcome.
type Type string

const (
	Consultation Type = "consultation"
	Editing      Type = "editing"
	Ambiguous    Type = "ambiguous"
)

const maxScore = 5.0

// Classification is the result of ClassifyInput.
type Classification struct {
	Type            Type     `json:"type"`
	Confidence      float64  `json:"confidence"`
	MatchedPatterns []string `json:"matched_patterns"`
}

type compiledPattern struct {
	Pattern
	re *regexp.Regexp
}

// Detector classifies input against two weighted pattern families.
type Detector struct {
	consultation []compiledPattern
	editing      []compiledPattern
	err          error
}

// NewDetector uses the default pattern tables.
func NewDetector() *Detector {
	return NewDetectorWithPatterns(ConsultationPatterns, EditingPatterns)
}

// NewDetectorWithPatterns builds a detector over custom tables. A pattern
// that fails to compile makes every classification ambiguous.
func NewDetectorWithPatterns(consultation, editing []Pattern) *Detector {
	d := &Detector{}
	d.consultation, d.err = compileAll(consultation)
	if d.err == nil {
		d.editing, d.err = compileAll(editing)
	}
	return d
}

func compileAll(patterns []Pattern) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %s: %w", p.Name, err)
		}
		out = append(out, compiledPattern{Pattern: p, re: re})
	}
	return out, nil
}

// Err reports a pattern compilation failure, if any.
func (d *Detector) Err() error { return d.err }

// ClassifyInput labels text as editing, consultation or ambiguous.
func (d *Detector) ClassifyInput(text string) Classification {
	if strings.TrimSpace(text) == "" {
		return Classification{Type: Ambiguous, Confidence: 0, MatchedPatterns: []string{}}
	}
	if d.err != nil {
		return Classification{Type: Ambiguous, Confidence: 0.3, MatchedPatterns: []string{}}
	}

	consult := matchAll(d.consultation, text)
	edit := matchAll(d.editing, text)

	switch {
	case len(consult) > 0 && len(edit) == 0:
		return single(Consultation, consult)
	case len(edit) > 0 && len(consult) == 0:
		return single(Editing, edit)
	case len(consult) == 0 && len(edit) == 0:
		return Classification{Type: Ambiguous, Confidence: 0.5, MatchedPatterns: []string{}}
	}

	consultStrong := hasAny(consult, strongConsultation)
	editStrong := hasAny(edit, strongEditing)
	switch {
	case consultStrong && !editStrong:
		return Classification{Type: Consultation, Confidence: 0.75, MatchedPatterns: names(consult)}
	case editStrong && !consultStrong:
		return Classification{Type: Editing, Confidence: 0.75, MatchedPatterns: names(edit)}
	}
	return Classification{
		Type:            Ambiguous,
		Confidence:      0.4,
		MatchedPatterns: append(names(consult), names(edit)...),
	}
}

// Score sums the weights of matched patterns, capped at 5.
func Score(matched []Pattern) float64 {
	total := 0.0
	for _, p := range matched {
		total += p.Weight
	}
	return min(maxScore, total)
}

// Confidence maps a family score to a single-family confidence.
func Confidence(score float64) float64 {
	return min(0.95, 0.7+0.1*score)
}

func single(t Type, matched []Pattern) Classification {
	return Classification{
		Type:            t,
		Confidence:      Confidence(Score(matched)),
		MatchedPatterns: names(matched),
	}
}

func matchAll(patterns []compiledPattern, text string) []Pattern {
	var matched []Pattern
	for _, p := range patterns {
		if p.re.MatchString(text) {
			matched = append(matched, p.Pattern)
		}
	}
	return matched
}

func hasAny(matched []Pattern, strong map[string]bool) bool {
	for _, p := range matched {
		if strong[p.Name] {
			return true
		}
	}
	return false
}

func names(matched []Pattern) []string {
	out := make([]string, 0, len(matched))
	for _, p := range matched {
		out = append(out, p.Name)
	}
	return out
}

var defaultDetector = NewDetector()

// ClassifyInput classifies text with the default tables.
func ClassifyInput(text string) Classification {
	return defaultDetector.ClassifyInput(text)
}
