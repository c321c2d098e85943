package commands

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"nova/internal/document"
)

var (
	tagResponseSchema = jsonschema.MustCompileString("https://nova.local/schema/tags.json", `{
		"type": "object",
		"properties": {
			"tags": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["tags"]
	}`)
	propertyResponseSchema = jsonschema.MustCompileString("https://nova.local/schema/properties.json", `{
		"type": "object",
		"minProperties": 1,
		"properties": {
			"tags": {"type": ["array", "string", "null"], "items": {"type": "string"}}
		}
	}`)
)

var (
	fencedBlockPattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	tagsArrayPattern   = regexp.MustCompile(`(?i)"?tags?"?\s*[:=]\s*\[([^\]]*)\]`)
	bulletPattern      = regexp.MustCompile(`^\s*(?:[-*•+]|\d+[.)])\s+(.+)$`)
	suggestPattern     = regexp.MustCompile(`(?i)suggest(?:ed|ion|ions|s)?\b[^:\n]*:\s*(.+)`)
	listSplitPattern   = regexp.MustCompile(`\s*(?:,|;|\band\b)\s*`)
)

// tagParser is one step of the fallback cascade used on AI responses.
type tagParser struct {
	name  string
	parse func(raw string) []string
}

var tagParsers = []tagParser{
	{"json", parseJSONTags},
	{"fenced_json", parseFencedJSONTags},
	{"tags_array", parseTagsArray},
	{"list", parseListTags},
	{"suggest_phrase", parseSuggestPhrase},
	{"lines", parseLineTags},
}

// parseTags runs the cascade and returns the first non-empty normalized
// result together with the name of the parser that produced it.
func parseTags(raw string) ([]string, string) {
	for _, p := range tagParsers {
		if tags := document.NormalizeTags(p.parse(raw)); len(tags) > 0 {
			return tags, p.name
		}
	}
	return nil, ""
}

func decodeJSON(raw string) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

func parseJSONTags(raw string) []string {
	v, ok := decodeJSON(raw)
	if !ok {
		return nil
	}
	if arr, isArr := v.([]any); isArr {
		return stringsOf(arr)
	}
	if err := tagResponseSchema.Validate(v); err != nil {
		return nil
	}
	return stringsOf(v.(map[string]any)["tags"].([]any))
}

func parseFencedJSONTags(raw string) []string {
	for _, m := range fencedBlockPattern.FindAllStringSubmatch(raw, -1) {
		if tags := parseJSONTags(m[1]); len(tags) > 0 {
			return tags
		}
	}
	if obj := embeddedObject(raw); obj != "" {
		return parseJSONTags(obj)
	}
	return nil
}

func parseTagsArray(raw string) []string {
	m := tagsArrayPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	return splitList(m[1])
}

func parseListTags(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	if len(out) > 0 {
		return shortOnly(out)
	}
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "\n") && strings.Contains(trimmed, ",") {
		return shortOnly(splitList(trimmed))
	}
	return nil
}

func parseSuggestPhrase(raw string) []string {
	m := suggestPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	return shortOnly(splitList(strings.TrimRight(m[1], ". ")))
}

// parseLineTags treats every short line as a tag.
func parseLineTags(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		out = append(out, line)
	}
	return shortOnly(out)
}

// maxTagWords drops prose that heuristic parsers mistake for tags.
const maxTagWords = 3

func shortOnly(items []string) []string {
	out := items[:0]
	for _, it := range items {
		if n := len(strings.Fields(it)); n > 0 && n <= maxTagWords {
			out = append(out, it)
		}
	}
	return out
}

// parseProperties extracts a JSON object of property updates.
func parseProperties(raw string) (map[string]any, bool) {
	candidates := []string{raw}
	for _, m := range fencedBlockPattern.FindAllStringSubmatch(raw, -1) {
		candidates = append(candidates, m[1])
	}
	if obj := embeddedObject(raw); obj != "" {
		candidates = append(candidates, obj)
	}
	for _, c := range candidates {
		v, ok := decodeJSON(c)
		if !ok {
			continue
		}
		if err := propertyResponseSchema.Validate(v); err != nil {
			continue
		}
		return v.(map[string]any), true
	}
	return nil, false
}

// embeddedObject returns the outermost {...} span of raw, if any.
func embeddedObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func splitList(s string) []string {
	var out []string
	for _, part := range listSplitPattern.Split(s, -1) {
		part = strings.Trim(strings.TrimSpace(part), `"'`+"`")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func stringsOf(arr []any) []string {
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// responsePreview shortens a raw AI response for error messages.
func responsePreview(raw string) string {
	raw = strings.Join(strings.Fields(raw), " ")
	if r := []rune(raw); len(r) > 100 {
		return string(r[:100]) + "..."
	}
	return raw
}
