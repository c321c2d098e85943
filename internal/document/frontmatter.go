package document

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

var (
	frontmatterKeyPattern = regexp.MustCompile(`^([A-Za-z0-9_][\w.-]*)\s*:(\s.*)?$`)

	tagWhitespace = regexp.MustCompile(`\s+`)
	tagInvalid    = regexp.MustCompile(`[^a-z0-9_/-]`)
	tagHyphens    = regexp.MustCompile(`-+`)
)

type frontmatterEntry struct {
	key   string
	value any
	raw   []string
}

// Frontmatter is the parsed `---` block at the top of a document. Keys keep
// their original order and untouched entries are re-emitted verbatim.
type Frontmatter struct {
	Present bool
	entries []frontmatterEntry
	rest    string // everything after the closing delimiter line
	eol     string
}

// ParseFrontmatter splits content into its frontmatter and body. Content
// without a well-formed block yields a Frontmatter with Present unset and the
// whole content as body.
func ParseFrontmatter(content string) *Frontmatter {
	content = strings.TrimPrefix(content, "\ufeff")
	fm := &Frontmatter{rest: content, eol: lineEnding(content)}

	lines := strings.Split(content, "\n")
	if len(lines) < 2 || strings.TrimRight(lines[0], " \r") != frontmatterDelimiter {
		return fm
	}
	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \r") == frontmatterDelimiter {
			closing = i
			break
		}
	}
	if closing == -1 {
		return fm
	}

	fm.Present = true
	fm.eol = "\n"
	if strings.HasSuffix(lines[0], "\r") {
		fm.eol = "\r\n"
	}
	fm.rest = strings.TrimPrefix(strings.Join(lines[closing:], "\n"), lines[closing])

	block := make([]string, 0, closing-1)
	for _, line := range lines[1:closing] {
		block = append(block, strings.TrimRight(line, "\r"))
	}
	if entries, ok := entriesFromNode(block); ok {
		fm.entries = entries
	} else {
		fm.entries = entriesFromLines(block)
	}
	return fm
}

func lineEnding(content string) string {
	if i := strings.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// entriesFromNode decodes the block as one YAML mapping and slices the raw
// lines by the line each key starts on.
func entriesFromNode(block []string) ([]frontmatterEntry, bool) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &root); err != nil {
		return nil, false
	}
	if len(root.Content) == 0 {
		return entriesFromLines(block), true
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode || m.Style&yaml.FlowStyle != 0 {
		return nil, false
	}

	var entries []frontmatterEntry
	prev := 0
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		start := key.Line - 1
		if start < prev || start >= len(block) || key.Column != 1 {
			return nil, false
		}
		if i == 0 && start > 0 {
			entries = append(entries, frontmatterEntry{raw: block[:start]})
		} else if i > 0 {
			entries[len(entries)-1].raw = block[prev:start]
		}
		entries = append(entries, frontmatterEntry{key: key.Value, value: nodeValue(val)})
		prev = start
	}
	if len(entries) == 0 {
		return entriesFromLines(block), true
	}
	entries[len(entries)-1].raw = block[prev:]
	return entries, true
}

func nodeValue(n *yaml.Node) any {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" && n.Value == "" {
		return ""
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return n.Value
	}
	return v
}

// entriesFromLines groups lines under the top-level key they follow and
// decodes each group on its own, so one malformed entry does not hide the
// rest of the block.
func entriesFromLines(block []string) []frontmatterEntry {
	var entries []frontmatterEntry
	for _, line := range block {
		if m := frontmatterKeyPattern.FindStringSubmatch(line); m != nil {
			entries = append(entries, frontmatterEntry{key: m[1], raw: []string{line}})
			continue
		}
		if len(entries) == 0 {
			entries = append(entries, frontmatterEntry{raw: []string{line}})
			continue
		}
		last := &entries[len(entries)-1]
		last.raw = append(last.raw, line)
	}
	for i := range entries {
		if e := &entries[i]; e.key != "" {
			e.value = decodeEntry(e.key, e.raw)
		}
	}
	return entries
}

func decodeEntry(key string, raw []string) any {
	var m map[string]yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(raw, "\n")), &m); err == nil {
		if n, ok := m[key]; ok {
			return nodeValue(&n)
		}
	}
	return strings.TrimSpace(strings.SplitN(raw[0], ":", 2)[1])
}

// Body returns the document text after the frontmatter block.
func (f *Frontmatter) Body() string {
	if !f.Present {
		return f.rest
	}
	return strings.TrimPrefix(f.rest, "\n")
}

// Get returns the value stored under key.
func (f *Frontmatter) Get(key string) (any, bool) {
	for _, e := range f.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return nil, false
}

// Keys lists the keys in document order.
func (f *Frontmatter) Keys() []string {
	keys := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		if e.key != "" {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Values returns all key/value pairs.
func (f *Frontmatter) Values() map[string]any {
	out := make(map[string]any, len(f.entries))
	for _, e := range f.entries {
		if e.key != "" {
			out[e.key] = e.value
		}
	}
	return out
}

// Tags returns the tags property as a string list. Both array values and
// comma-separated strings are accepted.
func (f *Frontmatter) Tags() []string {
	v, ok := f.Get("tags")
	if !ok {
		return nil
	}
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			raw = append(raw, fmt.Sprint(item))
		}
	case string:
		raw = strings.Split(t, ",")
	default:
		raw = []string{fmt.Sprint(t)}
	}
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// UpdateFrontmatter merges updates into the frontmatter of content. A nil
// value deletes the key. Untouched keys are preserved as written; new keys
// are appended in sorted order. Content without frontmatter gets a new block.
func UpdateFrontmatter(content string, updates map[string]any) string {
	fm := ParseFrontmatter(content)
	pending := make(map[string]any, len(updates))
	for k, v := range updates {
		pending[k] = v
	}

	var lines []string
	for _, e := range fm.entries {
		v, updated := pending[e.key]
		if e.key == "" || !updated {
			lines = append(lines, e.raw...)
			continue
		}
		delete(pending, e.key)
		if v == nil {
			continue
		}
		lines = append(lines, formatFrontmatterLine(e.key, v))
	}

	added := make([]string, 0, len(pending))
	for k, v := range pending {
		if v != nil {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	for _, k := range added {
		lines = append(lines, formatFrontmatterLine(k, pending[k]))
	}

	var sb strings.Builder
	sb.WriteString(frontmatterDelimiter + fm.eol)
	for _, line := range lines {
		sb.WriteString(line + fm.eol)
	}
	if fm.Present {
		sb.WriteString(frontmatterDelimiter)
		if fm.rest != "" {
			sb.WriteString(fm.eol + strings.TrimPrefix(fm.rest, "\n"))
		}
		return sb.String()
	}
	sb.WriteString(frontmatterDelimiter + fm.eol)
	sb.WriteString(content)
	return sb.String()
}

func readsBackAs(s string) bool {
	var m map[string]any
	if err := yaml.Unmarshal([]byte("v: "+s), &m); err != nil {
		return false
	}
	got, ok := m["v"].(string)
	return ok && got == s
}

func formatFrontmatterLine(key string, v any) string {
	return key + ": " + formatFrontmatterValue(v)
}

// formatFrontmatterValue writes plain strings bare unless they would read
// back as a different YAML value. Everything else is a JSON literal, which
// YAML reads as a flow value.
func formatFrontmatterValue(v any) string {
	if s, ok := v.(string); ok && s != "" && !strings.ContainsAny(s, "\n\r") && readsBackAs(s) {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// NormalizeTag lower-cases a tag, turns whitespace runs into a single hyphen
// and strips everything outside [a-z0-9_/-].
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = tagWhitespace.ReplaceAllString(tag, "-")
	tag = tagInvalid.ReplaceAllString(tag, "")
	tag = tagHyphens.ReplaceAllString(tag, "-")
	return strings.Trim(tag, "-")
}

// NormalizeTags normalizes each tag and drops empty and duplicate results.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		n := NormalizeTag(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
