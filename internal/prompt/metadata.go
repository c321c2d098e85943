package prompt

import (
	"fmt"
	"sort"
	"strings"

	"nova/internal/document"
	"nova/internal/types"
)

// metadataBodyLimit caps how much of the note body is quoted in metadata prompts.
const metadataBodyLimit = 4000

// BuildTagPrompt asks the model to suggest tags for the note in dc. Existing
// tags are listed so the model can avoid or refine them.
func (b *ContextBuilder) BuildTagPrompt(instruction string, dc *document.Context, existing []string, opts Options) GeneratedPrompt {
	var sb strings.Builder
	if dc != nil {
		fmt.Fprintf(&sb, "NOTE: %s\n", dc.Filename)
	}
	if len(existing) > 0 {
		fmt.Fprintf(&sb, "EXISTING TAGS: %s\n", strings.Join(existing, ", "))
	} else {
		sb.WriteString("EXISTING TAGS: (none)\n")
	}
	sb.WriteString("\nCONTENT:\n")
	sb.WriteString(noteBody(dc))
	contextBlock := sb.String()

	user := contextBlock + "\n\nUSER REQUEST: " + strings.TrimSpace(instruction) +
		"\n\nSuggest between 3 and 8 tags." +
		"\n" + actionOutputFormat[types.ActionMetadata]

	return GeneratedPrompt{
		SystemPrompt: tagSystemPrompt,
		UserPrompt:   user,
		Context:      contextBlock,
		Config:       resolveConfig(opts),
	}
}

// BuildPropertyPrompt asks the model which frontmatter properties to change.
func (b *ContextBuilder) BuildPropertyPrompt(instruction string, dc *document.Context, current map[string]any, opts Options) GeneratedPrompt {
	var sb strings.Builder
	if dc != nil {
		fmt.Fprintf(&sb, "NOTE: %s\n", dc.Filename)
	}
	sb.WriteString("CURRENT PROPERTIES:\n")
	if len(current) == 0 {
		sb.WriteString("(none)\n")
	}
	keys := make([]string, 0, len(current))
	for k := range current {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %v\n", k, current[k])
	}
	sb.WriteString("\nCONTENT:\n")
	sb.WriteString(noteBody(dc))
	contextBlock := sb.String()

	user := contextBlock + "\n\nUSER REQUEST: " + strings.TrimSpace(instruction) +
		"\n\nOUTPUT: Return only a JSON object of the properties to set, using null to remove one."

	return GeneratedPrompt{
		SystemPrompt: propertySystemPrompt,
		UserPrompt:   user,
		Context:      contextBlock,
		Config:       resolveConfig(opts),
	}
}

func noteBody(dc *document.Context) string {
	if dc == nil {
		return ""
	}
	body := document.ParseFrontmatter(dc.Content).Body()
	if r := []rune(body); len(r) > metadataBodyLimit {
		body = string(r[:metadataBodyLimit]) + "\n[...]"
	}
	return body
}
