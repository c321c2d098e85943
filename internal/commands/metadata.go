package commands

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"nova/internal/conversation"
	"nova/internal/document"
	"nova/internal/provider"
	"nova/internal/types"
)

var (
	directTagPattern  = regexp.MustCompile(`(?i)^(add|set|update|remove)\s+tags?:\s*(.*)$`)
	tagMentionPattern = regexp.MustCompile(`(?i)\btags?\b|\btagging\b`)
	tagCleanupPattern = regexp.MustCompile(`(?i)\b(clean\s*up|cleanup|optimi[sz]e|consolidate|normali[sz]e|tidy|reorgani[sz]e|replace)\b`)
)

const metadataTemperature = 0.3

// tagMode is how a tag list is combined with the existing tags.
type tagMode string

const (
	tagAdd    tagMode = "add"
	tagSet    tagMode = "set"
	tagRemove tagMode = "remove"
)

// MetadataCommand edits the document's frontmatter. Explicit tag lists are
// applied directly; anything else is delegated to the generator, whose JSON
// reply is parsed and validated before it is written.
type MetadataCommand struct {
	base
}

func NewMetadataCommand(engine *document.Engine, gen Generator, opts ...Option) *MetadataCommand {
	c := &MetadataCommand{base: newBase(types.ActionMetadata, engine, gen, opts)}
	c.temperature = metadataTemperature
	return c
}

// Execute ignores streaming: metadata replies are parsed as a whole.
func (c *MetadataCommand) Execute(ctx context.Context, cmd types.Command, _ ExecuteOptions) (res types.EditResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("command panicked", zap.Any("panic", r))
			res = types.Failure(types.EditReplace, "%v", r)
		}
	}()

	dc := c.engine.GetDocumentContext()
	if dc == nil {
		return types.Failure(types.EditReplace, errNoDocument)
	}
	if cmd.Target != "" && cmd.Target != types.TargetDocument {
		return types.Failure(types.EditReplace, "%s", invalidTarget(cmd))
	}
	instruction := strings.TrimSpace(cmd.Instruction)
	if instruction == "" {
		return types.Failure(types.EditReplace, "Metadata command requires an instruction")
	}

	c.record(ctx, conversation.RoleUser, instruction)
	fm := document.ParseFrontmatter(dc.Content)

	if m := directTagPattern.FindStringSubmatch(instruction); m != nil {
		if tags := splitDirectTags(m[2]); len(tags) > 0 {
			return c.finish(ctx, cmd, c.applyTags(ctx, dc, fm, directMode(m[1]), tags))
		}
		return c.finish(ctx, cmd, c.suggestTags(ctx, instruction, dc, fm, tagAdd))
	}
	if tagMentionPattern.MatchString(instruction) {
		mode := tagAdd
		if tagCleanupPattern.MatchString(instruction) {
			mode = tagSet
		}
		return c.finish(ctx, cmd, c.suggestTags(ctx, instruction, dc, fm, mode))
	}
	return c.finish(ctx, cmd, c.updateProperties(ctx, instruction, dc, fm))
}

func directMode(verb string) tagMode {
	switch strings.ToLower(verb) {
	case "add":
		return tagAdd
	case "remove":
		return tagRemove
	}
	return tagSet
}

func splitDirectTags(list string) []string {
	var out []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return document.NormalizeTags(out)
}

func (c *MetadataCommand) generate(ctx context.Context, p generatedPrompt) (string, error) {
	raw, err := c.gen.Complete(ctx, p.system, p.user, provider.GenerateOptions{
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%s", errEmptyContent)
	}
	return raw, nil
}

type generatedPrompt struct {
	system, user string
	temperature  float64
	maxTokens    int
}

func (c *MetadataCommand) suggestTags(ctx context.Context, instruction string, dc *document.Context, fm *document.Frontmatter, mode tagMode) types.EditResult {
	p := c.builder.BuildTagPrompt(instruction, dc, fm.Tags(), c.prompt)
	if err := c.builder.ValidatePrompt(p); err != nil {
		return types.Failure(types.EditReplace, "%s", err.Error())
	}
	raw, err := c.generate(ctx, generatedPrompt{p.SystemPrompt, p.UserPrompt, c.temperature, p.Config.MaxTokens})
	if err != nil {
		return types.Failure(types.EditReplace, "%s", err.Error())
	}
	tags, parser := parseTags(raw)
	if len(tags) == 0 {
		return types.Failure(types.EditReplace, "Could not parse tags from AI response: %s", responsePreview(raw))
	}
	c.logger.Debug("parsed tag response", zap.String("parser", parser), zap.Strings("tags", tags))
	return c.applyTags(ctx, dc, fm, mode, tags)
}

// applyTags merges tags into the frontmatter. Matching is case-insensitive;
// existing tags keep their spelling.
func (c *MetadataCommand) applyTags(ctx context.Context, dc *document.Context, fm *document.Frontmatter, mode tagMode, tags []string) types.EditResult {
	existing := fm.Tags()
	var final, changed []string

	switch mode {
	case tagAdd:
		final = slices.Clone(existing)
		for _, t := range tags {
			if !containsFold(final, t) {
				final = append(final, t)
				changed = append(changed, t)
			}
		}
		if len(changed) == 0 {
			return types.EditResult{Success: true, EditType: types.EditReplace, SuccessMessage: "No new tags to add"}
		}
	case tagRemove:
		for _, t := range existing {
			if containsFold(tags, t) {
				changed = append(changed, t)
				continue
			}
			final = append(final, t)
		}
		if len(changed) == 0 {
			return types.EditResult{Success: true, EditType: types.EditReplace, SuccessMessage: "No matching tags to remove"}
		}
	default:
		final, changed = tags, tags
	}

	var value any = final
	if len(final) == 0 {
		value = nil
	}
	res := c.engine.SetDocumentContent(ctx, document.UpdateFrontmatter(dc.Content, map[string]any{"tags": value}))
	if !res.Success {
		return res
	}
	res.SuccessMessage = tagMessage(mode, changed)
	return res
}

func tagMessage(mode tagMode, tags []string) string {
	noun := "tags"
	if len(tags) == 1 {
		noun = "tag"
	}
	verb := map[tagMode]string{tagAdd: "Added", tagRemove: "Removed", tagSet: "Set"}[mode]
	return fmt.Sprintf("%s %d %s: %s", verb, len(tags), noun, strings.Join(tags, ", "))
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, s) })
}

func (c *MetadataCommand) updateProperties(ctx context.Context, instruction string, dc *document.Context, fm *document.Frontmatter) types.EditResult {
	p := c.builder.BuildPropertyPrompt(instruction, dc, fm.Values(), c.prompt)
	if err := c.builder.ValidatePrompt(p); err != nil {
		return types.Failure(types.EditReplace, "%s", err.Error())
	}
	raw, err := c.generate(ctx, generatedPrompt{p.SystemPrompt, p.UserPrompt, c.temperature, p.Config.MaxTokens})
	if err != nil {
		return types.Failure(types.EditReplace, "%s", err.Error())
	}
	updates, ok := parseProperties(raw)
	if !ok {
		return types.Failure(types.EditReplace, "Could not parse properties from AI response: %s", responsePreview(raw))
	}
	if tags, isList := updates["tags"].([]any); isList {
		updates["tags"] = document.NormalizeTags(stringsOf(tags))
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	res := c.engine.SetDocumentContent(ctx, document.UpdateFrontmatter(dc.Content, updates))
	if !res.Success {
		return res
	}
	noun := "properties"
	if len(keys) == 1 {
		noun = "property"
	}
	res.SuccessMessage = fmt.Sprintf("Updated %d %s: %s", len(keys), noun, strings.Join(keys, ", "))
	return res
}

func (c *MetadataCommand) GetSuggestions(dc *document.Context, _ bool) []string {
	static := []string{
		"Suggest tags for this note",
		"Clean up existing tags",
		"Add tags: ",
		"Set status to draft",
		"Add a short description property",
	}
	if dc != nil {
		if tags := document.ParseFrontmatter(dc.Content).Tags(); len(tags) > 0 {
			static = append(static, "Remove tags: "+tags[0])
		}
	}
	return withHeadings(static, dc, "Suggest tags based on the %s section")
}

func (c *MetadataCommand) Preview(cmd types.Command) Preview {
	dc := c.engine.GetDocumentContext()
	if dc == nil {
		return Preview{Description: errNoDocument}
	}
	fm := document.ParseFrontmatter(dc.Content)
	desc := "Will update the document's properties"
	if m := directTagPattern.FindStringSubmatch(strings.TrimSpace(cmd.Instruction)); m != nil {
		desc = fmt.Sprintf("Will %s tags: %s", strings.ToLower(m[1]), strings.Join(splitDirectTags(m[2]), ", "))
	} else if tagMentionPattern.MatchString(cmd.Instruction) {
		desc = "Will ask the AI to suggest tags"
	}
	if !fm.Present {
		desc += " (a new frontmatter block will be created)"
	}
	return Preview{Description: desc, Snippet: snippet(frontmatterBlock(dc.Content, fm))}
}

func (c *MetadataCommand) EstimateScope(types.Command) Scope {
	dc := c.engine.GetDocumentContext()
	if dc == nil {
		return Scope{ScopeDescription: errNoDocument}
	}
	block := frontmatterBlock(dc.Content, document.ParseFrontmatter(dc.Content))
	return Scope{
		CharactersAffected: len([]rune(block)),
		LinesAffected:      lineCount(block),
		ScopeDescription:   "Modifies the frontmatter block only",
	}
}

func (c *MetadataCommand) GetAvailableTargets(dc *document.Context) []types.Target {
	if dc == nil {
		return nil
	}
	return []types.Target{types.TargetDocument}
}

func frontmatterBlock(content string, fm *document.Frontmatter) string {
	if !fm.Present {
		return ""
	}
	content = strings.TrimPrefix(content, "\ufeff")
	return strings.TrimSuffix(content, fm.Body())
}
