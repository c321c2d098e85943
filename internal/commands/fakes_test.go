package commands

import (
	"context"
	"sync"

	"nova/internal/document"
	"nova/internal/provider"
	"nova/internal/types"
)

const scenarioDoc = "# Main Document\n\nThis is the introduction paragraph.\n\n## Section One\n\nContent for section one goes here.\nIt has multiple paragraphs.\n\n## Section Two\n\nContent for section two."

// fakeGenerator replays a scripted reply and records every call.
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	chunks  []string
	err     error
	panics  bool
	calls   int
	prompts []string
	systems []string
	opts    []provider.GenerateOptions
}

func (f *fakeGenerator) record(system, prompt string, opts provider.GenerateOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.systems = append(f.systems, system)
	f.opts = append(f.opts, opts)
	if f.panics {
		panic("generator exploded")
	}
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string, opts provider.GenerateOptions) (string, error) {
	f.record(opts.SystemPrompt, prompt, opts)
	return f.reply, f.err
}

func (f *fakeGenerator) GenerateTextStream(_ context.Context, prompt string, opts provider.GenerateOptions) (<-chan provider.StreamChunk, error) {
	f.record(opts.SystemPrompt, prompt, opts)
	if f.err != nil && len(f.chunks) == 0 {
		return nil, f.err
	}
	ch := make(chan provider.StreamChunk, len(f.chunks)+1)
	for _, c := range f.chunks {
		ch <- provider.StreamChunk{Content: c}
	}
	if f.err != nil {
		ch <- provider.StreamChunk{Err: f.err}
	}
	close(ch)
	return ch, nil
}

func (f *fakeGenerator) Complete(_ context.Context, system, user string, opts provider.GenerateOptions) (string, error) {
	f.record(system, user, opts)
	return f.reply, f.err
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newScenario(content string) (*document.Engine, *document.Buffer) {
	ws := document.NewWorkspace("scenario.md", content)
	return document.NewEngine(ws), ws.Buffer()
}

func command(action types.Action, target types.Target, instruction string) types.Command {
	return types.Command{Action: action, Target: target, Instruction: instruction}
}

func sectionCommand(action types.Action, location, instruction string) types.Command {
	return types.Command{Action: action, Target: types.TargetSection, Location: location, Instruction: instruction}
}

// closedWorkspace has no active file.
type closedWorkspace struct{}

func (closedWorkspace) ActiveFile() *document.File    { return nil }
func (closedWorkspace) ActiveEditor() document.Editor { return nil }

func (closedWorkspace) Modify(context.Context, *document.File, string) error {
	return nil
}
