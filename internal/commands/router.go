package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"nova/internal/document"
	"nova/internal/intent"
	"nova/internal/types"
)

const maxActionSuggestions = 3

// Router dispatches commands to the handler registered for their action.
type Router struct {
	handlers map[types.Action]Handler
	detector *intent.Detector
	logger   *zap.Logger
}

// NewRouter wires one handler per action around a shared engine and
// generator. opts are passed to every handler.
func NewRouter(engine *document.Engine, gen Generator, opts ...Option) *Router {
	r := &Router{
		handlers: make(map[types.Action]Handler, len(types.Actions)),
		detector: intent.NewDetector(),
		logger:   loggerFrom(opts).Named("router"),
	}

	r.Register(NewAddCommand(engine, gen, opts...))
	r.Register(NewEditCommand(engine, gen, opts...))
	r.Register(NewDeleteCommand(engine, gen, opts...))
	r.Register(NewRewriteCommand(engine, gen, opts...))
	r.Register(NewGrammarCommand(engine, gen, opts...))
	r.Register(NewMetadataCommand(engine, gen, opts...))
	return r
}

// Register installs h, replacing any handler for the same action.
func (r *Router) Register(h Handler) {
	r.handlers[h.Action()] = h
}

func (r *Router) Handler(action types.Action) (Handler, bool) {
	h, ok := r.handlers[action]
	return h, ok
}

// Execute runs cmd. Unknown actions fail with the closest known actions.
func (r *Router) Execute(ctx context.Context, cmd types.Command, opts ExecuteOptions) types.EditResult {
	h, ok := r.handlers[types.Action(strings.ToLower(string(cmd.Action)))]
	if !ok {
		msg := fmt.Sprintf("unknown action %q", cmd.Action)
		if s := r.SuggestActions(string(cmd.Action)); len(s) > 0 {
			msg += fmt.Sprintf(". Did you mean: %s?", strings.Join(s, ", "))
		}
		r.logger.Warn("unknown action", zap.String("action", string(cmd.Action)))
		return types.Failure(types.EditReplace, "%s", msg)
	}
	cmd.Action = h.Action()
	return h.Execute(ctx, cmd, opts)
}

func loggerFrom(opts []Option) *zap.Logger {
	b := base{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&b)
	}
	return b.logger
}

// SuggestActions fuzzy-matches name against the registered actions.
func (r *Router) SuggestActions(name string) []string {
	known := make([]string, 0, len(r.handlers))
	for _, a := range types.Actions {
		if _, ok := r.handlers[a]; ok {
			known = append(known, string(a))
		}
	}
	matches := fuzzy.Find(strings.ToLower(name), known)
	if len(matches) > maxActionSuggestions {
		matches = matches[:maxActionSuggestions]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, known[m.Index])
	}
	return out
}

// Classify tells the caller whether text reads as an editing request or as
// conversation.
func (r *Router) Classify(text string) intent.Classification {
	return r.detector.ClassifyInput(text)
}
