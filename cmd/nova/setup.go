package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nova/internal/commands"
	"nova/internal/conversation"
	"nova/internal/document"
	"nova/internal/provider"
	"nova/internal/types"
)

// docFlags locate the document and the editor state inside it.
type docFlags struct {
	file       string
	line, ch   int
	selectFrom string
	selectTo   string
}

func (f *docFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Markdown file to work on")
	cmd.Flags().IntVar(&f.line, "line", 0, "Cursor line (zero-based)")
	cmd.Flags().IntVar(&f.ch, "ch", 0, "Cursor column (zero-based)")
	cmd.Flags().StringVar(&f.selectFrom, "select-from", "", "Selection start as line:ch")
	cmd.Flags().StringVar(&f.selectTo, "select-to", "", "Selection end as line:ch")
	_ = cmd.MarkFlagRequired("file")
}

// open loads the file and restores cursor and selection.
func (f *docFlags) open() (*document.LocalWorkspace, error) {
	ws, err := document.OpenWorkspace(f.file)
	if err != nil {
		return nil, err
	}
	buf := ws.Buffer()
	buf.SetCursor(types.Position{Line: f.line, Ch: f.ch})

	if f.selectFrom == "" && f.selectTo == "" {
		return ws, nil
	}
	from, err := parsePosition(f.selectFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid --select-from: %w", err)
	}
	to, err := parsePosition(f.selectTo)
	if err != nil {
		return nil, fmt.Errorf("invalid --select-to: %w", err)
	}
	buf.SetSelection(from, to)
	return ws, nil
}

// parsePosition reads "line:ch". A bare line number means column 0.
func parsePosition(s string) (types.Position, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.Position{}, fmt.Errorf("position is empty")
	}
	lineStr, chStr, hasCh := strings.Cut(s, ":")
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 0 {
		return types.Position{}, fmt.Errorf("bad line in %q", s)
	}
	ch := 0
	if hasCh {
		if ch, err = strconv.Atoi(chStr); err != nil || ch < 0 {
			return types.Position{}, fmt.Errorf("bad column in %q", s)
		}
	}
	return types.Position{Line: line, Ch: ch}, nil
}

// newManager registers every provider the config can build. Providers that
// fail to construct are skipped with a warning.
func (a *app) newManager(ctx context.Context) *provider.Manager {
	opts := append(a.cfg.ManagerOptions(), provider.WithLogger(a.logger.Named("provider")))
	m := provider.NewManager(opts...)
	for _, o := range a.cfg.ProviderOptions() {
		p, err := provider.NewProvider(ctx, o)
		if err != nil {
			a.logger.Warn("skipping provider", zap.String("provider", o.Provider), zap.Error(err))
			continue
		}
		m.Register(p)
	}
	return m
}

// conversation returns the history for file and a func releasing it.
func (a *app) conversation(file string) (conversation.Log, func(), error) {
	if a.cfg.Conversation.DBPath == "" {
		return conversation.NewMemoryLog(), func() {}, nil
	}
	store, err := conversation.NewStore(a.cfg.Conversation.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return store.Session(file), func() { _ = store.Close() }, nil
}

// session is one opened document wired to the command router.
type session struct {
	ws     *document.LocalWorkspace
	engine *document.Engine
	router *commands.Router
	close  func()
}

func (a *app) openSession(ctx context.Context, f *docFlags) (*session, error) {
	ws, err := f.open()
	if err != nil {
		return nil, err
	}
	log, closeLog, err := a.conversation(f.file)
	if err != nil {
		return nil, err
	}
	engine := document.NewEngine(ws, document.WithContextLines(a.cfg.Prompt.ContextLines))
	router := commands.NewRouter(engine, a.newManager(ctx),
		commands.WithLogger(a.logger),
		commands.WithConversation(log),
		commands.WithPromptOptions(a.cfg.PromptOptions()),
		commands.WithHistoryMessages(a.cfg.Prompt.HistoryMessages),
	)
	return &session{ws: ws, engine: engine, router: router, close: closeLog}, nil
}

func (s *session) handler(action string) (commands.Handler, error) {
	h, ok := s.router.Handler(types.Action(strings.ToLower(action)))
	if !ok {
		msg := fmt.Sprintf("unknown action %q", action)
		if alts := s.router.SuggestActions(action); len(alts) > 0 {
			msg += fmt.Sprintf(". Did you mean: %s?", strings.Join(alts, ", "))
		}
		return nil, errors.New(msg)
	}
	return h, nil
}

// printMarkdown writes md, rendered for the terminal when render is set.
func printMarkdown(cmd *cobra.Command, md string, render bool) error {
	out := cmd.OutOrStdout()
	if !render {
		_, err := fmt.Fprintln(out, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
