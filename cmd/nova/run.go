package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nova/internal/commands"
	"nova/internal/types"
)

type commandFlags struct {
	docFlags
	action   string
	target   string
	location string
}

func (f *commandFlags) register(cmd *cobra.Command) {
	f.docFlags.register(cmd)
	cmd.Flags().StringVarP(&f.action, "action", "a", "edit", "One of add, edit, delete, rewrite, grammar, metadata")
	cmd.Flags().StringVarP(&f.target, "target", "t", "cursor", "One of selection, cursor, paragraph, end, document, section")
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "Heading text or path for the section target")
}

func (f *commandFlags) command(args []string) types.Command {
	return types.Command{
		Action:      types.Action(strings.ToLower(f.action)),
		Target:      types.Target(strings.ToLower(f.target)),
		Instruction: strings.Join(args, " "),
		Location:    f.location,
	}
}

func newRunCmd(a *app) *cobra.Command {
	var (
		f      commandFlags
		stream bool
		render bool
	)
	cmd := &cobra.Command{
		Use:   "run [instruction]",
		Short: "Apply an instruction to the document and save it",
		Example: `  nova run -f notes.md -a add -t end "Add a short conclusion"
  nova run -f notes.md -a edit -t section -l "Setup" "Make it more concise"
  nova run -f notes.md -a metadata -t document "Add tags: research, q3"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openSession(ctx, &f.docFlags)
			if err != nil {
				return err
			}
			defer s.close()

			res := s.router.Execute(ctx, f.command(args), commands.ExecuteOptions{Stream: stream})
			if !res.Success {
				return fmt.Errorf("❌ %s", res.Error)
			}
			if err := s.ws.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s\n", res.SuccessMessage)
			if render && res.Content != "" {
				return printMarkdown(cmd, res.Content, true)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&stream, "stream", false, "Stream the response into the document")
	cmd.Flags().BoolVar(&render, "render", false, "Render the generated Markdown in the terminal")
	return cmd
}

func newPreviewCmd(a *app) *cobra.Command {
	var f commandFlags
	cmd := &cobra.Command{
		Use:   "preview [instruction]",
		Short: "Describe what a command would change without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), &f.docFlags)
			if err != nil {
				return err
			}
			defer s.close()

			h, err := s.handler(f.action)
			if err != nil {
				return err
			}
			p := h.Preview(f.command(args))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, p.Description)
			if p.Snippet != "" {
				fmt.Fprintf(out, "\n%s\n", p.Snippet)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newScopeCmd(a *app) *cobra.Command {
	var f commandFlags
	cmd := &cobra.Command{
		Use:   "scope [instruction]",
		Short: "Estimate how much of the document a command affects",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), &f.docFlags)
			if err != nil {
				return err
			}
			defer s.close()

			h, err := s.handler(f.action)
			if err != nil {
				return err
			}
			sc := h.EstimateScope(f.command(args))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, sc.ScopeDescription)
			fmt.Fprintf(out, "characters: %d\nlines: %d\n", sc.CharactersAffected, sc.LinesAffected)
			if sc.Complexity != "" {
				fmt.Fprintf(out, "complexity: %s\n", sc.Complexity)
			}
			if sc.EstimatedIssues > 0 {
				fmt.Fprintf(out, "estimated issues: %d\n", sc.EstimatedIssues)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	var f commandFlags
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "List instruction suggestions and usable targets for an action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), &f.docFlags)
			if err != nil {
				return err
			}
			defer s.close()

			h, err := s.handler(f.action)
			if err != nil {
				return err
			}
			dc := s.engine.GetDocumentContext()
			out := cmd.OutOrStdout()
			for _, sug := range h.GetSuggestions(dc, dc.HasSelection()) {
				fmt.Fprintf(out, "- %s\n", sug)
			}
			targets := h.GetAvailableTargets(dc)
			names := make([]string, len(targets))
			for i, t := range targets {
				names[i] = string(t)
			}
			fmt.Fprintf(out, "\ntargets: %s\n", strings.Join(names, ", "))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
