package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nova/internal/document"
	"nova/internal/intent"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text]",
		Short: "Tell whether text reads as an editing request or as conversation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := intent.ClassifyInput(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (confidence %.2f)\n", c.Type, c.Confidence)
			if len(c.MatchedPatterns) > 0 {
				fmt.Fprintf(out, "matched: %s\n", strings.Join(c.MatchedPatterns, ", "))
			}
			return nil
		},
	}
}

func newOutlineCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Print the heading outline of a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}
			outline := document.Outline(document.ExtractHeadings(string(raw)))
			if outline == "" {
				outline = "(no headings)\n"
			}
			fmt.Fprint(cmd.OutOrStdout(), outline)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Markdown file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSectionCmd() *cobra.Command {
	var (
		file   string
		render bool
	)
	cmd := &cobra.Command{
		Use:   "section [heading]",
		Short: "Print the section under a heading",
		Long:  "Headings match case-insensitively by substring, or by path such as \"Guide / Setup\".",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}
			lookup := strings.Join(args, " ")
			s := document.FindSection(string(raw), lookup)
			if s == nil {
				return fmt.Errorf("section %q not found", lookup)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s (level %d, lines %d-%d)\n", s.Heading, s.Level, s.Range.Start+1, s.Range.End+1)
			return printMarkdown(cmd, s.Content, render)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Markdown file")
	cmd.Flags().BoolVar(&render, "render", false, "Render the section in the terminal")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
