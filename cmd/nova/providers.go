package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show which AI providers are configured and reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m := a.newManager(ctx)
			statuses, err := m.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to probe providers: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(statuses) == 0 {
				fmt.Fprintln(out, "No providers configured. Set NOVA_API_KEY or edit the config file.")
				return nil
			}
			for _, s := range statuses {
				mark := "❌"
				if s.Available {
					mark = "✅"
				}
				line := fmt.Sprintf("%s %s", mark, s.Name)
				if s.Primary {
					line += " (primary)"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
