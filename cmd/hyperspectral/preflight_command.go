package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hyperspectral/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check directories, workflow tooling and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if !cfg.Clowder.Enabled || !cfg.BETYdb.Enabled {
				for _, r := range preflight.ServiceStatus(cmd.Context(), cfg) {
					if r.Detail == "Disabled" {
						results = append(results, r)
					}
				}
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				state := colorize(color, ansiGreen, "ok")
				if !r.Passed {
					state = colorize(color, ansiRed, "fail")
				}
				rows = append(rows, []string{r.Name, state, r.Detail})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Check", "Result", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight checks failed", len(failed))
			}
			return nil
		},
	}
}
