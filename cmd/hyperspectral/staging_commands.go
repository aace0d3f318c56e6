package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hyperspectral/internal/logging"
	"hyperspectral/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage staging directories",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staging directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stagingDir := strings.TrimSpace(cfg.Paths.StagingDir)
			out := cmd.OutOrStdout()
			if stagingDir == "" {
				fmt.Fprintln(out, "Staging directory not configured")
				return nil
			}

			dirs, err := staging.ListDirectories(stagingDir)
			if err != nil {
				return fmt.Errorf("list staging directories: %w", err)
			}
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No staging directories found")
				return nil
			}

			fmt.Fprintf(out, "Staging directory: %s\n\n", stagingDir)
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				age := time.Since(dir.ModTime).Truncate(time.Minute)
				rows = append(rows, []string{
					dir.Name,
					formatDuration(age),
					fmt.Sprint(dir.Links),
					logging.FormatBytes(dir.TargetBytes),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Directory", "Age", "Links", "Linked size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "\nTotal: %d directories\n", len(dirs))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var cleanAll bool
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove staging directories left by interrupted runs",
		Long: `Remove staging directories older than --max-age.

Staging directories only hold links, so removing them never deletes capture
data. Use --all to remove every staging directory regardless of age; do not
do this while an extract run is active.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			age := maxAge
			if cleanAll {
				age = 0
			}
			result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, age, logger)

			out := cmd.OutOrStdout()
			if len(result.Removed) == 0 && len(result.Errors) == 0 {
				fmt.Fprintln(out, "No staging directories to remove")
				return nil
			}
			fmt.Fprintf(out, "Removed %d staging directories\n", len(result.Removed))
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  failed: %s: %v\n", e.Path, e.Error)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d staging directories could not be removed", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&cleanAll, "all", "a", false, "Remove all staging directories")
	cmd.Flags().DurationVar(&maxAge, "max-age", staleStagingAge, "Remove directories older than this")
	return cmd
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
	}
}
