package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hyperspectral/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List processed captures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter, err := parseStatuses(statuses)
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), filter...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No captures recorded")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				detail := rec.OutputPath
				if rec.ErrorMessage != "" {
					detail = rec.ErrorMessage
				}
				rows = append(rows, []string{
					rec.CaptureName,
					string(rec.Status),
					formatIndex(rec.NDVI705),
					rec.UpdatedAt.Local().Format("2006-01-02 15:04"),
					detail,
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Capture", "Status", "NDVI705", "Updated", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Only show these statuses (processing, completed, failed, skipped)")
	return cmd
}

func parseStatuses(values []string) ([]history.Status, error) {
	valid := map[history.Status]bool{
		history.StatusProcessing: true,
		history.StatusCompleted:  true,
		history.StatusFailed:     true,
		history.StatusSkipped:    true,
	}
	statuses := make([]history.Status, 0, len(values))
	for _, value := range values {
		status := history.Status(strings.ToLower(strings.TrimSpace(value)))
		if !valid[status] {
			return nil, fmt.Errorf("unknown status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
