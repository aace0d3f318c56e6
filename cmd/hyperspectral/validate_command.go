package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"hyperspectral/internal/services"
	"hyperspectral/internal/validation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file> [verbosity] [max_plant_reflectance] [saturated_exposure]",
		Short: "Check a produced NetCDF container against the product schema",
		Long: `Run every structural check against one container and exit non-zero unless
all checks not marked expected-failure pass.

Verbosity 0 prints only the summary, 1 adds checks that did not pass, 2 lists
every check, and 3 adds descriptions and timings. Omitted positional values
fall back to the [validation] configuration.`,
		Args:        cobra.RangeArgs(1, 4),
		Annotations: map[string]string{"readOnlyConfig": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			vcfg := validation.ConfigFrom(cfg.Validation)
			verbosity := cfg.Validation.Verbosity
			if len(args) > 1 {
				if verbosity, err = strconv.Atoi(args[1]); err != nil || verbosity < 0 {
					return fmt.Errorf("verbosity %q must be a non-negative integer", args[1])
				}
			}
			if len(args) > 2 {
				if vcfg.MaxPlantReflectance, err = strconv.ParseFloat(args[2], 64); err != nil {
					return fmt.Errorf("max_plant_reflectance %q: %w", args[2], err)
				}
			}
			if len(args) > 3 {
				if vcfg.SaturatedExposure, err = strconv.ParseFloat(args[3], 64); err != nil {
					return fmt.Errorf("saturated_exposure %q: %w", args[3], err)
				}
			}

			report := validation.Run(args[0], vcfg)
			out := cmd.OutOrStdout()
			writeReport(out, report, verbosity, shouldColorize(out))
			if !report.Success() {
				return services.Wrap(services.ErrValidation, "validate", args[0], report.Summary(), nil)
			}
			return nil
		},
	}
}

func writeReport(out io.Writer, report validation.Report, verbosity int, color bool) {
	if report.Err != nil {
		fmt.Fprintln(out, colorize(color, ansiRed, report.Summary()))
		return
	}

	var rows [][]string
	for _, r := range report.Results {
		if verbosity < 2 && (verbosity == 0 || r.Outcome == validation.OutcomePass || r.Outcome == validation.OutcomeExpectedFailure) {
			continue
		}
		row := []string{r.Check, colorize(color, outcomeColor(r), string(r.Outcome)), r.Message}
		if verbosity >= 3 {
			description := ""
			if check, ok := validation.Lookup(r.Check); ok {
				description = check.Description
			}
			row = append(row, description, r.Duration.String())
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		headers := []string{"Check", "Outcome", "Message"}
		aligns := []columnAlignment{alignLeft, alignLeft, alignLeft}
		if verbosity >= 3 {
			headers = append(headers, "Description", "Duration")
			aligns = append(aligns, alignLeft, alignRight)
		}
		fmt.Fprint(out, renderTable(headers, rows, aligns))
	}

	summary := report.Summary()
	if report.Success() {
		fmt.Fprintln(out, colorize(color, ansiGreen, "OK: "+summary))
	} else {
		fmt.Fprintln(out, colorize(color, ansiRed, "FAILED: "+summary))
	}
}

func outcomeColor(r validation.Result) string {
	switch r.Outcome {
	case validation.OutcomePass:
		return ansiGreen
	case validation.OutcomeExpectedFailure, validation.OutcomeUnexpectedSuccess:
		return ansiYellow
	default:
		return ansiRed
	}
}
