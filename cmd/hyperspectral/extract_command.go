package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"hyperspectral/internal/config"
	"hyperspectral/internal/history"
	"hyperspectral/internal/logging"
	"hyperspectral/internal/pipeline"
	"hyperspectral/internal/preflight"
	"hyperspectral/internal/services/converter"
	"hyperspectral/internal/staging"
)

// staleStagingAge is how old a staging directory must be before extract
// treats it as left over from a crashed run.
const staleStagingAge = 24 * time.Hour

type captureFlags struct {
	name      string
	datasetID string
	files     []string
}

func (f captureFlags) captures(args []string) ([]pipeline.Capture, error) {
	if len(f.files) > 0 {
		if len(args) > 0 {
			return nil, errors.New("--file cannot be combined with capture directories")
		}
		if strings.TrimSpace(f.name) == "" {
			return nil, errors.New("--name is required with --file")
		}
		files := make([]string, 0, len(f.files))
		for _, file := range f.files {
			abs, err := filepath.Abs(file)
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", file, err)
			}
			files = append(files, abs)
		}
		return []pipeline.Capture{{Name: f.name, DatasetID: f.datasetID, Files: files}}, nil
	}
	if len(args) == 0 {
		return nil, errors.New("at least one capture directory or --file is required")
	}
	if len(args) > 1 && (f.name != "" || f.datasetID != "") {
		return nil, errors.New("--name and --dataset-id apply to a single capture")
	}
	captures := make([]pipeline.Capture, 0, len(args))
	for _, dir := range args {
		c, err := pipeline.FromDirectory(dir, f.name)
		if err != nil {
			return nil, err
		}
		c.DatasetID = f.datasetID
		captures = append(captures, c)
	}
	return captures, nil
}

func (f *captureFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Dataset name (\"VNIR - <timestamp>\"); derived from the directory layout when empty")
	cmd.Flags().StringVar(&f.datasetID, "dataset-id", "", "Clowder dataset the capture belongs to")
	cmd.Flags().StringArrayVar(&f.files, "file", nil, "Capture member path (repeatable; for captures spread over several directories)")
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		flags         captureFlags
		overwrite     bool
		skipPreflight bool
		workDir       string
	)

	cmd := &cobra.Command{
		Use:   "extract [capture-dir...]",
		Short: "Convert captures into NetCDF products and report their traits",
		Long: `Convert one or more captures end to end.

Each capture directory holds the raw cube, header, preview image, frame index,
settings file and (optionally) its metadata document. Captures are processed
one at a time; a failing capture does not stop the others, but extract exits
non-zero when any capture failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if overwrite {
				cfg.Conversion.Overwrite = true
			}
			captures, err := flags.captures(args)
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another extract run holds %s", cfg.LockPath())
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release extract lock", logging.Error(err))
				}
			}()

			if !skipPreflight {
				if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
					parts := make([]string, 0, len(failed))
					for _, r := range failed {
						parts = append(parts, r.Name+": "+r.Detail)
					}
					return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
				}
			}

			staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, staleStagingAge, logger)
			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
				Dir:     cfg.Paths.LogDir,
				Pattern: "*.log",
				Exclude: []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
			})

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			opts := []pipeline.Option{pipeline.WithStore(store), pipeline.WithLogger(logger)}
			if workDir != "" {
				inv, err := converter.New(cfg.Conversion.Shell, cfg.Conversion.Script, cfg.Conversion.TimeoutSeconds,
					converter.WithLogger(logger), converter.WithWorkDir(workDir))
				if err != nil {
					return err
				}
				opts = append(opts, pipeline.WithConverter(inv))
			}
			processor, err := pipeline.New(cfg, opts...)
			if err != nil {
				return err
			}

			return runExtract(cmd, cfg, processor, captures)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Reprocess captures whose output already exists")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Do not check directories, tooling and services first")
	cmd.Flags().StringVar(&workDir, "workdir", "", "Directory the workflow script runs from")
	return cmd
}

func runExtract(cmd *cobra.Command, cfg *config.Config, processor *pipeline.Processor, captures []pipeline.Capture) error {
	out := cmd.OutOrStdout()
	color := shouldColorize(out)
	rows := make([][]string, 0, len(captures))
	failures := 0

	for _, c := range captures {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		decision := processor.Check(cmd.Context(), c)
		if !decision.Process {
			rows = append(rows, []string{c.Name, colorize(color, ansiYellow, "skipped"), "", decision.Reason})
			continue
		}
		outcome, err := processor.Process(cmd.Context(), c)
		status := string(outcome.Status)
		detail := outcome.Paths.Output
		switch {
		case err != nil:
			detail = err.Error()
			if outcome.Status == history.StatusFailed {
				failures++
				status = colorize(color, ansiRed, status)
			} else {
				status = colorize(color, ansiYellow, status)
			}
		case outcome.TraitErr != nil:
			detail = fmt.Sprintf("%s (trait: %v)", detail, outcome.TraitErr)
			status = colorize(color, ansiYellow, status)
		default:
			status = colorize(color, ansiGreen, status)
		}
		rows = append(rows, []string{c.Name, status, formatIndex(outcome.NDVI705), detail})
	}

	fmt.Fprint(out, renderTable(
		[]string{"Capture", "Status", "NDVI705", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
	if failures > 0 {
		return fmt.Errorf("%d of %d captures failed; see %s", failures, len(captures), filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	}
	return nil
}

func formatIndex(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', 4, 64)
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var flags captureFlags

	cmd := &cobra.Command{
		Use:   "check [capture-dir...]",
		Short: "Report whether captures would be processed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			captures, err := flags.captures(args)
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			processor, err := pipeline.New(cfg, pipeline.WithStore(store))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(captures))
			for _, c := range captures {
				decision := processor.Check(cmd.Context(), c)
				rows = append(rows, []string{c.Name, yesNo(decision.Process), decision.Reason})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"Capture", "Process", "Reason"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
