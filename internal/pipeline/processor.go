package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"hyperspectral/internal/capture"
	"hyperspectral/internal/config"
	"hyperspectral/internal/fileutil"
	"hyperspectral/internal/history"
	"hyperspectral/internal/logging"
	"hyperspectral/internal/metadata"
	"hyperspectral/internal/services"
	"hyperspectral/internal/services/betydb"
	"hyperspectral/internal/services/clowder"
	"hyperspectral/internal/services/converter"
	"hyperspectral/internal/staging"
	"hyperspectral/internal/verify"
)

// Decision is the admission verdict for a capture.
type Decision struct {
	Process bool
	Reason  string
}

// Outcome summarises one processed capture.
type Outcome struct {
	Capture    string
	RequestID  string
	Identity   capture.Identity
	Status     history.Status
	Paths      SensorPaths
	OutputSize int64
	Staged     bool
	DatasetID  string
	Uploaded   []string
	NDVI705    *float64
	Submitted  bool
	// TraitErr is set when trait extraction or submission failed; the
	// capture itself still completed.
	TraitErr error
	Duration time.Duration
}

// Option configures a Processor.
type Option func(*Processor)

// WithStore records outcomes in store.
func WithStore(store *history.Store) Option {
	return func(p *Processor) { p.store = store }
}

// WithConverter replaces the workflow invoker.
func WithConverter(inv converter.Invoker) Option {
	return func(p *Processor) {
		if inv != nil {
			p.converter = inv
		}
	}
}

// WithClowder replaces the data-management client.
func WithClowder(svc clowder.Service) Option {
	return func(p *Processor) {
		if svc != nil {
			p.clowder = svc
		}
	}
}

// WithSubmitter replaces the trait submitter.
func WithSubmitter(sub betydb.Submitter) Option {
	return func(p *Processor) {
		if sub != nil {
			p.submitter = sub
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Processor runs captures one at a time.
type Processor struct {
	cfg       *config.Config
	store     *history.Store
	converter converter.Invoker
	clowder   clowder.Service
	submitter betydb.Submitter
	logger    *slog.Logger
}

// New builds a Processor whose collaborators default to the configured
// workflow script and service clients.
func New(cfg *config.Config, opts ...Option) (*Processor, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	p := &Processor{
		cfg:       cfg,
		clowder:   clowder.NewConfiguredService(cfg),
		submitter: betydb.NewConfiguredSubmitter(cfg),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	if p.converter == nil {
		inv, err := converter.New(cfg.Conversion.Shell, cfg.Conversion.Script, cfg.Conversion.TimeoutSeconds,
			converter.WithLogger(p.logger))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "build converter", "", err)
		}
		p.converter = inv
	}
	return p, nil
}

// Check decides whether c should be processed.
func (p *Processor) Check(ctx context.Context, c Capture) Decision {
	ctx = services.WithCapture(ctx, c.Name)
	logger := logging.WithContext(ctx, p.logger)
	decide := func(process bool, reason string) Decision {
		result := "skip"
		if process {
			result = "process"
		}
		attrs := logging.DecisionAttrs("admission", result, reason)
		logger.Info("capture admission decided", logging.Args(attrs...)...)
		return Decision{Process: process, Reason: reason}
	}

	if !capture.HasAllFiles(c.Files) {
		return decide(false, "capture is missing one or more data files")
	}
	id, err := capture.ParseCaptureName(c.Name)
	if err != nil {
		return decide(false, err.Error())
	}
	if p.cfg.Conversion.Overwrite {
		return decide(true, "overwrite enabled")
	}
	paths := PathsFor(p.cfg.Paths.OutputDir, p.cfg.Conversion.Site, id)
	if fileutil.Exists(paths.Output) {
		return decide(false, "output already exists")
	}
	if p.store != nil {
		done, err := p.store.IsProcessed(ctx, c.Name)
		if err != nil {
			logging.WarnWithContext(logger, "history lookup failed", "history_lookup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "capture will be processed again"),
			)
		} else if done {
			return decide(false, "capture already processed")
		}
	}
	if c.DatasetID != "" {
		records, err := p.clowder.DownloadMetadata(ctx, c.DatasetID, p.cfg.Clowder.ExtractorName)
		if err != nil {
			logging.WarnWithContext(logger, "remote metadata lookup failed", "metadata_lookup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "capture will be processed again"),
			)
		} else if clowder.HasExtractorMetadata(records, p.cfg.Clowder.ExtractorName) {
			return decide(false, "dataset already carries extractor metadata")
		}
	}
	return decide(true, "ready")
}

// Process runs c through every stage and records the final status. The
// returned error is the one that aborted the capture, if any.
func (p *Processor) Process(ctx context.Context, c Capture) (Outcome, error) {
	start := time.Now()
	requestID := uuid.NewString()
	ctx = services.WithRequestID(services.WithCapture(ctx, c.Name), requestID)
	logger := logging.WithContext(ctx, p.logger)

	outcome := Outcome{Capture: c.Name, RequestID: requestID, Status: history.StatusProcessing}
	id, err := capture.ParseCaptureName(c.Name)
	if err != nil {
		err = services.Wrap(services.ErrValidation, "pipeline", "parse capture name", "", err)
	} else {
		outcome.Identity = id
		outcome.Paths = PathsFor(p.cfg.Paths.OutputDir, p.cfg.Conversion.Site, id)
		p.record(ctx, logger, &outcome, "")
		err = p.run(ctx, c, &outcome)
	}

	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Status = services.FailureStatus(err)
		p.record(ctx, logger, &outcome, err.Error())
		logging.ErrorWithContext(logger, "capture failed", "capture_failed",
			logging.String("resolved_status", string(outcome.Status)),
			logging.Duration("duration", outcome.Duration),
			logging.Error(err),
		)
		return outcome, err
	}

	outcome.Status = history.StatusCompleted
	p.record(ctx, logger, &outcome, "")
	logger.Info("capture completed",
		logging.String(logging.FieldEventType, "capture_complete"),
		logging.String("output", outcome.Paths.Output),
		logging.Bool("staged", outcome.Staged),
		logging.Int("uploaded", len(outcome.Uploaded)),
		logging.Bool("trait_submitted", outcome.Submitted),
		logging.Duration("duration", outcome.Duration),
	)
	return outcome, nil
}

func (p *Processor) run(ctx context.Context, c Capture, out *Outcome) error {
	var fs *capture.FileSet
	if err := p.stage(ctx, "resolve", func(context.Context, *slog.Logger) error {
		fs = capture.Resolve(c.Files)
		var missing []string
		for _, role := range fs.Missing() {
			if role != capture.RoleMetadata {
				missing = append(missing, role.String())
			}
		}
		if len(missing) > 0 {
			return services.Wrap(services.ErrIncompleteFileSet, "resolve", "classify files",
				"missing "+strings.Join(missing, ", "), nil)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, "metadata", func(_ context.Context, logger *slog.Logger) error {
		doc, err := metadata.Resolve(fs)
		if err != nil {
			return err
		}
		logger.Debug("metadata resolved",
			logging.String("source", doc.Source()),
			logging.String("metadata_timestamp", doc.Timestamp()),
			logging.String("sensor_type", doc.SensorType()),
		)
		return nil
	}); err != nil {
		return err
	}

	area, err := staging.Build(fs, p.cfg.Paths.StagingDir)
	defer func() {
		if cleanupErr := area.Cleanup(); cleanupErr != nil {
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "staging cleanup failed", "staging_cleanup_failed",
				logging.Error(cleanupErr),
				logging.String("staging_dir", area.Dir),
				logging.String(logging.FieldErrorHint, "run 'hyperspectral staging clean'"),
				logging.String(logging.FieldImpact, "stale links remain in the staging directory"),
			)
		}
	}()
	if err != nil {
		return err
	}
	out.Staged = area.Staged()

	if err := p.stage(ctx, "conversion", func(ctx context.Context, _ *slog.Logger) error {
		return p.convert(ctx, area.RawPath(), out)
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, "verify", func(context.Context, *slog.Logger) error {
		size, err := verify.Output(out.Paths.Output)
		out.OutputSize = size
		return err
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, "upload", func(ctx context.Context, logger *slog.Logger) error {
		return p.upload(ctx, logger, out)
	}); err != nil {
		return err
	}

	p.reportTraits(ctx, out)
	return nil
}

func (p *Processor) convert(ctx context.Context, rawPath string, out *Outcome) error {
	if err := os.MkdirAll(out.Paths.Dir, 0o755); err != nil {
		return services.Wrap(services.ErrConversionFailed, "conversion", "create output directory", out.Paths.Dir, err)
	}
	req := converter.Request{
		RawPath:               rawPath,
		OutputPath:            out.Paths.Output,
		Depth:                 1,
		HistogramEqualization: p.cfg.Conversion.HistogramEqualization,
		NewCalibrationMethod:  p.cfg.Conversion.NewCalibrationMethod,
	}
	if out.Paths.SoilMask != "" && fileutil.Exists(out.Paths.SoilMask) {
		req.SoilMaskPath = out.Paths.SoilMask
	}
	status, err := p.converter.Convert(ctx, req)
	if err != nil {
		return err
	}
	if status != 0 {
		return services.Wrap(services.ErrConversionFailed, "conversion", "run workflow",
			fmt.Sprintf("workflow exited with status %d", status), nil)
	}
	return nil
}

func (p *Processor) upload(ctx context.Context, logger *slog.Logger, out *Outcome) error {
	datasetID, err := p.clowder.EnsureDatasetHierarchy(ctx, Hierarchy(out.Identity)...)
	if err != nil {
		return err
	}
	if datasetID == "" {
		logger.Debug("upload skipped", logging.String("reason", "data-management service disabled"))
		return nil
	}
	out.DatasetID = datasetID
	for _, path := range []string{out.Paths.Output, out.Paths.Indices} {
		if !fileutil.Exists(path) {
			continue
		}
		fileID, err := p.clowder.UploadFile(ctx, datasetID, path)
		if err != nil {
			return err
		}
		out.Uploaded = append(out.Uploaded, fileID)
	}
	return nil
}

// reportTraits extracts the index value, writes the trait CSV, and submits
// it. Failures are logged and kept on the outcome only.
func (p *Processor) reportTraits(ctx context.Context, out *Outcome) {
	ctx = services.WithStage(ctx, "traits")
	logger := logging.WithContext(ctx, p.logger)
	warn := func(msg, event string, err error) {
		out.TraitErr = err
		logging.WarnWithContext(logger, msg, event,
			logging.Error(err),
			logging.String(logging.FieldImpact, "no trait reported for this capture"),
		)
	}

	value, err := verify.ExtractIndex(out.Paths.Indices, p.cfg.Traits.IndexStandardName)
	if err != nil {
		warn("trait extraction failed", "trait_extraction_failed", err)
		return
	}
	out.NDVI705 = &value

	row := betydb.NewTraitRow(p.cfg.Traits, out.Identity.Timestamp, value)
	var buf bytes.Buffer
	if err := betydb.WriteCSV(&buf, []betydb.TraitRow{row}); err != nil {
		warn("trait csv encoding failed", "trait_csv_failed", services.Wrap(services.ErrTraitExtraction, "traits", "encode csv", "", err))
		return
	}
	if err := fileutil.WriteAtomic(out.Paths.Traits, buf.Bytes(), 0o644); err != nil {
		warn("trait csv write failed", "trait_csv_failed", services.Wrap(services.ErrTraitExtraction, "traits", "write csv", out.Paths.Traits, err))
		return
	}
	if _, disabled := p.submitter.(betydb.Disabled); disabled {
		logger.Debug("trait submission skipped", logging.String("reason", "trait database disabled"))
		return
	}
	if err := p.submitter.Submit(ctx, out.Paths.Traits); err != nil {
		warn("trait submission failed", "trait_submit_failed", err)
		return
	}
	out.Submitted = true
	logger.Info("trait submitted",
		logging.String(logging.FieldEventType, "trait_submitted"),
		logging.Float64("ndvi705", value),
		logging.String("csv", out.Paths.Traits),
	)
}

func (p *Processor) stage(ctx context.Context, name string, fn func(context.Context, *slog.Logger) error) error {
	ctx = services.WithStage(ctx, name)
	logger := logging.WithContext(ctx, p.logger)
	start := time.Now()
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(ctx, logger); err != nil {
		logger.Debug("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("duration", time.Since(start)),
			logging.Error(err),
		)
		return err
	}
	logger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", time.Since(start)),
	)
	return nil
}

func (p *Processor) record(ctx context.Context, logger *slog.Logger, out *Outcome, message string) {
	if p.store == nil {
		return
	}
	rec := history.Record{
		CaptureName:  out.Capture,
		Timestamp:    out.Identity.Timestamp,
		Sensor:       string(out.Identity.Sensor),
		Status:       out.Status,
		OutputPath:   out.Paths.Output,
		NDVI705:      out.NDVI705,
		ErrorMessage: message,
		RequestID:    out.RequestID,
	}
	if err := p.store.Save(ctx, rec); err != nil {
		logger.Error("failed to persist capture status",
			logging.String(logging.FieldEventType, "history_save_failed"),
			logging.String("status", string(out.Status)),
			logging.Error(err),
		)
	}
}
