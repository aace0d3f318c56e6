package converter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"hyperspectral/internal/logging"
	"hyperspectral/internal/services"
)

// Request describes one conversion.
type Request struct {
	RawPath    string
	OutputPath string
	// Depth is passed as -d; the workflow only supports 1.
	Depth                 int
	HistogramEqualization bool
	// SoilMaskPath is optional; empty omits -m.
	SoilMaskPath         string
	NewCalibrationMethod bool
}

// Invoker runs a conversion and reports the workflow's exit status.
type Invoker interface {
	Convert(ctx context.Context, req Request) (int, error)
}

// Executor abstracts command execution for testability. A non-nil error
// implementing ExitCode() int means the command ran and exited non-zero.
type Executor interface {
	Run(ctx context.Context, dir, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger streams workflow output to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWorkDir runs the workflow from dir, so a relative script resolves there.
func WithWorkDir(dir string) Option {
	return func(c *Client) {
		c.workDir = strings.TrimSpace(dir)
	}
}

// Client wraps the workflow script.
type Client struct {
	shell   string
	script  string
	workDir string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs a workflow client.
func New(shell, script string, timeoutSeconds int, opts ...Option) (*Client, error) {
	shell = strings.TrimSpace(shell)
	script = strings.TrimSpace(script)
	if shell == "" {
		return nil, errors.New("workflow shell required")
	}
	if script == "" {
		return nil, errors.New("workflow script required")
	}
	client := &Client{
		shell:   shell,
		script:  script,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Args builds the workflow argument list for req (script first).
func (c *Client) Args(req Request) []string {
	depth := req.Depth
	if depth <= 0 {
		depth = 1
	}
	args := []string{c.script, "-d", fmt.Sprint(depth)}
	if req.HistogramEqualization {
		args = append(args, "-h")
	}
	if mask := strings.TrimSpace(req.SoilMaskPath); mask != "" {
		args = append(args, "-m", mask)
	}
	if req.NewCalibrationMethod {
		args = append(args, "--new_clb_mth")
	}
	return append(args, "-i", req.RawPath, "-o", req.OutputPath)
}

// Convert runs the workflow. The returned status is the script's exit code;
// err is non-nil only when the script could not be run to completion.
func (c *Client) Convert(ctx context.Context, req Request) (int, error) {
	if strings.TrimSpace(req.RawPath) == "" || strings.TrimSpace(req.OutputPath) == "" {
		return -1, services.Wrap(services.ErrConversionFailed, "conversion", "validate request", "raw and output paths are required", nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := c.Args(req)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("workflow started",
		logging.String(logging.FieldEventType, "conversion_start"),
		logging.String("raw", req.RawPath),
		logging.String("output", req.OutputPath),
		logging.Bool("soil_mask", req.SoilMaskPath != ""),
	)
	start := time.Now()

	err := c.exec.Run(runCtx, c.workDir, c.shell, args, func(line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		logger.Debug("workflow output", logging.String("line", line))
	})

	var exitErr interface{ ExitCode() int }
	switch {
	case err == nil:
		logger.Info("workflow finished",
			logging.String(logging.FieldEventType, "conversion_complete"),
			logging.Duration("elapsed", time.Since(start)),
		)
		return 0, nil
	case runCtx.Err() != nil:
		return -1, services.Wrap(services.ErrExternalTool, "conversion", "run workflow", "timed out or cancelled", runCtx.Err())
	case errors.As(err, &exitErr) && exitErr.ExitCode() > 0:
		status := exitErr.ExitCode()
		logging.WarnWithContext(logger, "workflow exited non-zero", "conversion_failed",
			logging.Int("status", status),
			logging.Duration("elapsed", time.Since(start)),
			logging.String(logging.FieldErrorHint, "inspect workflow output at debug level"),
			logging.String(logging.FieldImpact, "capture is not converted"),
		)
		return status, nil
	default:
		return -1, services.Wrap(services.ErrExternalTool, "conversion", "run workflow", c.shell+" "+c.script, err)
	}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, dir, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onOutput != nil {
				mu.Lock()
				onOutput(scanner.Text())
				mu.Unlock()
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	// *exec.ExitError carries ExitCode and is returned unwrapped.
	return cmd.Wait()
}
