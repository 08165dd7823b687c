package suite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"exam-runner/internal/config"
	"exam-runner/internal/console"
	"exam-runner/internal/runtime"
)

// Request names the test file to execute, relative to the exam root.
type Request struct {
	RunID    string
	TestPath string
}

// Executor runs a question's test suite and returns the engine's report.
type Executor interface {
	Run(ctx context.Context, req Request) (*Report, error)
}

// NewExecutor picks the backend named in the config. out is the console whose
// output is suppressed while the suite runs.
func NewExecutor(cfg *config.Config, out *console.Console) (Executor, error) {
	rt, err := runtime.NewRegistry().Get(cfg.Engine.Name)
	if err != nil {
		return nil, err
	}

	switch cfg.Engine.Backend {
	case "", "local":
		return NewLocalRunner(rt, cfg.Exam.Root, cfg.Engine.Python, cfg.Engine.Timeout, out), nil
	case "docker":
		if _, err := exec.LookPath("docker"); err != nil {
			return nil, fmt.Errorf("docker not found in PATH: %w", err)
		}
		limits := ResourceLimits(cfg.Engine.Limits)
		d, err := NewDockerRunner(rt, cfg.Exam.Root, cfg.Engine.Image, limits, cfg.Engine.Timeout, out)
		if err != nil {
			return nil, err
		}
		d.seccomp = cfg.Engine.Seccomp
		return d, nil
	default:
		return nil, fmt.Errorf("%w %q: must be local or docker", ErrUnknownBackend, cfg.Engine.Backend)
	}
}

// engineRun is one invocation of a test engine process.
type engineRun struct {
	runID      string
	args       []string
	dir        string
	env        []string
	reportPath string
	timeout    time.Duration
	console    *console.Console
	logger     zerolog.Logger
}

// runEngine executes the engine with stdout suppressed and reads the report it
// wrote. A process that ran but left no usable report yields a degraded report.
func runEngine(ctx context.Context, r engineRun) (*Report, error) {
	if len(r.args) == 0 {
		return nil, &ExecutionError{RunID: r.runID, Op: "build_command", Err: ErrInvalidRequest}
	}

	execCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout io.Writer = io.Discard
	if r.console != nil {
		stdout = r.console
	}
	var stderrBuf bytes.Buffer

	cmd := exec.CommandContext(execCtx, r.args[0], r.args[1:]...) // #nosec G204 -- args built from the runtime registry and config
	cmd.Dir = r.dir
	cmd.Stdout = stdout
	cmd.Stderr = &stderrBuf
	cmd.WaitDelay = 2 * time.Second
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	r.logger.Debug().Strs("args", r.args).Msg("starting test engine")

	start := time.Now()
	run := func() error { return cmd.Run() }
	var err error
	if r.console != nil {
		err = r.console.Suppressed(run)
	} else {
		err = run()
	}
	elapsed := time.Since(start)

	exitCode := 0
	if err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			r.logger.Warn().Dur("timeout", r.timeout).Msg("test engine timed out")
			return nil, &ExecutionError{RunID: r.runID, Op: "run", Err: fmt.Errorf("%w after %s", ErrTimeout, r.timeout)}
		}
		if ctx.Err() != nil {
			return nil, &ExecutionError{RunID: r.runID, Op: "run", Err: ctx.Err()}
		}

		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			exitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound):
			return nil, &ExecutionError{RunID: r.runID, Op: "start", Err: fmt.Errorf("%w: %s", ErrEngineNotFound, r.args[0])}
		default:
			return nil, &ExecutionError{RunID: r.runID, Op: "start", Err: err}
		}
	}

	r.logger.Info().
		Int("exit_code", exitCode).
		Dur("duration", elapsed).
		Msg("test engine finished")

	data, err := os.ReadFile(r.reportPath)
	if err != nil {
		r.logger.Warn().Err(err).Str("stderr", truncateOutput(stderrBuf.String(), 4096)).Msg("engine wrote no report")
		return DegradedReport(exitCode, elapsed), nil
	}

	report, err := ParseReport(data)
	if err != nil {
		r.logger.Warn().Err(err).Msg("engine report unreadable")
		return DegradedReport(exitCode, elapsed), nil
	}
	if report.Tests == nil {
		report.Tests = []TestOutcome{}
	}
	return report, nil
}

func truncateOutput(s string, maxBytes int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxBytes {
		return s
	}
	return s[:maxBytes] + "\n... [output truncated]"
}

func runLogger(runID string, rt runtime.Runtime, backend, testPath string) zerolog.Logger {
	return log.With().
		Str("run_id", runID).
		Str("engine", rt.Name()).
		Str("backend", backend).
		Str("test_file", testPath).
		Logger()
}
