package suite

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"exam-runner/internal/console"
	"exam-runner/internal/runtime"
)

// LocalRunner runs the test engine directly on the host, in the exam root, so
// the suite can import the student's answer modules.
type LocalRunner struct {
	rt          runtime.Runtime
	root        string
	interpreter string
	timeout     time.Duration
	console     *console.Console
}

func NewLocalRunner(rt runtime.Runtime, root, interpreter string, timeout time.Duration, out *console.Console) *LocalRunner {
	return &LocalRunner{
		rt:          rt,
		root:        root,
		interpreter: interpreter,
		timeout:     timeout,
		console:     out,
	}
}

func (l *LocalRunner) Run(ctx context.Context, req Request) (*Report, error) {
	logger := runLogger(req.RunID, l.rt, "local", req.TestPath)

	if req.TestPath == "" {
		return nil, &ExecutionError{RunID: req.RunID, Op: "validate", Err: ErrInvalidRequest}
	}

	reportDir, err := os.MkdirTemp("", "exam-report-*")
	if err != nil {
		return nil, &ExecutionError{RunID: req.RunID, Op: "create_temp_dir", Err: err}
	}
	defer os.RemoveAll(reportDir)
	reportPath := filepath.Join(reportDir, "report.json")

	return runEngine(ctx, engineRun{
		runID:      req.RunID,
		args:       l.rt.Command(l.interpreter, req.TestPath, reportPath),
		dir:        l.root,
		env:        []string{"PYTHONDONTWRITEBYTECODE=1"},
		reportPath: reportPath,
		timeout:    l.timeout,
		console:    l.console,
		logger:     logger,
	})
}
