// Package runner sequences one question end to end: load the exam session, run
// the hidden test suite, build the submission record, submit it and print the
// scores.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"exam-runner/internal/api"
	"exam-runner/internal/config"
	"exam-runner/internal/monitor"
	"exam-runner/internal/submission"
	"exam-runner/internal/suite"
)

// State is the orchestrator's position in a run.
type State string

const (
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// SessionLoader returns the enrolled exam session.
type SessionLoader func() (config.Session, error)

// Submitter sends a record to the grading service.
type Submitter interface {
	Submit(ctx context.Context, rec *submission.Record, examID, token string) (*api.ScoreReport, error)
}

// Presenter prints a score report.
type Presenter interface {
	Render(r *api.ScoreReport)
}

// Deps are the collaborators of a Runner. Metrics and Tracer may be nil.
type Deps struct {
	LoadSession SessionLoader
	Executor    suite.Executor
	Aggregator  *submission.Aggregator
	Submitter   Submitter
	Presenter   Presenter
	Layout      submission.Layout
	Engine      string
	Out         io.Writer // where a submission failure is printed
	Metrics     *monitor.Metrics
	Tracer      *monitor.Tracer
}

// Runner runs one question per call to Run.
type Runner struct {
	deps  Deps
	now   func() time.Time
	state State
}

func New(deps Deps) *Runner {
	if deps.Metrics == nil {
		deps.Metrics = monitor.NewMetrics()
	}
	if deps.Tracer == nil {
		deps.Tracer = monitor.NewTracer(false)
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	return &Runner{deps: deps, now: time.Now, state: StateRunning}
}

// State reports where the last run ended.
func (r *Runner) State() State {
	return r.state
}

// Run executes the pipeline for q. A rejected submission is printed to Out and
// ends the run in StateFailed with a nil error; every other failure is returned.
func (r *Runner) Run(ctx context.Context, runID string, q submission.Question) (State, error) {
	start := r.now()
	r.state = StateRunning

	logger := log.With().
		Str("run_id", runID).
		Int("question", int(q)).
		Logger()

	ctx, span := r.deps.Tracer.StartSpan(ctx, "run",
		monitor.AttrRunID.String(runID),
		monitor.AttrQuestion.Int(int(q)),
	)
	defer span.End()

	defer func() {
		span.SetAttributes(monitor.AttrState.String(string(r.state)))
		r.deps.Metrics.RecordRun(int(q), string(r.state), float64(r.now().Unix()))
	}()

	session, err := r.deps.LoadSession()
	if err != nil {
		return r.fail(span, fmt.Errorf("loading exam session: %w", err))
	}
	span.SetAttributes(monitor.AttrExamID.String(session.ExamID))
	logger = logger.With().Str("exam_id", session.ExamID).Logger()
	if exp, ok := session.Expiry(); ok && exp.Before(start) {
		logger.Warn().Time("expired_at", exp).Msg("session token has expired; the submission will likely be rejected")
	}

	testPath := r.deps.Layout.TestPath(q)
	logger.Debug().Str("test_path", testPath).Msg("running test suite")

	report, err := r.runSuite(ctx, runID, testPath)
	end := r.now()
	if err != nil {
		return r.fail(span, err)
	}
	logger.Info().
		Int("exit_code", report.ExitCode).
		Int("total", report.Summary.Total).
		Int("failed", report.Summary.Failed).
		Float64("duration", report.Duration).
		Msg("test suite finished")

	rec, err := r.deps.Aggregator.Build(submission.Input{
		ExamID:   session.ExamID,
		Question: q,
		Report:   report,
		Start:    start,
		End:      end,
	})
	if err != nil {
		return r.fail(span, err)
	}
	r.deps.Metrics.StudentCodeBytes.Observe(float64(len(rec.StudentCode)))
	span.SetAttributes(monitor.AttrTestHash.String(rec.TestFileHash))

	scores, err := r.submit(ctx, rec, session)
	if err != nil {
		var subErr *api.SubmissionError
		if errors.As(err, &subErr) {
			r.deps.Metrics.SubmissionErrors.Inc()
			logger.Warn().Int("status", subErr.StatusCode).Msg("submission rejected")
			fmt.Fprintln(r.deps.Out, subErr.Error())
			span.SetStatus(codes.Error, subErr.Error())
			r.state = StateFailed
			return r.state, nil
		}
		return r.fail(span, err)
	}

	r.deps.Presenter.Render(scores)
	r.state = StateDone
	return r.state, nil
}

func (r *Runner) runSuite(ctx context.Context, runID, testPath string) (*suite.Report, error) {
	ctx, span := r.deps.Tracer.StartSpan(ctx, "suite")
	defer span.End()

	report, err := r.deps.Executor.Run(ctx, suite.Request{RunID: runID, TestPath: testPath})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(monitor.AttrExitCode.Int(report.ExitCode))

	r.deps.Metrics.RecordSuite(r.deps.Engine, report.Duration, outcomeCounts(report))
	return report, nil
}

func (r *Runner) submit(ctx context.Context, rec *submission.Record, session config.Session) (*api.ScoreReport, error) {
	ctx, span := r.deps.Tracer.StartSpan(ctx, "submit")
	defer span.End()

	start := time.Now()
	scores, err := r.deps.Submitter.Submit(ctx, rec, session.ExamID, session.Token)
	r.deps.Metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
	}
	return scores, err
}

func (r *Runner) fail(span trace.Span, err error) (State, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.state = StateFailed
	return r.state, err
}

func outcomeCounts(report *suite.Report) map[string]int {
	counts := make(map[string]int)
	for _, t := range report.Tests {
		counts[t.Outcome]++
	}
	return counts
}
