package monitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecordRun(t *testing.T) {
	m := NewMetrics()
	m.RecordRun(3, "done", 1700000000)
	m.RecordRun(3, "done", 1700000100)
	m.RecordRun(3, "failed", 1700000200)

	if got := counterValue(t, m, "exam_runner_runs_total", map[string]string{"question": "3", "state": "done"}); got != 2 {
		t.Errorf("runs_total{done} = %v, want 2", got)
	}
	if got := counterValue(t, m, "exam_runner_runs_total", map[string]string{"question": "3", "state": "failed"}); got != 1 {
		t.Errorf("runs_total{failed} = %v, want 1", got)
	}
}

func TestRecordSuite(t *testing.T) {
	m := NewMetrics()
	m.RecordSuite("pytest", 1.2, map[string]int{"passed": 3, "failed": 2})

	if got := counterValue(t, m, "exam_runner_tests_total", map[string]string{"outcome": "passed"}); got != 3 {
		t.Errorf("tests_total{passed} = %v, want 3", got)
	}
	if got := counterValue(t, m, "exam_runner_tests_total", map[string]string{"outcome": "failed"}); got != 2 {
		t.Errorf("tests_total{failed} = %v, want 2", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.SubmissionErrors.Inc()

	path := filepath.Join(t.TempDir(), "exam.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "exam_runner_api_submission_errors_total 1") {
		t.Errorf("textfile missing submission errors:\n%s", data)
	}

	if err := m.WriteTextfile(""); err != nil {
		t.Errorf("WriteTextfile(\"\") = %v, want nil", err)
	}
}

func TestTracer_Disabled(t *testing.T) {
	tr := NewTracer(false)
	ctx, span := tr.StartSpan(context.Background(), "run", AttrQuestion.Int(3))
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("disabled tracer should produce non-recording spans")
	}
	if SpanFromContext(ctx) != span {
		t.Error("span should be attached to the returned context")
	}
}

func TestSetupTracing_WritesSpans(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	path := filepath.Join(t.TempDir(), "traces.json")
	shutdown, err := SetupTracing(path)
	if err != nil {
		t.Fatalf("SetupTracing: %v", err)
	}

	tr := NewTracer(true)
	_, span := tr.StartSpan(context.Background(), "run", AttrQuestion.Int(3))
	if !span.SpanContext().IsValid() {
		t.Error("enabled tracer should produce recording spans")
	}
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"exam_runner.run", "exam_runner.question", "exam-runner"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("trace file missing %q:\n%s", want, data)
		}
	}
}

func TestSetupTracing_BadPath(t *testing.T) {
	if _, err := SetupTracing(filepath.Join(t.TempDir(), "missing", "traces.json")); err == nil {
		t.Error("SetupTracing into a missing directory should fail")
	}
}
