package suite

import (
	"encoding/json"
	"fmt"
	"time"
)

// Test outcome tags as reported by the engine.
const (
	OutcomePassed  = "passed"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
	OutcomeXFailed = "xfailed"
	OutcomeXPassed = "xpassed"
)

// Report is the structured result of one suite execution, in the shape written
// by pytest-json-report.
type Report struct {
	Created  float64       `json:"created"`
	Duration float64       `json:"duration"` // seconds
	ExitCode int           `json:"exitcode"`
	Root     string        `json:"root"`
	Summary  Summary       `json:"summary"`
	Tests    []TestOutcome `json:"tests"`
}

// Summary holds the suite's counts. Counts for outcomes that did not occur are
// omitted by the engine and decode as zero.
type Summary struct {
	Total      int `json:"total"`
	Collected  int `json:"collected"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	Error      int `json:"error"`
	XFailed    int `json:"xfailed"`
	XPassed    int `json:"xpassed"`
	Deselected int `json:"deselected"`
}

// TestOutcome is the result of one test item.
type TestOutcome struct {
	NodeID   string   `json:"nodeid"`
	LineNo   int      `json:"lineno"`
	Outcome  string   `json:"outcome"`
	Keywords []string `json:"keywords,omitempty"`
	Setup    *Stage   `json:"setup,omitempty"`
	Call     *Stage   `json:"call,omitempty"`
	Teardown *Stage   `json:"teardown,omitempty"`
}

// Stage is one phase (setup, call, teardown) of a test item.
type Stage struct {
	Duration  float64          `json:"duration"`
	Outcome   string           `json:"outcome"`
	Crash     *Location        `json:"crash,omitempty"`
	Traceback []Location       `json:"traceback,omitempty"`
	Longrepr  string           `json:"longrepr,omitempty"`
	Stdout    string           `json:"stdout,omitempty"`
	Stderr    string           `json:"stderr,omitempty"`
	Log       []map[string]any `json:"log,omitempty"`
}

// Location points at a line in a source file.
type Location struct {
	Path    string `json:"path"`
	LineNo  int    `json:"lineno"`
	Message string `json:"message"`
}

// Succeeded reports whether the engine's exit status indicates overall success.
func (r *Report) Succeeded() bool {
	return r.ExitCode == 0
}

// ParseReport decodes an engine report.
func ParseReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding suite report: %w", err)
	}
	return &r, nil
}

// DegradedReport stands in for a report the engine never wrote, e.g. when the
// test file is missing or fails to import. Nothing is collected.
func DegradedReport(exitCode int, elapsed time.Duration) *Report {
	if exitCode == 0 {
		exitCode = 1
	}
	return &Report{
		Created:  float64(time.Now().UnixNano()) / 1e9,
		Duration: elapsed.Seconds(),
		ExitCode: exitCode,
		Tests:    []TestOutcome{},
	}
}
