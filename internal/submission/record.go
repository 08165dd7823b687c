package submission

import (
	"encoding/json"
	"time"

	"exam-runner/internal/suite"
)

// timestampLayout matches the server's expected "YYYY-MM-DD HH:MM:SS.ffffff".
const (
	timestampLayout      = "2006-01-02 15:04:05.000000"
	timestampLayoutWhole = "2006-01-02 15:04:05"
)

// Record is the payload sent to the grading service for one question.
type Record struct {
	ExamID         string              `json:"examId"`
	QuestionNumber int                 `json:"questionNumber"`
	LintResults    json.RawMessage     `json:"lintResults"` // never produced here; encodes as null
	TestResults    TestResults         `json:"testResults"`
	TestFileHash   string              `json:"testFileHash"`
	StudentCode    string              `json:"studentCode"`
	Errors         []suite.TestOutcome `json:"errors"`
}

// TestResults is the metrics block derived from a suite report.
type TestResults struct {
	Suites   int     `json:"suites"`
	Tests    int     `json:"tests"`
	Passes   int     `json:"passes"`
	Pending  int     `json:"pending"`
	Failures int     `json:"failures"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Duration float64 `json:"duration"`
}

// FormatTimestamp renders t in local time, dropping the fractional part when it
// is exactly zero.
func FormatTimestamp(t time.Time) string {
	t = t.Local()
	if t.Nanosecond()/1000 == 0 {
		return t.Format(timestampLayoutWhole)
	}
	return t.Format(timestampLayout)
}
