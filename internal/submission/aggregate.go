package submission

import (
	"fmt"
	"io/fs"
	"time"

	"exam-runner/internal/suite"
)

// Input is everything the aggregator needs besides the files on disk.
type Input struct {
	ExamID   string
	Question Question
	Report   *suite.Report
	Start    time.Time // when the run began
	End      time.Time // taken right after suite execution
}

// Aggregator turns a suite report into a submission Record. It reads the test
// and answer files from fsys at Build time and never writes anything.
type Aggregator struct {
	fsys   fs.FS
	layout Layout
}

func NewAggregator(fsys fs.FS, layout Layout) *Aggregator {
	return &Aggregator{fsys: fsys, layout: layout}
}

// Build assembles the record. The report is not modified.
func (a *Aggregator) Build(in Input) (*Record, error) {
	if in.Report == nil {
		return nil, fmt.Errorf("building submission for question %d: no suite report", in.Question)
	}

	hash, err := HashFile(a.fsys, a.layout.TestPath(in.Question))
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", in.Question, err)
	}

	code, err := fs.ReadFile(a.fsys, a.layout.AnswerPath(in.Question))
	if err != nil {
		return nil, fmt.Errorf("question %d: reading answer file: %w", in.Question, err)
	}

	return &Record{
		ExamID:         in.ExamID,
		QuestionNumber: int(in.Question),
		LintResults:    nil,
		TestResults:    DeriveResults(in.Report, in.Start, in.End),
		TestFileHash:   hash,
		StudentCode:    string(code),
		Errors:         ExtractErrors(in.Report),
	}, nil
}

// DeriveResults computes the metrics block. One suite runs per invocation.
// Pending counts tests that were declared but never collected; it goes negative
// if an engine ever reports collected > total.
func DeriveResults(r *suite.Report, start, end time.Time) TestResults {
	s := r.Summary
	return TestResults{
		Suites:   1,
		Tests:    s.Total,
		Passes:   s.Total - s.Failed,
		Pending:  s.Total - s.Collected,
		Failures: s.Failed,
		Start:    FormatTimestamp(start),
		End:      FormatTimestamp(end),
		Duration: r.Duration,
	}
}

// ExtractErrors returns the failed tests of an unsuccessful run. A successful
// exit status yields no errors whatever the individual outcomes. Only the
// literal "failed" tag counts: errored and skipped tests are left out even
// though they still count towards tests.
func ExtractErrors(r *suite.Report) []suite.TestOutcome {
	errs := []suite.TestOutcome{}
	if r.Succeeded() {
		return errs
	}
	for _, t := range r.Tests {
		if t.Outcome == suite.OutcomeFailed {
			errs = append(errs, t)
		}
	}
	return errs
}
