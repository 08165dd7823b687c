package submission

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// ErrInvalidQuestion is returned for question numbers that are not positive integers.
var ErrInvalidQuestion = errors.New("invalid question number")

// Question identifies which question's test suite and answer file to use.
type Question int

// ParseQuestion parses a positive question number from the command line.
func ParseQuestion(s string) (Question, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidQuestion, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: must be positive, got %d", ErrInvalidQuestion, n)
	}
	return Question(n), nil
}

// Padded returns the canonical two-character form: numbers below 10 get a
// leading zero, others are printed as is.
func (q Question) Padded() string {
	if q < 10 {
		return "0" + strconv.Itoa(int(q))
	}
	return strconv.Itoa(int(q))
}

func (q Question) String() string { return strconv.Itoa(int(q)) }

// Layout maps a question to its files inside the exam root. Paths are
// slash-separated and relative to the root.
type Layout struct {
	TestsDir   string
	AnswersDir string
	Ext        string // e.g. ".py"
}

// TestPath returns the hidden test file for q, e.g. tests/test_03.py.
func (l Layout) TestPath(q Question) string {
	return path.Join(l.TestsDir, "test_"+q.Padded()+l.Ext)
}

// AnswerPath returns the student's answer file for q, e.g. answers/question_03.py.
func (l Layout) AnswerPath(q Question) string {
	return path.Join(l.AnswersDir, "question_"+q.Padded()+l.Ext)
}
