// Package report renders the grading service's score report on the console.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"exam-runner/internal/api"
)

// NoTimeRemaining is printed once the exam's time is used up.
const NoTimeRemaining = "None (Submission still accepted)"

// Presenter writes score summaries to a console.
type Presenter struct {
	out io.Writer
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

// Render prints every question's score ratio in the order the service sent
// them, then the time remaining.
func (p *Presenter) Render(r *api.ScoreReport) {
	fmt.Fprintln(p.out, "Overall Score")
	fmt.Fprintln(p.out, "------------")

	for _, q := range r.Scores {
		fmt.Fprintf(p.out, "Q%d. %s\n", q.QuestionNumber, Ratio(q.Score, q.MaxScore))
	}

	fmt.Fprintf(p.out, "Time Remaining: %s\n", FormatRemaining(r.RemainingTime))
}

// Ratio divides the whole-number parts of score and maxScore. Integral results keep a
// trailing ".0" so 4/4 prints as 1.0, and values with a decimal exponent below -4
// or at least 16 use exponent form (1/30000 prints as 3.3333333333333335e-05).
func Ratio(score, maxScore float64) string {
	v := math.Trunc(score) / math.Trunc(maxScore)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	e := strconv.FormatFloat(v, 'e', -1, 64)
	if exp, err := strconv.Atoi(e[strings.LastIndexByte(e, 'e')+1:]); err == nil && (exp < -4 || exp >= 16) {
		return e
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatRemaining renders minutes as whole hours and minutes, e.g. 125 -> 2h5m.
func FormatRemaining(minutes float64) string {
	if minutes <= 0 {
		return NoTimeRemaining
	}
	hours := math.Floor(minutes / 60)
	mins := math.Floor(math.Mod(minutes, 60))
	return fmt.Sprintf("%dh%dm", int(hours), int(mins))
}
