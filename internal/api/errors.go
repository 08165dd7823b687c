package api

import "errors"

// SubmissionError is any failure to deliver a submission and read back the
// scores: transport errors, rejected requests and unreadable replies alike.
// Error returns only the human-readable description.
type SubmissionError struct {
	Message    string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// IsSubmissionError returns true if err is or wraps a SubmissionError.
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
