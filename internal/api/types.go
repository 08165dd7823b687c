package api

// ScoreReport is the grading service's reply to a submission: the student's
// current score on every question and the time left in the exam session.
type ScoreReport struct {
	Scores        []QuestionScore `json:"scores"`
	RemainingTime float64         `json:"remainingTime"` // minutes
}

// QuestionScore is one question's grade.
type QuestionScore struct {
	QuestionNumber int     `json:"questionNumber"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"maxScore"`
}

// errorResponse is the body the service sends with a non-2xx status.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// scoreReportWire is decoded first so missing fields can be told apart from
// zero values.
type scoreReportWire struct {
	Scores        *[]QuestionScore `json:"scores"`
	RemainingTime *float64         `json:"remainingTime"`
}
