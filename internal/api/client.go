package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"exam-runner/internal/config"
	"exam-runner/internal/submission"
)

const maxResponseBytes = 1 << 20

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// WithRequestID attaches an ID that is sent as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// Client talks to the grading service.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient builds a client from the api section of cfg. A zero api.timeout
// leaves requests unbounded.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.API.Timeout},
	}
}

// Submit sends one submission record, authenticated with the session token, and
// returns the service's score report. Every failure is a *SubmissionError.
func (c *Client) Submit(ctx context.Context, rec *submission.Record, examID, token string) (*ScoreReport, error) {
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	endpoint := c.cfg.SubmitURL(examID)

	logger := log.With().
		Str("request_id", requestID).
		Str("exam_id", examID).
		Int("question", rec.QuestionNumber).
		Logger()

	body, err := json.Marshal(rec)
	if err != nil {
		return nil, &SubmissionError{Message: fmt.Sprintf("Could not encode submission: %v", err), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &SubmissionError{Message: fmt.Sprintf("Could not build submission request: %v", err), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)
	if c.cfg.API.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.API.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("submission request failed")
		return nil, &SubmissionError{Message: fmt.Sprintf("Could not reach the grading service: %v", err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &SubmissionError{
			Message:    fmt.Sprintf("Could not read the grading service response: %v", err),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	logger.Info().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("submission response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SubmissionError{Message: rejectionMessage(resp.StatusCode, data), StatusCode: resp.StatusCode}
	}

	report, err := decodeScoreReport(data)
	if err != nil {
		return nil, &SubmissionError{
			Message:    fmt.Sprintf("The grading service returned an unreadable response: %v", err),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return report, nil
}

// rejectionMessage prefers the service's own explanation over the status text.
func rejectionMessage(status int, body []byte) string {
	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		if msg := strings.TrimSpace(er.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(er.Error); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("Submission rejected: %d %s", status, http.StatusText(status))
}

func decodeScoreReport(data []byte) (*ScoreReport, error) {
	var w scoreReportWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Scores == nil {
		return nil, fmt.Errorf("missing scores")
	}
	if w.RemainingTime == nil {
		return nil, fmt.Errorf("missing remainingTime")
	}
	return &ScoreReport{Scores: *w.Scores, RemainingTime: *w.RemainingTime}, nil
}
