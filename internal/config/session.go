package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSessionMissing is returned when the exam session file cannot be read.
var ErrSessionMissing = errors.New("exam session not found")

// Session identifies the student's enrolled exam. It is written by the
// enrollment step and only read here.
type Session struct {
	ExamID string `json:"exam_id"`
	Token  string `json:"token"`
}

// LoadSession reads the session file once at the start of a run.
func LoadSession(path string) (Session, error) {
	var s Session

	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path comes from config
	if err != nil {
		return s, fmt.Errorf("%w: %s: %w", ErrSessionMissing, path, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: parsing %s: %w", ErrSessionMissing, path, err)
	}
	return s, nil
}

// Expiry returns the token's exp claim when the token is a JWT. The signature
// is not checked here; the grading service does that.
func (s Session) Expiry() (time.Time, bool) {
	tok, _, err := jwt.NewParser().ParseUnverified(s.Token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
