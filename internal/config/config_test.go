package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Exam.SessionFile != ".exam-data" {
		t.Errorf("Exam.SessionFile = %q, want .exam-data", cfg.Exam.SessionFile)
	}
	if cfg.Engine.Name != "pytest" {
		t.Errorf("Engine.Name = %q, want pytest", cfg.Engine.Name)
	}
	if cfg.Engine.Backend != "local" {
		t.Errorf("Engine.Backend = %q, want local", cfg.Engine.Backend)
	}
	if cfg.Engine.Timeout != 0 {
		t.Errorf("Engine.Timeout = %s, want 0 (disabled)", cfg.Engine.Timeout)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("API.Timeout = %s, want 0 (disabled)", cfg.API.Timeout)
	}
	if !cfg.Engine.Seccomp {
		t.Error("Engine.Seccomp should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty root", func(c *Config) { c.Exam.Root = "" }, true},
		{"empty session file", func(c *Config) { c.Exam.SessionFile = "" }, true},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://exam.example.com" }, true},
		{"base url without host", func(c *Config) { c.API.BaseURL = "https://" }, true},
		{"https base url", func(c *Config) { c.API.BaseURL = "https://exam.example.com" }, false},
		{"relative submit path", func(c *Config) { c.API.SubmitPath = "submit" }, true},
		{"negative api timeout", func(c *Config) { c.API.Timeout = -time.Second }, true},
		{"negative engine timeout", func(c *Config) { c.Engine.Timeout = -time.Second }, true},
		{"unknown backend", func(c *Config) { c.Engine.Backend = "containerd" }, true},
		{"docker backend", func(c *Config) {
			c.Engine.Backend = "docker"
			c.Engine.Image = "registry.example.edu/exam/pytest:3.12"
		}, false},
		{"tracing without file", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.File = ""
		}, true},
		{"tracing with default file", func(c *Config) { c.Tracing.Enabled = true }, false},
		{"docker backend without image", func(c *Config) { c.Engine.Backend = "docker" }, true},
		{"docker backend blank image", func(c *Config) {
			c.Engine.Backend = "docker"
			c.Engine.Image = "  "
		}, true},
		{"docker memory too small", func(c *Config) {
			c.Engine.Backend = "docker"
			c.Engine.Image = "registry.example.edu/exam/pytest:3.12"
			c.Engine.Limits.MemoryMB = 8
		}, true},
		{"docker pids too small", func(c *Config) {
			c.Engine.Backend = "docker"
			c.Engine.Image = "registry.example.edu/exam/pytest:3.12"
			c.Engine.Limits.PidsLimit = 1
		}, true},
		{"local ignores limits", func(c *Config) { c.Engine.Limits = Limits{} }, false},
		{"wrapped interpreter", func(c *Config) { c.Engine.Python = "uv run python" }, false},
		{"unterminated interpreter quote", func(c *Config) { c.Engine.Python = `"python3` }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
exam:
  root: /home/student/exam
api:
  base_url: https://grader.example.com
  timeout: 45s
engine:
  backend: docker
  image: registry.example.edu/exam/pytest:3.12
  timeout: 2m
  limits:
    memory_mb: 1024
metrics:
  textfile: /tmp/exam.prom
`
	path := filepath.Join(t.TempDir(), "exam-runner.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Exam.Root != "/home/student/exam" {
		t.Errorf("Exam.Root = %q", cfg.Exam.Root)
	}
	if cfg.Exam.TestsDir != "tests" {
		t.Errorf("Exam.TestsDir = %q, want default tests", cfg.Exam.TestsDir)
	}
	if cfg.API.Timeout != 45*time.Second {
		t.Errorf("API.Timeout = %s, want 45s", cfg.API.Timeout)
	}
	if cfg.Engine.Timeout != 2*time.Minute {
		t.Errorf("Engine.Timeout = %s, want 2m", cfg.Engine.Timeout)
	}
	if cfg.Engine.Limits.MemoryMB != 1024 {
		t.Errorf("Engine.Limits.MemoryMB = %d, want 1024", cfg.Engine.Limits.MemoryMB)
	}
	if cfg.Engine.Limits.PidsLimit != 64 {
		t.Errorf("Engine.Limits.PidsLimit = %d, want default 64", cfg.Engine.Limits.PidsLimit)
	}
	if cfg.Metrics.Textfile != "/tmp/exam.prom" {
		t.Errorf("Metrics.Textfile = %q", cfg.Metrics.Textfile)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exam-runner.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: https://a.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EXAM_API_URL", "https://b.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://b.example.com" {
		t.Errorf("API.BaseURL = %q, want env override", cfg.API.BaseURL)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestSessionPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exam.Root = "/exam"
	if got := cfg.SessionPath(); got != "/exam/.exam-data" {
		t.Errorf("SessionPath() = %q, want /exam/.exam-data", got)
	}

	cfg.Exam.SessionFile = "/var/lib/exam/session.json"
	if got := cfg.SessionPath(); got != "/var/lib/exam/session.json" {
		t.Errorf("SessionPath() = %q, want absolute path unchanged", got)
	}
}

func TestSubmitURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://grader.example.com/"

	want := "https://grader.example.com/exams/python-101/submissions"
	if got := cfg.SubmitURL("python-101"); got != want {
		t.Errorf("SubmitURL() = %q, want %q", got, want)
	}

	want = "https://grader.example.com/exams/a%2Fb/submissions"
	if got := cfg.SubmitURL("a/b"); got != want {
		t.Errorf("SubmitURL() = %q, want %q", got, want)
	}
}

func TestLoadSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".exam-data")
	if err := os.WriteFile(path, []byte(`{"exam_id": "ex-42", "token": "s3cret"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if s.ExamID != "ex-42" || s.Token != "s3cret" {
		t.Errorf("LoadSession() = %+v", s)
	}
}

func TestLoadSession_Missing(t *testing.T) {
	_, err := LoadSession(filepath.Join(t.TempDir(), ".exam-data"))
	if !errors.Is(err, ErrSessionMissing) {
		t.Errorf("LoadSession(missing) error = %v, want ErrSessionMissing", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadSession(missing) error = %v, want to wrap os.ErrNotExist", err)
	}
}

func TestLoadSession_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".exam-data")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSession(path); !errors.Is(err, ErrSessionMissing) {
		t.Errorf("LoadSession(malformed) error = %v, want ErrSessionMissing", err)
	}
}
