package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds all runner configuration.
type Config struct {
	Exam    ExamConfig    `yaml:"exam"`
	API     APIConfig     `yaml:"api"`
	Engine  EngineConfig  `yaml:"engine"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ExamConfig locates the exam workspace on disk.
type ExamConfig struct {
	Root        string `yaml:"root"`
	SessionFile string `yaml:"session_file"` // relative to Root unless absolute
	TestsDir    string `yaml:"tests_dir"`
	AnswersDir  string `yaml:"answers_dir"`
}

type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	SubmitPath string        `yaml:"submit_path"` // {exam_id} is substituted
	Timeout    time.Duration `yaml:"timeout"`     // 0 disables the client timeout
	UserAgent  string        `yaml:"user_agent"`
}

type EngineConfig struct {
	Name    string        `yaml:"name"`    // test engine from the runtime registry
	Backend string        `yaml:"backend"` // "local" (default) or "docker"
	Python  string        `yaml:"python"`  // interpreter for the local backend
	Timeout time.Duration `yaml:"timeout"` // 0 disables the suite timeout
	Image   string        `yaml:"image"`   // overrides the engine image for the docker backend
	Limits  Limits        `yaml:"limits"`
	Seccomp bool          `yaml:"seccomp"` // docker backend: apply the pytest syscall filter
}

// Limits bound a containerized suite run.
type Limits struct {
	CPUShares int64 `yaml:"cpu_shares"`
	MemoryMB  int64 `yaml:"memory_mb"`
	PidsLimit int64 `yaml:"pids_limit"`
	DiskMB    int64 `yaml:"disk_mb"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // node-exporter textfile path; empty disables
}

type TracingConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"` // spans are appended here as JSON
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path comes from CLI flag or hardcoded default
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Exam: ExamConfig{
			Root:        ".",
			SessionFile: ".exam-data",
			TestsDir:    "tests",
			AnswersDir:  "answers",
		},
		API: APIConfig{
			BaseURL:    "http://localhost:8080",
			SubmitPath: "/exams/{exam_id}/submissions",
			UserAgent:  "exam-runner",
		},
		Engine: EngineConfig{
			Name:    "pytest",
			Backend: "local",
			Python:  "python3",
			Seccomp: true,
			Limits: Limits{
				CPUShares: 1024,
				MemoryMB:  512,
				PidsLimit: 64,
				DiskMB:    100,
			},
		},
		Tracing: TracingConfig{
			File: "exam-runner-traces.json",
		},
	}
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv() {
	if u := os.Getenv("EXAM_API_URL"); u != "" {
		c.API.BaseURL = u
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Exam.Root == "" {
		return fmt.Errorf("exam.root must not be empty")
	}
	if c.Exam.SessionFile == "" {
		return fmt.Errorf("exam.session_file must not be empty")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if !strings.HasPrefix(c.API.SubmitPath, "/") {
		return fmt.Errorf("api.submit_path must start with /, got %q", c.API.SubmitPath)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be >= 0, got %s", c.API.Timeout)
	}
	if c.Engine.Timeout < 0 {
		return fmt.Errorf("engine.timeout must be >= 0, got %s", c.Engine.Timeout)
	}
	if _, err := shlex.Split(c.Engine.Python); err != nil {
		return fmt.Errorf("engine.python %q: %w", c.Engine.Python, err)
	}
	switch c.Engine.Backend {
	case "local", "docker":
	default:
		return fmt.Errorf("engine.backend must be local or docker, got %q", c.Engine.Backend)
	}
	if c.Engine.Backend == "docker" {
		if strings.TrimSpace(c.Engine.Image) == "" {
			return fmt.Errorf("engine.image is required for the docker backend: the container has no network, so the image must already provide pytest and pytest-json-report")
		}
		l := c.Engine.Limits
		if l.MemoryMB < 16 {
			return fmt.Errorf("engine.limits.memory_mb must be >= 16")
		}
		if l.CPUShares < 2 || l.PidsLimit < 5 || l.DiskMB < 1 {
			return fmt.Errorf("engine.limits: cpu_shares >= 2, pids_limit >= 5 and disk_mb >= 1 are required")
		}
	}
	if c.Tracing.Enabled && c.Tracing.File == "" {
		return fmt.Errorf("tracing.file must be set when tracing is enabled")
	}
	if strings.HasPrefix(c.API.BaseURL, "http://") && !isLoopback(u.Hostname()) {
		log.Warn().Str("base_url", c.API.BaseURL).Msg("api.base_url is plain http; the exam token is sent unencrypted")
	}
	return nil
}

// SessionPath resolves the session file against the exam root.
func (c *Config) SessionPath() string {
	if filepath.IsAbs(c.Exam.SessionFile) {
		return c.Exam.SessionFile
	}
	return filepath.Join(c.Exam.Root, c.Exam.SessionFile)
}

// SubmitURL returns the submission endpoint for an exam.
func (c *Config) SubmitURL(examID string) string {
	path := strings.ReplaceAll(c.API.SubmitPath, "{exam_id}", url.PathEscape(examID))
	return strings.TrimRight(c.API.BaseURL, "/") + path
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
