package suite

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"exam-runner/internal/console"
	"exam-runner/internal/runtime"
	"exam-runner/pkg/seccomp"
)

const (
	containerExamDir   = "/exam"
	containerReportDir = "/report"
)

// DockerRunner runs the test engine inside a throwaway container with the exam
// root mounted read-only and networking disabled.
type DockerRunner struct {
	rt         runtime.Runtime
	root       string // absolute
	image      string
	limits     ResourceLimits
	timeout    time.Duration
	console    *console.Console
	dockerHost string // resolved DOCKER_HOST (e.g. from Docker context)
	seccomp    bool   // apply seccomp.PytestProfile instead of Docker's default
}

func NewDockerRunner(rt runtime.Runtime, root, image string, limits ResourceLimits, timeout time.Duration, out *console.Console) (*DockerRunner, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving exam root: %w", err)
	}
	if limits == (ResourceLimits{}) {
		limits = DefaultLimits()
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if image == "" {
		image = rt.Image()
	}
	return &DockerRunner{
		rt:         rt,
		root:       absRoot,
		image:      image,
		limits:     limits,
		timeout:    timeout,
		console:    out,
		dockerHost: resolveDockerHost(),
	}, nil
}

// resolveDockerHost figures out the Docker socket. On macOS, Docker Desktop uses
// a context-specific socket that child processes don't inherit.
func resolveDockerHost() string {
	if h := os.Getenv("DOCKER_HOST"); h != "" {
		return h
	}

	out, err := exec.Command("docker", "context", "inspect", "--format", "{{.Endpoints.docker.Host}}").Output()
	if err == nil {
		host := strings.TrimSpace(string(out))
		if host != "" {
			log.Debug().Str("docker_host", host).Msg("resolved Docker host from context")
			return host
		}
	}

	return ""
}

func (d *DockerRunner) Run(ctx context.Context, req Request) (*Report, error) {
	logger := runLogger(req.RunID, d.rt, "docker", req.TestPath)

	if req.TestPath == "" || filepath.IsAbs(req.TestPath) {
		return nil, &ExecutionError{RunID: req.RunID, Op: "validate", Err: ErrInvalidRequest}
	}

	reportDir, err := os.MkdirTemp("", "exam-report-*")
	if err != nil {
		return nil, &ExecutionError{RunID: req.RunID, Op: "create_temp_dir", Err: err}
	}
	defer os.RemoveAll(reportDir)

	var profilePath string
	if d.seccomp {
		profilePath, err = seccomp.WriteTemp(seccomp.PytestProfile())
		if err != nil {
			return nil, &ExecutionError{RunID: req.RunID, Op: "write_seccomp_profile", Err: err}
		}
		defer os.Remove(profilePath)
	}

	var env []string
	if d.dockerHost != "" {
		env = []string{"DOCKER_HOST=" + d.dockerHost}
	}

	return runEngine(ctx, engineRun{
		runID:      req.RunID,
		args:       append([]string{"docker"}, d.buildDockerArgs(req.RunID, req.TestPath, reportDir, profilePath)...),
		env:        env,
		reportPath: filepath.Join(reportDir, "report.json"),
		timeout:    d.timeout,
		console:    d.console,
		logger:     logger,
	})
}

// buildDockerArgs assembles the docker run command line. An empty profilePath
// leaves Docker's default seccomp profile in place.
func (d *DockerRunner) buildDockerArgs(runID, testPath, hostReportDir, profilePath string) []string {
	args := []string{
		"run", "--rm",
		"--name", "exam-runner-" + runID,
		"--network", "none",
		"--cap-drop", "ALL",
		"--security-opt", "no-new-privileges",
		"--read-only",
		"--user", fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
		"-v", fmt.Sprintf("%s:%s:ro", d.root, containerExamDir),
		"-v", fmt.Sprintf("%s:%s:rw", hostReportDir, containerReportDir),
		"-w", containerExamDir,
		"-e", "HOME=/tmp",
		"-e", "LANG=C.UTF-8",
		"-e", "PYTHONDONTWRITEBYTECODE=1",
	}
	if profilePath != "" {
		args = append(args, "--security-opt", "seccomp="+profilePath)
	}
	args = append(args, d.limits.DockerFlags()...)

	args = append(args, d.image)
	args = append(args, d.rt.Command("python", filepath.ToSlash(testPath), containerReportDir+"/report.json")...)

	return args
}
