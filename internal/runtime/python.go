package runtime

import (
	"github.com/google/shlex"
)

const defaultInterpreter = "python3"

// PytestRuntime runs a test file under pytest with the pytest-json-report plugin.
type PytestRuntime struct{}

func (p *PytestRuntime) Name() string { return "pytest" }

// Image is the stock interpreter image, without pytest-json-report.
func (p *PytestRuntime) Image() string { return "docker.io/library/python:3.12-slim" }

// Command runs pytest through interpreter, which may carry its own arguments
// (e.g. "uv run python").
func (p *PytestRuntime) Command(interpreter, testPath, reportPath string) []string {
	argv := InterpreterArgs(interpreter)
	return append(argv,
		"-B", // Don't write .pyc files next to the answers
		"-m", "pytest",
		testPath,
		"-q",
		"-p", "no:cacheprovider",
		"--json-report",
		"--json-report-file="+reportPath,
	)
}

func (p *PytestRuntime) FileExtension() string { return ".py" }

// InterpreterArgs splits an interpreter setting with shell quoting rules. An
// empty or unparsable value yields the default interpreter.
func InterpreterArgs(interpreter string) []string {
	argv, err := shlex.Split(interpreter)
	if err != nil || len(argv) == 0 {
		return []string{defaultInterpreter}
	}
	return argv
}
