package runtime

import (
	"strings"
	"testing"
)

func TestPytestRuntime_Name(t *testing.T) {
	p := &PytestRuntime{}
	if p.Name() != "pytest" {
		t.Errorf("Name() = %q, want %q", p.Name(), "pytest")
	}
}

func TestPytestRuntime_Command(t *testing.T) {
	p := &PytestRuntime{}
	cmd := p.Command("python3.12", "tests/test_03.py", "/tmp/report.json")

	if cmd[0] != "python3.12" {
		t.Errorf("Command()[0] = %q, want python3.12", cmd[0])
	}
	joined := strings.Join(cmd, " ")
	for _, want := range []string{"-m pytest", "tests/test_03.py", "--json-report", "--json-report-file=/tmp/report.json"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Command() = %v, missing %q", cmd, want)
		}
	}
}

func TestPytestRuntime_CommandDefaultInterpreter(t *testing.T) {
	p := &PytestRuntime{}
	if cmd := p.Command("", "t.py", "r.json"); cmd[0] != "python3" {
		t.Errorf("Command()[0] = %q, want python3", cmd[0])
	}
}

func TestPytestRuntime_CommandWrappedInterpreter(t *testing.T) {
	p := &PytestRuntime{}
	cmd := p.Command(`uv run --with "pytest-json-report" python`, "t.py", "r.json")

	want := []string{"uv", "run", "--with", "pytest-json-report", "python", "-B", "-m", "pytest"}
	for i, w := range want {
		if cmd[i] != w {
			t.Fatalf("Command() = %v, want prefix %v", cmd, want)
		}
	}
}

func TestInterpreterArgs(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "python3"},
		{"python3.11", "python3.11"},
		{"'/opt/my python/bin/python'", "/opt/my python/bin/python"},
		{`"unterminated`, "python3"},
	}
	for _, tt := range tests {
		if got := InterpreterArgs(tt.in); got[0] != tt.want {
			t.Errorf("InterpreterArgs(%q)[0] = %q, want %q", tt.in, got[0], tt.want)
		}
	}
}

func TestPytestRuntime_FileExtension(t *testing.T) {
	p := &PytestRuntime{}
	if p.FileExtension() != ".py" {
		t.Errorf("FileExtension() = %q, want %q", p.FileExtension(), ".py")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	rt, err := r.Get("pytest")
	if err != nil {
		t.Fatalf("Get(pytest) = %v", err)
	}
	if rt.Name() != "pytest" {
		t.Errorf("registered runtime name = %q, want %q", rt.Name(), "pytest")
	}

	if _, err := r.Get("mocha"); err == nil {
		t.Error("Get(mocha) should return error")
	} else if !strings.Contains(err.Error(), "pytest") {
		t.Errorf("error %q should list supported engines", err)
	}
}
