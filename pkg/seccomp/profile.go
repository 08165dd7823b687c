// Package seccomp builds the syscall filter applied to containerized test runs.
// Profiles are runtime-spec LinuxSeccomp values, which marshal to the JSON
// format accepted by `docker run --security-opt seccomp=<file>`.
package seccomp

import (
	"encoding/json"
	"fmt"
	"os"

	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Builder accumulates syscall rules on top of a deny-by-default profile.
type Builder struct {
	profile *specs.LinuxSeccomp
}

func NewBuilder() *Builder {
	return &Builder{
		profile: &specs.LinuxSeccomp{
			DefaultAction: specs.ActErrno,
			Architectures: []specs.Arch{specs.ArchX86_64, specs.ArchAARCH64},
		},
	}
}

func (b *Builder) rule(action specs.LinuxSeccompAction, names []string) *Builder {
	if len(names) > 0 {
		b.profile.Syscalls = append(b.profile.Syscalls, specs.LinuxSyscall{Names: names, Action: action})
	}
	return b
}

// Allow permits the named syscalls.
func (b *Builder) Allow(names ...string) *Builder { return b.rule(specs.ActAllow, names) }

// Deny makes the named syscalls fail with EPERM.
func (b *Builder) Deny(names ...string) *Builder { return b.rule(specs.ActErrno, names) }

// Kill terminates the process on any of the named syscalls.
func (b *Builder) Kill(names ...string) *Builder { return b.rule(specs.ActKillProcess, names) }

func (b *Builder) Build() *specs.LinuxSeccomp {
	return b.profile
}

// Allowed reports whether p explicitly allows name.
func Allowed(p *specs.LinuxSeccomp, name string) bool {
	return actionFor(p, name) == specs.ActAllow
}

func actionFor(p *specs.LinuxSeccomp, name string) specs.LinuxSeccompAction {
	for _, rule := range p.Syscalls {
		for _, n := range rule.Names {
			if n == name {
				return rule.Action
			}
		}
	}
	return p.DefaultAction
}

// WriteTemp writes p as JSON to a new temporary file and returns its path. The
// caller removes the file.
func WriteTemp(p *specs.LinuxSeccomp) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding seccomp profile: %w", err)
	}

	f, err := os.CreateTemp("", "exam-seccomp-*.json")
	if err != nil {
		return "", fmt.Errorf("creating seccomp profile: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing seccomp profile: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing seccomp profile: %w", err)
	}
	return f.Name(), nil
}
