package runtime

import (
	"fmt"
	"sort"
	"strings"
)

// Runtime defines how to run a question's test suite with a specific test engine.
type Runtime interface {
	// Name returns the engine identifier (e.g., "pytest").
	Name() string

	// Image returns a base image for the engine. It does not carry report
	// plugins, so container backends are configured with their own image.
	Image() string

	// Command returns the command and args that execute testPath with the given
	// interpreter and write a machine-readable report to reportPath.
	Command(interpreter, testPath, reportPath string) []string

	// FileExtension returns the extension of test and answer files (e.g., ".py").
	FileExtension() string
}

// Registry maps engine names to their Runtime implementations.
type Registry struct {
	runtimes map[string]Runtime
}

// NewRegistry creates a registry with all supported engines.
func NewRegistry() *Registry {
	r := &Registry{
		runtimes: make(map[string]Runtime),
	}
	r.Register(&PytestRuntime{})
	return r
}

// Register adds a runtime to the registry.
func (r *Registry) Register(rt Runtime) {
	r.runtimes[rt.Name()] = rt
}

// Get returns the runtime for the given engine.
func (r *Registry) Get(name string) (Runtime, error) {
	rt, ok := r.runtimes[name]
	if !ok {
		return nil, fmt.Errorf("unsupported test engine: %q (supported: %s)", name, strings.Join(r.Names(), ", "))
	}
	return rt, nil
}

// Names returns all registered engine names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.runtimes))
	for name := range r.runtimes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
