// Package manifest loads the worker-set document consumed by
// "tetherctl up".
package manifest

import (
	"fmt"
	"sort"
)

// Manifest mirrors the tether.yaml document structure.
type Manifest struct {
	Version string             `yaml:"version"`
	Workers map[string]*Worker `yaml:"workers"`
}

// Worker declares a single process to launch through tether.
type Worker struct {
	Command []string          `yaml:"command"`
	Env     map[string]string `yaml:"env"`
	EnvFile string            `yaml:"envFile"`
	Workdir string            `yaml:"workdir"`
}

// Validate enforces document invariants.
func (m *Manifest) Validate() error {
	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if len(m.Workers) == 0 {
		return fmt.Errorf("at least one worker must be defined")
	}
	for name, w := range m.Workers {
		if w == nil {
			return fmt.Errorf("worker %q is null", name)
		}
		if len(w.Command) == 0 {
			return fmt.Errorf("worker %s requires a command", name)
		}
		if w.Command[0] == "" {
			return fmt.Errorf("worker %s has an empty command path", name)
		}
	}
	return nil
}

// WorkersSorted returns worker names sorted alphabetically.
func (m *Manifest) WorkersSorted() []string {
	out := make([]string, 0, len(m.Workers))
	for name := range m.Workers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
