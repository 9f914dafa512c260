package plugin

import (
	"github.com/dshills/tama/internal/runner"
)

// Capability is a loaded module ready to add its tasks to a runner.
type Capability interface {
	RegisterInto(r *runner.Runner) error
}

// CapabilityFunc adapts a function to Capability.
type CapabilityFunc func(r *runner.Runner) error

// RegisterInto implements Capability.
func (f CapabilityFunc) RegisterInto(r *runner.Runner) error {
	return f(r)
}

// Factory turns a module file into a Capability.
type Factory func(path string) (Capability, error)
