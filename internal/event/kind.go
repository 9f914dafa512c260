package event

import "fmt"

// Kind identifies a lifecycle event.
type Kind int

const (
	BeforeHooks Kind = iota
	BeforeInitConfig
	BeforeRegisterTask
	AfterRegisterTask
	BeforeLoadCustomTask
	BeforeLoadModuleTasks
	AfterInitialized
)

var kindNames = [...]string{
	BeforeHooks:           "beforeHooks",
	BeforeInitConfig:      "beforeInitConfig",
	BeforeRegisterTask:    "beforeRegisterTask",
	AfterRegisterTask:     "afterRegisterTask",
	BeforeLoadCustomTask:  "beforeLoadCustomTask",
	BeforeLoadModuleTasks: "beforeLoadModuleTasks",
	AfterInitialized:      "afterInitialized",
}

// String returns the event name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every event kind in lifecycle order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind maps an event name to its Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// RegisterPayload carries the arguments of a task registration call.
type RegisterPayload struct {
	Name        string
	Description string
	Fn          any
}
