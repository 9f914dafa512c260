package api

import "errors"

var (
	// ErrTaskReturnedFalse is returned when a Lua task function returns false.
	ErrTaskReturnedFalse = errors.New("task returned false")

	// ErrNoEventHub is raised by on() when the module has no event hub.
	ErrNoEventHub = errors.New("events are not available in this context")
)
