package tama

import (
	"fmt"

	"github.com/dshills/tama/internal/event"
)

// ListenerFunc subscribes Go handlers on the hub at startup.
type ListenerFunc func(hub *event.Hub) error

// Listener is a startup listener: a Lua file or a Go function.
type Listener struct {
	Path string
	Func ListenerFunc
}

// LuaListener returns a listener that runs the Lua file at path.
func LuaListener(path string) Listener {
	return Listener{Path: path}
}

// GoListener returns a listener that calls fn.
func GoListener(fn ListenerFunc) Listener {
	return Listener{Func: fn}
}

func (l Listener) String() string {
	if l.Func != nil {
		return "go listener"
	}
	return l.Path
}

func (t *Tama) runListeners(listeners []Listener) error {
	for _, l := range listeners {
		t.logger.Debug("running listener", "listener", l)

		var err error
		switch {
		case l.Func != nil:
			err = l.Func(t.hub)
		case l.Path != "":
			err = t.loader.Exec(l.Path)
		default:
			err = ErrEmptyListener
		}
		if err != nil {
			return fmt.Errorf("event listener %s: %w", l, err)
		}
	}
	return nil
}
