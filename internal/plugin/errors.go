package plugin

import (
	"errors"
	"fmt"
)

// Plugin system errors.
var (
	// ErrUnsupportedModule is returned for files no factory handles.
	ErrUnsupportedModule = errors.New("unsupported module type")

	// ErrLoaderClosed is returned when loading after Close.
	ErrLoaderClosed = errors.New("plugin loader is closed")

	errNoRunner = errors.New("plugin loader has no runner")
)

// LoadError reports a module that failed to load.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func wrapLoad(path string, err error) error {
	if err == nil {
		return nil
	}
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{Path: path, Err: err}
}
