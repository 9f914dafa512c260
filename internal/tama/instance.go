package tama

import (
	"sync"

	"github.com/dshills/tama/internal/config"
)

var (
	instanceMu sync.Mutex
	instance   *Tama
)

// Instance returns the process-wide instance, creating it with New on the
// first successful call. Later calls return it unchanged and ignore their
// arguments.
func Instance(cfg *config.Config, opts ...Option) (*Tama, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		return instance, nil
	}
	t, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	instance = t
	return instance, nil
}
