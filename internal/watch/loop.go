package watch

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/tama/internal/logger"
)

// Source produces file events and errors.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
}

// Func handles a batch of changes. Errors are logged and the loop continues.
type Func func(ctx context.Context, batch []Event) error

// Loop debounces events from src and calls fn for each batch until ctx is
// done or src closes. Calls never overlap.
func Loop(ctx context.Context, src Source, delay time.Duration, fn Func, l *log.Logger) error {
	if l == nil {
		l = logger.Discard()
	}

	batches := Debounce(ctx, src.Events(), delay)
	errs := src.Errors()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case batch, ok := <-batches:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return nil
			}
			l.Info("files changed", "count", len(batch), "first", batch[0].Path)
			if err := fn(ctx, batch); err != nil {
				l.Error("rerun failed", "err", err)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			l.Warn("watch error", "err", err)
		}
	}
}

// Paths returns the paths of a batch.
func Paths(batch []Event) []string {
	out := make([]string, len(batch))
	for i, ev := range batch {
		out[i] = ev.Path
	}
	return out
}
