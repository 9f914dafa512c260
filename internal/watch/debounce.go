package watch

import (
	"context"
	"sort"
	"time"
)

// DefaultDelay is the quiet period that ends a batch.
const DefaultDelay = 100 * time.Millisecond

// Debounce groups events from in into batches. A batch is sent once no event
// has arrived for delay. Events for the same path within a batch are merged.
// Batches are sorted by path. The returned channel is closed when ctx is done
// or in is closed; pending events are flushed when in closes.
func Debounce(ctx context.Context, in <-chan Event, delay time.Duration) <-chan []Event {
	if delay <= 0 {
		delay = DefaultDelay
	}
	out := make(chan []Event)

	go func() {
		defer close(out)

		pending := make(map[string]*Event)
		timer := time.NewTimer(delay)
		timer.Stop()
		defer timer.Stop()

		send := func() bool {
			if len(pending) == 0 {
				return true
			}
			batch := make([]Event, 0, len(pending))
			for _, ev := range pending {
				batch = append(batch, *ev)
			}
			sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
			pending = make(map[string]*Event)

			select {
			case out <- batch:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-in:
				if !ok {
					send()
					return
				}
				if p, exists := pending[ev.Path]; exists {
					p.Op |= ev.Op
					p.Time = ev.Time
				} else {
					e := ev
					pending[ev.Path] = &e
				}
				timer.Reset(delay)

			case <-timer.C:
				if !send() {
					return
				}
			}
		}
	}()

	return out
}
