package event

import (
	"runtime/debug"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dshills/tama/internal/logger"
)

// Event is delivered to handlers.
type Event struct {
	Kind    Kind
	Payload any
}

// Handler processes events.
type Handler interface {
	Handle(ev Event) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ev Event) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ev Event) error {
	return f(ev)
}

type subscription struct {
	id      string
	handler Handler
}

// Hub is a synchronous event bus keyed by Kind.
type Hub struct {
	mu     sync.RWMutex
	subs   map[Kind][]subscription
	logger *log.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Hub) {
		h.logger = logger.Component(l, "event")
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[Kind][]subscription),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers handler for kind and returns the subscription ID.
func (h *Hub) Subscribe(kind Kind, handler Handler) (string, error) {
	if handler == nil {
		return "", ErrNilHandler
	}
	id := uuid.NewString()

	h.mu.Lock()
	h.subs[kind] = append(h.subs[kind], subscription{id: id, handler: handler})
	h.mu.Unlock()

	h.logger.Debug("subscribed", "kind", kind, "id", id)
	return id, nil
}

// SubscribeFunc registers a handler function for kind.
func (h *Hub) SubscribeFunc(kind Kind, fn func(ev Event) error) (string, error) {
	if fn == nil {
		return "", ErrNilHandler
	}
	return h.Subscribe(kind, HandlerFunc(fn))
}

// Count returns the number of subscriptions for kind.
func (h *Hub) Count(kind Kind) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[kind])
}

// Publish delivers payload to every handler of kind in subscription order.
// The first handler error stops delivery and is returned as *HandlerError.
func (h *Hub) Publish(kind Kind, payload any) error {
	h.mu.RLock()
	subs := make([]subscription, len(h.subs[kind]))
	copy(subs, h.subs[kind])
	h.mu.RUnlock()

	h.logger.Debug("publish", "kind", kind, "listeners", len(subs))

	ev := Event{Kind: kind, Payload: payload}
	for _, sub := range subs {
		if err := deliver(sub.handler, ev); err != nil {
			return &HandlerError{SubscriptionID: sub.id, Kind: kind, Err: err}
		}
	}
	return nil
}

func deliver(handler Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return handler.Handle(ev)
}
