package eventbus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"cabal-assist/core/event"
	"cabal-assist/core/state"
)

// subscription represents a single event subscription.
type subscription struct {
	id      string
	handler EventHandler
	kind    state.FlowKind // Empty means subscribe to all events
}

// channelEventBus is a channel-based implementation of EventBus.
type channelEventBus struct {
	eventChan     chan event.Event
	subscriptions map[string]*subscription
	mu            sync.RWMutex
	closed        atomic.Bool
	wg            sync.WaitGroup
	nextID        atomic.Uint64
	dropped       atomic.Uint64
	logger        *slog.Logger
}

// New creates a new EventBus with the specified buffer size.
func New(bufferSize int) EventBus {
	return NewWithLogger(bufferSize, slog.Default())
}

// NewWithLogger creates a new EventBus that reports dropped events and
// handler panics to logger.
func NewWithLogger(bufferSize int, logger *slog.Logger) EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	bus := &channelEventBus{
		eventChan:     make(chan event.Event, bufferSize),
		subscriptions: make(map[string]*subscription),
		logger:        logger,
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

// Publish publishes an event to all subscribers.
func (b *channelEventBus) Publish(e event.Event) {
	if b.closed.Load() {
		return
	}

	defer func() {
		// Close may race with a late publisher.
		_ = recover()
	}()

	select {
	case b.eventChan <- e:
	default:
		n := b.dropped.Add(1)
		b.logger.Debug("Event dropped, buffer full", "event", e.EventName(), "dropped", n)
	}
}

// Subscribe subscribes to all events.
func (b *channelEventBus) Subscribe(handler EventHandler) string {
	return b.subscribe("", handler)
}

// SubscribeFlow subscribes to events from one flow.
func (b *channelEventBus) SubscribeFlow(kind state.FlowKind, handler EventHandler) string {
	return b.subscribe(kind, handler)
}

func (b *channelEventBus) subscribe(kind state.FlowKind, handler EventHandler) string {
	id := fmt.Sprintf("sub-%d", b.nextID.Add(1))

	b.mu.Lock()
	b.subscriptions[id] = &subscription{
		id:      id,
		handler: handler,
		kind:    kind,
	}
	b.mu.Unlock()

	return id
}

// Unsubscribe removes a subscription by its ID.
func (b *channelEventBus) Unsubscribe(subscriptionID string) {
	b.mu.Lock()
	delete(b.subscriptions, subscriptionID)
	b.mu.Unlock()
}

// Close shuts down the event bus.
func (b *channelEventBus) Close() {
	if b.closed.Swap(true) {
		return
	}

	close(b.eventChan)
	b.wg.Wait()
}

func (b *channelEventBus) dispatch() {
	defer b.wg.Done()

	for e := range b.eventChan {
		b.deliverEvent(e)
	}
}

// deliverEvent delivers an event to all matching subscribers.
func (b *channelEventBus) deliverEvent(e event.Event) {
	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	var kind state.FlowKind
	if fe, ok := e.(event.FlowEvent); ok {
		kind = fe.FlowKind()
	}

	for _, sub := range subs {
		if sub.kind != "" && sub.kind != kind {
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("Event handler panicked", "event", e.EventName(), "subscription", sub.id, "panic", r)
				}
			}()
			sub.handler(e)
		}()
	}
}
