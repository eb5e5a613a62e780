// Package eventbus carries status events from flow workers to subscribers.
package eventbus

import (
	"cabal-assist/core/event"
	"cabal-assist/core/state"
)

// EventBus is the interface for the event bus.
type EventBus interface {
	// Publish publishes an event to all subscribers.
	// This method never blocks; events are dropped when the buffer is full.
	Publish(e event.Event)

	// Subscribe subscribes to all events.
	// Returns a subscription ID that can be used to unsubscribe.
	Subscribe(handler EventHandler) string

	// SubscribeFlow subscribes to events from one flow.
	// Only events implementing FlowEvent with a matching kind are delivered.
	SubscribeFlow(kind state.FlowKind, handler EventHandler) string

	// Unsubscribe removes a subscription by its ID.
	Unsubscribe(subscriptionID string)

	// Close drains pending events and stops dispatching.
	// After Close is called, Publish will be a no-op.
	Close()
}

// EventHandler is a function that handles an event.
type EventHandler func(e event.Event)
