// Package events carries domain events between the bounded contexts over an
// in-process bus. Publishers record facts such as a conversation closing or
// a lead qualifying; subscribers react without the modules importing each
// other.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event payload.
type Event interface {
	// EventName is the routing key handlers subscribe under,
	// e.g. "conversation.closed".
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent stamps the publication time. Domain events embed it.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to one kind of event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans published events out to their subscribed handlers.
type Bus interface {
	// Publish dispatches the event without waiting for handlers. Handler
	// failures are logged by the bus, never surfaced to the publisher.
	Publish(ctx context.Context, event Event)

	// Subscribe registers a handler for events whose EventName matches
	// eventName.
	Subscribe(eventName string, handler Handler)
}
