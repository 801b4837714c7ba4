// Package event defines domain events and the bus they are published on.
package event

import (
	"context"
	"time"
)

// DomainEvent represents a domain event
type DomainEvent interface {
	// EventType returns the event type, used as the bus routing key
	EventType() string

	// AggregateID returns the aggregate ID
	AggregateID() string

	// OccurredAt returns the time when the event occurred
	OccurredAt() time.Time

	// ActorID returns the subject that caused the event
	ActorID() string
}

// Bus is an interface for publishing events
type Bus interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// BaseEvent carries the envelope fields every event has.
// Fields are exported so concrete events marshal as flat JSON.
type BaseEvent struct {
	Type      string    `json:"type"`
	Aggregate string    `json:"aggregateId"`
	At        time.Time `json:"occurredAt"`
	Actor     string    `json:"actorId,omitempty"`
}

// NewBaseEvent создает базовое событие
func NewBaseEvent(eventType, aggregateID, actorID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Aggregate: aggregateID,
		At:        at.UTC(),
		Actor:     actorID,
	}
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time { return e.At }
func (e BaseEvent) ActorID() string       { return e.Actor }
