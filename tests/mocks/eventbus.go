package mocks

import (
	"context"
	"sync"

	"github.com/lllypuk/styx/internal/domain/event"
)

// EventBus records published events and can be told to fail
type EventBus struct {
	mu         sync.RWMutex
	published  []event.DomainEvent
	PublishErr error
}

// NewEventBus creates a new mock event bus
func NewEventBus() *EventBus {
	return &EventBus{published: []event.DomainEvent{}}
}

func (b *EventBus) Publish(_ context.Context, evt event.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PublishErr != nil {
		return b.PublishErr
	}
	b.published = append(b.published, evt)
	return nil
}

// PublishedEvents returns all published events
func (b *EventBus) PublishedEvents() []event.DomainEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]event.DomainEvent{}, b.published...)
}
