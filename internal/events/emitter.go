// Package events carries committed engine events to external collaborators.
// Delivery is one-way and fire-and-forget: the engine never blocks on or
// depends on a subscriber.
package events

import (
	"context"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/pkg/logger"
)

// Subscriber consumes domain events. Implementations must tolerate
// at-most-once delivery.
type Subscriber interface {
	Notify(ctx context.Context, event domain.PostulationEvent)
}

// Emitter fans each event out to every subscriber on its own goroutine.
type Emitter struct {
	subscribers []Subscriber
}

// NewEmitter creates an emitter over a fixed subscriber set.
func NewEmitter(subscribers ...Subscriber) *Emitter {
	return &Emitter{subscribers: subscribers}
}

// Publish dispatches the event and returns immediately. The request context
// is detached so an already-answered HTTP request does not cancel delivery.
func (e *Emitter) Publish(ctx context.Context, event domain.PostulationEvent) {
	detached := context.WithoutCancel(ctx)
	for _, sub := range e.subscribers {
		go func(s Subscriber) {
			defer func() {
				if r := recover(); r != nil {
					logger.Log.Error("event subscriber panicked",
						"event_type", event.Type,
						"postulation_id", event.PostulationID,
						"panic", r)
				}
			}()
			s.Notify(detached, event)
		}(sub)
	}
}

var _ domain.EventPublisher = (*Emitter)(nil)
