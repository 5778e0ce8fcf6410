package events_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/internal/events"

	"github.com/stretchr/testify/assert"
)

type recordingSubscriber struct {
	mu       sync.Mutex
	received []domain.PostulationEvent
	done     chan struct{}
}

func newRecordingSubscriber(expected int) *recordingSubscriber {
	s := &recordingSubscriber{done: make(chan struct{})}
	go func() {
		for {
			s.mu.Lock()
			n := len(s.received)
			s.mu.Unlock()
			if n >= expected {
				close(s.done)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
	return s
}

func (s *recordingSubscriber) Notify(ctx context.Context, event domain.PostulationEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, event)
}

type panickingSubscriber struct{}

func (panickingSubscriber) Notify(ctx context.Context, event domain.PostulationEvent) {
	panic("subscriber blew up")
}

func TestEmitterDeliversToAllSubscribers(t *testing.T) {
	first := newRecordingSubscriber(1)
	second := newRecordingSubscriber(1)
	emitter := events.NewEmitter(first, second)

	event := domain.PostulationEvent{
		ID:            "evt-1",
		Type:          domain.EventPostulationCreated,
		PostulationID: 7,
	}
	emitter.Publish(context.Background(), event)

	for _, s := range []*recordingSubscriber{first, second} {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber never received the event")
		}
		s.mu.Lock()
		assert.Equal(t, event.ID, s.received[0].ID)
		s.mu.Unlock()
	}
}

func TestEmitterSurvivesPanickingSubscriber(t *testing.T) {
	healthy := newRecordingSubscriber(1)
	emitter := events.NewEmitter(panickingSubscriber{}, healthy)

	emitter.Publish(context.Background(), domain.PostulationEvent{
		ID:   "evt-2",
		Type: domain.EventPostulationStateChanged,
	})

	select {
	case <-healthy.done:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy subscriber starved by a panicking peer")
	}
}

func TestEmitterDetachesFromRequestContext(t *testing.T) {
	slow := newRecordingSubscriber(1)
	emitter := events.NewEmitter(slow)

	ctx, cancel := context.WithCancel(context.Background())
	emitter.Publish(ctx, domain.PostulationEvent{ID: "evt-3"})
	cancel() // the request is done; delivery must still complete

	select {
	case <-slow.done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery was cancelled with the request context")
	}
}
