package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/spares/backend/internal/domain/shared"
	"github.com/stretchr/testify/require"
)

// EventSink subscribes to a fixed set of event types and keeps every event
// delivered to it, in arrival order.
type EventSink struct {
	types []string

	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewEventSink(eventTypes ...string) *EventSink {
	return &EventSink{types: eventTypes}
}

func (s *EventSink) EventTypes() []string { return s.types }

func (s *EventSink) Handle(_ context.Context, event shared.DomainEvent) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

// Events returns the delivered events of eventType, or all of them when
// eventType is empty.
func (s *EventSink) Events(eventType string) []shared.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if eventType == "" {
		return slices.Clone(s.events)
	}
	var out []shared.DomainEvent
	for _, e := range s.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Await blocks until n events of eventType arrived and returns the nth
func (s *EventSink) Await(t require.TestingT, eventType string, n int, within time.Duration) shared.DomainEvent {
	if h, ok := t.(helper); ok {
		h.Helper()
	}
	Eventually(t, within, func() bool { return len(s.Events(eventType)) >= n },
		"waiting for %d %s event(s)", n, eventType)
	got := s.Events(eventType)
	if len(got) < n {
		return nil
	}
	return got[n-1]
}
