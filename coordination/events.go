package coordination

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// QueueEventType identifies the queue lifecycle transitions observers can
// subscribe to.
type QueueEventType int

const (
	EventEnqueued QueueEventType = iota
	EventDequeued
	EventDraining
	EventDrained
)

func (t QueueEventType) String() string {
	switch t {
	case EventEnqueued:
		return "enqueued"
	case EventDequeued:
		return "dequeued"
	case EventDraining:
		return "draining"
	case EventDrained:
		return "drained"
	default:
		return "unknown"
	}
}

// QueueEvent describes a single queue transition. Items holds the item that
// was enqueued, or the batch that was dequeued; it is nil for draining and
// drained events.
type QueueEvent[T any] struct {
	Type      QueueEventType
	Items     []T
	Timestamp time.Time
}

// QueueListener receives queue events synchronously on the goroutine that
// performed the transition. Listeners must not block.
type QueueListener[T any] func(QueueEvent[T])

type registration[T any] struct {
	token string
	fn    QueueListener[T]
}

// listenerSet fans queue events out to registered listeners in registration
// order. emit iterates a snapshot of the slice taken under RLock, so remove
// must replace the slice rather than splice the shared backing array.
type listenerSet[T any] struct {
	mu        sync.RWMutex
	listeners []registration[T]
}

// add registers a listener and returns its removal token.
func (s *listenerSet[T]) add(fn QueueListener[T]) string {
	token := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, registration[T]{token: token, fn: fn})
	return token
}

// remove deregisters the listener identified by token. Unknown tokens are
// ignored.
func (s *listenerSet[T]) remove(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, reg := range s.listeners {
		if reg.token == token {
			// Copy rather than splice in place: emit may be iterating a
			// snapshot that shares the old backing array.
			updated := make([]registration[T], 0, len(s.listeners)-1)
			updated = append(updated, s.listeners[:i]...)
			updated = append(updated, s.listeners[i+1:]...)
			s.listeners = updated
			return
		}
	}
}

// emit delivers an event to every listener. Called outside the queue's
// state lock so listeners may call back into the queue.
func (s *listenerSet[T]) emit(eventType QueueEventType, items []T) {
	s.mu.RLock()
	regs := s.listeners
	s.mu.RUnlock()

	if len(regs) == 0 {
		return
	}

	event := QueueEvent[T]{
		Type:      eventType,
		Items:     items,
		Timestamp: time.Now(),
	}
	for _, reg := range regs {
		reg.fn(event)
	}
}
