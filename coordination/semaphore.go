package coordination

import (
	"sync"

	"github.com/gammazero/deque"
)

// Semaphore is a counting permit pool. Acquire blocks when no permits are
// available; Release hands the permit directly to the oldest blocked
// acquirer when one exists, so a freed permit can never be stolen by a
// later arrival.
//
// Release with no waiters increments the pool with no upper bound: permits
// can grow past the value passed at construction. Callers that release
// without a matching acquire widen the pool deliberately.
type Semaphore struct {
	mu      sync.Mutex
	permits int
	waiters deque.Deque[chan struct{}]
}

// NewSemaphore creates a semaphore with the given initial permit count.
func NewSemaphore(permits int) (*Semaphore, error) {
	if permits <= 0 {
		return nil, ErrInvalidPermits
	}
	return &Semaphore{permits: permits}, nil
}

// Acquire takes a permit, blocking behind earlier arrivals while the pool
// is exhausted.
func (s *Semaphore) Acquire() {
	s.mu.Lock()
	if s.permits > 0 {
		s.permits--
		s.mu.Unlock()
		return
	}

	waiter := make(chan struct{})
	s.waiters.PushBack(waiter)
	s.mu.Unlock()

	<-waiter
}

// TryAcquire takes a permit when one is available and reports whether it
// did. It never blocks and has no effect on failure.
func (s *Semaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permits > 0 {
		s.permits--
		return true
	}
	return false
}

// Release returns a permit. When acquirers are blocked, the permit
// transfers to the oldest one without ever being banked in the counter.
func (s *Semaphore) Release() {
	s.mu.Lock()
	if s.waiters.Len() > 0 {
		waiter := s.waiters.PopFront()
		s.mu.Unlock()
		close(waiter)
		return
	}

	s.permits++
	s.mu.Unlock()
}

// Available returns the number of permits currently available. Blocked
// acquirers do not reduce the count below zero.
func (s *Semaphore) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permits
}
