package coordination

import (
	"sync"

	"github.com/gammazero/deque"
)

// Mutex is a binary exclusive lock with FIFO-fair waiter admission: callers
// blocked in Lock acquire strictly in the order they arrived, however many
// contend. This is the guarantee sync.Mutex does not document, which is why
// the waiter list is explicit.
//
// Unlike sync.Mutex, Unlock reports misuse instead of panicking: unlocking
// a mutex that is not held returns ErrNotLocked.
type Mutex struct {
	mu      sync.Mutex
	locked  bool
	waiters deque.Deque[chan struct{}]
}

// NewMutex creates an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Lock acquires the mutex, blocking behind earlier arrivals while it is
// held.
func (m *Mutex) Lock() {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return
	}

	waiter := make(chan struct{})
	m.waiters.PushBack(waiter)
	m.mu.Unlock()

	// Ownership arrives via the channel close; locked stayed true the
	// whole time.
	<-waiter
}

// Unlock releases the mutex. When waiters are queued, ownership transfers
// directly to the oldest one and the mutex is never observably unlocked in
// between. Returns ErrNotLocked when the mutex is not held.
func (m *Mutex) Unlock() error {
	m.mu.Lock()
	if !m.locked {
		m.mu.Unlock()
		return ErrNotLocked
	}

	if m.waiters.Len() > 0 {
		waiter := m.waiters.PopFront()
		m.mu.Unlock()
		close(waiter)
		return nil
	}

	m.locked = false
	m.mu.Unlock()
	return nil
}

// Locked reports whether the mutex is currently held.
func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}
