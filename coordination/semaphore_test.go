package coordination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForSemaphoreWaiters blocks until n callers are parked in Acquire.
func waitForSemaphoreWaiters(t *testing.T, s *Semaphore, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		parked := s.waiters.Len()
		s.mu.Unlock()
		if parked >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d parked acquirers", n)
}

func TestSemaphoreInvalidPermits(t *testing.T) {
	for _, permits := range []int{0, -3} {
		_, err := NewSemaphore(permits)
		assert.ErrorIs(t, err, ErrInvalidPermits, "permits %d", permits)
	}
}

func TestSemaphoreAcquireRelease(t *testing.T) {
	sem, err := NewSemaphore(1)
	require.NoError(t, err)

	sem.Acquire()
	assert.Equal(t, 0, sem.Available())
	assert.False(t, sem.TryAcquire(), "exhausted pool must refuse without side effects")

	sem.Release()
	assert.True(t, sem.TryAcquire())
	assert.Equal(t, 0, sem.Available())
}

func TestSemaphoreBlockedAcquireHandoff(t *testing.T) {
	sem, err := NewSemaphore(2)
	require.NoError(t, err)

	sem.Acquire()
	sem.Acquire()
	assert.Equal(t, 0, sem.Available())

	granted := make(chan struct{})
	go func() {
		sem.Acquire()
		close(granted)
	}()

	waitForSemaphoreWaiters(t, sem, 1)
	select {
	case <-granted:
		t.Fatal("third acquire resolved with no permits available")
	default:
	}
	assert.False(t, sem.TryAcquire(), "TryAcquire must not succeed while acquirers are parked")

	// The freed permit goes to the waiter, not the counter.
	sem.Release()
	select {
	case <-granted:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked acquire never resolved after release")
	}
	assert.Equal(t, 0, sem.Available())
}

func TestSemaphoreFIFOGrants(t *testing.T) {
	sem, err := NewSemaphore(1)
	require.NoError(t, err)
	sem.Acquire()

	const waiters = 5
	order := make(chan int, waiters)
	for i := 0; i < waiters; i++ {
		i := i
		go func() {
			sem.Acquire()
			order <- i
		}()
		waitForSemaphoreWaiters(t, sem, i+1)
	}

	for want := 0; want < waiters; want++ {
		sem.Release()
		select {
		case got := <-order:
			assert.Equal(t, want, got, "grant %d", want)
		case <-time.After(2 * time.Second):
			t.Fatalf("waiter %d never granted", want)
		}
	}
}

func TestSemaphoreElasticRelease(t *testing.T) {
	sem, err := NewSemaphore(2)
	require.NoError(t, err)

	// Releasing without a matching acquire widens the pool past the
	// construction value.
	sem.Release()
	sem.Release()
	assert.Equal(t, 4, sem.Available())

	for i := 0; i < 4; i++ {
		assert.True(t, sem.TryAcquire())
	}
	assert.False(t, sem.TryAcquire())
}
