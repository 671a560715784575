package coordination

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestQueueProducerConsumerStress pushes a few thousand items through a
// small queue under real goroutine contention: every item enqueued must
// come out exactly once, and the buffer must never exceed capacity.
func TestQueueProducerConsumerStress(t *testing.T) {
	const (
		capacity  = 8
		producers = 4
		consumers = 4
		perProd   = 500
	)

	queue, err := NewBoundedQueue[int](capacity)
	require.NoError(t, err)

	var produced, consumed atomic.Int64

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		g.Go(func() error {
			for i := 0; i < perProd; i++ {
				for queue.Enqueue(1) != nil {
					time.Sleep(time.Microsecond)
				}
				produced.Add(1)
			}
			return nil
		})
	}
	for c := 0; c < consumers; c++ {
		g.Go(func() error {
			for consumed.Load() < producers*perProd {
				batch := queue.DequeueBatch(4)
				if len(batch) == 0 {
					time.Sleep(time.Microsecond)
					continue
				}
				consumed.Add(int64(len(batch)))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(producers*perProd), produced.Load())
	assert.Equal(t, int64(producers*perProd), consumed.Load(),
		"every item must come out exactly once")
	assert.True(t, queue.IsEmpty())
}

// TestSemaphoreBoundsConcurrency asserts the permit count actually caps
// concurrent holders under contention.
func TestSemaphoreBoundsConcurrency(t *testing.T) {
	const permits = 3
	sem, err := NewSemaphore(permits)
	require.NoError(t, err)

	var inFlight, peak atomic.Int64
	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			sem.Acquire()
			now := inFlight.Add(1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			sem.Release()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.LessOrEqual(t, peak.Load(), int64(permits))
	assert.Equal(t, permits, sem.Available())
}

// TestMutexSerializesUnderContention increments a plain int from many
// goroutines; any lost update means exclusion failed.
func TestMutexSerializesUnderContention(t *testing.T) {
	mu := NewMutex()
	counter := 0

	const goroutines, increments = 8, 1000
	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			for j := 0; j < increments; j++ {
				mu.Lock()
				counter++
				if err := mu.Unlock(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, goroutines*increments, counter)
	assert.False(t, mu.Locked())
}
