package coordination

import (
	"sync"

	"github.com/gammazero/deque"

	"squadsync/log"
)

// BoundedQueue is a FIFO buffer of fixed capacity with blocking dequeue and
// non-blocking batch drain. Enqueue never blocks: when the buffer is full
// and nobody is waiting, it reports backpressure to the producer instead.
//
// Blocked dequeuers are tracked in an explicit FIFO so they are satisfied
// strictly in the order they began waiting. When a producer arrives while a
// dequeuer is parked, the item is handed directly to the oldest waiter and
// never touches the buffer.
type BoundedQueue[T any] struct {
	mu           sync.Mutex
	buffer       deque.Deque[T]
	capacity     int
	waiters      deque.Deque[chan T]
	shuttingDown bool

	listeners listenerSet[T]
}

// NewBoundedQueue creates a queue holding at most capacity items.
func NewBoundedQueue[T any](capacity int) (*BoundedQueue[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &BoundedQueue[T]{capacity: capacity}, nil
}

// Enqueue inserts item at the tail of the queue.
//
// It returns ErrQueueShuttingDown once Drain has begun, and ErrQueueFull
// when the buffer is at capacity with no dequeuer waiting to absorb the
// item. Both are recoverable: the producer decides whether to retry, shed,
// or propagate.
func (q *BoundedQueue[T]) Enqueue(item T) error {
	q.mu.Lock()
	if q.shuttingDown {
		q.mu.Unlock()
		return ErrQueueShuttingDown
	}

	// A parked dequeuer takes priority over the buffer, even at capacity:
	// the item passes straight through without being stored.
	if q.waiters.Len() > 0 {
		waiter := q.waiters.PopFront()
		q.mu.Unlock()
		waiter <- item
		q.listeners.emit(EventEnqueued, []T{item})
		return nil
	}

	if q.buffer.Len() >= q.capacity {
		q.mu.Unlock()
		return ErrQueueFull
	}

	q.buffer.PushBack(item)
	q.mu.Unlock()

	q.listeners.emit(EventEnqueued, []T{item})
	return nil
}

// Dequeue removes and returns the oldest item, blocking until one is
// available. Dequeuers blocked at the same time are satisfied in the order
// they called Dequeue. There is no timeout; callers that need one must race
// this call against a timer.
func (q *BoundedQueue[T]) Dequeue() T {
	q.mu.Lock()
	if q.buffer.Len() > 0 {
		item := q.buffer.PopFront()
		q.mu.Unlock()
		q.listeners.emit(EventDequeued, []T{item})
		return item
	}

	// Buffered by one so the producer's handoff send never blocks.
	waiter := make(chan T, 1)
	q.waiters.PushBack(waiter)
	q.mu.Unlock()

	item := <-waiter
	q.listeners.emit(EventDequeued, []T{item})
	return item
}

// DequeueBatch removes up to n items from the front of the buffer and
// returns them immediately. It never blocks waiting for more items; n <= 0
// or an empty queue yields an empty batch.
func (q *BoundedQueue[T]) DequeueBatch(n int) []T {
	q.mu.Lock()
	count := min(n, q.buffer.Len())
	if count <= 0 {
		q.mu.Unlock()
		return []T{}
	}

	batch := make([]T, 0, count)
	for i := 0; i < count; i++ {
		batch = append(batch, q.buffer.PopFront())
	}
	q.mu.Unlock()

	q.listeners.emit(EventDequeued, batch)
	return batch
}

// Size returns the number of buffered items. Parked dequeuers are not
// counted.
func (q *BoundedQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buffer.Len()
}

// IsEmpty reports whether the buffer holds no items.
func (q *BoundedQueue[T]) IsEmpty() bool {
	return q.Size() == 0
}

// Drain transitions the queue into shutdown: every subsequent Enqueue fails
// with ErrQueueShuttingDown. Buffered items are not discarded; they remain
// visible through Size and may still be consumed with Dequeue or
// DequeueBatch.
//
// Settling is approximate: Drain re-acquires the queue lock between the
// draining and drained notifications, so any enqueue or dequeue still inside
// the critical section finishes first. A handoff whose producer has already
// left the critical section delivers its item on the consumer goroutine,
// which may emit that dequeued event after drained fires.
//
// The transition is one-way; calling Drain again is a no-op.
func (q *BoundedQueue[T]) Drain() {
	q.mu.Lock()
	if q.shuttingDown {
		q.mu.Unlock()
		return
	}
	q.shuttingDown = true
	remaining := q.buffer.Len()
	q.mu.Unlock()

	log.DebugLog.Printf("queue draining: %d items buffered", remaining)
	q.listeners.emit(EventDraining, nil)

	// Any enqueue or dequeue already inside the critical section finishes
	// before the drained notification goes out.
	q.mu.Lock()
	left := q.buffer.Len()
	q.mu.Unlock()

	q.listeners.emit(EventDrained, nil)
	log.DebugLog.Printf("queue drained: %d items left buffered", left)
}

// Listen registers a listener for queue events and returns a token for
// StopListening. Listeners run synchronously on the goroutine that caused
// the event, in registration order.
func (q *BoundedQueue[T]) Listen(fn QueueListener[T]) string {
	return q.listeners.add(fn)
}

// StopListening removes a previously registered listener.
func (q *BoundedQueue[T]) StopListening(token string) {
	q.listeners.remove(token)
}
