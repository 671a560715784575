// Package coordination provides the in-process coordination primitives used
// by squadsync worker components to hand work between producers and
// consumers and to serialize access to shared resources.
//
// # Core Components
//
// BoundedQueue - FIFO buffer with blocking dequeue, backpressure, and a
// one-way drain transition
//
//	queue, _ := NewBoundedQueue[string](16)
//	queue.Enqueue("job")
//	item := queue.Dequeue()
//	queue.Drain()
//
// Mutex - exclusive lock with FIFO-fair waiter admission
//
//	mu := NewMutex()
//	mu.Lock()
//	defer mu.Unlock()
//
// Semaphore - counting permit pool with blocking acquire and FIFO-fair
// release-to-waiter handoff
//
//	sem, _ := NewSemaphore(4)
//	sem.Acquire()
//	defer sem.Release()
//
// # Architecture
//
// The three primitives are independent leaves; none calls into another.
// Consumers compose them as needed, e.g. a queue gated by a semaphore for
// concurrency-limited fan-out.
//
// Fairness is explicit rather than inherited from the runtime: each
// primitive keeps an ordered list of suspended callers and resolves the
// oldest one directly, so no caller can be starved by a later arrival. The
// Go memory model does not promise FIFO wakeup for channel receivers or
// sync.Cond waiters, which is why the waiter lists exist.
//
// None of the primitives supports timeouts or cancellation; a blocked
// Dequeue, Lock, or Acquire stays pending until satisfied. Callers that
// need a deadline must race the call against a timer at the call site.
package coordination
