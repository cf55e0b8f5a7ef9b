package observable

import "sync"

// Queue runs pushed notifications in FIFO order, one goroutine at a time.
//
// Whoever calls Drain while no other drain is running becomes the drainer and
// keeps going until the queue is empty. Notifications pushed from inside a
// running notification are picked up by the same drain, so a listener can call
// back into the code that feeds the queue without deadlocking.
type Queue struct {
	mu       sync.Mutex
	pending  []func()
	draining bool
}

// Push appends fns to the queue without running them.
func (q *Queue) Push(fns ...func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fns...)
	q.mu.Unlock()
}

// Drain runs queued notifications until none remain. It returns immediately
// if another goroutine (or an outer frame of this one) is already draining.
func (q *Queue) Drain() {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true

	for len(q.pending) > 0 {
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()

		q.mu.Lock()
	}

	q.draining = false
	q.mu.Unlock()
}
