package containers

import (
	"sync"
)

// SliceQueue is a FIFO queue implemented by a slice. It is thread-safe,
// and a signal channel C is provided so that a consumer can block until
// the queue becomes non-empty.
type SliceQueue[T any] struct {
	mu    sync.Mutex
	elems []T

	// C is signaled whenever an element is added to an empty queue.
	// The channel has a buffer of 1, so signals can be coalesced.
	C chan struct{}
}

// NewSliceQueue creates a new SliceQueue.
func NewSliceQueue[T any]() *SliceQueue[T] {
	return &SliceQueue[T]{
		C: make(chan struct{}, 1),
	}
}

// Add pushes an element to the back of the queue.
func (q *SliceQueue[T]) Add(elem T) {
	q.mu.Lock()
	wasEmpty := len(q.elems) == 0
	q.elems = append(q.elems, elem)
	q.mu.Unlock()

	if wasEmpty {
		select {
		case q.C <- struct{}{}:
		default:
		}
	}
}

// Pop removes the element at the front of the queue. It returns
// false if the queue is empty.
func (q *SliceQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.elems) == 0 {
		return zero, false
	}

	elem := q.elems[0]
	q.elems[0] = zero
	q.elems = q.elems[1:]
	if len(q.elems) == 0 {
		// Allow the backing array to be collected.
		q.elems = nil
	}
	return elem, true
}

// Peek returns the element at the front of the queue without removing
// it. It returns false if the queue is empty.
func (q *SliceQueue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.elems) == 0 {
		return zero, false
	}
	return q.elems[0], true
}

// Size returns the current size of the queue.
func (q *SliceQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.elems)
}
