package notifier

import (
	"context"
	"sync"

	perrors "github.com/pingcap/errors"

	"github.com/rigpool/rigpool/pkg/containers"
	"github.com/rigpool/rigpool/pkg/errors"
)

// Mailbox is a single-consumer notification queue. Events put into the
// mailbox are buffered until a consumer picks them up, so notifications
// published while no watch stream is attached are not lost.
type Mailbox[T any] struct {
	queue *containers.SliceQueue[T]

	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewMailbox creates a new Mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		queue:   containers.NewSliceQueue[T](),
		closeCh: make(chan struct{}),
	}
}

// Put appends an event to the mailbox. It never blocks.
func (m *Mailbox[T]) Put(event T) {
	m.queue.Add(event)
}

// Receive blocks until an event is available, the context is cancelled,
// or the mailbox is closed. Events already buffered are drained even
// after Close.
func (m *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	for {
		if event, ok := m.queue.Pop(); ok {
			return event, nil
		}

		select {
		case <-ctx.Done():
			return zero, perrors.Trace(ctx.Err())
		case <-m.closeCh:
			// Buffered events may have arrived between the Pop
			// above and the close.
			if event, ok := m.queue.Pop(); ok {
				return event, nil
			}
			return zero, errors.ErrSessionClosed.GenWithStackByArgs()
		case <-m.queue.C:
		}
	}
}

// TryReceive pops an event if one is buffered.
func (m *Mailbox[T]) TryReceive() (T, bool) {
	return m.queue.Pop()
}

// Size returns the number of buffered events.
func (m *Mailbox[T]) Size() int {
	return m.queue.Size()
}

// Close wakes up a blocked consumer. It is safe to call multiple times.
func (m *Mailbox[T]) Close() {
	m.closeOnce.Do(func() {
		close(m.closeCh)
	})
}
