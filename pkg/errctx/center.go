package errctx

import (
	"context"

	"go.uber.org/atomic"
)

// ErrCenter collects the first fatal error raised by any background
// loop, such as the heartbeat or the event watcher, and cancels every
// context derived from it.
type ErrCenter struct {
	hasErr atomic.Bool
	errVal atomic.Error
	doneCh chan struct{}
}

func NewErrCenter() *ErrCenter {
	return &ErrCenter{
		doneCh: make(chan struct{}),
	}
}

// OnError records err as the center's fatal error. Only the first
// non-nil error is kept, later calls are no-ops.
func (c *ErrCenter) OnError(err error) {
	if err == nil {
		return
	}
	if c.hasErr.Swap(true) {
		// already tripped
		return
	}
	c.errVal.Store(err)
	close(c.doneCh)
}

// CheckError returns the recorded fatal error, or nil if the center
// has not tripped yet.
func (c *ErrCenter) CheckError() error {
	return c.errVal.Load()
}

// Done returns a channel closed when the center trips. It lets run
// loops select on the center next to their own contexts.
func (c *ErrCenter) Done() <-chan struct{} {
	return c.doneCh
}

// DeriveContext wraps ctx so that the returned context is cancelled
// both when ctx is cancelled and when the center trips.
func (c *ErrCenter) DeriveContext(ctx context.Context) context.Context {
	return newErrCtx(ctx, c)
}
