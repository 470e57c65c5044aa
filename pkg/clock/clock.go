package clock

import (
	"time"

	bclock "github.com/benbjohnson/clock"
	"github.com/gavv/monotime"
)

type (
	// Clock defines an interface for time-related operations, so that
	// the logical components can be tested with a mocked time source.
	Clock = bclock.Clock

	// Mock is a mock clock whose Now() can be adjusted in tests.
	Mock = bclock.Mock

	// MonotonicTime is a measurement of the monotonic clock.
	MonotonicTime time.Duration
)

// New returns a Clock backed by the wall clock.
func New() Clock {
	return bclock.New()
}

// NewMock returns a mock clock set to the zero time.
func NewMock() *Mock {
	return bclock.NewMock()
}

// Mono returns the current reading of the monotonic clock. It is not
// affected by wall clock jumps and is suitable for measuring elapsed
// time across heartbeats.
func Mono() MonotonicTime {
	return MonotonicTime(monotime.Now())
}

// Elapsed returns the time elapsed since m was taken.
func (m MonotonicTime) Elapsed() time.Duration {
	return time.Duration(Mono() - m)
}
