package autoid

import (
	"sync"

	"github.com/google/uuid"
)

// IDAllocator allocates monotonically increasing integer IDs. The zero
// value is ready to use and the first allocated ID is 1.
type IDAllocator struct {
	sync.Mutex
	internalID int64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

func (a *IDAllocator) AllocID() int64 {
	a.Lock()
	defer a.Unlock()
	a.internalID++
	return a.internalID
}

// UUIDAllocator allocates string UUIDs.
type UUIDAllocator struct{}

func NewUUIDAllocator() *UUIDAllocator {
	return new(UUIDAllocator)
}

func (a *UUIDAllocator) AllocID() string {
	return uuid.New().String()
}
