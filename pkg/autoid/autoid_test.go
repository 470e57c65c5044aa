package autoid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDAllocatorMonotonic(t *testing.T) {
	t.Parallel()

	alloc := NewIDAllocator()
	prev := int64(0)
	for i := 0; i < 100; i++ {
		id := alloc.AllocID()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestIDAllocatorConcurrent(t *testing.T) {
	t.Parallel()

	const (
		numGoroutines = 16
		idsPerRoutine = 128
	)

	alloc := NewIDAllocator()
	var (
		mu  sync.Mutex
		ids = make(map[int64]struct{})
		wg  sync.WaitGroup
	)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerRoutine; j++ {
				id := alloc.AllocID()
				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, ids, numGoroutines*idsPerRoutine)
}

func TestUUIDAllocatorUnique(t *testing.T) {
	t.Parallel()

	alloc := NewUUIDAllocator()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := alloc.AllocID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
