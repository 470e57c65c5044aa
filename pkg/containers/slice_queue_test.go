package containers

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceQueueBasic(t *testing.T) {
	t.Parallel()

	q := NewSliceQueue[int]()
	_, ok := q.Pop()
	require.False(t, ok)
	_, ok = q.Peek()
	require.False(t, ok)

	q.Add(1)
	q.Add(2)
	q.Add(3)
	require.Equal(t, 3, q.Size())

	head, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, 1, head)

	for i := 1; i <= 3; i++ {
		elem, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, i, elem)
	}
	require.Equal(t, 0, q.Size())
}

func TestSliceQueueSignal(t *testing.T) {
	t.Parallel()

	q := NewSliceQueue[string]()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-q.C
		elem, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, "event", elem)
	}()

	q.Add("event")
	wg.Wait()
}

func TestSliceQueueConcurrentAdd(t *testing.T) {
	t.Parallel()

	const (
		numProducers     = 8
		elemsPerProducer = 256
	)

	q := NewSliceQueue[int]()
	var wg sync.WaitGroup
	for i := 0; i < numProducers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < elemsPerProducer; j++ {
				q.Add(j)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, numProducers*elemsPerProducer, q.Size())
}
