package notifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rigpool/rigpool/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMailboxBuffersWithoutConsumer(t *testing.T) {
	t.Parallel()

	mailbox := NewMailbox[int]()
	defer mailbox.Close()

	for i := 0; i < 64; i++ {
		mailbox.Put(i)
	}
	require.Equal(t, 64, mailbox.Size())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 64; i++ {
		event, err := mailbox.Receive(ctx)
		require.NoError(t, err)
		require.Equal(t, i, event)
	}
	require.Equal(t, 0, mailbox.Size())
}

func TestMailboxReceiveBlocksUntilPut(t *testing.T) {
	t.Parallel()

	mailbox := NewMailbox[string]()
	defer mailbox.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		event, err := mailbox.Receive(context.Background())
		require.NoError(t, err)
		require.Equal(t, "granted", event)
	}()

	time.Sleep(10 * time.Millisecond)
	mailbox.Put("granted")
	wg.Wait()
}

func TestMailboxReceiveContextCancel(t *testing.T) {
	t.Parallel()

	mailbox := NewMailbox[int]()
	defer mailbox.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := mailbox.Receive(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMailboxCloseDrainsBuffered(t *testing.T) {
	t.Parallel()

	mailbox := NewMailbox[int]()
	mailbox.Put(1)
	mailbox.Close()
	mailbox.Close()

	event, err := mailbox.Receive(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, event)

	_, err = mailbox.Receive(context.Background())
	require.True(t, errors.ErrSessionClosed.Equal(err))
}

func TestMailboxConcurrentProducers(t *testing.T) {
	t.Parallel()

	mailbox := NewMailbox[int]()
	defer mailbox.Close()

	const producers = 8
	const perProducer = 128

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				mailbox.Put(base + i)
			}
		}(p * perProducer)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seen := make(map[int]struct{})
	for i := 0; i < producers*perProducer; i++ {
		event, err := mailbox.Receive(ctx)
		require.NoError(t, err)
		seen[event] = struct{}{}
	}
	wg.Wait()
	require.Len(t, seen, producers*perProducer)
}
