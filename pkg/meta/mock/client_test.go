package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigpool/rigpool/pkg/meta/metaclient"
)

func TestMetaMockBasicOps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := NewMetaMock()

	_, err := mock.Put(ctx, "/test/a", "1")
	require.NoError(t, err)
	_, err = mock.Put(ctx, "/test/b", "2")
	require.NoError(t, err)

	resp, err := mock.Get(ctx, "/test/a")
	require.NoError(t, err)
	require.Len(t, resp.Kvs, 1)
	require.Equal(t, "1", string(resp.Kvs[0].Value))

	resp, err = mock.Get(ctx, "/test/missing")
	require.NoError(t, err)
	require.Len(t, resp.Kvs, 0)

	delResp, err := mock.Delete(ctx, "/test/a")
	require.NoError(t, err)
	require.Equal(t, int64(1), delResp.Deleted)

	resp, err = mock.Get(ctx, "/test/a")
	require.NoError(t, err)
	require.Len(t, resp.Kvs, 0)
}

func TestMetaMockPrefixScanSorted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := NewMetaMock()

	for _, key := range []string{"/rig/c", "/rig/a", "/rig/b", "/other/x"} {
		_, err := mock.Put(ctx, key, "v")
		require.NoError(t, err)
	}

	resp, err := mock.Get(ctx, "/rig/", metaclient.WithPrefix())
	require.NoError(t, err)
	require.Len(t, resp.Kvs, 3)
	require.Equal(t, "/rig/a", string(resp.Kvs[0].Key))
	require.Equal(t, "/rig/b", string(resp.Kvs[1].Key))
	require.Equal(t, "/rig/c", string(resp.Kvs[2].Key))

	delResp, err := mock.Delete(ctx, "/rig/", metaclient.WithPrefix())
	require.NoError(t, err)
	require.Equal(t, int64(3), delResp.Deleted)
}

func TestMetaMockTxnAtOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := NewMetaMock()

	txnResp, err := mock.Txn(ctx).Do(
		metaclient.OpPut("/txn/a", "1"),
		metaclient.OpPut("/txn/b", "2"),
		metaclient.OpDelete("/txn/a"),
	).Commit(ctx)
	require.NoError(t, err)
	require.Len(t, txnResp.Responses, 3)

	resp, err := mock.Get(ctx, "/txn/b")
	require.NoError(t, err)
	require.Len(t, resp.Kvs, 1)

	resp, err = mock.Get(ctx, "/txn/a")
	require.NoError(t, err)
	require.Len(t, resp.Kvs, 0)
}

func TestMetaMockGenEpochMonotonic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := NewMetaMock()

	prev := int64(0)
	for i := 0; i < 16; i++ {
		epoch, err := mock.GenEpoch(ctx)
		require.NoError(t, err)
		require.Greater(t, epoch, prev)
		prev = epoch
	}
}
