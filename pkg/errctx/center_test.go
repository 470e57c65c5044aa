package errctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rigpool/rigpool/pkg/errors"
)

func TestErrCenterFirstErrorWins(t *testing.T) {
	t.Parallel()

	center := NewErrCenter()
	require.NoError(t, center.CheckError())

	center.OnError(nil)
	require.NoError(t, center.CheckError())

	first := errors.ErrMetaOpFail.GenWithStackByArgs()
	center.OnError(first)
	center.OnError(errors.ErrUnknown.GenWithStackByArgs())
	require.Equal(t, first, center.CheckError())

	select {
	case <-center.Done():
	default:
		require.FailNow(t, "center should be done after OnError")
	}
}

func TestErrCenterDerivedContext(t *testing.T) {
	t.Parallel()

	center := NewErrCenter()
	ctx := center.DeriveContext(context.Background())
	require.NoError(t, ctx.Err())

	fatal := errors.ErrRegistryUnavailable.GenWithStackByArgs()
	center.OnError(fatal)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		require.FailNow(t, "derived context should be cancelled")
	}
	require.True(t, errors.ErrRegistryUnavailable.Equal(ctx.Err()))
}

func TestErrCenterParentCancel(t *testing.T) {
	t.Parallel()

	center := NewErrCenter()
	parent, cancel := context.WithCancel(context.Background())
	ctx := center.DeriveContext(parent)

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		require.FailNow(t, "derived context should follow parent cancellation")
	}
	require.Equal(t, context.Canceled, ctx.Err())
}
