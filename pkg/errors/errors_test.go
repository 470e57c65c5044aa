package errors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigpool/rigpool/pb"
)

func TestToPBErrorKnownCode(t *testing.T) {
	t.Parallel()

	err := ErrResourceDirty.GenWithStackByArgs("rig-1")
	pbErr := ToPBError(err)
	require.NotNil(t, pbErr)
	require.Equal(t, pb.ErrorCode_ResourceDirty, pbErr.Code)
	require.Contains(t, pbErr.Message, "rig-1")
}

func TestToPBErrorUnknownCode(t *testing.T) {
	t.Parallel()

	pbErr := ToPBError(ErrMetaOpFail.GenWithStackByArgs())
	require.NotNil(t, pbErr)
	require.Equal(t, pb.ErrorCode_UnknownError, pbErr.Code)

	require.Nil(t, ToPBError(nil))
}

func TestFromPBErrorRoundTrip(t *testing.T) {
	t.Parallel()

	orig := ErrUnsatisfiable.GenWithStackByArgs("count exceeds pool size")
	restored := FromPBError(ToPBError(orig))
	require.True(t, ErrUnsatisfiable.Equal(restored))
	require.Contains(t, restored.Error(), "count exceeds pool size")

	require.Nil(t, FromPBError(nil))

	unknown := FromPBError(&pb.Error{Code: pb.ErrorCode_UnknownError, Message: "boom"})
	require.True(t, ErrUnknown.Equal(unknown))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	require.NoError(t, Wrap(ErrMetaOpFail, nil))

	inner := ErrUnknownLease.GenWithStackByArgs("lease-1")
	wrapped := Wrap(ErrMetaOpFail, inner)
	require.Error(t, wrapped)
	require.True(t, ErrMetaOpFail.Equal(wrapped))
}
