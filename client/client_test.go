package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gogo/status"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pb"
	derror "github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/rpcutil"
)

// fakePool implements pb.ResourceManagerClient in-process so the
// client loops can run against controllable responses.
type fakePool struct {
	mu            sync.Mutex
	disconnected  bool
	heartbeats    int
	heartbeatErr  *pb.Error
	heartbeatDown bool
	acquire       func(*pb.AcquireRequest) (*pb.AcquireResponse, error)
	cancel        func(*pb.CancelRequest) (*pb.CancelResponse, error)
	cancelled     []string
	released      []string
	events        chan *pb.Event
}

func newFakePool() *fakePool {
	return &fakePool{events: make(chan *pb.Event, 16)}
}

func (f *fakePool) Connect(
	ctx context.Context, req *pb.ConnectRequest, opts ...grpc.CallOption,
) (*pb.ConnectResponse, error) {
	return &pb.ConnectResponse{
		SessionId:           "sess-1",
		Epoch:               7,
		HeartbeatIntervalMs: 20,
		SessionTtlMs:        120,
	}, nil
}

func (f *fakePool) Disconnect(
	ctx context.Context, req *pb.DisconnectRequest, opts ...grpc.CallOption,
) (*pb.DisconnectResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = true
	return &pb.DisconnectResponse{}, nil
}

func (f *fakePool) Heartbeat(
	ctx context.Context, req *pb.HeartbeatRequest, opts ...grpc.CallOption,
) (*pb.HeartbeatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heartbeats++
	if f.heartbeatDown {
		return nil, status.Error(codes.Unavailable, "server down")
	}
	if f.heartbeatErr != nil {
		return &pb.HeartbeatResponse{Err: f.heartbeatErr}, nil
	}
	return &pb.HeartbeatResponse{Timestamp: time.Now().UnixMilli()}, nil
}

func (f *fakePool) Acquire(
	ctx context.Context, req *pb.AcquireRequest, opts ...grpc.CallOption,
) (*pb.AcquireResponse, error) {
	f.mu.Lock()
	acquire := f.acquire
	f.mu.Unlock()
	if acquire == nil {
		return &pb.AcquireResponse{State: pb.RequestState_Granted}, nil
	}
	return acquire(req)
}

func (f *fakePool) Release(
	ctx context.Context, req *pb.ReleaseRequest, opts ...grpc.CallOption,
) (*pb.ReleaseResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.All {
		f.released = append(f.released, "*")
		return &pb.ReleaseResponse{Released: []string{"lease-1", "lease-2"}}, nil
	}
	f.released = append(f.released, req.LeaseId)
	return &pb.ReleaseResponse{Released: []string{req.LeaseId}}, nil
}

func (f *fakePool) Cancel(
	ctx context.Context, req *pb.CancelRequest, opts ...grpc.CallOption,
) (*pb.CancelResponse, error) {
	f.mu.Lock()
	f.cancelled = append(f.cancelled, req.RequestId)
	cancel := f.cancel
	f.mu.Unlock()
	if cancel == nil {
		return &pb.CancelResponse{State: pb.RequestState_Cancelled}, nil
	}
	return cancel(req)
}

func (f *fakePool) Watch(
	ctx context.Context, req *pb.WatchRequest, opts ...grpc.CallOption,
) (pb.ResourceManager_WatchClient, error) {
	return &fakeWatchStream{ctx: ctx, events: f.events}, nil
}

func (f *fakePool) QueryResources(
	ctx context.Context, req *pb.QueryResourcesRequest, opts ...grpc.CallOption,
) (*pb.QueryResourcesResponse, error) {
	return &pb.QueryResourcesResponse{
		Resources: []*pb.ResourceInfo{{Name: "rig-1"}},
	}, nil
}

func (f *fakePool) QuerySessions(
	ctx context.Context, req *pb.QuerySessionsRequest, opts ...grpc.CallOption,
) (*pb.QuerySessionsResponse, error) {
	return &pb.QuerySessionsResponse{
		Sessions: []*pb.SessionInfo{{SessionId: "sess-1"}},
	}, nil
}

func (f *fakePool) Rehabilitate(
	ctx context.Context, req *pb.RehabilitateRequest, opts ...grpc.CallOption,
) (*pb.RehabilitateResponse, error) {
	if req.Name == "ghost" {
		return &pb.RehabilitateResponse{Err: &pb.Error{
			Code:    pb.ErrorCode_UnknownResource,
			Message: "resource ghost is not in the registry",
		}}, nil
	}
	return &pb.RehabilitateResponse{}, nil
}

func (f *fakePool) releasedLeases() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.released...)
}

func (f *fakePool) cancelledRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cancelled...)
}

type fakeWatchStream struct {
	grpc.ClientStream
	ctx    context.Context
	events <-chan *pb.Event
}

func (s *fakeWatchStream) Recv() (*pb.Event, error) {
	select {
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	case ev := <-s.events:
		return ev, nil
	}
}

func newTestClient(t *testing.T, f *fakePool, onReclaim func([]model.LeaseID, pb.ReclaimReason)) *Client {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := newClientWithDialer(ctx, Options{
		Servers:   []string{"fake-addr"},
		Name:      "bench-runner",
		OnReclaim: onReclaim,
	}, func(ctx context.Context, addr string) (*rpcutil.ClientHolder[pb.ResourceManagerClient], error) {
		return rpcutil.NewClientHolder(nil, f), nil
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, c.Close())
	})
	return c
}

func grantedResponse(reqID string, bindings ...*pb.Binding) func(*pb.AcquireRequest) (*pb.AcquireResponse, error) {
	return func(*pb.AcquireRequest) (*pb.AcquireResponse, error) {
		return &pb.AcquireResponse{
			RequestId: reqID,
			State:     pb.RequestState_Granted,
			Bindings:  bindings,
		}, nil
	}
}

func queuedResponse(reqID string) func(*pb.AcquireRequest) (*pb.AcquireResponse, error) {
	return func(*pb.AcquireRequest) (*pb.AcquireResponse, error) {
		return &pb.AcquireResponse{RequestId: reqID, State: pb.RequestState_Queued}, nil
	}
}

func TestClientConnectAndClose(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := newClientWithDialer(ctx, Options{Servers: []string{"fake-addr"}, Name: "bench-runner"},
		func(ctx context.Context, addr string) (*rpcutil.ClientHolder[pb.ResourceManagerClient], error) {
			return rpcutil.NewClientHolder(nil, f), nil
		})
	require.NoError(t, err)
	require.Equal(t, "sess-1", c.SessionID())
	require.Equal(t, int64(7), c.Epoch())
	require.NoError(t, c.Err())

	require.NoError(t, c.Close())
	f.mu.Lock()
	require.True(t, f.disconnected)
	f.mu.Unlock()
	// A second Close is a no-op.
	require.NoError(t, c.Close())
}

func TestClientNoServers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, err := NewClient(ctx, Options{})
	require.True(t, derror.ErrInvalidServerAddr.Equal(err))
}

func TestClientAcquireImmediateGrant(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	f.acquire = grantedResponse("req-1",
		&pb.Binding{LeaseId: "lease-1", Resource: "rig-1"},
		&pb.Binding{LeaseId: "lease-2", Resource: "rig-2"})
	c := newTestClient(t, f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	grant, err := c.Acquire(ctx, []model.ResourceSpec{{Name: "rig-1"}, {Name: "rig-2"}}, AcquireOptions{})
	require.NoError(t, err)
	require.Equal(t, "req-1", grant.RequestID)
	require.Equal(t, []string{"lease-1", "lease-2"}, grant.LeaseIDs())
	require.Equal(t, []string{"rig-1", "rig-2"}, grant.Resources())
}

func TestClientAcquireWaitsForDecision(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	f.acquire = queuedResponse("req-9")
	c := newTestClient(t, f, nil)

	go func() {
		time.Sleep(30 * time.Millisecond)
		f.events <- &pb.Event{
			Type:      pb.EventType_Grant,
			RequestId: "req-9",
			Bindings:  []*pb.Binding{{LeaseId: "lease-5", Resource: "rig-1"}},
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	grant, err := c.Acquire(ctx, []model.ResourceSpec{{Name: "rig-1"}}, AcquireOptions{})
	require.NoError(t, err)
	require.Equal(t, "req-9", grant.RequestID)
	require.Equal(t, []string{"lease-5"}, grant.LeaseIDs())
}

func TestClientAcquireDeniedOnTimeout(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	f.acquire = queuedResponse("req-2")
	c := newTestClient(t, f, nil)

	f.events <- &pb.Event{
		Type:      pb.EventType_Deny,
		RequestId: "req-2",
		State:     pb.RequestState_TimedOut,
		Err: &pb.Error{
			Code:    pb.ErrorCode_UnknownError,
			Message: "request req-2 timed out after 5s",
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.Acquire(ctx, []model.ResourceSpec{{Name: "rig-1"}}, AcquireOptions{WaitTimeout: 5 * time.Second})
	require.True(t, derror.ErrWaitTimeout.Equal(err))
}

func TestClientAcquireCtxCancelWithdraws(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	f.acquire = queuedResponse("req-3")
	c := newTestClient(t, f, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	_, err := c.Acquire(ctx, []model.ResourceSpec{{Name: "rig-1"}}, AcquireOptions{})
	require.Error(t, err)
	require.Equal(t, context.Canceled, errors.Cause(err))
	require.Equal(t, []string{"req-3"}, f.cancelledRequests())
}

func TestClientAcquireCancelGrantRace(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	f.acquire = queuedResponse("req-4")
	f.cancel = func(*pb.CancelRequest) (*pb.CancelResponse, error) {
		// The grant happened just before the cancellation landed.
		f.events <- &pb.Event{
			Type:      pb.EventType_Grant,
			RequestId: "req-4",
			Bindings:  []*pb.Binding{{LeaseId: "lease-7", Resource: "rig-1"}},
		}
		return &pb.CancelResponse{
			State: pb.RequestState_Granted,
			Err: &pb.Error{
				Code:    pb.ErrorCode_RequestAlreadyGranted,
				Message: "request req-4 is already granted",
			},
		}, nil
	}
	c := newTestClient(t, f, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	_, err := c.Acquire(ctx, []model.ResourceSpec{{Name: "rig-1"}}, AcquireOptions{})
	require.Error(t, err)
	// The raced grant is handed straight back.
	require.Equal(t, []string{"lease-7"}, f.releasedLeases())
}

func TestClientCancelByRequestID(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	c := newTestClient(t, f, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Cancel(ctx, "req-8"))
	require.Equal(t, []string{"req-8"}, f.cancelledRequests())

	f.mu.Lock()
	f.cancel = func(*pb.CancelRequest) (*pb.CancelResponse, error) {
		return &pb.CancelResponse{
			State: pb.RequestState_Granted,
			Err: &pb.Error{
				Code:    pb.ErrorCode_RequestAlreadyGranted,
				Message: "request req-8 is already granted",
			},
		}, nil
	}
	f.mu.Unlock()
	err := c.Cancel(ctx, "req-8")
	require.True(t, derror.ErrRequestAlreadyGranted.Equal(err))
}

func TestClientSessionLostUnblocksAcquire(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	f.acquire = queuedResponse("req-5")
	f.heartbeatErr = &pb.Error{
		Code:    pb.ErrorCode_UnknownSession,
		Message: "session sess-1 is not registered",
	}
	c := newTestClient(t, f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.Acquire(ctx, []model.ResourceSpec{{Name: "rig-1"}}, AcquireOptions{})
	require.True(t, derror.ErrSessionLost.Equal(err))
	require.True(t, derror.ErrSessionLost.Equal(c.Err()))
}

func TestClientHeartbeatStale(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	f.heartbeatDown = true
	c := newTestClient(t, f, nil)

	require.Eventually(t, func() bool {
		return c.Err() != nil
	}, 5*time.Second, 10*time.Millisecond)
	require.True(t, derror.ErrHeartbeatStale.Equal(c.Err()))
}

func TestClientReclaimCallback(t *testing.T) {
	t.Parallel()

	var (
		mu        sync.Mutex
		reclaimed []string
		reason    pb.ReclaimReason
	)
	f := newFakePool()
	newTestClient(t, f, func(ids []model.LeaseID, r pb.ReclaimReason) {
		mu.Lock()
		defer mu.Unlock()
		reclaimed = append(reclaimed, ids...)
		reason = r
	})

	f.events <- &pb.Event{
		Type:     pb.EventType_Reclaim,
		LeaseIds: []string{"lease-1", "lease-2"},
		Reason:   pb.ReclaimReason_LeaseTimeout,
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reclaimed) == 2
	}, 5*time.Second, 10*time.Millisecond)
	mu.Lock()
	require.Equal(t, []string{"lease-1", "lease-2"}, reclaimed)
	require.Equal(t, pb.ReclaimReason_LeaseTimeout, reason)
	mu.Unlock()
}

func TestClientReleaseAndQueries(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	c := newTestClient(t, f, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Release(ctx, "lease-1"))
	released, err := c.ReleaseAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"lease-1", "lease-2"}, released)

	resources, err := c.QueryResources(ctx, nil, "", false)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	require.Equal(t, "rig-1", resources[0].Name)

	sessions, err := c.QuerySessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	require.NoError(t, c.Rehabilitate(ctx, "rig-1"))
	err = c.Rehabilitate(ctx, "ghost")
	require.True(t, derror.ErrUnknownResource.Equal(err))
}

func TestClientWithResourcesReleasesOnError(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	f.acquire = grantedResponse("req-6",
		&pb.Binding{LeaseId: "lease-1", Resource: "rig-1"},
		&pb.Binding{LeaseId: "lease-2", Resource: "rig-2"})
	c := newTestClient(t, f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wantErr := errors.New("workload failed")
	err := c.WithResources(ctx, []model.ResourceSpec{{Name: "rig-1"}, {Name: "rig-2"}}, AcquireOptions{},
		func(ctx context.Context, grant *Grant) error {
			require.Equal(t, []string{"lease-1", "lease-2"}, grant.LeaseIDs())
			return wantErr
		})
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, []string{"lease-1", "lease-2"}, f.releasedLeases())
}

func TestClientWithResourcesReleasesOnPanic(t *testing.T) {
	t.Parallel()

	f := newFakePool()
	f.acquire = grantedResponse("req-7", &pb.Binding{LeaseId: "lease-3", Resource: "rig-1"})
	c := newTestClient(t, f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.Panics(t, func() {
		_ = c.WithResources(ctx, []model.ResourceSpec{{Name: "rig-1"}}, AcquireOptions{},
			func(ctx context.Context, grant *Grant) error {
				panic("workload crashed")
			})
	})
	require.Equal(t, []string{"lease-3"}, f.releasedLeases())
}

func TestEventRouterDecisionBeforeWaiter(t *testing.T) {
	t.Parallel()

	r := newEventRouter(nil)
	ev := &pb.Event{Type: pb.EventType_Grant, RequestId: "req-1"}
	r.dispatch(ev)

	ch := r.expect("req-1")
	select {
	case got := <-ch:
		require.Same(t, ev, got)
	default:
		t.Fatal("buffered decision not delivered")
	}
	r.forget("req-1")
}

func TestEventRouterWaiterBeforeDecision(t *testing.T) {
	t.Parallel()

	r := newEventRouter(nil)
	ch := r.expect("req-2")
	ev := &pb.Event{Type: pb.EventType_Deny, RequestId: "req-2", State: pb.RequestState_Cancelled}
	r.dispatch(ev)
	require.Same(t, ev, <-ch)
	r.forget("req-2")
}
