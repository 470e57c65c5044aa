package client

import (
	"context"
	"sync"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/errctx"
	derror "github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/rpcutil"
)

const (
	defaultDialTimeout = 5 * time.Second
	// bestEffortTimeout bounds the RPCs fired after the caller's own
	// context is already gone, such as the Disconnect on Close.
	bestEffortTimeout = 3 * time.Second
)

// Options configures a resource pool client.
type Options struct {
	// Servers lists the server addresses to dial. The session is
	// established against whichever answers first, later RPCs fail
	// over between them.
	Servers []string
	// Name identifies the client in session queries and server logs.
	Name string
	// Addr is an optional address of the client itself, recorded
	// with the session for operators.
	Addr string
	// OnReclaim is invoked from the event stream when the server
	// takes leases back, after a lease TTL expiry for example. It
	// must not block.
	OnReclaim func(leaseIDs []model.LeaseID, reason pb.ReclaimReason)
	// DialTimeout bounds a single dial attempt. Zero means
	// defaultDialTimeout.
	DialTimeout time.Duration
}

// Client is a session-holding handle on the resource pool. It keeps
// the session alive in the background and consumes the server event
// stream, so Acquire can block until a queued request is decided.
type Client struct {
	opts    Options
	servers *rpcutil.FailoverRpcClients[pb.ResourceManagerClient]

	sessionID         model.SessionID
	epoch             model.Epoch
	heartbeatInterval time.Duration
	sessionTTL        time.Duration

	errCenter *errctx.ErrCenter
	router    *eventRouter

	bgCancel context.CancelFunc
	bgWg     sync.WaitGroup
	closed   atomic.Bool
}

// NewClient connects to the pool and starts the heartbeat and watch
// loops. The returned client must be Closed to end the session.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.DialTimeout == 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	return newClientWithDialer(ctx, opts, grpcDialer(opts.DialTimeout))
}

func newClientWithDialer(
	ctx context.Context,
	opts Options,
	dialer rpcutil.DialFunc[pb.ResourceManagerClient],
) (*Client, error) {
	if len(opts.Servers) == 0 {
		return nil, derror.ErrInvalidServerAddr.GenWithStackByArgs("<empty>")
	}
	c := &Client{
		opts:      opts,
		errCenter: errctx.NewErrCenter(),
		router:    newEventRouter(opts.OnReclaim),
	}
	servers, err := rpcutil.NewFailoverRpcClients(ctx, opts.Servers, dialer)
	if err != nil {
		return nil, err
	}
	c.servers = servers

	resp, err := rpcutil.DoFailoverRPC(ctx, c.servers,
		&pb.ConnectRequest{ClientName: opts.Name, Addr: opts.Addr},
		pb.ResourceManagerClient.Connect)
	if err != nil {
		servers.Close()
		return nil, errors.Trace(err)
	}
	if inErr := derror.FromPBError(resp.Err); inErr != nil {
		servers.Close()
		return nil, inErr
	}
	c.sessionID = resp.SessionId
	c.epoch = resp.Epoch
	c.heartbeatInterval = time.Duration(resp.HeartbeatIntervalMs) * time.Millisecond
	c.sessionTTL = time.Duration(resp.SessionTtlMs) * time.Millisecond
	log.L().Info("session established",
		zap.String("session-id", c.sessionID),
		zap.Int64("epoch", c.epoch),
		zap.Duration("heartbeat-interval", c.heartbeatInterval))

	// The loops outlive the constructor's ctx and stop on Close or
	// when the error center trips.
	bgCtx, cancel := context.WithCancel(context.Background())
	c.bgCancel = cancel
	loopCtx := c.errCenter.DeriveContext(bgCtx)
	c.bgWg.Add(2)
	go func() {
		defer c.bgWg.Done()
		c.runHeartbeatLoop(loopCtx)
	}()
	go func() {
		defer c.bgWg.Done()
		c.runWatchLoop(loopCtx)
	}()
	return c, nil
}

func grpcDialer(timeout time.Duration) rpcutil.DialFunc[pb.ResourceManagerClient] {
	return func(ctx context.Context, addr string) (*rpcutil.ClientHolder[pb.ResourceManagerClient], error) {
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		conn, err := grpc.DialContext(dialCtx, addr,
			grpc.WithInsecure(),
			grpc.WithBlock(),
			grpc.WithConnectParams(grpc.ConnectParams{Backoff: backoff.DefaultConfig}))
		if err != nil {
			return nil, derror.Wrap(derror.ErrGrpcBuildConn, err)
		}
		return rpcutil.NewClientHolder(conn, pb.NewResourceManagerClient(conn)), nil
	}
}

// SessionID returns the server-assigned session identity.
func (c *Client) SessionID() model.SessionID {
	return c.sessionID
}

// Epoch returns the fencing epoch of the session.
func (c *Client) Epoch() model.Epoch {
	return c.epoch
}

// Err reports the fatal session error, if any. Once non-nil the
// session is unusable and the client should be Closed.
func (c *Client) Err() error {
	return c.errCenter.CheckError()
}

// AcquireOptions tunes a single acquisition.
type AcquireOptions struct {
	Priority model.Priority
	// WaitTimeout bounds the time spent queued. Zero waits forever.
	WaitTimeout time.Duration
	// LeaseTTL asks the server to reclaim the leases after this
	// duration. Zero leaves only the per-resource bound in effect.
	LeaseTTL time.Duration
}

// Grant is the result of a successful acquisition.
type Grant struct {
	RequestID model.RequestID
	Bindings  []*pb.Binding
}

// LeaseIDs returns the lease of every binding, in grant order.
func (g *Grant) LeaseIDs() []model.LeaseID {
	ids := make([]model.LeaseID, 0, len(g.Bindings))
	for _, b := range g.Bindings {
		ids = append(ids, b.LeaseId)
	}
	return ids
}

// Resources returns the matched resource names, in grant order.
func (g *Grant) Resources() []model.ResourceID {
	names := make([]model.ResourceID, 0, len(g.Bindings))
	for _, b := range g.Bindings {
		names = append(names, b.Resource)
	}
	return names
}

// Acquire requests the given resources and blocks until they are
// granted, the wait timeout fires, or ctx ends. All specs are granted
// together or not at all. On ctx cancellation the queued request is
// withdrawn from the server before returning.
func (c *Client) Acquire(ctx context.Context, specs []model.ResourceSpec, opts AcquireOptions) (*Grant, error) {
	ctx = c.errCenter.DeriveContext(ctx)
	resp, err := rpcutil.DoFailoverRPC(ctx, c.servers, &pb.AcquireRequest{
		SessionId:     c.sessionID,
		Specs:         model.SpecsToPB(specs),
		Priority:      opts.Priority,
		WaitTimeoutMs: opts.WaitTimeout.Milliseconds(),
		LeaseTtlMs:    opts.LeaseTTL.Milliseconds(),
	}, pb.ResourceManagerClient.Acquire)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if inErr := derror.FromPBError(resp.Err); inErr != nil {
		return nil, inErr
	}
	switch resp.State {
	case pb.RequestState_Granted:
		return &Grant{RequestID: resp.RequestId, Bindings: resp.Bindings}, nil
	case pb.RequestState_Queued:
		return c.waitForGrant(ctx, resp.RequestId)
	default:
		return nil, derror.ErrUnknown.GenWithStack(
			"acquire returned unexpected state %s", resp.State)
	}
}

func (c *Client) waitForGrant(ctx context.Context, reqID model.RequestID) (*Grant, error) {
	ch := c.router.expect(reqID)
	defer c.router.forget(reqID)
	log.L().Info("acquisition queued, waiting for a decision",
		zap.String("session-id", c.sessionID),
		zap.String("request-id", reqID))
	select {
	case ev := <-ch:
		return grantFromEvent(reqID, ev)
	case <-ctx.Done():
		ctxErr := ctx.Err()
		if c.cancelRequest(reqID) {
			// The grant outran our cancellation. The decision event
			// is already queued on the server side, so wait for it
			// and hand the leases straight back.
			c.takeBackRacedGrant(reqID, ch)
			return nil, errors.Trace(ctxErr)
		}
		// A grant may still have slipped in just before the
		// cancellation landed. If the cancel RPC itself failed the
		// server is unreachable anyway and the session will expire,
		// taking any stray grant with it.
		select {
		case ev := <-ch:
			if ev.Type == pb.EventType_Grant {
				c.releaseBindings(ev.Bindings)
			}
		default:
		}
		return nil, errors.Trace(ctxErr)
	}
}

func grantFromEvent(reqID model.RequestID, ev *pb.Event) (*Grant, error) {
	switch ev.Type {
	case pb.EventType_Grant:
		return &Grant{RequestID: reqID, Bindings: ev.Bindings}, nil
	case pb.EventType_Deny:
		return nil, denialError(reqID, ev)
	default:
		return nil, derror.ErrUnknown.GenWithStack(
			"unexpected event %s for request %s", ev.Type, reqID)
	}
}

func denialError(reqID model.RequestID, ev *pb.Event) error {
	switch ev.State {
	case pb.RequestState_TimedOut:
		if ev.Err != nil {
			return derror.ErrWaitTimeout.GenWithStack("%s", ev.Err.Message)
		}
		return derror.ErrWaitTimeout.GenWithStackByArgs(reqID, "the wait deadline")
	case pb.RequestState_Cancelled:
		return derror.ErrRequestCancelled.GenWithStackByArgs(reqID)
	default:
		return derror.ErrUnknown.GenWithStack(
			"request %s denied in state %s", reqID, ev.State)
	}
}

// cancelRequest withdraws a queued request. It reports whether the
// request was granted before the cancellation landed.
func (c *Client) cancelRequest(reqID model.RequestID) bool {
	ctx, cancel := context.WithTimeout(context.Background(), bestEffortTimeout)
	defer cancel()
	resp, err := rpcutil.DoFailoverRPC(ctx, c.servers,
		&pb.CancelRequest{SessionId: c.sessionID, RequestId: reqID},
		pb.ResourceManagerClient.Cancel)
	if err != nil {
		log.L().Warn("cancel request failed",
			zap.String("request-id", reqID), zap.Error(err))
		return false
	}
	if inErr := derror.FromPBError(resp.Err); inErr != nil {
		if derror.ErrRequestAlreadyGranted.Equal(inErr) {
			return true
		}
		log.L().Warn("cancel request refused",
			zap.String("request-id", reqID), zap.Error(inErr))
	}
	return false
}

func (c *Client) takeBackRacedGrant(reqID model.RequestID, ch <-chan *pb.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), bestEffortTimeout)
	defer cancel()
	select {
	case ev := <-ch:
		if ev.Type == pb.EventType_Grant {
			c.releaseBindings(ev.Bindings)
		}
	case <-ctx.Done():
		log.L().Warn("grant event did not arrive after cancel race",
			zap.String("request-id", reqID))
	}
}

func (c *Client) releaseBindings(bindings []*pb.Binding) {
	ctx, cancel := context.WithTimeout(context.Background(), bestEffortTimeout)
	defer cancel()
	for _, b := range bindings {
		if err := c.releaseOne(ctx, b.LeaseId); err != nil {
			log.L().Warn("returning an unwanted grant failed",
				zap.String("lease-id", b.LeaseId), zap.Error(err))
		}
	}
}

// Release returns one lease to the pool.
func (c *Client) Release(ctx context.Context, leaseID model.LeaseID) error {
	return c.releaseOne(c.errCenter.DeriveContext(ctx), leaseID)
}

func (c *Client) releaseOne(ctx context.Context, leaseID model.LeaseID) error {
	resp, err := rpcutil.DoFailoverRPC(ctx, c.servers,
		&pb.ReleaseRequest{SessionId: c.sessionID, LeaseId: leaseID},
		pb.ResourceManagerClient.Release)
	if err != nil {
		return errors.Trace(err)
	}
	return derror.FromPBError(resp.Err)
}

// ReleaseAll returns every lease the session holds and reports the
// released lease IDs.
func (c *Client) ReleaseAll(ctx context.Context) ([]model.LeaseID, error) {
	ctx = c.errCenter.DeriveContext(ctx)
	resp, err := rpcutil.DoFailoverRPC(ctx, c.servers,
		&pb.ReleaseRequest{SessionId: c.sessionID, All: true},
		pb.ResourceManagerClient.Release)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if inErr := derror.FromPBError(resp.Err); inErr != nil {
		return nil, inErr
	}
	return resp.Released, nil
}

// Cancel withdraws one of the session's queued requests by ID.
// Acquire already withdraws its own request when its context ends, so
// this is mostly for tooling that found the request through
// QuerySessions. A request granted in the meantime fails with
// ErrRequestAlreadyGranted and keeps its leases.
func (c *Client) Cancel(ctx context.Context, reqID model.RequestID) error {
	resp, err := rpcutil.DoFailoverRPC(ctx, c.servers,
		&pb.CancelRequest{SessionId: c.sessionID, RequestId: reqID},
		pb.ResourceManagerClient.Cancel)
	if err != nil {
		return errors.Trace(err)
	}
	return derror.FromPBError(resp.Err)
}

// QueryResources returns the pool state, optionally filtered by
// resource names, a tag, or to dirty resources only.
func (c *Client) QueryResources(
	ctx context.Context, names []model.ResourceID, tag model.Tag, dirtyOnly bool,
) ([]*pb.ResourceInfo, error) {
	resp, err := rpcutil.DoFailoverRPC(ctx, c.servers,
		&pb.QueryResourcesRequest{Names: names, Tag: tag, DirtyOnly: dirtyOnly},
		pb.ResourceManagerClient.QueryResources)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if inErr := derror.FromPBError(resp.Err); inErr != nil {
		return nil, inErr
	}
	return resp.Resources, nil
}

// QuerySessions returns every live session with its leases and
// outstanding requests.
func (c *Client) QuerySessions(ctx context.Context) ([]*pb.SessionInfo, error) {
	resp, err := rpcutil.DoFailoverRPC(ctx, c.servers,
		&pb.QuerySessionsRequest{}, pb.ResourceManagerClient.QuerySessions)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if inErr := derror.FromPBError(resp.Err); inErr != nil {
		return nil, inErr
	}
	return resp.Sessions, nil
}

// Rehabilitate marks a dirty resource usable again.
func (c *Client) Rehabilitate(ctx context.Context, name model.ResourceID) error {
	resp, err := rpcutil.DoFailoverRPC(ctx, c.servers,
		&pb.RehabilitateRequest{Name: name}, pb.ResourceManagerClient.Rehabilitate)
	if err != nil {
		return errors.Trace(err)
	}
	return derror.FromPBError(resp.Err)
}

// Close ends the session and stops the background loops. Leases still
// held at this point go through the server's forced release path and
// leave their resources dirty, so callers should ReleaseAll first
// when the resources are known to be in good shape.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), bestEffortTimeout)
	defer cancel()
	if _, err := rpcutil.DoFailoverRPC(ctx, c.servers,
		&pb.DisconnectRequest{SessionId: c.sessionID},
		pb.ResourceManagerClient.Disconnect); err != nil {
		log.L().Warn("disconnect failed, the session will expire on its own",
			zap.String("session-id", c.sessionID), zap.Error(err))
	}
	c.bgCancel()
	c.bgWg.Wait()
	c.servers.Close()
	return nil
}
