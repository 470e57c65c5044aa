package server

import (
	"context"
	"time"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/clock"
	"github.com/rigpool/rigpool/pkg/errors"
)

// service implements pb.ResourceManagerServer. Domain failures travel
// inside the response so the client can map them back to typed errors,
// transport failures stay gRPC status errors.
type service struct {
	timeouts TimeoutConfig
	sessions *sessionManager
	alloc    *allocator
	hub      *watchHub
	clock    clock.Clock
}

func newService(
	timeouts TimeoutConfig,
	sessions *sessionManager,
	alloc *allocator,
	hub *watchHub,
	clk clock.Clock,
) *service {
	return &service{
		timeouts: timeouts,
		sessions: sessions,
		alloc:    alloc,
		hub:      hub,
		clock:    clk,
	}
}

// Connect implements pb.ResourceManagerServer.Connect.
func (s *service) Connect(ctx context.Context, req *pb.ConnectRequest) (*pb.ConnectResponse, error) {
	info, err := s.sessions.Connect(ctx, req.ClientName, req.Addr)
	if err != nil {
		return &pb.ConnectResponse{Err: errors.ToPBError(err)}, nil
	}
	s.hub.Register(info.ID)
	s.alloc.RegisterSession(info.ID)
	return &pb.ConnectResponse{
		SessionId:           info.ID,
		Epoch:               info.Epoch,
		HeartbeatIntervalMs: s.timeouts.HeartbeatInterval.Milliseconds(),
		SessionTtlMs:        s.timeouts.SessionTTL.Milliseconds(),
	}, nil
}

// Disconnect implements pb.ResourceManagerServer.Disconnect. Leases
// the client did not release beforehand go through the forced path, so
// a sloppy teardown leaves its resources dirty instead of silently
// clean. Disconnecting an already gone session succeeds.
func (s *service) Disconnect(ctx context.Context, req *pb.DisconnectRequest) (*pb.DisconnectResponse, error) {
	s.sessions.Remove(req.SessionId)
	s.alloc.ForceReleaseAll(ctx, req.SessionId, pb.ReclaimReason_SessionTimeout)
	s.hub.CloseSession(req.SessionId)
	return &pb.DisconnectResponse{}, nil
}

// Heartbeat implements pb.ResourceManagerServer.Heartbeat.
func (s *service) Heartbeat(ctx context.Context, req *pb.HeartbeatRequest) (*pb.HeartbeatResponse, error) {
	if _, err := s.sessions.Keepalive(req.SessionId); err != nil {
		return &pb.HeartbeatResponse{Err: errors.ToPBError(err)}, nil
	}
	return &pb.HeartbeatResponse{Timestamp: s.clock.Now().UnixMilli()}, nil
}

// Acquire implements pb.ResourceManagerServer.Acquire.
func (s *service) Acquire(ctx context.Context, req *pb.AcquireRequest) (*pb.AcquireResponse, error) {
	request, leases, err := s.alloc.Submit(
		ctx,
		req.SessionId,
		model.SpecsFromPB(req.Specs),
		req.Priority,
		time.Duration(req.WaitTimeoutMs)*time.Millisecond,
		time.Duration(req.LeaseTtlMs)*time.Millisecond,
	)
	if err != nil {
		return &pb.AcquireResponse{Err: errors.ToPBError(err)}, nil
	}
	resp := &pb.AcquireResponse{
		RequestId: request.ID,
		State:     request.State.ToPB(),
	}
	for _, lease := range leases {
		resp.Bindings = append(resp.Bindings, lease.ToPB())
	}
	return resp, nil
}

// Release implements pb.ResourceManagerServer.Release.
func (s *service) Release(ctx context.Context, req *pb.ReleaseRequest) (*pb.ReleaseResponse, error) {
	released, err := s.alloc.Release(ctx, req.SessionId, req.LeaseId, req.All)
	if err != nil {
		return &pb.ReleaseResponse{Err: errors.ToPBError(err)}, nil
	}
	return &pb.ReleaseResponse{Released: released}, nil
}

// Cancel implements pb.ResourceManagerServer.Cancel.
func (s *service) Cancel(ctx context.Context, req *pb.CancelRequest) (*pb.CancelResponse, error) {
	state, err := s.alloc.Cancel(ctx, req.SessionId, req.RequestId)
	if err != nil {
		return &pb.CancelResponse{Err: errors.ToPBError(err)}, nil
	}
	return &pb.CancelResponse{State: state.ToPB()}, nil
}

// Watch implements pb.ResourceManagerServer.Watch. Events buffered
// before the watcher attached are delivered first, then the stream
// follows the mailbox until the session ends or the watcher leaves.
func (s *service) Watch(req *pb.WatchRequest, stream pb.ResourceManager_WatchServer) error {
	mailbox, detach, err := s.hub.Attach(req.SessionId)
	if err != nil {
		return err
	}
	defer detach()

	ctx := stream.Context()
	for {
		ev, err := mailbox.Receive(ctx)
		if err != nil {
			if errors.ErrSessionClosed.Equal(err) {
				return nil
			}
			return err
		}
		if err := stream.Send(ev); err != nil {
			return err
		}
	}
}

// QueryResources implements pb.ResourceManagerServer.QueryResources.
func (s *service) QueryResources(ctx context.Context, req *pb.QueryResourcesRequest) (*pb.QueryResourcesResponse, error) {
	return &pb.QueryResourcesResponse{
		Resources: s.alloc.SnapshotResources(req.Names, req.Tag, req.DirtyOnly),
	}, nil
}

// QuerySessions implements pb.ResourceManagerServer.QuerySessions.
func (s *service) QuerySessions(ctx context.Context, req *pb.QuerySessionsRequest) (*pb.QuerySessionsResponse, error) {
	sessions := s.sessions.Snapshot()
	infos := make([]*pb.SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		leaseIDs, requests := s.alloc.SessionView(sess.ID)
		infos = append(infos, &pb.SessionInfo{
			SessionId:   sess.ID,
			ClientName:  sess.ClientName,
			Addr:        sess.Addr,
			Epoch:       sess.Epoch,
			ConnectedAt: sess.ConnectedAt.UnixMilli(),
			LeaseIds:    leaseIDs,
			Requests:    requests,
		})
	}
	return &pb.QuerySessionsResponse{Sessions: infos}, nil
}

// Rehabilitate implements pb.ResourceManagerServer.Rehabilitate.
func (s *service) Rehabilitate(ctx context.Context, req *pb.RehabilitateRequest) (*pb.RehabilitateResponse, error) {
	if err := s.alloc.Rehabilitate(ctx, req.Name); err != nil {
		return &pb.RehabilitateResponse{Err: errors.ToPBError(err)}, nil
	}
	return &pb.RehabilitateResponse{}, nil
}
