package client

import (
	"context"
	"sync"
	"time"

	"github.com/gogo/status"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/rpcutil"
)

const watchRetryInterval = 1 * time.Second

// eventRouter hands server events to the goroutine waiting on the
// matching request. A decision that arrives before anyone waits is
// kept until claimed, the event stream can outrun the Acquire
// response carrying the request ID.
type eventRouter struct {
	mu        sync.Mutex
	waiters   map[model.RequestID]chan *pb.Event
	unclaimed map[model.RequestID]*pb.Event
	onReclaim func(leaseIDs []model.LeaseID, reason pb.ReclaimReason)
}

func newEventRouter(onReclaim func([]model.LeaseID, pb.ReclaimReason)) *eventRouter {
	return &eventRouter{
		waiters:   make(map[model.RequestID]chan *pb.Event),
		unclaimed: make(map[model.RequestID]*pb.Event),
		onReclaim: onReclaim,
	}
}

// expect returns the channel that delivers the decision of the given
// request. The channel holds one event, a request is decided exactly
// once.
func (r *eventRouter) expect(reqID model.RequestID) <-chan *pb.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan *pb.Event, 1)
	if ev, ok := r.unclaimed[reqID]; ok {
		delete(r.unclaimed, reqID)
		ch <- ev
		return ch
	}
	r.waiters[reqID] = ch
	return ch
}

func (r *eventRouter) forget(reqID model.RequestID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.waiters, reqID)
	delete(r.unclaimed, reqID)
}

func (r *eventRouter) dispatch(ev *pb.Event) {
	switch ev.Type {
	case pb.EventType_Grant, pb.EventType_Deny:
		r.mu.Lock()
		if ch, ok := r.waiters[ev.RequestId]; ok {
			delete(r.waiters, ev.RequestId)
			ch <- ev
		} else {
			r.unclaimed[ev.RequestId] = ev
		}
		r.mu.Unlock()
	case pb.EventType_Reclaim:
		log.L().Warn("server reclaimed leases",
			zap.Strings("lease-ids", ev.LeaseIds),
			zap.Stringer("reason", ev.Reason))
		if r.onReclaim != nil {
			r.onReclaim(ev.LeaseIds, ev.Reason)
		}
	default:
		log.L().Info("unrecognized event ignored", zap.Stringer("event-type", ev.Type))
	}
}

// runWatchLoop consumes the server event stream, reconnecting until
// ctx ends. Events published while the stream is down stay buffered
// on the server, nothing is lost across a reconnect.
func (c *Client) runWatchLoop(ctx context.Context) {
	rl := rate.NewLimiter(rate.Every(watchRetryInterval), 1)
	for {
		if err := rl.Wait(ctx); err != nil {
			return
		}
		stream, err := rpcutil.DoFailoverRPC(ctx, c.servers,
			&pb.WatchRequest{SessionId: c.sessionID},
			pb.ResourceManagerClient.Watch)
		if err != nil {
			if status.Convert(err).Code() == codes.Canceled || ctx.Err() != nil {
				return
			}
			log.L().Warn("watch stream not established, retrying",
				zap.String("session-id", c.sessionID), zap.Error(err))
			continue
		}
		if err := c.consumeEvents(stream); ctx.Err() != nil {
			return
		} else if err != nil {
			log.L().Warn("watch stream broken, reconnecting",
				zap.String("session-id", c.sessionID), zap.Error(err))
		}
	}
}

func (c *Client) consumeEvents(stream pb.ResourceManager_WatchClient) error {
	for {
		ev, err := stream.Recv()
		if err != nil {
			return errors.Trace(err)
		}
		c.router.dispatch(ev)
	}
}
