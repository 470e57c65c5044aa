package client

import (
	"context"
	"time"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/clock"
	derror "github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/rpcutil"
)

// runHeartbeatLoop keeps the session alive at the interval announced
// by the server. When the server stops answering for longer than the
// session TTL, or tells us the session is gone, the error center
// trips and every blocked Acquire unblocks with the session error.
func (c *Client) runHeartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(c.heartbeatInterval)
	defer ticker.Stop()

	lastRespondedAt := clock.Mono()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		resp, err := rpcutil.DoFailoverRPC(ctx, c.servers,
			&pb.HeartbeatRequest{SessionId: c.sessionID},
			pb.ResourceManagerClient.Heartbeat)
		if err != nil {
			if stale := lastRespondedAt.Elapsed(); stale > c.sessionTTL {
				c.errCenter.OnError(derror.ErrHeartbeatStale.GenWithStackByArgs(stale))
				return
			}
			log.L().Warn("heartbeat failed, retrying",
				zap.String("session-id", c.sessionID), zap.Error(err))
			continue
		}
		if inErr := derror.FromPBError(resp.Err); inErr != nil {
			if derror.ErrUnknownSession.Equal(inErr) {
				c.errCenter.OnError(
					derror.ErrSessionLost.GenWithStackByArgs(c.sessionID, inErr))
				return
			}
			log.L().Warn("heartbeat refused",
				zap.String("session-id", c.sessionID), zap.Error(inErr))
			continue
		}
		lastRespondedAt = clock.Mono()
	}
}
