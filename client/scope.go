package client

import (
	"context"
	"time"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/rigpool/rigpool/model"
)

const scopeReleaseTimeout = 5 * time.Second

// WithResources acquires the given specs, runs fn with the grant and
// releases every lease when fn returns, including when it panics.
// The release runs on its own context so it still happens after ctx
// is cancelled. The first release failure is returned when fn itself
// succeeded.
func (c *Client) WithResources(
	ctx context.Context,
	specs []model.ResourceSpec,
	opts AcquireOptions,
	fn func(ctx context.Context, grant *Grant) error,
) (retErr error) {
	grant, err := c.Acquire(ctx, specs, opts)
	if err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), scopeReleaseTimeout)
		defer cancel()
		for _, id := range grant.LeaseIDs() {
			if err := c.releaseOne(releaseCtx, id); err != nil {
				log.L().Warn("scoped release failed",
					zap.String("lease-id", id), zap.Error(err))
				if retErr == nil {
					retErr = err
				}
			}
		}
	}()
	return fn(ctx, grant)
}
