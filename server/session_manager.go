package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pkg/autoid"
	"github.com/rigpool/rigpool/pkg/clock"
	"github.com/rigpool/rigpool/pkg/errors"
)

// epochGenerator hands out monotonically increasing epochs. It is
// satisfied by the metastore client, so epochs survive restarts and a
// reconnecting client can always tell its newest incarnation.
type epochGenerator interface {
	GenEpoch(ctx context.Context) (int64, error)
}

type sessionEntry struct {
	info *model.SessionInfo
	// expireAt is the deadline by which the next heartbeat must
	// arrive. Two missed heartbeat intervals push it into the past.
	expireAt time.Time
}

// sessionManager tracks connected clients and their heartbeat
// deadlines. Expiry consequences are delegated to onExpired, which
// runs outside the manager's mutex.
type sessionManager struct {
	mu      sync.RWMutex
	entries map[model.SessionID]*sessionEntry

	uuids        *autoid.UUIDAllocator
	epochs       epochGenerator
	clock        clock.Clock
	ttl          time.Duration
	loopInterval time.Duration

	onExpired func(ctx context.Context, info *model.SessionInfo)
}

func newSessionManager(
	epochs epochGenerator,
	clk clock.Clock,
	timeouts TimeoutConfig,
	onExpired func(ctx context.Context, info *model.SessionInfo),
) *sessionManager {
	return &sessionManager{
		entries:      make(map[model.SessionID]*sessionEntry),
		uuids:        autoid.NewUUIDAllocator(),
		epochs:       epochs,
		clock:        clk,
		ttl:          timeouts.SessionTTL,
		loopInterval: timeouts.SessionCheckLoopInterval,
		onExpired:    onExpired,
	}
}

// Connect registers a new session and returns its identity. The epoch
// comes from the metastore, so it keeps increasing across server
// restarts.
func (m *sessionManager) Connect(ctx context.Context, clientName string, addr string) (*model.SessionInfo, error) {
	epoch, err := m.epochs.GenEpoch(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRegistryUnavailable, err)
	}
	now := m.clock.Now()
	info := &model.SessionInfo{
		ID:          m.uuids.AllocID(),
		ClientName:  clientName,
		Addr:        addr,
		Epoch:       epoch,
		ConnectedAt: now,
	}

	m.mu.Lock()
	m.entries[info.ID] = &sessionEntry{
		info:     info,
		expireAt: now.Add(m.ttl),
	}
	m.mu.Unlock()

	log.L().Info("session connected",
		zap.String("session-id", info.ID),
		zap.String("client-name", clientName),
		zap.String("addr", addr),
		zap.Int64("epoch", epoch))
	return info.Clone(), nil
}

// Keepalive refreshes the session's heartbeat deadline and returns the
// new deadline.
func (m *sessionManager) Keepalive(id model.SessionID) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return time.Time{}, errors.ErrUnknownSession.GenWithStackByArgs(id)
	}
	entry.expireAt = m.clock.Now().Add(m.ttl)
	return entry.expireAt, nil
}

// Remove drops the session without running the expiry callback. The
// caller handles the consequences itself, as Disconnect does.
func (m *sessionManager) Remove(id model.SessionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[id]
	delete(m.entries, id)
	return ok
}

// Get returns a copy of the session's identity.
func (m *sessionManager) Get(id model.SessionID) (*model.SessionInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return entry.info.Clone(), true
}

// Snapshot returns all live sessions ordered by connect time.
func (m *sessionManager) Snapshot() []*model.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]*model.SessionInfo, 0, len(m.entries))
	for _, entry := range m.entries {
		infos = append(infos, entry.info.Clone())
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].ConnectedAt.Equal(infos[j].ConnectedAt) {
			return infos[i].ConnectedAt.Before(infos[j].ConnectedAt)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// runBackgroundChecker disconnects sessions whose heartbeats stopped.
func (m *sessionManager) runBackgroundChecker(ctx context.Context) error {
	ticker := m.clock.Ticker(m.loopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.L().Info("session checker exited")
			return nil
		case <-ticker.C:
		}
		m.checkExpiredOnce(ctx)
	}
}

func (m *sessionManager) checkExpiredOnce(ctx context.Context) {
	now := m.clock.Now()

	var expired []*model.SessionInfo
	m.mu.Lock()
	for id, entry := range m.entries {
		if entry.expireAt.After(now) {
			continue
		}
		expired = append(expired, entry.info)
		delete(m.entries, id)
	}
	m.mu.Unlock()

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ID < expired[j].ID
	})
	for _, info := range expired {
		log.L().Warn("session heartbeat lost",
			zap.String("session-id", info.ID),
			zap.String("client-name", info.ClientName))
		m.onExpired(ctx, info)
	}
}
