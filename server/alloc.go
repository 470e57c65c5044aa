package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edwingeng/deque"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/autoid"
	"github.com/rigpool/rigpool/pkg/clock"
	"github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/registry"
)

// pendingRequest tracks one acquisition request from submit until its
// session ends. Terminal requests stay around so Cancel can answer
// idempotently.
type pendingRequest struct {
	ID          model.RequestID
	Session     model.SessionID
	Specs       []model.ResourceSpec
	Priority    model.Priority
	State       model.RequestState
	SubmittedAt time.Time
	// DeadlineAt is zero when the request waits forever.
	DeadlineAt time.Time
	LeaseTTL   time.Duration
	LeaseIDs   []model.LeaseID

	// inline suppresses the watch event for a grant that is being
	// returned in the Acquire response itself.
	inline bool
}

func (r *pendingRequest) toPB() *pb.RequestInfo {
	info := &pb.RequestInfo{
		RequestId:   r.ID,
		State:       r.State.ToPB(),
		Priority:    r.Priority,
		Specs:       model.SpecsToPB(r.Specs),
		SubmittedAt: r.SubmittedAt.UnixMilli(),
	}
	if !r.DeadlineAt.IsZero() {
		info.DeadlineAt = r.DeadlineAt.UnixMilli()
	}
	return info
}

// allocator is the single serialization point for every ownership
// mutation. One mutex orders grants, releases, reclaims and queue
// evaluation, which keeps the grant history totally ordered.
type allocator struct {
	mu    sync.RWMutex
	table *leaseTable

	// live sessions admitted to mutations. Membership changes go
	// through the same mutex as grants, so a grant can never race a
	// session teardown.
	sessions map[model.SessionID]struct{}

	// queued requests, one FIFO band per priority. prioDesc keeps the
	// priorities sorted from most to least urgent.
	bands    map[model.Priority]deque.Deque
	prioDesc []model.Priority

	requests  map[model.RequestID]*pendingRequest
	bySession map[model.SessionID]map[model.RequestID]*pendingRequest

	uuids   *autoid.UUIDAllocator
	clock   clock.Clock
	hub     *watchHub
	reg     *registry.Registry
	metrics *allocatorMetrics

	disableBackfill bool

	checkInterval time.Duration
}

func newAllocator(
	table *leaseTable,
	hub *watchHub,
	reg *registry.Registry,
	clk clock.Clock,
	metrics *allocatorMetrics,
	disableBackfill bool,
	checkInterval time.Duration,
) *allocator {
	return &allocator{
		table:           table,
		sessions:        make(map[model.SessionID]struct{}),
		bands:           make(map[model.Priority]deque.Deque),
		requests:        make(map[model.RequestID]*pendingRequest),
		bySession:       make(map[model.SessionID]map[model.RequestID]*pendingRequest),
		uuids:           autoid.NewUUIDAllocator(),
		clock:           clk,
		hub:             hub,
		reg:             reg,
		metrics:         metrics,
		disableBackfill: disableBackfill,
		checkInterval:   checkInterval,
	}
}

// RegisterSession admits a session to mutations.
func (a *allocator) RegisterSession(id model.SessionID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[id] = struct{}{}
	a.metrics.sessionGauge.Set(float64(len(a.sessions)))
}

// Submit evaluates a new request synchronously. It returns the request
// together with its leases when the grant is immediate, the request
// alone when it is queued, and an error for permanent denials.
func (a *allocator) Submit(
	ctx context.Context,
	session model.SessionID,
	specs []model.ResourceSpec,
	priority model.Priority,
	waitTimeout time.Duration,
	leaseTTL time.Duration,
) (*pendingRequest, []*model.Lease, error) {
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return nil, nil, err
		}
	}
	if len(specs) == 0 {
		return nil, nil, errors.ErrInvalidSpec.GenWithStackByArgs("no specifiers")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.sessions[session]; !ok {
		return nil, nil, errors.ErrUnknownSession.GenWithStackByArgs(session)
	}
	if err := a.checkPermanentLocked(specs); err != nil {
		a.metrics.denialCounter.WithLabelValues(denialReason(err)).Inc()
		return nil, nil, err
	}

	now := a.clock.Now()
	req := &pendingRequest{
		ID:          a.uuids.AllocID(),
		Session:     session,
		Specs:       specs,
		Priority:    priority,
		State:       model.RequestPending,
		SubmittedAt: now,
		LeaseTTL:    leaseTTL,
		inline:      true,
	}
	if waitTimeout > 0 {
		req.DeadlineAt = now.Add(waitTimeout)
	}
	a.requests[req.ID] = req
	sessionReqs := a.bySession[session]
	if sessionReqs == nil {
		sessionReqs = make(map[model.RequestID]*pendingRequest)
		a.bySession[session] = sessionReqs
	}
	sessionReqs[req.ID] = req

	// the new request competes through the same evaluation walk as the
	// queue, so it cannot overtake a queued request that has dibs on
	// the same resources
	a.enqueueLocked(req)
	a.rescheduleLocked(ctx)
	req.inline = false

	if req.State == model.RequestGranted {
		leases := make([]*model.Lease, 0, len(req.LeaseIDs))
		for _, id := range req.LeaseIDs {
			if lease, ok := a.table.lease(id); ok {
				leases = append(leases, lease)
			}
		}
		return req, leases, nil
	}
	log.L().Info("request queued",
		zap.String("request-id", req.ID),
		zap.String("session-id", session),
		zap.Int32("priority", priority),
		zap.Duration("wait-timeout", waitTimeout))
	return req, nil, nil
}

// checkPermanentLocked rejects requests that no future release or
// rehabilitation could ever satisfy, so they fail at submit instead of
// queuing forever.
func (a *allocator) checkPermanentLocked(specs []model.ResourceSpec) error {
	for i := range specs {
		spec := &specs[i]
		if spec.Name != "" {
			state, ok := a.table.resources[spec.Name]
			if !ok {
				return errors.ErrUnknownResource.GenWithStackByArgs(spec.Name)
			}
			if spec.Mode == model.ModeShared && state.meta.Mode != model.ModeShared {
				return errors.ErrInvalidSpec.GenWithStackByArgs(
					"resource " + spec.Name + " never allows shared access")
			}
			if state.dirty {
				return errors.ErrResourceDirty.GenWithStackByArgs(spec.Name)
			}
			continue
		}
		// a tag spec can never be granted if the pool does not carry
		// enough members with a compatible mode, dirty or not
		members := 0
		for _, name := range a.table.ordered {
			state := a.table.resources[name]
			if !state.meta.HasTag(spec.Tag) {
				continue
			}
			if spec.Mode == model.ModeShared && state.meta.Mode != model.ModeShared {
				continue
			}
			members++
		}
		if members < spec.WantCount() {
			return errors.ErrUnsatisfiable.GenWithStackByArgs(
				"tag " + spec.Tag + " has too few members")
		}
	}
	return nil
}

// Release handles the client-initiated release of one lease, or of all
// leases of the session.
func (a *allocator) Release(ctx context.Context, session model.SessionID, leaseID model.LeaseID, all bool) ([]model.LeaseID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.sessions[session]; !ok {
		return nil, errors.ErrUnknownSession.GenWithStackByArgs(session)
	}
	var targets []*model.Lease
	if all {
		targets = a.table.leasesOf(session)
	} else {
		lease, ok := a.table.lease(leaseID)
		if !ok {
			return nil, errors.ErrUnknownLease.GenWithStackByArgs(leaseID)
		}
		if lease.Session != session {
			return nil, errors.ErrNotLeaseOwner.GenWithStackByArgs(session, leaseID)
		}
		targets = []*model.Lease{lease}
	}

	released := make([]model.LeaseID, 0, len(targets))
	affected := make(map[model.ResourceID]struct{})
	for _, lease := range targets {
		a.table.remove(lease)
		for _, name := range lease.Covers {
			affected[name] = struct{}{}
			if a.table.resources[lease.Resource].meta.DirtyOnRelease {
				a.table.markDirty(name)
			}
		}
		a.detachLeaseLocked(lease)
		released = append(released, lease.ID)
	}
	a.persistLocked(ctx, affected)
	log.L().Info("leases released",
		zap.String("session-id", session),
		zap.Any("lease-ids", released))
	a.rescheduleLocked(ctx)
	return released, nil
}

// ForceReleaseAll reclaims everything a session owns through the
// forced path: resources are marked dirty, pending requests are
// cancelled and the session stops being admitted. It is idempotent so
// a disconnect racing the heartbeat checker is harmless.
func (a *allocator) ForceReleaseAll(ctx context.Context, session model.SessionID, reason pb.ReclaimReason) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.sessions[session]; !ok {
		return
	}
	delete(a.sessions, session)
	a.metrics.sessionGauge.Set(float64(len(a.sessions)))

	affected := make(map[model.ResourceID]struct{})
	leases := a.table.leasesOf(session)
	reclaimed := make([]model.LeaseID, 0, len(leases))
	for _, lease := range leases {
		a.table.remove(lease)
		// the holder is gone without cleanup, nothing may reuse the
		// covered resources until an operator rehabilitates them
		for _, name := range lease.Covers {
			a.table.markDirty(name)
			affected[name] = struct{}{}
		}
		a.detachLeaseLocked(lease)
		reclaimed = append(reclaimed, lease.ID)
		a.metrics.reclaimCounter.WithLabelValues(reclaimLabel(reason)).Inc()
	}
	if len(reclaimed) > 0 {
		a.hub.Publish(session, reclaimEvent(reclaimed, reason))
		log.L().Warn("leases force-released",
			zap.String("session-id", session),
			zap.Any("lease-ids", reclaimed),
			zap.Stringer("reason", reason))
	}

	for _, req := range a.bySession[session] {
		if req.State == model.RequestQueued || req.State == model.RequestPending {
			req.State = model.RequestCancelled
			a.metrics.queuedGauge.Dec()
			a.metrics.denialCounter.WithLabelValues("session-closed").Inc()
			a.hub.Publish(session, denyEvent(req.ID, model.RequestCancelled, nil))
		}
		delete(a.requests, req.ID)
	}
	delete(a.bySession, session)

	a.persistLocked(ctx, affected)
	a.rescheduleLocked(ctx)
}

// Cancel withdraws a queued request. Cancelling a request that already
// reached a terminal state is a no-op reporting that state, cancelling
// a granted request is refused.
func (a *allocator) Cancel(ctx context.Context, session model.SessionID, reqID model.RequestID) (model.RequestState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	req, ok := a.requests[reqID]
	if !ok || req.Session != session {
		return 0, errors.ErrUnknownRequest.GenWithStackByArgs(reqID)
	}
	switch req.State {
	case model.RequestGranted:
		return 0, errors.ErrRequestAlreadyGranted.GenWithStackByArgs(reqID)
	case model.RequestPending, model.RequestQueued:
		req.State = model.RequestCancelled
		a.metrics.queuedGauge.Dec()
		a.metrics.denialCounter.WithLabelValues("cancelled").Inc()
		a.hub.Publish(session, denyEvent(req.ID, model.RequestCancelled, nil))
		log.L().Info("request cancelled",
			zap.String("request-id", reqID),
			zap.String("session-id", session))
		a.rescheduleLocked(ctx)
	}
	return req.State, nil
}

// Rehabilitate clears the dirty flag of a resource and re-evaluates
// the queue, since requests may have been waiting for exactly this.
func (a *allocator) Rehabilitate(ctx context.Context, name model.ResourceID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.table.rehabilitate(name); err != nil {
		return err
	}
	a.persistLocked(ctx, map[model.ResourceID]struct{}{name: {}})
	log.L().Info("resource rehabilitated", zap.String("resource", name))
	a.rescheduleLocked(ctx)
	return nil
}

// detachLeaseLocked updates the owning request after its lease left
// the table.
func (a *allocator) detachLeaseLocked(lease *model.Lease) {
	req, ok := a.requests[lease.Request]
	if !ok {
		return
	}
	for i, id := range req.LeaseIDs {
		if id == lease.ID {
			req.LeaseIDs = append(req.LeaseIDs[:i], req.LeaseIDs[i+1:]...)
			break
		}
	}
	if len(req.LeaseIDs) == 0 && req.State == model.RequestGranted {
		req.State = model.RequestReleased
	}
}

// enqueueLocked appends the request to its priority band.
func (a *allocator) enqueueLocked(req *pendingRequest) {
	band, ok := a.bands[req.Priority]
	if !ok {
		band = deque.NewDeque()
		a.bands[req.Priority] = band
		idx := sort.Search(len(a.prioDesc), func(i int) bool {
			return a.prioDesc[i] < req.Priority
		})
		a.prioDesc = append(a.prioDesc, 0)
		copy(a.prioDesc[idx+1:], a.prioDesc[idx:])
		a.prioDesc[idx] = req.Priority
	}
	band.PushBack(req)
	a.metrics.queuedGauge.Inc()
}

// rescheduleLocked walks the queue from the most urgent band down and
// grants everything it can. With backfill on, an unsatisfiable request
// reserves the resources it could use right now, and requests behind
// it may only match what is left over. With backfill off, evaluation
// stops at the first unsatisfiable request entirely.
func (a *allocator) rescheduleLocked(ctx context.Context) {
	reserved := make(map[model.ResourceID]struct{})
	now := a.clock.Now()
	blocked := false
	for _, prio := range a.prioDesc {
		band := a.bands[prio]
		if band == nil {
			continue
		}
		for i, n := 0, band.Len(); i < n; i++ {
			req, _ := band.PopFront().(*pendingRequest)
			if req == nil || (req.State != model.RequestQueued && req.State != model.RequestPending) {
				// request left the queue some other way, drop the entry
				continue
			}
			if blocked {
				band.PushBack(req)
				continue
			}
			leases, ok := a.table.tryAcquire(req, now, reserved, a.uuids.AllocID)
			if !ok {
				if req.State == model.RequestPending {
					req.State = model.RequestQueued
				}
				if a.disableBackfill {
					blocked = true
				} else {
					a.table.reserveFor(req.Specs, reserved)
				}
				band.PushBack(req)
				continue
			}
			if err := a.commitGrantLocked(ctx, req, leases); err != nil {
				// the registry write failed, undo and retry later
				if req.State == model.RequestPending {
					req.State = model.RequestQueued
				}
				band.PushBack(req)
				blocked = true
				continue
			}
		}
	}
	a.compactBandsLocked()
	a.updateOccupancyLocked()
}

// commitGrantLocked finalizes leases the table has already committed:
// it persists the new owners, transitions the request and notifies the
// watcher. On a persistence failure the grant is rolled back entirely.
func (a *allocator) commitGrantLocked(ctx context.Context, req *pendingRequest, leases []*model.Lease) error {
	affected := make(map[model.ResourceID]struct{})
	for _, lease := range leases {
		for _, name := range lease.Covers {
			affected[name] = struct{}{}
		}
	}
	if err := a.flushStatesLocked(ctx, affected); err != nil {
		for _, lease := range leases {
			a.table.remove(lease)
		}
		log.L().Warn("grant rolled back, registry unavailable",
			zap.String("request-id", req.ID),
			zap.Error(err))
		return err
	}

	req.LeaseIDs = req.LeaseIDs[:0]
	for _, lease := range leases {
		req.LeaseIDs = append(req.LeaseIDs, lease.ID)
	}
	req.State = model.RequestGranted
	a.metrics.queuedGauge.Dec()
	a.metrics.grantCounter.Inc()
	if !req.inline {
		a.hub.Publish(req.Session, grantEvent(req.ID, leases))
	}
	resources := make([]model.ResourceID, 0, len(leases))
	for _, lease := range leases {
		resources = append(resources, lease.Resource)
	}
	log.L().Info("request granted",
		zap.String("request-id", req.ID),
		zap.String("session-id", req.Session),
		zap.Any("resources", resources))
	return nil
}

// compactBandsLocked drops bands that ran empty so the walk stays
// proportional to the live queue.
func (a *allocator) compactBandsLocked() {
	for prio, band := range a.bands {
		if band.Len() > 0 {
			continue
		}
		delete(a.bands, prio)
		for i, p := range a.prioDesc {
			if p == prio {
				a.prioDesc = append(a.prioDesc[:i], a.prioDesc[i+1:]...)
				break
			}
		}
	}
}

// persistLocked writes resource states through to the registry,
// logging instead of failing: the in-memory release already happened
// and a stale store record only errs towards dirty-marking after a
// restart.
func (a *allocator) persistLocked(ctx context.Context, affected map[model.ResourceID]struct{}) {
	if err := a.flushStatesLocked(ctx, affected); err != nil {
		log.L().Warn("resource state not persisted", zap.Error(err))
	}
}

func (a *allocator) flushStatesLocked(ctx context.Context, affected map[model.ResourceID]struct{}) error {
	if len(affected) == 0 {
		return nil
	}
	updates := make([]registry.StateUpdate, 0, len(affected))
	for name := range affected {
		state, ok := a.table.resources[name]
		if !ok {
			continue
		}
		updates = append(updates, registry.StateUpdate{
			Name:   name,
			Dirty:  state.dirty,
			Owners: a.table.ownersOf(name),
		})
	}
	return a.reg.PersistStates(ctx, updates...)
}

func (a *allocator) updateOccupancyLocked() {
	free, held, dirty := a.table.counts()
	a.metrics.resourceGauge.WithLabelValues("free").Set(float64(free))
	a.metrics.resourceGauge.WithLabelValues("held").Set(float64(held))
	a.metrics.resourceGauge.WithLabelValues("dirty").Set(float64(dirty))
	a.metrics.leaseGauge.Set(float64(len(a.table.leases)))
}

// runBackgroundChecker enforces wait deadlines and lease TTLs. The
// decisions run through the same mutex as every other mutation.
func (a *allocator) runBackgroundChecker(ctx context.Context) error {
	ticker := a.clock.Ticker(a.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.L().Info("allocation checker exited")
			return nil
		case <-ticker.C:
		}
		a.checkExpiredOnce(ctx)
	}
}

func (a *allocator) checkExpiredOnce(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	changed := false
	affected := make(map[model.ResourceID]struct{})

	// leases past their TTL go through the forced path, grouped per
	// session so the holder gets one reclaim notification
	expiredBySession := make(map[model.SessionID][]model.LeaseID)
	for _, lease := range a.table.leases {
		if lease.ExpireAt.IsZero() || lease.ExpireAt.After(now) {
			continue
		}
		expiredBySession[lease.Session] = append(expiredBySession[lease.Session], lease.ID)
	}
	for session, ids := range expiredBySession {
		sort.Strings(ids)
		for _, id := range ids {
			lease, ok := a.table.lease(id)
			if !ok {
				log.L().Panic("expired lease vanished", zap.String("lease-id", id))
			}
			a.table.remove(lease)
			for _, name := range lease.Covers {
				a.table.markDirty(name)
				affected[name] = struct{}{}
			}
			a.detachLeaseLocked(lease)
			a.metrics.reclaimCounter.WithLabelValues("lease-timeout").Inc()
		}
		a.hub.Publish(session, reclaimEvent(ids, pb.ReclaimReason_LeaseTimeout))
		log.L().Warn("leases expired",
			zap.String("session-id", session),
			zap.Any("lease-ids", ids))
		changed = true
	}

	// queued requests past their wait deadline fail exactly once
	for _, req := range a.requests {
		if req.State != model.RequestQueued || req.DeadlineAt.IsZero() || req.DeadlineAt.After(now) {
			continue
		}
		req.State = model.RequestTimedOut
		a.metrics.queuedGauge.Dec()
		a.metrics.denialCounter.WithLabelValues("timeout").Inc()
		waited := now.Sub(req.SubmittedAt)
		a.hub.Publish(req.Session, denyEvent(req.ID, model.RequestTimedOut,
			errors.ErrWaitTimeout.GenWithStackByArgs(req.ID, waited)))
		log.L().Info("request timed out",
			zap.String("request-id", req.ID),
			zap.String("session-id", req.Session),
			zap.Duration("waited", waited))
		changed = true
	}

	if changed {
		a.persistLocked(ctx, affected)
		a.rescheduleLocked(ctx)
	}
}

// SnapshotResources returns the monitoring view of the pool.
func (a *allocator) SnapshotResources(names []model.ResourceID, tag model.Tag, dirtyOnly bool) []*pb.ResourceInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.table.snapshotResources(names, tag, dirtyOnly)
}

// SessionView returns the lease ids and requests of one session for
// the monitoring surface.
func (a *allocator) SessionView(session model.SessionID) ([]model.LeaseID, []*pb.RequestInfo) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	leases := a.table.leasesOf(session)
	leaseIDs := make([]model.LeaseID, 0, len(leases))
	for _, lease := range leases {
		leaseIDs = append(leaseIDs, lease.ID)
	}
	reqs := make([]*pendingRequest, 0, len(a.bySession[session]))
	for _, req := range a.bySession[session] {
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].SubmittedAt.Equal(reqs[j].SubmittedAt) {
			return reqs[i].SubmittedAt.Before(reqs[j].SubmittedAt)
		}
		return reqs[i].ID < reqs[j].ID
	})
	infos := make([]*pb.RequestInfo, 0, len(reqs))
	for _, req := range reqs {
		infos = append(infos, req.toPB())
	}
	return leaseIDs, infos
}

func denialReason(err error) string {
	switch {
	case errors.ErrUnknownResource.Equal(err):
		return "unknown-resource"
	case errors.ErrResourceDirty.Equal(err):
		return "dirty"
	case errors.ErrInvalidSpec.Equal(err):
		return "invalid-spec"
	case errors.ErrUnsatisfiable.Equal(err):
		return "unsatisfiable"
	default:
		return "other"
	}
}

func reclaimLabel(reason pb.ReclaimReason) string {
	if reason == pb.ReclaimReason_LeaseTimeout {
		return "lease-timeout"
	}
	return "session-timeout"
}
