package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/clock"
	"github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/meta/mock"
	"github.com/rigpool/rigpool/pkg/promutil"
	"github.com/rigpool/rigpool/registry"
)

type allocHarness struct {
	t     *testing.T
	clk   *clock.Mock
	hub   *watchHub
	reg   *registry.Registry
	alloc *allocator
}

func newAllocHarness(t *testing.T, disableBackfill bool, metas ...model.ResourceMeta) *allocHarness {
	t.Helper()

	reg := registry.NewRegistry(mock.NewMetaMock())
	recovered, err := reg.Bootstrap(context.Background(), metas)
	require.NoError(t, err)

	clk := clock.NewMock()
	clk.Set(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	hub := newWatchHub()
	metrics := newAllocatorMetrics(promutil.WithRegistry(promutil.NewRegistry(), metricComponent))
	table := newLeaseTable(reg.List(), recovered)
	alloc := newAllocator(table, hub, reg, clk, metrics, disableBackfill, 100*time.Millisecond)
	return &allocHarness{t: t, clk: clk, hub: hub, reg: reg, alloc: alloc}
}

func (h *allocHarness) connect(id model.SessionID) {
	h.hub.Register(id)
	h.alloc.RegisterSession(id)
}

// drainEvents pops everything buffered in the session's mailbox.
func (h *allocHarness) drainEvents(id model.SessionID) []*pb.Event {
	h.t.Helper()
	mailbox, detach, err := h.hub.Attach(id)
	require.NoError(h.t, err)
	defer detach()

	var evs []*pb.Event
	for {
		ev, ok := mailbox.TryReceive()
		if !ok {
			return evs
		}
		evs = append(evs, ev)
	}
}

func (h *allocHarness) submit(session model.SessionID, specs ...model.ResourceSpec) (*pendingRequest, []*model.Lease, error) {
	return h.alloc.Submit(context.Background(), session, specs, 0, 0, 0)
}

func TestAllocImmediateGrant(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false,
		model.ResourceMeta{Name: "rig-1", Tags: []model.Tag{"rig"}},
		model.ResourceMeta{Name: "rig-2", Tags: []model.Tag{"rig"}},
	)
	h.connect("sess-1")

	req, leases, err := h.submit("sess-1",
		model.ResourceSpec{Name: "rig-1"},
		model.ResourceSpec{Tag: "rig", Count: 1},
	)
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, req.State)
	require.Len(t, leases, 2)

	// a synchronous grant is answered in the response, not the stream
	require.Empty(t, h.drainEvents("sess-1"))
}

func TestAllocQueuedThenGrantedOnRelease(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false, model.ResourceMeta{Name: "rig-1"})
	h.connect("sess-1")
	h.connect("sess-2")

	_, leases, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)

	req2, got, err := h.submit("sess-2", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, model.RequestQueued, req2.State)

	released, err := h.alloc.Release(context.Background(), "sess-1", leases[0].ID, false)
	require.NoError(t, err)
	require.Equal(t, []model.LeaseID{leases[0].ID}, released)

	require.Equal(t, model.RequestGranted, req2.State)
	evs := h.drainEvents("sess-2")
	require.Len(t, evs, 1)
	require.Equal(t, pb.EventType_Grant, evs[0].Type)
	require.Equal(t, req2.ID, evs[0].RequestId)
	require.Len(t, evs[0].Bindings, 1)
	require.Equal(t, "rig-1", evs[0].Bindings[0].Resource)
}

func TestAllocPermanentDenials(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false,
		model.ResourceMeta{Name: "rig-1", Tags: []model.Tag{"rig"}},
		model.ResourceMeta{Name: "rig-2", Tags: []model.Tag{"rig"}},
	)
	h.connect("sess-1")

	_, _, err := h.submit("sess-1", model.ResourceSpec{Name: "ghost"})
	require.True(t, errors.ErrUnknownResource.Equal(err))

	_, _, err = h.submit("sess-1", model.ResourceSpec{Name: "rig-1", Mode: model.ModeShared})
	require.True(t, errors.ErrInvalidSpec.Equal(err))

	_, _, err = h.submit("sess-1", model.ResourceSpec{Tag: "rig", Count: 3})
	require.True(t, errors.ErrUnsatisfiable.Equal(err))

	_, _, err = h.submit("sess-1")
	require.True(t, errors.ErrInvalidSpec.Equal(err))

	_, _, err = h.submit("ghost-session", model.ResourceSpec{Name: "rig-1"})
	require.True(t, errors.ErrUnknownSession.Equal(err))

	h.alloc.mu.Lock()
	h.alloc.table.markDirty("rig-1")
	h.alloc.mu.Unlock()
	_, _, err = h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.True(t, errors.ErrResourceDirty.Equal(err))
}

func TestAllocQueuedRequestSurvivesDirty(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false, model.ResourceMeta{Name: "rig-1"})
	h.connect("sess-1")
	h.connect("sess-2")

	_, _, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)

	req2, _, err := h.submit("sess-2", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)
	require.Equal(t, model.RequestQueued, req2.State)

	// the holder dies, the rig comes back dirty
	h.alloc.ForceReleaseAll(context.Background(), "sess-1", pb.ReclaimReason_SessionTimeout)
	require.Equal(t, model.RequestQueued, req2.State)

	// an operator cleans it up, the waiter finally gets it
	require.NoError(t, h.alloc.Rehabilitate(context.Background(), "rig-1"))
	require.Equal(t, model.RequestGranted, req2.State)

	evs := h.drainEvents("sess-2")
	require.Len(t, evs, 1)
	require.Equal(t, pb.EventType_Grant, evs[0].Type)
}

func TestAllocPriorityAndFIFO(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false, model.ResourceMeta{Name: "rig-1"})
	for _, id := range []model.SessionID{"sess-1", "sess-2", "sess-3", "sess-4"} {
		h.connect(id)
	}

	_, leases, err := h.alloc.Submit(context.Background(), "sess-1",
		[]model.ResourceSpec{{Name: "rig-1"}}, 0, 0, 0)
	require.NoError(t, err)

	low, _, err := h.alloc.Submit(context.Background(), "sess-2",
		[]model.ResourceSpec{{Name: "rig-1"}}, 1, 0, 0)
	require.NoError(t, err)
	highA, _, err := h.alloc.Submit(context.Background(), "sess-3",
		[]model.ResourceSpec{{Name: "rig-1"}}, 5, 0, 0)
	require.NoError(t, err)
	highB, _, err := h.alloc.Submit(context.Background(), "sess-4",
		[]model.ResourceSpec{{Name: "rig-1"}}, 5, 0, 0)
	require.NoError(t, err)

	// highest priority wins
	_, err = h.alloc.Release(context.Background(), "sess-1", leases[0].ID, false)
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, highA.State)
	require.Equal(t, model.RequestQueued, highB.State)
	require.Equal(t, model.RequestQueued, low.State)

	// then first come first served within the band
	_, err = h.alloc.Release(context.Background(), "sess-3", highA.LeaseIDs[0], false)
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, highB.State)
	require.Equal(t, model.RequestQueued, low.State)

	_, err = h.alloc.Release(context.Background(), "sess-4", highB.LeaseIDs[0], false)
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, low.State)
}

func TestAllocBackfillRespectsReservations(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false,
		model.ResourceMeta{Name: "rig-1", Tags: []model.Tag{"rig"}},
		model.ResourceMeta{Name: "rig-2", Tags: []model.Tag{"rig"}},
		model.ResourceMeta{Name: "bench"},
	)
	h.connect("sess-1")
	h.connect("sess-2")
	h.connect("sess-3")
	h.connect("sess-4")

	_, _, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)

	// wants both rigs, can only ever have rig-2 right now, so rig-2 is
	// reserved for it
	pair, _, err := h.submit("sess-2", model.ResourceSpec{Tag: "rig", Count: 2})
	require.NoError(t, err)
	require.Equal(t, model.RequestQueued, pair.State)

	// rig-2 is free but reserved, the request must wait its turn
	stealer, _, err := h.submit("sess-3", model.ResourceSpec{Name: "rig-2"})
	require.NoError(t, err)
	require.Equal(t, model.RequestQueued, stealer.State)

	// the bench is unreserved, a request behind the blocked ones jumps
	// ahead without harming them
	filler, leases, err := h.submit("sess-4", model.ResourceSpec{Name: "bench"})
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, filler.State)
	require.Equal(t, "bench", leases[0].Resource)

	// once rig-1 frees up the pair request completes, and only then the
	// single-rig request gets a chance
	_, err = h.alloc.Release(context.Background(), "sess-1", "", true)
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, pair.State)
	require.Equal(t, model.RequestQueued, stealer.State)

	_, err = h.alloc.Release(context.Background(), "sess-2", "", true)
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, stealer.State)
}

func TestAllocDisableBackfillBlocksQueue(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, true,
		model.ResourceMeta{Name: "rig-1"},
		model.ResourceMeta{Name: "bench"},
	)
	h.connect("sess-1")
	h.connect("sess-2")
	h.connect("sess-3")

	_, _, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)

	blockedHead, _, err := h.submit("sess-2", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)
	require.Equal(t, model.RequestQueued, blockedHead.State)

	// the bench is free, but nothing may pass the blocked head of line
	filler, _, err := h.submit("sess-3", model.ResourceSpec{Name: "bench"})
	require.NoError(t, err)
	require.Equal(t, model.RequestQueued, filler.State)

	// the head unblocks and the queue drains in order
	_, err = h.alloc.Release(context.Background(), "sess-1", "", true)
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, blockedHead.State)
	require.Equal(t, model.RequestGranted, filler.State)
}

func TestAllocWaitTimeout(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false, model.ResourceMeta{Name: "rig-1"})
	h.connect("sess-1")
	h.connect("sess-2")

	_, _, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)

	req, _, err := h.alloc.Submit(context.Background(), "sess-2",
		[]model.ResourceSpec{{Name: "rig-1"}}, 0, 5*time.Second, 0)
	require.NoError(t, err)
	require.Equal(t, model.RequestQueued, req.State)

	h.clk.Add(4 * time.Second)
	h.alloc.checkExpiredOnce(context.Background())
	require.Equal(t, model.RequestQueued, req.State)

	h.clk.Add(2 * time.Second)
	h.alloc.checkExpiredOnce(context.Background())
	require.Equal(t, model.RequestTimedOut, req.State)

	evs := h.drainEvents("sess-2")
	require.Len(t, evs, 1)
	require.Equal(t, pb.EventType_Deny, evs[0].Type)
	require.Equal(t, pb.RequestState_TimedOut, evs[0].State)
	require.NotNil(t, evs[0].Err)

	// the grant must not resurrect the timed out request
	_, err = h.alloc.Release(context.Background(), "sess-1", "", true)
	require.NoError(t, err)
	require.Equal(t, model.RequestTimedOut, req.State)
	require.Empty(t, h.drainEvents("sess-2"))

	// cancelling a settled request reports its state without error
	state, err := h.alloc.Cancel(context.Background(), "sess-2", req.ID)
	require.NoError(t, err)
	require.Equal(t, model.RequestTimedOut, state)
}

func TestAllocZeroTimeoutWaitsForever(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false, model.ResourceMeta{Name: "rig-1"})
	h.connect("sess-1")
	h.connect("sess-2")

	_, _, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)
	req, _, err := h.submit("sess-2", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)

	h.clk.Add(1000 * time.Hour)
	h.alloc.checkExpiredOnce(context.Background())
	require.Equal(t, model.RequestQueued, req.State)
}

func TestAllocLeaseTTLReclaim(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false, model.ResourceMeta{Name: "bench"})
	h.connect("sess-1")

	req, leases, err := h.alloc.Submit(context.Background(), "sess-1",
		[]model.ResourceSpec{{Name: "bench"}}, 0, 0, 10*time.Second)
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, req.State)

	h.clk.Add(11 * time.Second)
	h.alloc.checkExpiredOnce(context.Background())

	// overrunning a lease is a forced reclaim, the bench needs cleanup
	evs := h.drainEvents("sess-1")
	require.Len(t, evs, 1)
	require.Equal(t, pb.EventType_Reclaim, evs[0].Type)
	require.Equal(t, pb.ReclaimReason_LeaseTimeout, evs[0].Reason)
	require.Equal(t, []string{leases[0].ID}, evs[0].LeaseIds)

	require.Equal(t, model.RequestReleased, req.State)
	infos := h.alloc.SnapshotResources(nil, "", true)
	require.Len(t, infos, 1)
	require.Equal(t, "bench", infos[0].Name)
}

func TestAllocForceReleaseAll(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false,
		model.ResourceMeta{Name: "bench", SubResources: []model.ResourceID{"scope"}},
		model.ResourceMeta{Name: "scope"},
		model.ResourceMeta{Name: "rig-1"},
	)
	h.connect("sess-1")
	h.connect("sess-2")

	_, leases, err := h.submit("sess-1", model.ResourceSpec{Name: "bench"})
	require.NoError(t, err)

	_, _, err = h.submit("sess-2", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)

	// sess-1 also waits for the rig held by sess-2
	waiting, _, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)
	require.Equal(t, model.RequestQueued, waiting.State)

	h.alloc.ForceReleaseAll(context.Background(), "sess-1", pb.ReclaimReason_SessionTimeout)

	evs := h.drainEvents("sess-1")
	require.Len(t, evs, 2)
	require.Equal(t, pb.EventType_Reclaim, evs[0].Type)
	require.Equal(t, []string{leases[0].ID}, evs[0].LeaseIds)
	require.Equal(t, pb.EventType_Deny, evs[1].Type)
	require.Equal(t, pb.RequestState_Cancelled, evs[1].State)
	require.Equal(t, model.RequestCancelled, waiting.State)

	// the whole subtree needs cleanup, the bystander is untouched
	dirty := h.alloc.SnapshotResources(nil, "", true)
	require.Len(t, dirty, 2)
	require.Equal(t, "bench", dirty[0].Name)
	require.Equal(t, "scope", dirty[1].Name)

	_, _, err = h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.True(t, errors.ErrUnknownSession.Equal(err))

	// a second forced release of the same session is a no-op
	h.alloc.ForceReleaseAll(context.Background(), "sess-1", pb.ReclaimReason_SessionTimeout)
}

func TestAllocReleaseOwnership(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false,
		model.ResourceMeta{Name: "rig-1"},
		model.ResourceMeta{Name: "rig-2"},
	)
	h.connect("sess-1")
	h.connect("sess-2")

	req, leases, err := h.submit("sess-1",
		model.ResourceSpec{Name: "rig-1"},
		model.ResourceSpec{Name: "rig-2"},
	)
	require.NoError(t, err)
	require.Len(t, leases, 2)

	_, err = h.alloc.Release(context.Background(), "sess-2", leases[0].ID, false)
	require.True(t, errors.ErrNotLeaseOwner.Equal(err))

	_, err = h.alloc.Release(context.Background(), "sess-1", "ghost", false)
	require.True(t, errors.ErrUnknownLease.Equal(err))

	// releasing one lease keeps the request granted
	_, err = h.alloc.Release(context.Background(), "sess-1", leases[0].ID, false)
	require.NoError(t, err)
	require.Equal(t, model.RequestGranted, req.State)

	_, err = h.alloc.Release(context.Background(), "sess-1", leases[1].ID, false)
	require.NoError(t, err)
	require.Equal(t, model.RequestReleased, req.State)
}

func TestAllocDirtyOnRelease(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false,
		model.ResourceMeta{Name: "burn-rig", DirtyOnRelease: true},
	)
	h.connect("sess-1")
	h.connect("sess-2")

	_, _, err := h.submit("sess-1", model.ResourceSpec{Name: "burn-rig"})
	require.NoError(t, err)

	waiting, _, err := h.submit("sess-2", model.ResourceSpec{Name: "burn-rig"})
	require.NoError(t, err)

	// even a clean release leaves this rig dirty
	_, err = h.alloc.Release(context.Background(), "sess-1", "", true)
	require.NoError(t, err)
	require.Equal(t, model.RequestQueued, waiting.State)

	dirty := h.alloc.SnapshotResources(nil, "", true)
	require.Len(t, dirty, 1)

	require.NoError(t, h.alloc.Rehabilitate(context.Background(), "burn-rig"))
	require.Equal(t, model.RequestGranted, waiting.State)
}

func TestAllocCancel(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false, model.ResourceMeta{Name: "rig-1"})
	h.connect("sess-1")
	h.connect("sess-2")

	granted, _, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)

	_, err = h.alloc.Cancel(context.Background(), "sess-1", granted.ID)
	require.True(t, errors.ErrRequestAlreadyGranted.Equal(err))

	queued, _, err := h.submit("sess-2", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)

	_, err = h.alloc.Cancel(context.Background(), "sess-1", queued.ID)
	require.True(t, errors.ErrUnknownRequest.Equal(err))

	state, err := h.alloc.Cancel(context.Background(), "sess-2", queued.ID)
	require.NoError(t, err)
	require.Equal(t, model.RequestCancelled, state)

	// cancelling again is a no-op and publishes nothing
	state, err = h.alloc.Cancel(context.Background(), "sess-2", queued.ID)
	require.NoError(t, err)
	require.Equal(t, model.RequestCancelled, state)

	evs := h.drainEvents("sess-2")
	require.Len(t, evs, 1)
	require.Equal(t, pb.EventType_Deny, evs[0].Type)
	require.Equal(t, pb.RequestState_Cancelled, evs[0].State)

	// the cancelled request no longer competes for the rig
	_, err = h.alloc.Release(context.Background(), "sess-1", "", true)
	require.NoError(t, err)
	require.Equal(t, model.RequestCancelled, queued.State)
	infos := h.alloc.SnapshotResources(nil, "", false)
	require.Len(t, infos, 1)
	require.Empty(t, infos[0].Holders)
}

func TestAllocSessionView(t *testing.T) {
	t.Parallel()

	h := newAllocHarness(t, false,
		model.ResourceMeta{Name: "rig-1"},
		model.ResourceMeta{Name: "rig-2"},
	)
	h.connect("sess-1")

	first, _, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-1"})
	require.NoError(t, err)
	h.clk.Add(time.Second)
	second, _, err := h.submit("sess-1", model.ResourceSpec{Name: "rig-2"})
	require.NoError(t, err)

	leaseIDs, requests := h.alloc.SessionView("sess-1")
	require.Len(t, leaseIDs, 2)
	require.Len(t, requests, 2)
	require.Equal(t, first.ID, requests[0].RequestId)
	require.Equal(t, second.ID, requests[1].RequestId)
	require.Equal(t, pb.RequestState_Granted, requests[0].State)
}

func TestAllocCrashRecoveryMarksHeldDirty(t *testing.T) {
	t.Parallel()

	store := mock.NewMetaMock()
	seed := []model.ResourceMeta{{Name: "rig-1"}, {Name: "rig-2"}}

	reg := registry.NewRegistry(store)
	recovered, err := reg.Bootstrap(context.Background(), seed)
	require.NoError(t, err)

	clk := clock.NewMock()
	clk.Set(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	hub := newWatchHub()
	metrics := newAllocatorMetrics(promutil.WithRegistry(promutil.NewRegistry(), metricComponent))
	alloc := newAllocator(newLeaseTable(reg.List(), recovered), hub, reg, clk, metrics, false, time.Second)

	hub.Register("sess-1")
	alloc.RegisterSession("sess-1")
	_, _, err = alloc.Submit(context.Background(), "sess-1",
		[]model.ResourceSpec{{Name: "rig-1"}}, 0, 0, 0)
	require.NoError(t, err)

	// the process dies holding rig-1 and comes back
	reg2 := registry.NewRegistry(store)
	recovered2, err := reg2.Bootstrap(context.Background(), seed)
	require.NoError(t, err)
	require.True(t, recovered2["rig-1"].Dirty)
	require.True(t, recovered2["rig-1"].WasHeld)
	require.False(t, recovered2["rig-2"].Dirty)

	// no lease survives, the rig waits for rehabilitation
	table2 := newLeaseTable(reg2.List(), recovered2)
	require.Empty(t, table2.leases)
	_, ok := table2.tryAcquire(tableReq("sess-9", model.ResourceSpec{Name: "rig-1"}),
		clk.Now(), nil, leaseIDs())
	require.False(t, ok)
}
