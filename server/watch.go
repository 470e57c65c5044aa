package server

import (
	"sync"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/pkg/notifier"
)

// watchHub owns one event mailbox per session. Events published while
// no Watch stream is attached stay buffered, so a grant can never be
// lost between the decision and the watcher arriving.
type watchHub struct {
	mu        sync.Mutex
	mailboxes map[model.SessionID]*notifier.Mailbox[*pb.Event]
	attached  map[model.SessionID]struct{}
}

func newWatchHub() *watchHub {
	return &watchHub{
		mailboxes: make(map[model.SessionID]*notifier.Mailbox[*pb.Event]),
		attached:  make(map[model.SessionID]struct{}),
	}
}

// Register creates the mailbox of a freshly connected session.
func (h *watchHub) Register(id model.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.mailboxes[id]; exists {
		log.L().Panic("duplicate watch mailbox", zap.String("session-id", id))
	}
	h.mailboxes[id] = notifier.NewMailbox[*pb.Event]()
}

// Publish appends an event to the session's mailbox. Events for
// sessions that are already gone are dropped.
func (h *watchHub) Publish(id model.SessionID, ev *pb.Event) {
	h.mu.Lock()
	mailbox, ok := h.mailboxes[id]
	h.mu.Unlock()
	if !ok {
		log.L().Info("event for unknown session dropped",
			zap.String("session-id", id),
			zap.Stringer("event-type", ev.Type))
		return
	}
	mailbox.Put(ev)
}

// Attach claims the session's event stream. The returned detach must
// run when the stream ends. A second concurrent watcher is refused.
func (h *watchHub) Attach(id model.SessionID) (*notifier.Mailbox[*pb.Event], func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	mailbox, ok := h.mailboxes[id]
	if !ok {
		return nil, nil, errors.ErrUnknownSession.GenWithStackByArgs(id)
	}
	if _, busy := h.attached[id]; busy {
		return nil, nil, errors.ErrWatchActive.GenWithStackByArgs(id)
	}
	h.attached[id] = struct{}{}
	detach := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.attached, id)
	}
	return mailbox, detach, nil
}

// CloseSession closes and removes the session's mailbox. A watcher
// blocked in Receive drains the buffered events and then sees the
// stream end.
func (h *watchHub) CloseSession(id model.SessionID) {
	h.mu.Lock()
	mailbox, ok := h.mailboxes[id]
	delete(h.mailboxes, id)
	h.mu.Unlock()
	if ok {
		mailbox.Close()
	}
}

func grantEvent(reqID model.RequestID, leases []*model.Lease) *pb.Event {
	bindings := make([]*pb.Binding, 0, len(leases))
	for _, lease := range leases {
		bindings = append(bindings, lease.ToPB())
	}
	return &pb.Event{
		Type:      pb.EventType_Grant,
		RequestId: reqID,
		State:     pb.RequestState_Granted,
		Bindings:  bindings,
	}
}

func denyEvent(reqID model.RequestID, state model.RequestState, err error) *pb.Event {
	return &pb.Event{
		Type:      pb.EventType_Deny,
		RequestId: reqID,
		State:     state.ToPB(),
		Err:       errors.ToPBError(err),
	}
}

func reclaimEvent(leaseIDs []model.LeaseID, reason pb.ReclaimReason) *pb.Event {
	return &pb.Event{
		Type:     pb.EventType_Reclaim,
		LeaseIds: leaseIDs,
		Reason:   reason,
	}
}
