package server

import (
	"sort"
	"time"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/errors"
	"github.com/rigpool/rigpool/registry"
)

// resourceState is the runtime side of one resource: the dirty flag
// and the leases currently covering it.
type resourceState struct {
	meta  *model.ResourceMeta
	dirty bool
	// holders maps every lease covering this resource to the mode it
	// holds. A lease on a parent shows up in the holders of each of
	// its sub resources too.
	holders map[model.LeaseID]model.SharingMode
}

func (s *resourceState) exclusiveHeld() bool {
	for _, mode := range s.holders {
		if mode == model.ModeExclusive {
			return true
		}
	}
	return false
}

// leaseTable is the authoritative in-memory ownership state. It is not
// safe for concurrent use on its own, every method runs under the
// allocator's lock.
type leaseTable struct {
	resources map[model.ResourceID]*resourceState
	// ordered keeps the resource names sorted so matching and
	// reservation walk the pool in a deterministic order.
	ordered   []model.ResourceID
	leases    map[model.LeaseID]*model.Lease
	bySession map[model.SessionID]map[model.LeaseID]*model.Lease
}

func newLeaseTable(metas []*model.ResourceMeta, recovered map[model.ResourceID]registry.RecoveredState) *leaseTable {
	t := &leaseTable{
		resources: make(map[model.ResourceID]*resourceState, len(metas)),
		ordered:   make([]model.ResourceID, 0, len(metas)),
		leases:    make(map[model.LeaseID]*model.Lease),
		bySession: make(map[model.SessionID]map[model.LeaseID]*model.Lease),
	}
	for _, meta := range metas {
		t.resources[meta.Name] = &resourceState{
			meta:    meta,
			dirty:   recovered[meta.Name].Dirty,
			holders: make(map[model.LeaseID]model.SharingMode),
		}
		t.ordered = append(t.ordered, meta.Name)
	}
	sort.Slice(t.ordered, func(i, j int) bool { return t.ordered[i] < t.ordered[j] })
	return t
}

// effectiveMode resolves the mode a spec asks of a resource. An empty
// spec mode inherits the resource's own sharing mode.
func effectiveMode(specMode model.SharingMode, meta *model.ResourceMeta) model.SharingMode {
	if specMode == "" {
		return meta.Mode
	}
	return specMode
}

// canHold reports whether the resource can take one more lease in the
// given mode.
func (s *resourceState) canHold(mode model.SharingMode) bool {
	if s.dirty {
		return false
	}
	switch mode {
	case model.ModeExclusive:
		// exclusive use of a shareable resource is allowed, but only
		// while nobody else holds it
		return len(s.holders) == 0
	case model.ModeShared:
		if s.meta.Mode != model.ModeShared {
			return false
		}
		if s.exclusiveHeld() {
			return false
		}
		return s.meta.MaxHolders == 0 || len(s.holders) < s.meta.MaxHolders
	}
	return false
}

// available reports whether name can serve a lease in the spec's mode
// right now. taken holds the resources already matched by earlier
// specifiers of the same request, reserved those parked for queued
// requests of higher precedence.
func (t *leaseTable) available(name model.ResourceID, specMode model.SharingMode, taken, reserved map[model.ResourceID]struct{}) bool {
	state, ok := t.resources[name]
	if !ok {
		return false
	}
	if _, clash := taken[name]; clash {
		return false
	}
	if _, clash := reserved[name]; clash {
		return false
	}
	if !state.canHold(effectiveMode(specMode, state.meta)) {
		return false
	}
	// a parent is granted together with its sub resources, so each of
	// them must be free as well
	for _, sub := range state.meta.SubResources {
		child, ok := t.resources[sub]
		if !ok || child.dirty || len(child.holders) > 0 {
			return false
		}
		if _, clash := taken[sub]; clash {
			return false
		}
		if _, clash := reserved[sub]; clash {
			return false
		}
	}
	return true
}

type specMatch struct {
	specIndex int
	name      model.ResourceID
	mode      model.SharingMode
}

// matchSpecs resolves every specifier of a request to a distinct
// concrete resource, or reports that the request is unsatisfiable
// right now. Concrete name specifiers bind first since they have no
// choice, tag specifiers then fill greedily in sorted name order.
func (t *leaseTable) matchSpecs(specs []model.ResourceSpec, reserved map[model.ResourceID]struct{}) ([]specMatch, bool) {
	taken := make(map[model.ResourceID]struct{}, len(specs))
	matches := make([]specMatch, 0, len(specs))
	claim := func(idx int, name model.ResourceID, specMode model.SharingMode) {
		state := t.resources[name]
		matches = append(matches, specMatch{
			specIndex: idx,
			name:      name,
			mode:      effectiveMode(specMode, state.meta),
		})
		taken[name] = struct{}{}
		for _, sub := range state.meta.SubResources {
			taken[sub] = struct{}{}
		}
	}

	for i := range specs {
		spec := &specs[i]
		if spec.Name == "" {
			continue
		}
		if !t.available(spec.Name, spec.Mode, taken, reserved) {
			return nil, false
		}
		claim(i, spec.Name, spec.Mode)
	}
	for i := range specs {
		spec := &specs[i]
		if spec.Name != "" {
			continue
		}
		want := spec.WantCount()
		for _, name := range t.ordered {
			if want == 0 {
				break
			}
			state := t.resources[name]
			if !state.meta.HasTag(spec.Tag) {
				continue
			}
			if !t.available(name, spec.Mode, taken, reserved) {
				continue
			}
			claim(i, name, spec.Mode)
			want--
		}
		if want > 0 {
			return nil, false
		}
	}
	return matches, true
}

// tryAcquire attempts to satisfy every specifier of the request at
// once. On success all leases are committed to the table and returned,
// on failure nothing changes.
func (t *leaseTable) tryAcquire(req *pendingRequest, now time.Time, reserved map[model.ResourceID]struct{}, nextID func() string) ([]*model.Lease, bool) {
	matches, ok := t.matchSpecs(req.Specs, reserved)
	if !ok {
		return nil, false
	}
	leases := make([]*model.Lease, 0, len(matches))
	for _, m := range matches {
		state := t.resources[m.name]
		covers := make([]model.ResourceID, 0, 1+len(state.meta.SubResources))
		covers = append(covers, m.name)
		covers = append(covers, state.meta.SubResources...)
		lease := &model.Lease{
			ID:        nextID(),
			Session:   req.Session,
			Request:   req.ID,
			Resource:  m.name,
			Covers:    covers,
			Mode:      m.mode,
			SpecIndex: m.specIndex,
			GrantedAt: now,
		}
		ttl := req.LeaseTTL
		if maxTTL := state.meta.MaxLeaseTTL(); maxTTL > 0 && (ttl == 0 || ttl > maxTTL) {
			ttl = maxTTL
		}
		if ttl > 0 {
			lease.ExpireAt = now.Add(ttl)
		}
		leases = append(leases, lease)
	}
	for _, lease := range leases {
		t.insert(lease)
	}
	return leases, true
}

func (t *leaseTable) insert(lease *model.Lease) {
	t.leases[lease.ID] = lease
	sessionLeases := t.bySession[lease.Session]
	if sessionLeases == nil {
		sessionLeases = make(map[model.LeaseID]*model.Lease)
		t.bySession[lease.Session] = sessionLeases
	}
	sessionLeases[lease.ID] = lease
	for _, name := range lease.Covers {
		t.resources[name].holders[lease.ID] = lease.Mode
	}
}

// remove unlinks the lease from every index. Callers decide what
// happens to the affected resources afterwards.
func (t *leaseTable) remove(lease *model.Lease) {
	delete(t.leases, lease.ID)
	if sessionLeases := t.bySession[lease.Session]; sessionLeases != nil {
		delete(sessionLeases, lease.ID)
		if len(sessionLeases) == 0 {
			delete(t.bySession, lease.Session)
		}
	}
	for _, name := range lease.Covers {
		if state, ok := t.resources[name]; ok {
			delete(state.holders, lease.ID)
		}
	}
}

func (t *leaseTable) lease(id model.LeaseID) (*model.Lease, bool) {
	lease, ok := t.leases[id]
	return lease, ok
}

// leasesOf returns the session's leases ordered by grant time so the
// forced-release path walks them deterministically.
func (t *leaseTable) leasesOf(session model.SessionID) []*model.Lease {
	ret := make([]*model.Lease, 0, len(t.bySession[session]))
	for _, lease := range t.bySession[session] {
		ret = append(ret, lease)
	}
	sort.Slice(ret, func(i, j int) bool {
		if !ret[i].GrantedAt.Equal(ret[j].GrantedAt) {
			return ret[i].GrantedAt.Before(ret[j].GrantedAt)
		}
		return ret[i].ID < ret[j].ID
	})
	return ret
}

func (t *leaseTable) markDirty(name model.ResourceID) {
	if state, ok := t.resources[name]; ok {
		state.dirty = true
	}
}

func (t *leaseTable) rehabilitate(name model.ResourceID) error {
	state, ok := t.resources[name]
	if !ok {
		return errors.ErrUnknownResource.GenWithStackByArgs(name)
	}
	if !state.dirty {
		return errors.ErrResourceClean.GenWithStackByArgs(name)
	}
	state.dirty = false
	return nil
}

// ownersOf returns the distinct sessions currently holding the
// resource, sorted so the persisted record is stable.
func (t *leaseTable) ownersOf(name model.ResourceID) []model.SessionID {
	state, ok := t.resources[name]
	if !ok || len(state.holders) == 0 {
		return nil
	}
	seen := make(map[model.SessionID]struct{}, len(state.holders))
	for leaseID := range state.holders {
		seen[t.leases[leaseID].Session] = struct{}{}
	}
	owners := make([]model.SessionID, 0, len(seen))
	for session := range seen {
		owners = append(owners, session)
	}
	sort.Strings(owners)
	return owners
}

// reserveFor parks the resources the request could use right now so
// that requests of lower precedence cannot backfill them away.
// reserved doubles as the accumulator.
func (t *leaseTable) reserveFor(specs []model.ResourceSpec, reserved map[model.ResourceID]struct{}) {
	hold := func(name model.ResourceID) {
		reserved[name] = struct{}{}
		for _, sub := range t.resources[name].meta.SubResources {
			reserved[sub] = struct{}{}
		}
	}
	for i := range specs {
		spec := &specs[i]
		if spec.Name != "" {
			if t.available(spec.Name, spec.Mode, nil, reserved) {
				hold(spec.Name)
			}
			continue
		}
		want := spec.WantCount()
		for _, name := range t.ordered {
			if want == 0 {
				break
			}
			state := t.resources[name]
			if !state.meta.HasTag(spec.Tag) {
				continue
			}
			if !t.available(name, spec.Mode, nil, reserved) {
				continue
			}
			hold(name)
			want--
		}
	}
}

// counts returns how many resources are free, held and dirty, feeding
// the occupancy gauges.
func (t *leaseTable) counts() (free, held, dirty int) {
	for _, state := range t.resources {
		switch {
		case state.dirty:
			dirty++
		case len(state.holders) > 0:
			held++
		default:
			free++
		}
	}
	return
}

// resourceInfo builds the wire snapshot of one resource.
func (t *leaseTable) resourceInfo(state *resourceState) *pb.ResourceInfo {
	info := &pb.ResourceInfo{
		Name:           state.meta.Name,
		Tags:           append([]string(nil), state.meta.Tags...),
		Mode:           state.meta.Mode.ToPB(),
		MaxHolders:     int32(state.meta.MaxHolders),
		Dirty:          state.dirty,
		DirtyOnRelease: state.meta.DirtyOnRelease,
		SubResources:   append([]string(nil), state.meta.SubResources...),
	}
	holderIDs := make([]model.LeaseID, 0, len(state.holders))
	for leaseID := range state.holders {
		holderIDs = append(holderIDs, leaseID)
	}
	sort.Strings(holderIDs)
	for _, leaseID := range holderIDs {
		lease := t.leases[leaseID]
		holder := &pb.HolderInfo{
			LeaseId:   lease.ID,
			SessionId: lease.Session,
			Mode:      lease.Mode.ToPB(),
			GrantedAt: lease.GrantedAt.UnixMilli(),
		}
		if !lease.ExpireAt.IsZero() {
			holder.ExpireAt = lease.ExpireAt.UnixMilli()
		}
		info.Holders = append(info.Holders, holder)
	}
	return info
}

// snapshotResources returns deep copies of the resources passing the
// filter, in sorted name order.
func (t *leaseTable) snapshotResources(names []model.ResourceID, tag model.Tag, dirtyOnly bool) []*pb.ResourceInfo {
	wanted := make(map[model.ResourceID]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	ret := make([]*pb.ResourceInfo, 0, len(t.ordered))
	for _, name := range t.ordered {
		state := t.resources[name]
		if len(wanted) > 0 {
			if _, ok := wanted[name]; !ok {
				continue
			}
		}
		if tag != "" && !state.meta.HasTag(tag) {
			continue
		}
		if dirtyOnly && !state.dirty {
			continue
		}
		ret = append(ret, t.resourceInfo(state))
	}
	return ret
}
