package model

import (
	"time"

	"github.com/rigpool/rigpool/pb"
)

type (
	// ResourceID names one entry of the pool.
	ResourceID = string
	// LeaseID identifies one grant of one resource to one session.
	LeaseID = string
	// Tag groups interchangeable resources.
	Tag = string
)

// SharingMode controls how many sessions can hold a resource at once.
type SharingMode string

const (
	// ModeExclusive allows a single holder.
	ModeExclusive SharingMode = "exclusive"
	// ModeShared allows up to MaxHolders concurrent holders.
	ModeShared SharingMode = "shared"
)

// Valid reports whether the mode is one of the defined values.
func (m SharingMode) Valid() bool {
	return m == ModeExclusive || m == ModeShared
}

// ToPB converts the mode for the wire.
func (m SharingMode) ToPB() pb.Mode {
	if m == ModeShared {
		return pb.Mode_Shared
	}
	return pb.Mode_Exclusive
}

// ModeFromPB converts a wire mode.
func ModeFromPB(m pb.Mode) SharingMode {
	if m == pb.Mode_Shared {
		return ModeShared
	}
	return ModeExclusive
}

// ResourceMeta is the static description of a resource, loaded from the
// seed file and persisted to the metastore.
type ResourceMeta struct {
	Name ResourceID  `toml:"name" json:"name"`
	Tags []Tag       `toml:"tags" json:"tags"`
	Mode SharingMode `toml:"mode" json:"mode"`
	// MaxHolders caps concurrent holders of a shared resource, zero
	// meaning no cap. It is fixed to 1 for exclusive resources.
	MaxHolders int `toml:"max-holders" json:"max-holders"`
	// DirtyOnRelease marks the resource dirty even on a clean release,
	// for resources that always need scrubbing between users.
	DirtyOnRelease bool `toml:"dirty-on-release" json:"dirty-on-release"`
	// SubResources lists resources granted together with this one.
	SubResources []ResourceID `toml:"sub-resources" json:"sub-resources"`
	// MaxLeaseTTLSeconds caps the lease TTL a request may ask for on
	// this resource. Zero means unlimited.
	MaxLeaseTTLSeconds int64 `toml:"max-lease-ttl-seconds" json:"max-lease-ttl-seconds"`
}

// HasTag reports whether the resource carries the tag.
func (m *ResourceMeta) HasTag(tag Tag) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MaxLeaseTTL returns the TTL cap as a duration, zero for unlimited.
func (m *ResourceMeta) MaxLeaseTTL() time.Duration {
	return time.Duration(m.MaxLeaseTTLSeconds) * time.Second
}

// Clone returns a deep copy.
func (m *ResourceMeta) Clone() *ResourceMeta {
	ret := *m
	ret.Tags = append([]Tag(nil), m.Tags...)
	ret.SubResources = append([]ResourceID(nil), m.SubResources...)
	return &ret
}

// ResourceRecord is the unit of persistence for one resource: its meta
// plus the part of its state that must survive a restart.
type ResourceRecord struct {
	Meta  ResourceMeta `json:"meta"`
	Dirty bool         `json:"dirty"`
	// Owners are the sessions holding the resource when the record was
	// last written. After a restart the owners are gone, so a non-empty
	// list makes recovery mark the resource dirty instead of silently
	// resurrecting the lease.
	Owners []SessionID `json:"owners,omitempty"`
}

// ID implements dataset.DataEntry.
func (r *ResourceRecord) ID() string {
	return r.Meta.Name
}

// Lease is one live grant. Leases exist only in memory, a restart
// drops them all.
type Lease struct {
	ID      LeaseID
	Session SessionID
	Request RequestID
	// Resource is the name the request matched, possibly a parent
	// whose sub resources are granted along with it.
	Resource ResourceID
	// Covers lists every concrete resource the lease occupies. It
	// always contains Resource, plus any expanded sub resources.
	Covers    []ResourceID
	Mode      SharingMode
	SpecIndex int
	GrantedAt time.Time
	// ExpireAt is zero when the lease has no TTL.
	ExpireAt time.Time
}

// Clone returns a deep copy.
func (l *Lease) Clone() *Lease {
	ret := *l
	ret.Covers = append([]ResourceID(nil), l.Covers...)
	return &ret
}

// ToPB converts the lease into its wire binding.
func (l *Lease) ToPB() *pb.Binding {
	return &pb.Binding{
		LeaseId:   l.ID,
		Resource:  l.Resource,
		Mode:      l.Mode.ToPB(),
		SpecIndex: int32(l.SpecIndex),
	}
}
