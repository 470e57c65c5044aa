package model

import (
	"github.com/rigpool/rigpool/pb"
	"github.com/rigpool/rigpool/pkg/errors"
)

type (
	// RequestID identifies one acquire request.
	RequestID = string
	// Priority orders waiting requests, a larger value wins.
	Priority = int32
)

// RequestState is the lifecycle state of an acquire request.
type RequestState int8

const (
	// RequestPending means the request is being evaluated.
	RequestPending RequestState = iota
	// RequestQueued means the request waits for resources.
	RequestQueued
	// RequestGranted means all leases are held.
	RequestGranted
	// RequestReleased means the grant has been given back.
	RequestReleased
	// RequestCancelled means the request was withdrawn or denied.
	RequestCancelled
	// RequestTimedOut means the wait deadline passed before a grant.
	RequestTimedOut
)

// IsTerminal reports whether no further transition can happen.
func (s RequestState) IsTerminal() bool {
	switch s {
	case RequestReleased, RequestCancelled, RequestTimedOut:
		return true
	}
	return false
}

func (s RequestState) String() string {
	switch s {
	case RequestPending:
		return "pending"
	case RequestQueued:
		return "queued"
	case RequestGranted:
		return "granted"
	case RequestReleased:
		return "released"
	case RequestCancelled:
		return "cancelled"
	case RequestTimedOut:
		return "timed-out"
	}
	return "unknown"
}

// ToPB converts the state for the wire.
func (s RequestState) ToPB() pb.RequestState {
	switch s {
	case RequestQueued:
		return pb.RequestState_Queued
	case RequestGranted:
		return pb.RequestState_Granted
	case RequestReleased:
		return pb.RequestState_Released
	case RequestCancelled:
		return pb.RequestState_Cancelled
	case RequestTimedOut:
		return pb.RequestState_TimedOut
	}
	return pb.RequestState_Pending
}

// StateFromPB converts a wire request state.
func StateFromPB(s pb.RequestState) RequestState {
	switch s {
	case pb.RequestState_Queued:
		return RequestQueued
	case pb.RequestState_Granted:
		return RequestGranted
	case pb.RequestState_Released:
		return RequestReleased
	case pb.RequestState_Cancelled:
		return RequestCancelled
	case pb.RequestState_TimedOut:
		return RequestTimedOut
	}
	return RequestPending
}

// ResourceSpec selects resources for one slot of an acquire request,
// either one concrete resource by name or Count distinct resources
// carrying a tag.
type ResourceSpec struct {
	Name  ResourceID
	Tag   Tag
	Count int
	Mode  SharingMode
}

// Validate checks the spec is well formed.
func (s *ResourceSpec) Validate() error {
	if (s.Name == "") == (s.Tag == "") {
		return errors.ErrInvalidSpec.GenWithStackByArgs("exactly one of name and tag must be set")
	}
	if s.Name != "" && s.Count > 1 {
		return errors.ErrInvalidSpec.GenWithStackByArgs("count must be 1 for a named resource")
	}
	if s.Tag != "" && s.Count < 1 {
		return errors.ErrInvalidSpec.GenWithStackByArgs("count must be at least 1 for a tag")
	}
	// an empty mode inherits the sharing mode of the matched resource
	if s.Mode != "" && !s.Mode.Valid() {
		return errors.ErrInvalidSpec.GenWithStackByArgs("unknown sharing mode")
	}
	return nil
}

// WantCount returns how many distinct resources the spec asks for.
func (s *ResourceSpec) WantCount() int {
	if s.Name != "" {
		return 1
	}
	return s.Count
}

// ToPB converts the spec for the wire.
func (s *ResourceSpec) ToPB() *pb.ResourceSpec {
	return &pb.ResourceSpec{
		Name:  s.Name,
		Tag:   s.Tag,
		Count: int32(s.Count),
		Mode:  s.Mode.ToPB(),
	}
}

// SpecFromPB converts a wire spec. A zero count on a tag spec defaults
// to one so clients can leave it unset.
func SpecFromPB(s *pb.ResourceSpec) ResourceSpec {
	count := int(s.Count)
	if s.Tag != "" && count == 0 {
		count = 1
	}
	if s.Name != "" {
		count = 1
	}
	return ResourceSpec{
		Name:  s.Name,
		Tag:   s.Tag,
		Count: count,
		Mode:  ModeFromPB(s.Mode),
	}
}

// SpecsFromPB converts a wire spec list.
func SpecsFromPB(in []*pb.ResourceSpec) []ResourceSpec {
	ret := make([]ResourceSpec, 0, len(in))
	for _, s := range in {
		ret = append(ret, SpecFromPB(s))
	}
	return ret
}

// SpecsToPB converts a spec list for the wire.
func SpecsToPB(in []ResourceSpec) []*pb.ResourceSpec {
	ret := make([]*pb.ResourceSpec, 0, len(in))
	for i := range in {
		ret = append(ret, in[i].ToPB())
	}
	return ret
}
