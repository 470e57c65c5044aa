package model

import "time"

type (
	// SessionID identifies one client connection epoch.
	SessionID = string
	// Epoch is a monotonically increasing counter fencing a session
	// from any predecessor with the same client name.
	Epoch = int64
)

// SessionInfo is the descriptive part of a session, immutable after
// Connect.
type SessionInfo struct {
	ID          SessionID
	ClientName  string
	Addr        string
	Epoch       Epoch
	ConnectedAt time.Time
}

// Clone returns a copy safe to hand out on the query path.
func (s *SessionInfo) Clone() *SessionInfo {
	ret := *s
	return &ret
}
