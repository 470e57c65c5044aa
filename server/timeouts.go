package server

import "time"

// TimeoutConfig collects the liveness and queue timing knobs of the
// resource server.
type TimeoutConfig struct {
	HeartbeatInterval        time.Duration
	SessionTTL               time.Duration
	SessionCheckLoopInterval time.Duration
	RequestCheckLoopInterval time.Duration
}

var defaultTimeoutConfig = TimeoutConfig{
	HeartbeatInterval: time.Second * 3,
	SessionTTL:        time.Second * 6,
	// We use a short loop interval so reclaims and queue timeouts are
	// observed soon after they happen.
	SessionCheckLoopInterval: time.Millisecond * 100,
	RequestCheckLoopInterval: time.Millisecond * 100,
}.Adjust()

// Adjust validates the TimeoutConfig and adjusts it
func (config TimeoutConfig) Adjust() TimeoutConfig {
	var tc TimeoutConfig = config
	if tc.HeartbeatInterval <= 0 {
		tc.HeartbeatInterval = time.Second * 3
	}
	// a session survives one missed heartbeat, the second missed one
	// disconnects it
	if tc.SessionTTL < 2*tc.HeartbeatInterval {
		tc.SessionTTL = 2 * tc.HeartbeatInterval
	}
	if tc.SessionCheckLoopInterval <= 0 {
		tc.SessionCheckLoopInterval = time.Millisecond * 100
	}
	if tc.RequestCheckLoopInterval <= 0 {
		tc.RequestCheckLoopInterval = time.Millisecond * 100
	}
	return tc
}

func DefaultTimeoutConfig() TimeoutConfig {
	return defaultTimeoutConfig
}
