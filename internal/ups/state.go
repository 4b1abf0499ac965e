package ups

// State is the provider lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateDegraded
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	case StateTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

// IsMounted reports whether the provider is between Mount and Unmount.
func (s State) IsMounted() bool {
	return s == StateInitializing || s == StateReady || s == StateDegraded
}

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
