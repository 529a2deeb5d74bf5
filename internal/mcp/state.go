package mcp

// State is the lifecycle state of the server coordinator.
//
// The normal progression is Constructed -> ToolsRegistering -> Ready ->
// Serving -> ShuttingDown -> Stopped. StateError is reachable from any
// non-terminal state. The zero value means the server has not been started.
type State int32

const (
	StateUnstarted State = iota
	StateConstructed
	StateToolsRegistering
	StateReady
	StateServing
	StateShuttingDown
	StateStopped
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "UNSTARTED"
	case StateConstructed:
		return "CONSTRUCTED"
	case StateToolsRegistering:
		return "TOOLS_REGISTERING"
	case StateReady:
		return "READY"
	case StateServing:
		return "SERVING"
	case StateShuttingDown:
		return "SHUTTING_DOWN"
	case StateStopped:
		return "STOPPED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Alive reports whether the process should answer liveness probes in this
// state. Liveness is deliberately decoupled from readiness: a server that is
// still registering tools is alive, just not ready.
func (s State) Alive() bool {
	switch s {
	case StateConstructed, StateToolsRegistering, StateReady, StateServing, StateShuttingDown:
		return true
	default:
		return false
	}
}

// AcceptingTraffic reports whether the MCP transport mount should serve
// requests in this state. Before readiness the mount rejects traffic while
// the health endpoint keeps answering.
func (s State) AcceptingTraffic() bool {
	switch s {
	case StateReady, StateServing, StateShuttingDown:
		return true
	default:
		return false
	}
}
