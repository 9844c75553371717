package telemetry

// state is the Dispatcher's lifecycle state machine:
//
//	Uninitialized --init--> Initializing --load-complete--> Running
//	Running --flush-requested--> Flushing --complete--> Running
//	any --dispose--> Disposed
//	Disposed --init--> Initializing
//
// Flushing has no value of its own: it is represented by the
// Dispatcher's flushMu being held, so a flush can be in flight while the
// stored state is Running (or Disposed, until Dispose drains it).
type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateRunning
	stateDisposed
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "Uninitialized"
	case stateInitializing:
		return "Initializing"
	case stateRunning:
		return "Running"
	case stateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}
