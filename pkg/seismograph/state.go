package seismograph

import (
	"time"

	"github.com/simplay/seismograph-server/internal/app"
)

// State is the lifecycle state of a Server.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// FlushEvent is emitted after every batch flush, successful or not.
type FlushEvent struct {
	Sink     string
	BatchID  string
	Sequence uint64
	Records  int
	Duration time.Duration
	Err      error
}

// EventHandler receives server events. OnFlush is called from the flush
// worker goroutines, possibly concurrently; implementations must be safe
// for concurrent use and return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnFlush(event FlushEvent)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnFlush(r app.FlushResult) {
	if e.handler == nil {
		return
	}
	e.handler.OnFlush(FlushEvent{
		Sink:     r.Sink,
		BatchID:  r.BatchID,
		Sequence: r.Sequence,
		Records:  r.Records,
		Duration: r.Duration,
		Err:      r.Err,
	})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
