package bridge

// MaxSteps bounds photon propagation so that pathological geometries
// (total-internal-reflection traps) cannot stall a request forever.
const MaxSteps = 1000

// PropagateOptions selects what the engine keeps from a propagation run.
type PropagateOptions struct {
	KeepBegin bool
	KeepEnd   bool
	KeepHits  bool
	RunDAQ    bool
	MaxSteps  int
}

// Engine is the external photon transport service. One call propagates a
// photon batch through the loaded detector geometry and returns the channel
// hits of each simulated event; engines may yield more than one event per
// call. The call blocks for the full GPU round trip and is not safe for
// concurrent use.
type Engine interface {
	Propagate(photons *PhotonBatch, opts PropagateOptions) ([]ChannelHits, error)
}

// SimulateEvent runs the bridge's fixed invocation policy: pre- and
// post-transport photon states are discarded, DAQ emulation is disabled,
// hit recording is enabled and propagation is step-bounded. Exactly the
// first simulated event is kept, whatever the engine could produce, so at
// most one event is materialized per request.
//
// An engine error or an empty event sequence is an ErrEngineFailure. An
// event with zero hits is valid and is not an error.
func SimulateEvent(engine Engine, event *Event) error {
	opts := PropagateOptions{
		KeepBegin: false,
		KeepEnd:   false,
		KeepHits:  true,
		RunDAQ:    false,
		MaxSteps:  MaxSteps,
	}
	if configuration.MaxSteps > 0 {
		opts.MaxSteps = configuration.MaxSteps
	}

	events, err := engine.Propagate(&event.Photons, opts)
	if err != nil {
		return &ErrEngineFailure{EventID: event.EventID, Err: err}
	}
	if len(events) == 0 {
		return &ErrEngineFailure{EventID: event.EventID}
	}
	event.Hits = events[0]
	return nil
}
