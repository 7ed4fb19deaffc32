package entity

type PipelineState int

const (
	// IdleState indicates that the pipeline has not started yet.
	IdleState PipelineState = iota
	// ProbingState indicates that the probe adapters are running. A probe
	// failure is a self-transition: the pipeline stays in this state and
	// records the degraded bus.
	ProbingState
	// AggregatingState indicates that raw records are being merged into
	// the inventory.
	AggregatingState
	// MatchingState indicates that profile rules are being evaluated.
	MatchingState
	// SynthesizingState indicates that the config fragment is being built.
	SynthesizingState
	// DoneState is terminal. It always carries a config fragment, possibly
	// built from zero devices, plus the degraded bus set.
	DoneState
)

func (s PipelineState) String() string {
	switch s {
	case IdleState:
		return "idle"
	case ProbingState:
		return "probing"
	case AggregatingState:
		return "aggregating"
	case MatchingState:
		return "matching"
	case SynthesizingState:
		return "synthesizing"
	case DoneState:
		return "done"
	default:
		return "unknown"
	}
}

func (s PipelineState) OneOf(states ...PipelineState) bool {
	for _, o := range states {
		if s == o {
			return true
		}
	}
	return false
}
