package session

// Phase is the top-level lifecycle stage of a session.
type Phase string

const (
	PhaseNew        Phase = "NEW"         // waiting for an archetype
	PhaseInProgress Phase = "IN_PROGRESS" // accepting turns
	PhaseEnded      Phase = "ENDED"       // verdict reached; only reset is valid
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from the current phase to target is valid.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseNew:        {PhaseInProgress},
		PhaseInProgress: {PhaseInProgress, PhaseEnded},
		PhaseEnded:      {PhaseNew},
	}
	for _, phase := range validTransitions[p] {
		if phase == target {
			return true
		}
	}
	return false
}
