package holdem

// Phase is the stage of the current hand
type Phase string

// phase constants
const (
	PhaseIdle     Phase = "idle"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

// IsBettingRound returns true if players act during this phase
func (p Phase) IsBettingRound() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}

	return false
}

// next returns the phase that follows p
func (p Phase) next() Phase {
	switch p {
	case PhasePreflop:
		return PhaseFlop
	case PhaseFlop:
		return PhaseTurn
	case PhaseTurn:
		return PhaseRiver
	case PhaseRiver:
		return PhaseShowdown
	}

	return PhaseShowdown
}

// Status is the lifecycle state of a table
type Status string

// status constants
const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)
