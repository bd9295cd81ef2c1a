package holdem

import "pokerroom-server/pkg/poker/action"

// Kind identifies an outbound event
type Kind string

// outbound event kinds
const (
	KindPlayerJoined      Kind = "playerJoined"
	KindPlayerLeft        Kind = "playerLeft"
	KindHandStarted       Kind = "handStarted"
	KindActionApplied     Kind = "actionApplied"
	KindPhaseAdvanced     Kind = "phaseAdvanced"
	KindShowdown          Kind = "showdown"
	KindHandEnded         Kind = "handEnded"
	KindWaitingForPlayers Kind = "waitingForPlayers"
)

// SidePot is a portion of the pot with the seats eligible to win it
type SidePot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

// PotResult is a side pot after award
type PotResult struct {
	SidePot
	Winners []int `json:"winners"`
}

// Emitted is an outbound event produced by applying an input event
type Emitted struct {
	Kind   Kind          `json:"kind"`
	Seat   int           `json:"seat"`
	Action action.Action `json:"action,omitempty"`
	Amount int           `json:"amount,omitempty"`
	Phase  Phase         `json:"phase,omitempty"`

	// Pots and Payouts are set on showdown and handEnded events
	Pots    []PotResult `json:"pots,omitempty"`
	Payouts map[int]int `json:"payouts,omitempty"`
}
